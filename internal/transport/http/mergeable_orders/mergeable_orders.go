package mergeableorders

import (
	"context"
	"net/http"
	"strconv"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/respond"
	"github.com/go-chi/chi/v5"
)

type service interface {
	GetMergeableOrders(ctx context.Context, tableNumber int) ([]order.Order, error)
}

// MergeableOrders lists the orders of a table that can still be merged.
func MergeableOrders(w http.ResponseWriter, r *http.Request, service service) {
	tableNumber, err := strconv.Atoi(chi.URLParam(r, "tableNumber"))
	if err != nil {
		respond.BadRequest(w, r, "tableNumber must be an integer")

		return
	}

	orders, err := service.GetMergeableOrders(r.Context(), tableNumber)
	if err != nil {
		respond.Error(w, r, err, "listing mergeable orders")

		return
	}

	respond.JSON(w, r, http.StatusOK, orders)
}
