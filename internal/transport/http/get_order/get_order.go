package getorder

import (
	"context"
	"net/http"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/respond"
)

type service interface {
	GetOrderByID(ctx context.Context, id int64) (*order.Order, error)
}

// GetOrder returns one order with its items and merged children.
func GetOrder(w http.ResponseWriter, r *http.Request, service service) {
	id, err := respond.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, err, "getting order")

		return
	}

	o, err := service.GetOrderByID(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err, "getting order")

		return
	}

	respond.JSON(w, r, http.StatusOK, o)
}
