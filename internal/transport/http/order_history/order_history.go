package orderhistory

import (
	"context"
	"net/http"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/respond"
)

type service interface {
	GetOrderHistory(ctx context.Context, id int64) ([]order.StatusLogEntry, error)
}

func OrderHistory(w http.ResponseWriter, r *http.Request, service service) {
	id, err := respond.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, err, "getting order history")

		return
	}

	history, err := service.GetOrderHistory(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err, "getting order history")

		return
	}

	respond.JSON(w, r, http.StatusOK, history)
}
