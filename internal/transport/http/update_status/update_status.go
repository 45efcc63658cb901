package updatestatus

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/respond"
	"github.com/go-playground/validator/v10"
)

type service interface {
	UpdateOrderStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error)
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (r *updateStatusRequest) Validate() error {
	return validator.New().Struct(r)
}

// UpdateStatus moves an order along its lifecycle.
func UpdateStatus(w http.ResponseWriter, r *http.Request, service service) {
	id, err := respond.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, err, "updating order status")

		return
	}

	req := updateStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, r, "invalid request body")

		return
	}
	if err := req.Validate(); err != nil {
		respond.BadRequest(w, r, err.Error())

		return
	}

	updated, err := service.UpdateOrderStatus(r.Context(), id, order.Status(req.Status))
	if err != nil {
		respond.Error(w, r, err, "updating order status")

		return
	}

	respond.JSON(w, r, http.StatusOK, updated)
}
