package updateitems

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/services/ordersvc"
	"github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/respond"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type service interface {
	UpdateOrderItems(ctx context.Context, id int64, items []ordersvc.ItemUpdate) (*order.Order, error)
}

type itemInUpdateRequest struct {
	MenuItemID int64           `json:"menu_item_id" validate:"gt=0"`
	Quantity   int             `json:"quantity"     validate:"gt=0"`
	Price      decimal.Decimal `json:"price"`
	Note       *string         `json:"note"         validate:"omitempty,max=500"`
}

// updateItemsRequest carries the full new item list. An empty list removes the order.
type updateItemsRequest struct {
	Items []itemInUpdateRequest `json:"items" validate:"dive"`
}

func (r *updateItemsRequest) Validate() error {
	return validator.New().Struct(r)
}

type deletedResponse struct {
	OrderID int64 `json:"orderId"`
	Deleted bool  `json:"deleted"`
}

// UpdateItems replaces the items of an order as amended by the cashier.
func UpdateItems(w http.ResponseWriter, r *http.Request, service service) {
	id, err := respond.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, err, "updating order items")

		return
	}

	req := updateItemsRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, r, "invalid request body")

		return
	}
	if err := req.Validate(); err != nil {
		respond.BadRequest(w, r, err.Error())

		return
	}

	items := make([]ordersvc.ItemUpdate, len(req.Items))
	for i, item := range req.Items {
		items[i] = ordersvc.ItemUpdate{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Price:      item.Price,
			Note:       item.Note,
		}
	}

	updated, err := service.UpdateOrderItems(r.Context(), id, items)
	if err != nil {
		respond.Error(w, r, err, "updating order items")

		return
	}

	if updated == nil {
		respond.JSON(w, r, http.StatusOK, deletedResponse{OrderID: id, Deleted: true})

		return
	}

	respond.JSON(w, r, http.StatusOK, updated)
}
