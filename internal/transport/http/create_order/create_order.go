package createorder

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/services/ordersvc"
	"github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/respond"
	"github.com/go-playground/validator/v10"
)

// service is an interface for the service layer.
type service interface {
	CreateOrder(ctx context.Context, tableNumber int, items []ordersvc.NewItem) (*order.Order, error)
}

// itemInCreateOrderRequest represents an item in a create order request.
type itemInCreateOrderRequest struct {
	MenuItemID int64   `json:"menu_item_id" validate:"gt=0"`
	Quantity   int     `json:"quantity"     validate:"gt=0"`
	Note       *string `json:"note"         validate:"omitempty,max=500"`
}

// createOrderRequest represents a create order request.
type createOrderRequest struct {
	TableNumber int                        `json:"table_number" validate:"gt=0"`
	Items       []itemInCreateOrderRequest `json:"items"        validate:"required,min=1,dive"`
}

// Validate validates the create order request.
func (r *createOrderRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *createOrderRequest) toItems() []ordersvc.NewItem {
	items := make([]ordersvc.NewItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = ordersvc.NewItem{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Note:       item.Note,
		}
	}

	return items
}

// CreateOrder handles a cart submitted from a table.
func CreateOrder(w http.ResponseWriter, r *http.Request, service service) {
	req := createOrderRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, r, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respond.BadRequest(w, r, err.Error())

		return
	}

	created, err := service.CreateOrder(r.Context(), req.TableNumber, req.toItems())
	if err != nil {
		respond.Error(w, r, err, "creating order")

		return
	}

	respond.JSON(w, r, http.StatusCreated, created)
}
