package iorderitemrepo

import (
	"context"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/orderitem"
)

// IOrderItemRepository is an interface for order item postgres repository.
type IOrderItemRepository interface {
	BulkInsert(ctx context.Context, orderItems []orderitem.OrderItem) ([]orderitem.OrderItem, error)
	Query(
		ctx context.Context,
		filter *orderitem.QueryOrderItemsModel,
	) ([]orderitem.OrderItem, error)
	DeleteByOrderID(ctx context.Context, orderID int64) error
	// MoveToOrder reassigns every item of fromOrderID to toOrderID in place.
	MoveToOrder(ctx context.Context, fromOrderID, toOrderID int64) error
}
