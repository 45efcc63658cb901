package iorderrepo

import (
	"context"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/shopspring/decimal"
)

// IOrderRepository is an interface for order postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o order.Order) (order.Order, error)
	Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error)
	// LockByIDs selects the given orders FOR UPDATE, locking them in id order.
	LockByIDs(ctx context.Context, ids ...int64) ([]order.Order, error)
	// UpdateStatus sets the status of a root order whose current status is one of allowedFrom.
	// It reports whether a row was changed.
	UpdateStatus(ctx context.Context, id int64, status order.Status, allowedFrom []order.Status) (bool, error)
	// MarkMerged closes childID as merged into parentID when the child is still a root order
	// with a status in allowedChild. It reports whether a row was changed.
	MarkMerged(ctx context.Context, childID, parentID int64, allowedChild []order.Status) (bool, error)
	// RecalculateTotal stores and returns the sum of the order's own item subtotals.
	RecalculateTotal(ctx context.Context, id int64) (decimal.Decimal, error)
	Delete(ctx context.Context, id int64) error
}
