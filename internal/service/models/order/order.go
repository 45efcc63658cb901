package order

import (
	"time"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// Order represents a single table submission or the result of merging several of them.
type Order struct {
	ID            int64                 `json:"id"`
	TableNumber   int                   `json:"table_number"`
	Status        Status                `json:"status"`
	ParentOrderID *int64                `json:"parent_order_id"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Items         []orderitem.OrderItem `json:"items"`
	ChildOrders   []Order               `json:"child_orders,omitempty"`
}

// IsMerged reports whether the order has been folded into a parent.
func (o *Order) IsMerged() bool {
	return o.ParentOrderID != nil
}

// IsClosed reports whether the order can no longer be amended.
func (o *Order) IsClosed() bool {
	if o.IsMerged() {
		return true
	}

	switch o.Status {
	case StatusMerged, StatusPaid, StatusCancelled:
		return true
	default:
		return false
	}
}

// StatusLogEntry is one row of an order's status history.
type StatusLogEntry struct {
	ID        int64     `json:"id"`
	OrderID   int64     `json:"order_id"`
	Status    Status    `json:"status"`
	Note      string    `json:"note,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}
