package istatuslogrepo

import (
	"context"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
)

// IStatusLogRepository stores the status history of orders.
type IStatusLogRepository interface {
	Insert(ctx context.Context, entries ...order.StatusLogEntry) error
	QueryByOrderID(ctx context.Context, orderID int64) ([]order.StatusLogEntry, error)
}
