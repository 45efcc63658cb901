package ordersvc

import (
	"context"

	"github.com/M-505/mitra-da-dhaba-sg/internal/broadcast"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
)

type newOrderPayload struct {
	Order *order.Order `json:"order"`
}

type statusUpdatedPayload struct {
	OrderID int64        `json:"orderId"`
	Status  order.Status `json:"status"`
	Order   *order.Order `json:"order"`
}

type orderUpdatedPayload struct {
	OrderID int64        `json:"orderId"`
	Order   *order.Order `json:"order"`
	Deleted bool         `json:"deleted,omitempty"`
}

type ordersMergedPayload struct {
	ParentOrderID int64        `json:"parentOrderId"`
	ChildOrderID  int64        `json:"childOrderId"`
	Order         *order.Order `json:"order"`
}

func (s *OrderService) publish(ctx context.Context, eventType string, payload any) {
	s.publisher.Publish(ctx, broadcast.NewEvent(eventType, payload))
}
