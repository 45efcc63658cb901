package ordersvc

import (
	"context"
	"fmt"
	"time"

	"github.com/M-505/mitra-da-dhaba-sg/internal/broadcast"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// ItemUpdate is one line of an amended bill. The price is taken as given.
type ItemUpdate struct {
	MenuItemID int64
	Quantity   int
	Price      decimal.Decimal
	Note       *string
}

// UpdateOrderStatus moves an order to status if the lifecycle allows it.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int64, status order.Status) (_ *order.Order, err error) {
	ctx, finish := s.startSpan(ctx, "UpdateOrderStatus")
	defer func() { finish(err) }()

	status, err = order.ParseStatus(status.String())
	if err != nil {
		return nil, order.ValidationError{Field: "status", Message: "unknown status"}
	}
	if status == order.StatusMerged {
		return nil, fmt.Errorf("%w: orders are merged through the merge operation", order.ErrInvalidStatusTransition)
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer work.Rollback(ctx)

	updated, err := work.OrderRepository().UpdateStatus(ctx, id, status, order.Predecessors(status))
	if err != nil {
		return nil, err
	}
	if !updated {
		found, err := work.OrderRepository().Query(ctx, &order.QueryOrdersModel{Ids: []int64{id}})
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, order.ErrNotFound
		}

		return nil, fmt.Errorf("%w: %s -> %s", order.ErrInvalidStatusTransition, found[0].Status, status)
	}

	if err := work.StatusLogRepository().Insert(ctx, order.StatusLogEntry{OrderID: id, Status: status}); err != nil {
		return nil, err
	}

	result, err := loadOrder(ctx, work, id)
	if err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publish(ctx, broadcast.EventOrderStatusUpdated, statusUpdatedPayload{
		OrderID: id,
		Status:  status,
		Order:   result,
	})

	return result, nil
}

// UpdateOrderItems replaces the items of an open order and recomputes its total.
// An empty item list deletes the order, in which case the returned order is nil.
func (s *OrderService) UpdateOrderItems(ctx context.Context, id int64, items []ItemUpdate) (_ *order.Order, err error) {
	ctx, finish := s.startSpan(ctx, "UpdateOrderItems")
	defer func() { finish(err) }()

	if err := validateItemUpdates(items); err != nil {
		return nil, err
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer work.Rollback(ctx)

	locked, err := work.OrderRepository().LockByIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(locked) == 0 {
		return nil, order.ErrNotFound
	}
	if locked[0].IsClosed() {
		return nil, fmt.Errorf("%w: order %d is %s", order.ErrOrderClosed, id, locked[0].Status)
	}

	if err := work.OrderItemRepository().DeleteByOrderID(ctx, id); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		if err := work.OrderRepository().Delete(ctx, id); err != nil {
			return nil, err
		}
		if err := work.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}

		s.publish(ctx, broadcast.EventOrderUpdated, orderUpdatedPayload{OrderID: id, Deleted: true})

		return nil, nil
	}

	now := time.Now()
	newItems := make([]orderitem.OrderItem, 0, len(items))
	for _, item := range items {
		newItems = append(newItems, orderitem.OrderItem{
			OrderID:    id,
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Price:      item.Price,
			Note:       item.Note,
			CreatedAt:  now,
		})
	}

	if _, err := work.OrderItemRepository().BulkInsert(ctx, newItems); err != nil {
		return nil, err
	}

	if _, err := work.OrderRepository().RecalculateTotal(ctx, id); err != nil {
		return nil, err
	}

	result, err := loadOrder(ctx, work, id)
	if err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publish(ctx, broadcast.EventOrderUpdated, orderUpdatedPayload{OrderID: id, Order: result})

	return result, nil
}

func validateItemUpdates(items []ItemUpdate) error {
	for i, item := range items {
		if item.MenuItemID <= 0 {
			return order.ValidationError{Field: fmt.Sprintf("items[%d].menu_item_id", i), Message: "is required"}
		}
		if item.Quantity < 1 {
			return order.ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be at least 1"}
		}
		if item.Price.IsNegative() {
			return order.ValidationError{Field: fmt.Sprintf("items[%d].price", i), Message: "must not be negative"}
		}
	}

	return nil
}
