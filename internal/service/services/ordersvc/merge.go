package ordersvc

import (
	"context"
	"fmt"

	"github.com/M-505/mitra-da-dhaba-sg/internal/broadcast"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
)

// MergeOrders folds the child order into the parent: the child's items move to the
// parent, the child is closed as merged and the parent total is recomputed.
func (s *OrderService) MergeOrders(ctx context.Context, parentID, childID int64) (_ *order.Order, err error) {
	ctx, finish := s.startSpan(ctx, "MergeOrders")
	defer func() { finish(err) }()

	if parentID == childID {
		return nil, fmt.Errorf("%w: an order cannot be merged into itself", order.ErrInvalidMerge)
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer work.Rollback(ctx)

	locked, err := work.OrderRepository().LockByIDs(ctx, parentID, childID)
	if err != nil {
		return nil, err
	}

	var parent, child *order.Order
	for i := range locked {
		switch locked[i].ID {
		case parentID:
			parent = &locked[i]
		case childID:
			child = &locked[i]
		}
	}
	if parent == nil || child == nil {
		return nil, order.ErrNotFound
	}

	if err := checkMerge(parent, child); err != nil {
		return nil, err
	}

	absorbed, err := work.OrderRepository().Query(ctx, &order.QueryOrdersModel{
		ParentIds: []int64{childID},
		Limit:     1,
	})
	if err != nil {
		return nil, err
	}
	if len(absorbed) > 0 {
		return nil, fmt.Errorf("%w: order %d already has orders merged into it", order.ErrInvalidMerge, childID)
	}

	merged, err := work.OrderRepository().MarkMerged(ctx, childID, parentID, order.MergeableChildStatuses(parent.Status))
	if err != nil {
		return nil, err
	}
	if !merged {
		return nil, fmt.Errorf("%w: order %d changed concurrently", order.ErrInvalidMerge, childID)
	}

	if err := work.OrderItemRepository().MoveToOrder(ctx, childID, parentID); err != nil {
		return nil, err
	}

	if _, err := work.OrderRepository().RecalculateTotal(ctx, parentID); err != nil {
		return nil, err
	}

	err = work.StatusLogRepository().Insert(ctx,
		order.StatusLogEntry{
			OrderID: childID,
			Status:  order.StatusMerged,
			Note:    fmt.Sprintf("merged into order %d", parentID),
		},
		order.StatusLogEntry{
			OrderID: parentID,
			Status:  parent.Status,
			Note:    fmt.Sprintf("absorbed order %d", childID),
		},
	)
	if err != nil {
		return nil, err
	}

	result, err := loadOrder(ctx, work, parentID)
	if err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publish(ctx, broadcast.EventOrdersMerged, ordersMergedPayload{
		ParentOrderID: parentID,
		ChildOrderID:  childID,
		Order:         result,
	})

	return result, nil
}

func checkMerge(parent, child *order.Order) error {
	switch {
	case parent.IsMerged():
		return fmt.Errorf("%w: order %d is already merged into %d", order.ErrInvalidMerge, parent.ID, *parent.ParentOrderID)
	case child.IsMerged():
		return fmt.Errorf("%w: order %d is already merged into %d", order.ErrInvalidMerge, child.ID, *child.ParentOrderID)
	case parent.TableNumber != child.TableNumber:
		return fmt.Errorf("%w: orders belong to tables %d and %d", order.ErrInvalidMerge, parent.TableNumber, child.TableNumber)
	case !order.CanMerge(parent.Status, child.Status):
		return fmt.Errorf("%w: cannot merge a %s order into a %s order", order.ErrInvalidMerge, child.Status, parent.Status)
	}

	return nil
}
