package ordersvc

import (
	"context"
	"fmt"
	"time"

	"github.com/M-505/mitra-da-dhaba-sg/internal/broadcast"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/menuitem"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/orderitem"
)

// NewItem is one cart line submitted by a diner.
type NewItem struct {
	MenuItemID int64
	Quantity   int
	Note       *string
}

// CreateOrder stores a pending order priced from the current menu.
func (s *OrderService) CreateOrder(ctx context.Context, tableNumber int, items []NewItem) (_ *order.Order, err error) {
	ctx, finish := s.startSpan(ctx, "CreateOrder")
	defer func() { finish(err) }()

	if err := validateNewOrder(tableNumber, items); err != nil {
		return nil, err
	}

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer work.Rollback(ctx)

	menuIDs := make([]int64, 0, len(items))
	for _, item := range items {
		menuIDs = append(menuIDs, item.MenuItemID)
	}

	menu, err := work.MenuRepository().Query(ctx, &menuitem.QueryMenuItemsModel{
		Ids:                menuIDs,
		IncludeUnavailable: true,
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]menuitem.MenuItem, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
	}

	now := time.Now()
	orderItems := make([]orderitem.OrderItem, 0, len(items))
	for _, item := range items {
		m, ok := byID[item.MenuItemID]
		if !ok || !m.IsAvailable {
			return nil, fmt.Errorf("%w: %d", order.ErrMenuItemNotFound, item.MenuItemID)
		}

		orderItems = append(orderItems, orderitem.OrderItem{
			MenuItemID: m.ID,
			Name:       m.Name,
			Quantity:   item.Quantity,
			Price:      m.Price,
			Note:       item.Note,
			CreatedAt:  now,
		})
	}

	created, err := work.OrderRepository().Insert(ctx, order.Order{
		TableNumber: tableNumber,
		Status:      order.StatusPending,
		TotalAmount: orderitem.Total(orderItems),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	for i := range orderItems {
		orderItems[i].OrderID = created.ID
	}

	created.Items, err = work.OrderItemRepository().BulkInsert(ctx, orderItems)
	if err != nil {
		return nil, err
	}

	err = work.StatusLogRepository().Insert(ctx, order.StatusLogEntry{
		OrderID: created.ID,
		Status:  order.StatusPending,
		Note:    "order placed",
	})
	if err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.publish(ctx, broadcast.EventNewOrder, newOrderPayload{Order: &created})

	return &created, nil
}

func validateNewOrder(tableNumber int, items []NewItem) error {
	if tableNumber <= 0 {
		return order.ValidationError{Field: "table_number", Message: "must be a positive number"}
	}
	if len(items) == 0 {
		return order.ValidationError{Field: "items", Message: "must not be empty"}
	}

	for i, item := range items {
		if item.MenuItemID <= 0 {
			return order.ValidationError{Field: fmt.Sprintf("items[%d].menu_item_id", i), Message: "is required"}
		}
		if item.Quantity < 1 {
			return order.ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be at least 1"}
		}
	}

	return nil
}
