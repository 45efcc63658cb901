package ordersvc

import (
	"context"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/orderitem"
)

// GetOrderByID returns the order with its items and the orders merged into it.
func (s *OrderService) GetOrderByID(ctx context.Context, id int64) (_ *order.Order, err error) {
	ctx, finish := s.startSpan(ctx, "GetOrderByID")
	defer func() { finish(err) }()

	return loadOrder(ctx, s.newUOW(), id)
}

// GetAllOrders returns orders that were not merged into another one, newest first.
func (s *OrderService) GetAllOrders(ctx context.Context, query order.QueryOrdersModel) (_ []order.Order, err error) {
	ctx, finish := s.startSpan(ctx, "GetAllOrders")
	defer func() { finish(err) }()

	query.RootOnly = true
	query.ParentIds = nil

	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, &query)
	if err != nil {
		return nil, err
	}

	return attachDetails(ctx, work, orders, true)
}

// GetMergeableOrders returns merge candidates for a table, newest first.
func (s *OrderService) GetMergeableOrders(ctx context.Context, tableNumber int) (_ []order.Order, err error) {
	ctx, finish := s.startSpan(ctx, "GetMergeableOrders")
	defer func() { finish(err) }()

	if tableNumber <= 0 {
		return nil, order.ValidationError{Field: "table_number", Message: "must be a positive number"}
	}

	work := s.newUOW()

	orders, err := work.OrderRepository().Query(ctx, &order.QueryOrdersModel{
		TableNumbers: []int{tableNumber},
		Statuses:     order.MergeableStatuses(),
		RootOnly:     true,
	})
	if err != nil {
		return nil, err
	}

	return attachDetails(ctx, work, orders, false)
}

// GetOrderHistory returns the status changes of an order, oldest first.
func (s *OrderService) GetOrderHistory(ctx context.Context, id int64) (_ []order.StatusLogEntry, err error) {
	ctx, finish := s.startSpan(ctx, "GetOrderHistory")
	defer func() { finish(err) }()

	work := s.newUOW()

	found, err := work.OrderRepository().Query(ctx, &order.QueryOrdersModel{Ids: []int64{id}})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, order.ErrNotFound
	}

	entries, err := work.StatusLogRepository().QueryByOrderID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []order.StatusLogEntry{}
	}

	return entries, nil
}

// loadOrder reads an order through work, which may or may not be inside a transaction.
func loadOrder(ctx context.Context, work unitOfWork, id int64) (*order.Order, error) {
	found, err := work.OrderRepository().Query(ctx, &order.QueryOrdersModel{Ids: []int64{id}})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, order.ErrNotFound
	}

	detailed, err := attachDetails(ctx, work, found, true)
	if err != nil {
		return nil, err
	}

	return &detailed[0], nil
}

// attachDetails fills in items and, if withChildren is set, the orders merged into each one.
func attachDetails(ctx context.Context, work unitOfWork, orders []order.Order, withChildren bool) ([]order.Order, error) {
	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	var children []order.Order
	if withChildren {
		var err error
		children, err = work.OrderRepository().Query(ctx, &order.QueryOrdersModel{ParentIds: ids})
		if err != nil {
			return nil, err
		}
	}

	itemOrderIDs := append([]int64{}, ids...)
	for _, c := range children {
		itemOrderIDs = append(itemOrderIDs, c.ID)
	}

	items, err := work.OrderItemRepository().Query(ctx, &orderitem.QueryOrderItemsModel{OrderIds: itemOrderIDs})
	if err != nil {
		return nil, err
	}

	itemsByOrder := make(map[int64][]orderitem.OrderItem)
	for _, item := range items {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	childrenByParent := make(map[int64][]order.Order)
	for _, c := range children {
		c.Items = nonNilItems(itemsByOrder[c.ID])
		childrenByParent[*c.ParentOrderID] = append(childrenByParent[*c.ParentOrderID], c)
	}

	for i := range orders {
		orders[i].Items = nonNilItems(itemsByOrder[orders[i].ID])
		if withChildren {
			orders[i].ChildOrders = childrenByParent[orders[i].ID]
		}
	}

	return orders, nil
}

func nonNilItems(items []orderitem.OrderItem) []orderitem.OrderItem {
	if items == nil {
		return []orderitem.OrderItem{}
	}

	return items
}
