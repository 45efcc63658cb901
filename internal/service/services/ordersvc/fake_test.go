package ordersvc

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/M-505/mitra-da-dhaba-sg/internal/broadcast"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/interfaces/imenurepo"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/interfaces/iorderitemrepo"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/interfaces/iorderrepo"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/interfaces/istatuslogrepo"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/menuitem"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace/noop"
)

var errLogWrite = errors.New("status log unavailable")

// memStore is an in-memory stand-in for the database. Begin snapshots it and
// Rollback without Commit restores the snapshot.
type memStore struct {
	orders map[int64]order.Order
	items  map[int64]orderitem.OrderItem
	menu   map[int64]menuitem.MenuItem
	logs   []order.StatusLogEntry

	nextOrderID int64
	nextItemID  int64
	nextLogID   int64

	failLogWrites bool
}

func newMemStore() *memStore {
	return &memStore{
		orders: make(map[int64]order.Order),
		items:  make(map[int64]orderitem.OrderItem),
		menu:   make(map[int64]menuitem.MenuItem),
	}
}

func (s *memStore) snapshot() *memStore {
	c := *s
	c.orders = make(map[int64]order.Order, len(s.orders))
	for k, v := range s.orders {
		c.orders[k] = v
	}
	c.items = make(map[int64]orderitem.OrderItem, len(s.items))
	for k, v := range s.items {
		c.items[k] = v
	}
	c.logs = append([]order.StatusLogEntry(nil), s.logs...)

	return &c
}

func (s *memStore) restore(from *memStore) {
	s.orders = from.orders
	s.items = from.items
	s.logs = from.logs
	s.nextOrderID = from.nextOrderID
	s.nextItemID = from.nextItemID
	s.nextLogID = from.nextLogID
}

type memUOW struct {
	mu        *sync.Mutex
	store     *memStore
	saved     *memStore
	committed bool
	locked    bool
}

func (u *memUOW) Begin(context.Context) error {
	u.mu.Lock()
	u.locked = true
	u.saved = u.store.snapshot()

	return nil
}

func (u *memUOW) Commit(context.Context) error {
	u.committed = true
	u.release()

	return nil
}

func (u *memUOW) Rollback(context.Context) error {
	if u.saved != nil && !u.committed {
		u.store.restore(u.saved)
	}
	u.release()

	return nil
}

func (u *memUOW) release() {
	if u.locked {
		u.locked = false
		u.mu.Unlock()
	}
}

func (u *memUOW) OrderRepository() iorderrepo.IOrderRepository {
	return memOrders{u.store}
}

func (u *memUOW) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return memItems{u.store}
}

func (u *memUOW) MenuRepository() imenurepo.IMenuRepository {
	return memMenu{u.store}
}

func (u *memUOW) StatusLogRepository() istatuslogrepo.IStatusLogRepository {
	return memLogs{u.store}
}

type memOrders struct{ s *memStore }

func (r memOrders) Insert(_ context.Context, o order.Order) (order.Order, error) {
	r.s.nextOrderID++
	o.ID = r.s.nextOrderID
	o.Items = nil
	r.s.orders[o.ID] = o
	o.Items = []orderitem.OrderItem{}

	return o, nil
}

func (r memOrders) Query(_ context.Context, f *order.QueryOrdersModel) ([]order.Order, error) {
	var result []order.Order
	for _, o := range r.s.orders {
		if len(f.Ids) > 0 && !containsID(f.Ids, o.ID) {
			continue
		}
		if len(f.TableNumbers) > 0 && !containsInt(f.TableNumbers, o.TableNumber) {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, o.Status) {
			continue
		}
		if len(f.ParentIds) > 0 && (o.ParentOrderID == nil || !containsID(f.ParentIds, *o.ParentOrderID)) {
			continue
		}
		if f.RootOnly && o.ParentOrderID != nil {
			continue
		}
		o.Items = []orderitem.OrderItem{}
		result = append(result, o)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })

	if f.Offset > 0 {
		if f.Offset >= len(result) {
			return nil, nil
		}
		result = result[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(result) {
		result = result[:f.Limit]
	}

	return result, nil
}

func (r memOrders) LockByIDs(_ context.Context, ids ...int64) ([]order.Order, error) {
	var result []order.Order
	for _, id := range ids {
		if o, ok := r.s.orders[id]; ok {
			o.Items = []orderitem.OrderItem{}
			result = append(result, o)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

func (r memOrders) UpdateStatus(_ context.Context, id int64, status order.Status, allowedFrom []order.Status) (bool, error) {
	o, ok := r.s.orders[id]
	if !ok || o.ParentOrderID != nil || !containsStatus(allowedFrom, o.Status) {
		return false, nil
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.s.orders[id] = o

	return true, nil
}

func (r memOrders) MarkMerged(_ context.Context, childID, parentID int64, allowedChild []order.Status) (bool, error) {
	o, ok := r.s.orders[childID]
	if !ok || o.ParentOrderID != nil || !containsStatus(allowedChild, o.Status) {
		return false, nil
	}
	parent := parentID
	o.Status = order.StatusMerged
	o.ParentOrderID = &parent
	o.TotalAmount = decimal.Zero
	r.s.orders[childID] = o

	return true, nil
}

func (r memOrders) RecalculateTotal(_ context.Context, id int64) (decimal.Decimal, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return decimal.Zero, order.ErrNotFound
	}

	var own []orderitem.OrderItem
	for _, item := range r.s.items {
		if item.OrderID == id {
			own = append(own, item)
		}
	}
	o.TotalAmount = orderitem.Total(own)
	r.s.orders[id] = o

	return o.TotalAmount, nil
}

func (r memOrders) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.orders[id]; !ok {
		return order.ErrNotFound
	}

	for childID, o := range r.s.orders {
		if o.ParentOrderID != nil && *o.ParentOrderID == id {
			_ = r.Delete(context.Background(), childID)
		}
	}
	for itemID, item := range r.s.items {
		if item.OrderID == id {
			delete(r.s.items, itemID)
		}
	}
	logs := r.s.logs[:0]
	for _, e := range r.s.logs {
		if e.OrderID != id {
			logs = append(logs, e)
		}
	}
	r.s.logs = logs
	delete(r.s.orders, id)

	return nil
}

type memItems struct{ s *memStore }

func (r memItems) BulkInsert(_ context.Context, items []orderitem.OrderItem) ([]orderitem.OrderItem, error) {
	result := make([]orderitem.OrderItem, 0, len(items))
	for _, item := range items {
		if _, ok := r.s.menu[item.MenuItemID]; !ok {
			return nil, order.ErrMenuItemNotFound
		}
		r.s.nextItemID++
		item.ID = r.s.nextItemID
		stored := item
		stored.Name = ""
		r.s.items[item.ID] = stored
		result = append(result, item)
	}

	return result, nil
}

func (r memItems) Query(_ context.Context, f *orderitem.QueryOrderItemsModel) ([]orderitem.OrderItem, error) {
	var result []orderitem.OrderItem
	for _, item := range r.s.items {
		if len(f.OrderIds) > 0 && !containsID(f.OrderIds, item.OrderID) {
			continue
		}
		if len(f.Ids) > 0 && !containsID(f.Ids, item.ID) {
			continue
		}
		item.Name = r.s.menu[item.MenuItemID].Name
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

func (r memItems) DeleteByOrderID(_ context.Context, orderID int64) error {
	for id, item := range r.s.items {
		if item.OrderID == orderID {
			delete(r.s.items, id)
		}
	}

	return nil
}

func (r memItems) MoveToOrder(_ context.Context, fromOrderID, toOrderID int64) error {
	for id, item := range r.s.items {
		if item.OrderID == fromOrderID {
			item.OrderID = toOrderID
			r.s.items[id] = item
		}
	}

	return nil
}

type memMenu struct{ s *memStore }

func (r memMenu) Query(_ context.Context, f *menuitem.QueryMenuItemsModel) ([]menuitem.MenuItem, error) {
	var result []menuitem.MenuItem
	for _, m := range r.s.menu {
		if len(f.Ids) > 0 && !containsID(f.Ids, m.ID) {
			continue
		}
		if !f.IncludeUnavailable && !m.IsAvailable {
			continue
		}
		result = append(result, m)
	}

	return result, nil
}

func (r memMenu) Get(_ context.Context, id int64) (menuitem.MenuItem, error) {
	m, ok := r.s.menu[id]
	if !ok {
		return menuitem.MenuItem{}, menuitem.ErrNotFound
	}

	return m, nil
}

func (r memMenu) Insert(_ context.Context, item menuitem.MenuItem) (menuitem.MenuItem, error) {
	item.ID = int64(len(r.s.menu) + 1)
	r.s.menu[item.ID] = item

	return item, nil
}

func (r memMenu) Update(_ context.Context, id int64, upd menuitem.Update) (menuitem.MenuItem, error) {
	m, ok := r.s.menu[id]
	if !ok {
		return menuitem.MenuItem{}, menuitem.ErrNotFound
	}
	if upd.Price != nil {
		m.Price = *upd.Price
	}
	if upd.IsAvailable != nil {
		m.IsAvailable = *upd.IsAvailable
	}
	r.s.menu[id] = m

	return m, nil
}

func (r memMenu) Delete(_ context.Context, id int64) error {
	delete(r.s.menu, id)

	return nil
}

type memLogs struct{ s *memStore }

func (r memLogs) Insert(_ context.Context, entries ...order.StatusLogEntry) error {
	if r.s.failLogWrites {
		return errLogWrite
	}
	for _, e := range entries {
		r.s.nextLogID++
		e.ID = r.s.nextLogID
		e.ChangedAt = time.Unix(r.s.nextLogID, 0)
		r.s.logs = append(r.s.logs, e)
	}

	return nil
}

func (r memLogs) QueryByOrderID(_ context.Context, orderID int64) ([]order.StatusLogEntry, error) {
	var result []order.StatusLogEntry
	for _, e := range r.s.logs {
		if e.OrderID == orderID {
			result = append(result, e)
		}
	}

	return result, nil
}

type recordingPublisher struct {
	events []broadcast.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e broadcast.Event) {
	p.events = append(p.events, e)
}

func (p *recordingPublisher) last() broadcast.Event {
	if len(p.events) == 0 {
		return broadcast.Event{}
	}

	return p.events[len(p.events)-1]
}

func newTestService() (*OrderService, *memStore, *recordingPublisher) {
	store := newMemStore()
	store.menu[1] = menuitem.MenuItem{ID: 1, Name: "Butter Chicken", Price: decimal.RequireFromString("5.00"), IsAvailable: true}
	store.menu[2] = menuitem.MenuItem{ID: 2, Name: "Garlic Naan", Price: decimal.RequireFromString("3.00"), IsAvailable: true}
	store.menu[3] = menuitem.MenuItem{ID: 3, Name: "Mango Lassi", Price: decimal.RequireFromString("2.50"), IsAvailable: false}

	mu := &sync.Mutex{}
	pub := &recordingPublisher{}
	svc := &OrderService{
		newUOW: func() unitOfWork {
			return &memUOW{mu: mu, store: store}
		},
		publisher: pub,
		tracer:    noop.NewTracerProvider().Tracer(""),
	}

	return svc, store, pub
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}

	return false
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}

	return false
}

func containsStatus(statuses []order.Status, s order.Status) bool {
	for _, x := range statuses {
		if x == s {
			return true
		}
	}

	return false
}
