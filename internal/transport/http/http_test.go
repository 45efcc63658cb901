package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/category"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/menuitem"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/services/ordersvc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

type fakeOrders struct {
	created     []ordersvc.NewItem
	query       order.QueryOrdersModel
	status      order.Status
	statusErr   error
	itemUpdates []ordersvc.ItemUpdate
	merged      [2]int64
	mergeErr    error
}

func (f *fakeOrders) CreateOrder(_ context.Context, table int, items []ordersvc.NewItem) (*order.Order, error) {
	f.created = items

	return &order.Order{ID: 1, TableNumber: table, Status: order.StatusPending, TotalAmount: decimal.NewFromInt(5)}, nil
}

func (f *fakeOrders) GetOrderByID(_ context.Context, id int64) (*order.Order, error) {
	if id != 1 {
		return nil, order.ErrNotFound
	}

	return &order.Order{ID: 1, TableNumber: 4, Status: order.StatusPending}, nil
}

func (f *fakeOrders) GetAllOrders(_ context.Context, q order.QueryOrdersModel) ([]order.Order, error) {
	f.query = q

	return []order.Order{}, nil
}

func (f *fakeOrders) GetMergeableOrders(_ context.Context, table int) ([]order.Order, error) {
	return []order.Order{{ID: 2, TableNumber: table, Status: order.StatusPending}}, nil
}

func (f *fakeOrders) GetOrderHistory(_ context.Context, id int64) ([]order.StatusLogEntry, error) {
	return []order.StatusLogEntry{{ID: 1, OrderID: id, Status: order.StatusPending, ChangedAt: time.Now()}}, nil
}

func (f *fakeOrders) UpdateOrderStatus(_ context.Context, id int64, status order.Status) (*order.Order, error) {
	f.status = status
	if f.statusErr != nil {
		return nil, f.statusErr
	}

	return &order.Order{ID: id, Status: status}, nil
}

func (f *fakeOrders) UpdateOrderItems(_ context.Context, id int64, items []ordersvc.ItemUpdate) (*order.Order, error) {
	f.itemUpdates = items
	if len(items) == 0 {
		return nil, nil
	}

	return &order.Order{ID: id, Status: order.StatusPending}, nil
}

func (f *fakeOrders) MergeOrders(_ context.Context, parentID, childID int64) (*order.Order, error) {
	f.merged = [2]int64{parentID, childID}
	if f.mergeErr != nil {
		return nil, f.mergeErr
	}

	return &order.Order{ID: parentID, Status: order.StatusPending}, nil
}

type fakeMenu struct {
	query   menuitem.QueryMenuItemsModel
	deleted int64
}

func (f *fakeMenu) ListMenuItems(_ context.Context, q menuitem.QueryMenuItemsModel) ([]menuitem.MenuItem, error) {
	f.query = q

	return []menuitem.MenuItem{}, nil
}

func (f *fakeMenu) GetMenuItem(_ context.Context, id int64) (menuitem.MenuItem, error) {
	return menuitem.MenuItem{}, menuitem.ErrNotFound
}

func (f *fakeMenu) CreateMenuItem(_ context.Context, item menuitem.MenuItem) (menuitem.MenuItem, error) {
	item.ID = 9

	return item, nil
}

func (f *fakeMenu) UpdateMenuItem(_ context.Context, id int64, _ menuitem.Update) (menuitem.MenuItem, error) {
	return menuitem.MenuItem{ID: id}, nil
}

func (f *fakeMenu) DeleteMenuItem(_ context.Context, id int64) error {
	f.deleted = id

	return nil
}

func (f *fakeMenu) ListCategories(context.Context) ([]category.Category, error) {
	return []category.Category{{ID: 1, Name: "Curries"}}, nil
}

func (f *fakeMenu) CreateCategory(_ context.Context, c category.Category) (category.Category, error) {
	c.ID = 3

	return c, nil
}

func (f *fakeMenu) UpdateCategory(_ context.Context, c category.Category) (category.Category, error) {
	return c, nil
}

func (f *fakeMenu) DeleteCategory(context.Context, int64) error {
	return category.ErrNotFound
}

type fakeDB struct{ err error }

func (f fakeDB) Ping(context.Context) error { return f.err }

func newTestTransport(secret string) (*HTTPTransport, *fakeOrders, *fakeMenu) {
	orders := &fakeOrders{}
	menu := &fakeMenu{}

	h := NewHTTPTransport(orders, menu, nil, fakeDB{})
	h.jwtSecret = secret
	h.RegisterRoutes()

	return h, orders, menu
}

func do(h *HTTPTransport, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	h.Handler().ServeHTTP(w, r)

	return w
}

func TestOrderRoutes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{name: "create", method: http.MethodPost, target: "/api/orders",
			body: `{"table_number":4,"items":[{"menu_item_id":1,"quantity":2}]}`, wantStatus: http.StatusCreated},
		{name: "create without items", method: http.MethodPost, target: "/api/orders",
			body: `{"table_number":4,"items":[]}`, wantStatus: http.StatusBadRequest},
		{name: "create with zero quantity", method: http.MethodPost, target: "/api/orders",
			body: `{"table_number":4,"items":[{"menu_item_id":1,"quantity":0}]}`, wantStatus: http.StatusBadRequest},
		{name: "create malformed", method: http.MethodPost, target: "/api/orders",
			body: `{`, wantStatus: http.StatusBadRequest},
		{name: "get", method: http.MethodGet, target: "/api/orders/1", wantStatus: http.StatusOK},
		{name: "get missing", method: http.MethodGet, target: "/api/orders/2", wantStatus: http.StatusNotFound},
		{name: "get bad id", method: http.MethodGet, target: "/api/orders/abc", wantStatus: http.StatusBadRequest},
		{name: "history", method: http.MethodGet, target: "/api/orders/1/history", wantStatus: http.StatusOK},
		{name: "list with unknown status", method: http.MethodGet, target: "/api/orders?status=lost", wantStatus: http.StatusBadRequest},
		{name: "mergeable", method: http.MethodGet, target: "/api/orders/mergeable/4", wantStatus: http.StatusOK},
		{name: "mergeable bad table", method: http.MethodGet, target: "/api/orders/mergeable/x", wantStatus: http.StatusBadRequest},
		{name: "status patch", method: http.MethodPatch, target: "/api/orders/1/status",
			body: `{"status":"preparing"}`, wantStatus: http.StatusOK},
		{name: "status put", method: http.MethodPut, target: "/api/orders/1/status",
			body: `{"status":"completed"}`, wantStatus: http.StatusOK},
		{name: "status missing", method: http.MethodPatch, target: "/api/orders/1/status",
			body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "merge", method: http.MethodPost, target: "/api/orders/1/merge/2", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newTestTransport("")

			w := do(h, tt.method, tt.target, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestListOrdersDecodesFilters(t *testing.T) {
	h, orders, _ := newTestTransport("")

	w := do(h, http.MethodGet, "/api/orders?status=pending&status=Confirmed&tableNumber=4", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	want := []order.Status{order.StatusPending, order.StatusAccepted}
	if len(orders.query.Statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", orders.query.Statuses, want)
	}
	for i := range want {
		if orders.query.Statuses[i] != want[i] {
			t.Errorf("statuses[%d] = %q, want %q", i, orders.query.Statuses[i], want[i])
		}
	}
	if len(orders.query.TableNumbers) != 1 || orders.query.TableNumbers[0] != 4 {
		t.Errorf("table numbers = %v", orders.query.TableNumbers)
	}
}

func TestUpdateStatusMapsServiceErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: order.ErrInvalidStatusTransition, want: http.StatusConflict},
		{err: order.ErrNotFound, want: http.StatusNotFound},
		{err: order.ErrUnknownStatus, want: http.StatusBadRequest},
		{err: errors.New("connection reset"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h, orders, _ := newTestTransport("")
			orders.statusErr = tt.err

			w := do(h, http.MethodPatch, "/api/orders/1/status", `{"status":"paid"}`)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusInternalServerError && strings.Contains(w.Body.String(), "connection reset") {
				t.Errorf("internal error leaked: %s", w.Body.String())
			}
		})
	}
}

func TestUpdateItemsEmptyListReportsDeletion(t *testing.T) {
	h, orders, _ := newTestTransport("")

	w := do(h, http.MethodPatch, "/api/orders/5", `{"items":[]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if len(orders.itemUpdates) != 0 {
		t.Errorf("item updates = %v", orders.itemUpdates)
	}

	var got struct {
		OrderID int64 `json:"orderId"`
		Deleted bool  `json:"deleted"`
	}
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.OrderID != 5 || !got.Deleted {
		t.Errorf("response = %+v", got)
	}
}

func TestUpdateItemsPassesPrices(t *testing.T) {
	h, orders, _ := newTestTransport("")

	w := do(h, http.MethodPatch, "/api/orders/5",
		`{"items":[{"menu_item_id":1,"quantity":3,"price":"4.50","note":"extra spicy"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if len(orders.itemUpdates) != 1 {
		t.Fatalf("item updates = %v", orders.itemUpdates)
	}
	got := orders.itemUpdates[0]
	if !got.Price.Equal(decimal.RequireFromString("4.50")) || got.Quantity != 3 || got.Note == nil {
		t.Errorf("item update = %+v", got)
	}
}

func TestMergeRoutePassesIDs(t *testing.T) {
	h, orders, _ := newTestTransport("")
	orders.mergeErr = order.ErrInvalidMerge

	w := do(h, http.MethodPost, "/api/orders/3/merge/8", "")
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if orders.merged != [2]int64{3, 8} {
		t.Errorf("merged = %v", orders.merged)
	}
}

func TestMenuRoutes(t *testing.T) {
	h, _, menu := newTestTransport("")

	if w := do(h, http.MethodGet, "/api/menu/category/2?includeUnavailable=true", ""); w.Code != http.StatusOK {
		t.Fatalf("list by category status = %d", w.Code)
	}
	if menu.query.CategoryID == nil || *menu.query.CategoryID != 2 || !menu.query.IncludeUnavailable {
		t.Errorf("query = %+v", menu.query)
	}

	if w := do(h, http.MethodGet, "/api/menu/7", ""); w.Code != http.StatusNotFound {
		t.Errorf("get status = %d", w.Code)
	}
	if w := do(h, http.MethodPost, "/api/menu", `{"name":"Dal Makhani","price":"6.00"}`); w.Code != http.StatusCreated {
		t.Errorf("create status = %d", w.Code)
	}
	if w := do(h, http.MethodPost, "/api/menu", `{"price":"6.00"}`); w.Code != http.StatusBadRequest {
		t.Errorf("create without name status = %d", w.Code)
	}
	if w := do(h, http.MethodDelete, "/api/menu/7", ""); w.Code != http.StatusNoContent || menu.deleted != 7 {
		t.Errorf("delete status = %d, deleted = %d", w.Code, menu.deleted)
	}
	if w := do(h, http.MethodGet, "/api/categories", ""); w.Code != http.StatusOK {
		t.Errorf("categories status = %d", w.Code)
	}
	if w := do(h, http.MethodDelete, "/api/categories/1", ""); w.Code != http.StatusNotFound {
		t.Errorf("delete category status = %d", w.Code)
	}
}

func TestStaffRoutesRequireToken(t *testing.T) {
	const secret = "till-secret"
	h, _, _ := newTestTransport(secret)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "staff"}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if w := do(h, http.MethodPatch, "/api/orders/1/status", `{"status":"accepted"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("without token status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	if w := do(h, http.MethodPatch, "/api/orders/1/status", `{"status":"accepted"}`,
		"Authorization", "Bearer "+token); w.Code != http.StatusOK {
		t.Errorf("with token status = %d, want %d", w.Code, http.StatusOK)
	}
	if w := do(h, http.MethodPost, "/api/orders",
		`{"table_number":2,"items":[{"menu_item_id":1,"quantity":1}]}`); w.Code != http.StatusCreated {
		t.Errorf("diner create status = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestHealth(t *testing.T) {
	h, _, _ := newTestTransport("")
	if w := do(h, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}

	down := NewHTTPTransport(&fakeOrders{}, &fakeMenu{}, nil, fakeDB{err: errors.New("db down")})
	down.RegisterRoutes()
	if w := do(down, http.MethodGet, "/health", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}
