package menusvc

import (
	"context"
	"errors"
	"testing"

	"github.com/M-505/mitra-da-dhaba-sg/internal/broadcast"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/category"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/menuitem"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/shopspring/decimal"
)

type stubMenuRepo struct {
	items map[int64]menuitem.MenuItem
	next  int64
}

func (r *stubMenuRepo) Query(_ context.Context, f *menuitem.QueryMenuItemsModel) ([]menuitem.MenuItem, error) {
	var result []menuitem.MenuItem
	for _, m := range r.items {
		if f.CategoryID != nil && (m.CategoryID == nil || *m.CategoryID != *f.CategoryID) {
			continue
		}
		if !f.IncludeUnavailable && !m.IsAvailable {
			continue
		}
		result = append(result, m)
	}

	return result, nil
}

func (r *stubMenuRepo) Get(_ context.Context, id int64) (menuitem.MenuItem, error) {
	m, ok := r.items[id]
	if !ok {
		return menuitem.MenuItem{}, menuitem.ErrNotFound
	}

	return m, nil
}

func (r *stubMenuRepo) Insert(_ context.Context, item menuitem.MenuItem) (menuitem.MenuItem, error) {
	r.next++
	item.ID = r.next
	r.items[item.ID] = item

	return item, nil
}

func (r *stubMenuRepo) Update(_ context.Context, id int64, upd menuitem.Update) (menuitem.MenuItem, error) {
	m, ok := r.items[id]
	if !ok {
		return menuitem.MenuItem{}, menuitem.ErrNotFound
	}
	if upd.Name != nil {
		m.Name = *upd.Name
	}
	if upd.Price != nil {
		m.Price = *upd.Price
	}
	if upd.IsAvailable != nil {
		m.IsAvailable = *upd.IsAvailable
	}
	r.items[id] = m

	return m, nil
}

func (r *stubMenuRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return menuitem.ErrNotFound
	}
	delete(r.items, id)

	return nil
}

type stubCategoryRepo struct {
	categories []category.Category
}

func (r *stubCategoryRepo) List(context.Context) ([]category.Category, error) {
	return r.categories, nil
}

func (r *stubCategoryRepo) Insert(_ context.Context, c category.Category) (category.Category, error) {
	c.ID = int64(len(r.categories) + 1)
	r.categories = append(r.categories, c)

	return c, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, c category.Category) (category.Category, error) {
	for i := range r.categories {
		if r.categories[i].ID == c.ID {
			r.categories[i] = c

			return c, nil
		}
	}

	return category.Category{}, category.ErrNotFound
}

func (r *stubCategoryRepo) Delete(_ context.Context, id int64) error {
	for i := range r.categories {
		if r.categories[i].ID == id {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)

			return nil
		}
	}

	return category.ErrNotFound
}

type countingPublisher struct {
	events []broadcast.Event
}

func (p *countingPublisher) Publish(_ context.Context, e broadcast.Event) {
	p.events = append(p.events, e)
}

func newTestService() (*MenuService, *stubMenuRepo, *countingPublisher) {
	repo := &stubMenuRepo{items: make(map[int64]menuitem.MenuItem)}
	pub := &countingPublisher{}

	return &MenuService{
		menuRepo:     repo,
		categoryRepo: &stubCategoryRepo{},
		publisher:    pub,
	}, repo, pub
}

func TestCreateMenuItem(t *testing.T) {
	svc, _, pub := newTestService()

	created, err := svc.CreateMenuItem(context.Background(), menuitem.MenuItem{
		Name:        "  Paneer Tikka ",
		Price:       decimal.RequireFromString("8.50"),
		IsAvailable: true,
	})
	if err != nil {
		t.Fatalf("CreateMenuItem() error = %v", err)
	}
	if created.Name != "Paneer Tikka" || created.ID == 0 {
		t.Fatalf("created = %+v", created)
	}
	if len(pub.events) != 1 || pub.events[0].Type != broadcast.EventMenuUpdated {
		t.Fatalf("events = %+v", pub.events)
	}
}

func TestCreateMenuItemValidation(t *testing.T) {
	svc, _, pub := newTestService()

	tests := []menuitem.MenuItem{
		{Name: " ", Price: decimal.NewFromInt(1)},
		{Name: "Samosa", Price: decimal.NewFromInt(-1)},
	}
	for _, item := range tests {
		var vErr order.ValidationError
		if _, err := svc.CreateMenuItem(context.Background(), item); !errors.As(err, &vErr) {
			t.Fatalf("CreateMenuItem(%+v) error = %v, want ValidationError", item, err)
		}
	}
	if len(pub.events) != 0 {
		t.Fatal("event published for rejected input")
	}
}

func TestUpdateMenuItem(t *testing.T) {
	svc, repo, pub := newTestService()
	repo.items[1] = menuitem.MenuItem{ID: 1, Name: "Dal", Price: decimal.NewFromInt(4), IsAvailable: true}
	repo.next = 1

	unavailable := false
	got, err := svc.UpdateMenuItem(context.Background(), 1, menuitem.Update{IsAvailable: &unavailable})
	if err != nil {
		t.Fatalf("UpdateMenuItem() error = %v", err)
	}
	if got.IsAvailable || got.Name != "Dal" {
		t.Fatalf("updated = %+v", got)
	}
	if len(pub.events) != 1 {
		t.Fatalf("events = %d, want 1", len(pub.events))
	}

	listed, err := svc.ListMenuItems(context.Background(), menuitem.QueryMenuItemsModel{})
	if err != nil {
		t.Fatalf("ListMenuItems() error = %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("unavailable item listed: %+v", listed)
	}

	if _, err := svc.UpdateMenuItem(context.Background(), 9, menuitem.Update{IsAvailable: &unavailable}); !errors.Is(err, menuitem.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestDeleteMenuItem(t *testing.T) {
	svc, repo, pub := newTestService()
	repo.items[1] = menuitem.MenuItem{ID: 1, Name: "Dal"}

	if err := svc.DeleteMenuItem(context.Background(), 1); err != nil {
		t.Fatalf("DeleteMenuItem() error = %v", err)
	}
	if err := svc.DeleteMenuItem(context.Background(), 1); !errors.Is(err, menuitem.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if len(pub.events) != 1 {
		t.Fatalf("events = %d, want 1", len(pub.events))
	}
}

func TestCategories(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.CreateCategory(context.Background(), category.Category{Name: "Mains", DisplayOrder: 2})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}

	created.Name = "Curries"
	if _, err := svc.UpdateCategory(context.Background(), created); err != nil {
		t.Fatalf("UpdateCategory() error = %v", err)
	}

	list, err := svc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(list) != 1 || list[0].Name != "Curries" {
		t.Fatalf("categories = %+v", list)
	}

	if err := svc.DeleteCategory(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	if err := svc.DeleteCategory(context.Background(), created.ID); !errors.Is(err, category.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}

	var vErr order.ValidationError
	if _, err := svc.CreateCategory(context.Background(), category.Category{}); !errors.As(err, &vErr) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
}
