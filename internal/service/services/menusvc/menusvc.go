package menusvc

import (
	"context"
	"strings"

	"github.com/M-505/mitra-da-dhaba-sg/internal/broadcast"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/interfaces/icategoryrepo"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/interfaces/imenurepo"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/postgres"
	categoryrepo "github.com/M-505/mitra-da-dhaba-sg/internal/dal/repositories/category/postgres"
	menurepo "github.com/M-505/mitra-da-dhaba-sg/internal/dal/repositories/menu/postgres"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/category"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/menuitem"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
)

// MenuService manages the menu catalog and its categories.
type MenuService struct {
	menuRepo     imenurepo.IMenuRepository
	categoryRepo icategoryrepo.ICategoryRepository
	publisher    broadcast.Publisher
}

type menuUpdatedPayload struct {
	MenuItemID int64 `json:"menuItemId,omitempty"`
	CategoryID int64 `json:"categoryId,omitempty"`
	Deleted    bool  `json:"deleted,omitempty"`
}

// option is a function that configures the MenuService.
type option func(*MenuService)

// MustNewMenuService creates a new MenuService.
func MustNewMenuService(opts ...option) *MenuService {
	s := &MenuService{publisher: broadcast.Nop{}}
	for _, opt := range opts {
		opt(s)
	}

	if s.menuRepo == nil || s.categoryRepo == nil {
		panic("menusvc: postgres client is required")
	}

	return s
}

// WithPostgresClient sets the Postgres client for the MenuService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *MenuService) {
		s.menuRepo = menurepo.NewPostgresMenuRepository(pgClient.Pool())
		s.categoryRepo = categoryrepo.NewPostgresCategoryRepository(pgClient.Pool())
	}
}

// WithPublisher sets where menu change notifications are sent.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPublisher(p broadcast.Publisher) option {
	return func(s *MenuService) {
		s.publisher = p
	}
}

// ListMenuItems returns the menu, by default only what can be ordered right now.
func (s *MenuService) ListMenuItems(ctx context.Context, query menuitem.QueryMenuItemsModel) ([]menuitem.MenuItem, error) {
	items, err := s.menuRepo.Query(ctx, &query)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []menuitem.MenuItem{}
	}

	return items, nil
}

func (s *MenuService) GetMenuItem(ctx context.Context, id int64) (menuitem.MenuItem, error) {
	return s.menuRepo.Get(ctx, id)
}

func (s *MenuService) CreateMenuItem(ctx context.Context, item menuitem.MenuItem) (menuitem.MenuItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return menuitem.MenuItem{}, order.ValidationError{Field: "name", Message: "is required"}
	}
	if item.Price.IsNegative() {
		return menuitem.MenuItem{}, order.ValidationError{Field: "price", Message: "must not be negative"}
	}

	created, err := s.menuRepo.Insert(ctx, item)
	if err != nil {
		return menuitem.MenuItem{}, err
	}

	s.notify(ctx, menuUpdatedPayload{MenuItemID: created.ID})

	return created, nil
}

// UpdateMenuItem changes only the fields set in upd.
func (s *MenuService) UpdateMenuItem(ctx context.Context, id int64, upd menuitem.Update) (menuitem.MenuItem, error) {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return menuitem.MenuItem{}, order.ValidationError{Field: "name", Message: "must not be empty"}
	}
	if upd.Price != nil && upd.Price.IsNegative() {
		return menuitem.MenuItem{}, order.ValidationError{Field: "price", Message: "must not be negative"}
	}

	updated, err := s.menuRepo.Update(ctx, id, upd)
	if err != nil {
		return menuitem.MenuItem{}, err
	}

	if !upd.IsEmpty() {
		s.notify(ctx, menuUpdatedPayload{MenuItemID: id})
	}

	return updated, nil
}

func (s *MenuService) DeleteMenuItem(ctx context.Context, id int64) error {
	if err := s.menuRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.notify(ctx, menuUpdatedPayload{MenuItemID: id, Deleted: true})

	return nil
}

func (s *MenuService) ListCategories(ctx context.Context) ([]category.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []category.Category{}
	}

	return categories, nil
}

func (s *MenuService) CreateCategory(ctx context.Context, c category.Category) (category.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return category.Category{}, order.ValidationError{Field: "name", Message: "is required"}
	}

	created, err := s.categoryRepo.Insert(ctx, c)
	if err != nil {
		return category.Category{}, err
	}

	s.notify(ctx, menuUpdatedPayload{CategoryID: created.ID})

	return created, nil
}

func (s *MenuService) UpdateCategory(ctx context.Context, c category.Category) (category.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return category.Category{}, order.ValidationError{Field: "name", Message: "is required"}
	}

	updated, err := s.categoryRepo.Update(ctx, c)
	if err != nil {
		return category.Category{}, err
	}

	s.notify(ctx, menuUpdatedPayload{CategoryID: updated.ID})

	return updated, nil
}

func (s *MenuService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.notify(ctx, menuUpdatedPayload{CategoryID: id, Deleted: true})

	return nil
}

func (s *MenuService) notify(ctx context.Context, payload menuUpdatedPayload) {
	s.publisher.Publish(ctx, broadcast.NewEvent(broadcast.EventMenuUpdated, payload))
}
