package imenurepo

import (
	"context"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/menuitem"
)

// IMenuRepository is an interface for menu item postgres repository.
type IMenuRepository interface {
	Query(ctx context.Context, filter *menuitem.QueryMenuItemsModel) ([]menuitem.MenuItem, error)
	Get(ctx context.Context, id int64) (menuitem.MenuItem, error)
	Insert(ctx context.Context, item menuitem.MenuItem) (menuitem.MenuItem, error)
	Update(ctx context.Context, id int64, upd menuitem.Update) (menuitem.MenuItem, error)
	Delete(ctx context.Context, id int64) error
}
