package menuitem

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("menu item not found")
	ErrInUse    = errors.New("menu item is referenced by orders")
)

// MenuItem is a dish offered by the restaurant.
type MenuItem struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	CategoryID   *int64          `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	IsAvailable  bool            `json:"is_available"`
	ImageURL     *string         `json:"image_url"`
	CreatedAt    time.Time       `json:"created_at"`
}

// QueryMenuItemsModel represents filter parameters for listing the menu.
type QueryMenuItemsModel struct {
	Ids                []int64 `schema:"-"`
	CategoryID         *int64  `schema:"categoryId"`
	IncludeUnavailable bool    `schema:"includeUnavailable"`
}

// Update lists the fields of a menu item that may be changed. Nil fields are left untouched.
type Update struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	CategoryID  *int64
	IsAvailable *bool
	ImageURL    *string
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil &&
		u.CategoryID == nil && u.IsAvailable == nil && u.ImageURL == nil
}
