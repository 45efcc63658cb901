package category

import "errors"

var ErrNotFound = errors.New("category not found")

// Category groups menu items on the menu screen.
type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
}
