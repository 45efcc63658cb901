package order

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound                = errors.New("order not found")
	ErrMenuItemNotFound        = errors.New("menu item not found")
	ErrInvalidMerge            = errors.New("invalid merge")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrOrderClosed             = errors.New("order is closed")
	ErrUnknownStatus           = errors.New("unknown order status")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
