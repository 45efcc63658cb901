package icategoryrepo

import (
	"context"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/category"
)

// ICategoryRepository is an interface for category postgres repository.
type ICategoryRepository interface {
	List(ctx context.Context) ([]category.Category, error)
	Insert(ctx context.Context, c category.Category) (category.Category, error)
	Update(ctx context.Context, c category.Category) (category.Category, error)
	Delete(ctx context.Context, id int64) error
}
