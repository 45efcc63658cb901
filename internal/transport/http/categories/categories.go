package categories

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/category"
	"github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/respond"
	"github.com/go-playground/validator/v10"
)

type service interface {
	ListCategories(ctx context.Context) ([]category.Category, error)
	CreateCategory(ctx context.Context, c category.Category) (category.Category, error)
	UpdateCategory(ctx context.Context, c category.Category) (category.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type categoryRequest struct {
	Name         string `json:"name"          validate:"required,max=100"`
	DisplayOrder int    `json:"display_order" validate:"gte=0"`
}

func (r *categoryRequest) Validate() error {
	return validator.New().Struct(r)
}

func decodeCategory(w http.ResponseWriter, r *http.Request) (categoryRequest, bool) {
	req := categoryRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, r, "invalid request body")

		return req, false
	}
	if err := req.Validate(); err != nil {
		respond.BadRequest(w, r, err.Error())

		return req, false
	}

	return req, true
}

// ListCategories returns categories in display order.
func ListCategories(w http.ResponseWriter, r *http.Request, service service) {
	list, err := service.ListCategories(r.Context())
	if err != nil {
		respond.Error(w, r, err, "listing categories")

		return
	}

	respond.JSON(w, r, http.StatusOK, list)
}

func CreateCategory(w http.ResponseWriter, r *http.Request, service service) {
	req, ok := decodeCategory(w, r)
	if !ok {
		return
	}

	created, err := service.CreateCategory(r.Context(), category.Category{
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		respond.Error(w, r, err, "creating category")

		return
	}

	respond.JSON(w, r, http.StatusCreated, created)
}

func UpdateCategory(w http.ResponseWriter, r *http.Request, service service) {
	id, err := respond.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, err, "updating category")

		return
	}

	req, ok := decodeCategory(w, r)
	if !ok {
		return
	}

	updated, err := service.UpdateCategory(r.Context(), category.Category{
		ID:           id,
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		respond.Error(w, r, err, "updating category")

		return
	}

	respond.JSON(w, r, http.StatusOK, updated)
}

// DeleteCategory removes a category. Its dishes stay on the menu without a category.
func DeleteCategory(w http.ResponseWriter, r *http.Request, service service) {
	id, err := respond.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, err, "deleting category")

		return
	}

	if err := service.DeleteCategory(r.Context(), id); err != nil {
		respond.Error(w, r, err, "deleting category")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
