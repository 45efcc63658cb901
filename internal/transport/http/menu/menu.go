package menu

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/menuitem"
	"github.com/M-505/mitra-da-dhaba-sg/internal/transport/http/respond"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/shopspring/decimal"
)

type service interface {
	ListMenuItems(ctx context.Context, query menuitem.QueryMenuItemsModel) ([]menuitem.MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (menuitem.MenuItem, error)
	CreateMenuItem(ctx context.Context, item menuitem.MenuItem) (menuitem.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id int64, upd menuitem.Update) (menuitem.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) error
}

type createMenuItemRequest struct {
	Name        string          `json:"name"         validate:"required,max=255"`
	Description string          `json:"description"  validate:"max=2000"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  *int64          `json:"category_id"  validate:"omitempty,gt=0"`
	IsAvailable *bool           `json:"is_available"`
	ImageURL    *string         `json:"image_url"    validate:"omitempty,url"`
}

func (r *createMenuItemRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *createMenuItemRequest) ToModel() menuitem.MenuItem {
	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}

	return menuitem.MenuItem{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		CategoryID:  r.CategoryID,
		IsAvailable: available,
		ImageURL:    r.ImageURL,
	}
}

type updateMenuItemRequest struct {
	Name        *string          `json:"name"         validate:"omitempty,max=255"`
	Description *string          `json:"description"  validate:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *int64           `json:"category_id"  validate:"omitempty,gt=0"`
	IsAvailable *bool            `json:"is_available"`
	ImageURL    *string          `json:"image_url"    validate:"omitempty,url"`
}

func (r *updateMenuItemRequest) Validate() error {
	return validator.New().Struct(r)
}

func (r *updateMenuItemRequest) ToModel() menuitem.Update {
	return menuitem.Update{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		CategoryID:  r.CategoryID,
		IsAvailable: r.IsAvailable,
		ImageURL:    r.ImageURL,
	}
}

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}()

// ListMenu returns the menu. Unavailable dishes are hidden unless includeUnavailable is set.
func ListMenu(w http.ResponseWriter, r *http.Request, service service) {
	query := menuitem.QueryMenuItemsModel{}
	if err := decoder.Decode(&query, r.URL.Query()); err != nil {
		respond.BadRequest(w, r, err.Error())

		return
	}

	listMenu(w, r, service, query)
}

// ListMenuByCategory returns the dishes of one category.
func ListMenuByCategory(w http.ResponseWriter, r *http.Request, service service) {
	categoryID, err := respond.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, err, "listing menu")

		return
	}

	query := menuitem.QueryMenuItemsModel{}
	if err := decoder.Decode(&query, r.URL.Query()); err != nil {
		respond.BadRequest(w, r, err.Error())

		return
	}
	query.CategoryID = &categoryID

	listMenu(w, r, service, query)
}

func listMenu(w http.ResponseWriter, r *http.Request, service service, query menuitem.QueryMenuItemsModel) {
	items, err := service.ListMenuItems(r.Context(), query)
	if err != nil {
		respond.Error(w, r, err, "listing menu")

		return
	}

	respond.JSON(w, r, http.StatusOK, items)
}

func GetMenuItem(w http.ResponseWriter, r *http.Request, service service) {
	id, err := respond.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, err, "getting menu item")

		return
	}

	item, err := service.GetMenuItem(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err, "getting menu item")

		return
	}

	respond.JSON(w, r, http.StatusOK, item)
}

func CreateMenuItem(w http.ResponseWriter, r *http.Request, service service) {
	req := createMenuItemRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, r, "invalid request body")

		return
	}
	if err := req.Validate(); err != nil {
		respond.BadRequest(w, r, err.Error())

		return
	}

	created, err := service.CreateMenuItem(r.Context(), req.ToModel())
	if err != nil {
		respond.Error(w, r, err, "creating menu item")

		return
	}

	respond.JSON(w, r, http.StatusCreated, created)
}

// UpdateMenuItem applies a partial update. Omitted fields keep their value.
func UpdateMenuItem(w http.ResponseWriter, r *http.Request, service service) {
	id, err := respond.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, err, "updating menu item")

		return
	}

	req := updateMenuItemRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, r, "invalid request body")

		return
	}
	if err := req.Validate(); err != nil {
		respond.BadRequest(w, r, err.Error())

		return
	}

	updated, err := service.UpdateMenuItem(r.Context(), id, req.ToModel())
	if err != nil {
		respond.Error(w, r, err, "updating menu item")

		return
	}

	respond.JSON(w, r, http.StatusOK, updated)
}

func DeleteMenuItem(w http.ResponseWriter, r *http.Request, service service) {
	id, err := respond.IDParam(r, "id")
	if err != nil {
		respond.Error(w, r, err, "deleting menu item")

		return
	}

	if err := service.DeleteMenuItem(r.Context(), id); err != nil {
		respond.Error(w, r, err, "deleting menu item")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
