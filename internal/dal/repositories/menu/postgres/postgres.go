package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/postgres"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/category"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/menuitem"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

var menuColumns = []string{
	"mi.id",
	"mi.name",
	"mi.description",
	"mi.price",
	"mi.category_id",
	"c.name",
	"mi.is_available",
	"mi.image_url",
	"mi.created_at",
}

// MenuItemDal represents menu item data access layer model.
type MenuItemDal struct {
	Id           int64           `db:"id"`
	Name         string          `db:"name"`
	Description  string          `db:"description"`
	Price        decimal.Decimal `db:"price"`
	CategoryId   *int64          `db:"category_id"`
	CategoryName pgtype.Text     `db:"category_name"`
	IsAvailable  bool            `db:"is_available"`
	ImageUrl     *string         `db:"image_url"`
	CreatedAt    time.Time       `db:"created_at"`
}

// ToModel converts MenuItemDal to service layer MenuItem model.
func (m *MenuItemDal) ToModel() menuitem.MenuItem {
	return menuitem.MenuItem{
		ID:           m.Id,
		Name:         m.Name,
		Description:  m.Description,
		Price:        m.Price,
		CategoryID:   m.CategoryId,
		CategoryName: m.CategoryName.String,
		IsAvailable:  m.IsAvailable,
		ImageURL:     m.ImageUrl,
		CreatedAt:    m.CreatedAt,
	}
}

// PostgresMenuRepository represents a Postgres menu item repository.
type PostgresMenuRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresMenuRepository creates a new Postgres menu item repository.
func NewPostgresMenuRepository(conn postgres.Conn) *PostgresMenuRepository {
	return &PostgresMenuRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PostgresMenuRepository) selectBuilder() sq.SelectBuilder {
	return r.sb.
		Select(menuColumns...).
		From("menu_items mi").
		LeftJoin("categories c ON c.id = mi.category_id")
}

// Query lists menu items ordered by category display order and name.
func (r *PostgresMenuRepository) Query(
	ctx context.Context,
	filter *menuitem.QueryMenuItemsModel,
) ([]menuitem.MenuItem, error) {
	query := r.selectBuilder().OrderBy("c.display_order NULLS LAST", "mi.name")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"mi.id": filter.Ids})
	}

	if filter.CategoryID != nil {
		query = query.Where(sq.Eq{"mi.category_id": *filter.CategoryID})
	}

	if !filter.IncludeUnavailable {
		query = query.Where(sq.Eq{"mi.is_available": true})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var result []menuitem.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Get returns a single menu item regardless of availability.
func (r *PostgresMenuRepository) Get(ctx context.Context, id int64) (menuitem.MenuItem, error) {
	sql, args, err := r.selectBuilder().Where(sq.Eq{"mi.id": id}).ToSql()
	if err != nil {
		return menuitem.MenuItem{}, fmt.Errorf("failed to build query: %w", err)
	}

	return scanMenuItem(r.conn.QueryRow(ctx, sql, args...))
}

// Insert creates a menu item.
func (r *PostgresMenuRepository) Insert(ctx context.Context, item menuitem.MenuItem) (menuitem.MenuItem, error) {
	sql, args, err := r.sb.
		Insert("menu_items").
		Columns("name", "description", "price", "category_id", "is_available", "image_url").
		Values(item.Name, item.Description, item.Price, item.CategoryID, item.IsAvailable, item.ImageURL).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return menuitem.MenuItem{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	var id int64
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return menuitem.MenuItem{}, category.ErrNotFound
		}

		return menuitem.MenuItem{}, fmt.Errorf("failed to insert menu item: %w", err)
	}

	return r.Get(ctx, id)
}

// Update applies the non-nil fields of upd to the menu item.
func (r *PostgresMenuRepository) Update(
	ctx context.Context,
	id int64,
	upd menuitem.Update,
) (menuitem.MenuItem, error) {
	if upd.IsEmpty() {
		return r.Get(ctx, id)
	}

	query := r.sb.Update("menu_items").Where(sq.Eq{"id": id})

	if upd.Name != nil {
		query = query.Set("name", *upd.Name)
	}
	if upd.Description != nil {
		query = query.Set("description", *upd.Description)
	}
	if upd.Price != nil {
		query = query.Set("price", *upd.Price)
	}
	if upd.CategoryID != nil {
		query = query.Set("category_id", *upd.CategoryID)
	}
	if upd.IsAvailable != nil {
		query = query.Set("is_available", *upd.IsAvailable)
	}
	if upd.ImageURL != nil {
		query = query.Set("image_url", *upd.ImageURL)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return menuitem.MenuItem{}, fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return menuitem.MenuItem{}, category.ErrNotFound
		}

		return menuitem.MenuItem{}, fmt.Errorf("failed to update menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return menuitem.MenuItem{}, menuitem.ErrNotFound
	}

	return r.Get(ctx, id)
}

// Delete removes a menu item that no order refers to.
func (r *PostgresMenuRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("menu_items").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return menuitem.ErrInUse
		}

		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return menuitem.ErrNotFound
	}

	return nil
}

func scanMenuItem(row pgx.Row) (menuitem.MenuItem, error) {
	var dal MenuItemDal
	err := row.Scan(
		&dal.Id,
		&dal.Name,
		&dal.Description,
		&dal.Price,
		&dal.CategoryId,
		&dal.CategoryName,
		&dal.IsAvailable,
		&dal.ImageUrl,
		&dal.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return menuitem.MenuItem{}, menuitem.ErrNotFound
		}

		return menuitem.MenuItem{}, fmt.Errorf("failed to scan menu item: %w", err)
	}

	return dal.ToModel(), nil
}
