package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/postgres"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/category"
	"github.com/jackc/pgx/v5"
)

// PostgresCategoryRepository represents a Postgres category repository.
type PostgresCategoryRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresCategoryRepository creates a new Postgres category repository.
func NewPostgresCategoryRepository(conn postgres.Conn) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// List returns categories in display order.
func (r *PostgresCategoryRepository) List(ctx context.Context) ([]category.Category, error) {
	sql, args, err := r.sb.
		Select("id", "name", "display_order").
		From("categories").
		OrderBy("display_order", "name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var result []category.Category
	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		result = append(result, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Insert creates a category.
func (r *PostgresCategoryRepository) Insert(ctx context.Context, c category.Category) (category.Category, error) {
	sql, args, err := r.sb.
		Insert("categories").
		Columns("name", "display_order").
		Values(c.Name, c.DisplayOrder).
		Suffix("RETURNING id, name, display_order").
		ToSql()
	if err != nil {
		return category.Category{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	var inserted category.Category
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&inserted.ID, &inserted.Name, &inserted.DisplayOrder); err != nil {
		return category.Category{}, fmt.Errorf("failed to insert category: %w", err)
	}

	return inserted, nil
}

// Update renames or reorders a category.
func (r *PostgresCategoryRepository) Update(ctx context.Context, c category.Category) (category.Category, error) {
	sql, args, err := r.sb.
		Update("categories").
		Set("name", c.Name).
		Set("display_order", c.DisplayOrder).
		Where(sq.Eq{"id": c.ID}).
		Suffix("RETURNING id, name, display_order").
		ToSql()
	if err != nil {
		return category.Category{}, fmt.Errorf("failed to build update query: %w", err)
	}

	var updated category.Category
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&updated.ID, &updated.Name, &updated.DisplayOrder); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return category.Category{}, category.ErrNotFound
		}

		return category.Category{}, fmt.Errorf("failed to update category: %w", err)
	}

	return updated, nil
}

// Delete removes a category. Its menu items keep existing without a category.
func (r *PostgresCategoryRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("categories").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return category.ErrNotFound
	}

	return nil
}
