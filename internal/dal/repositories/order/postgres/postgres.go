package postgresrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/postgres"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/orderitem"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var orderColumns = []string{
	"id",
	"table_number",
	"status",
	"parent_order_id",
	"total_amount",
	"created_at",
	"updated_at",
}

// OrderDal represents order data access layer model.
type OrderDal struct {
	Id            int64           `db:"id"`
	TableNumber   int             `db:"table_number"`
	Status        string          `db:"status"`
	ParentOrderId *int64          `db:"parent_order_id"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// ToModel converts OrderDal to service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, fmt.Errorf("order %d: %w", o.Id, err)
	}

	return &order.Order{
		ID:            o.Id,
		TableNumber:   o.TableNumber,
		Status:        status,
		ParentOrderID: o.ParentOrderId,
		TotalAmount:   o.TotalAmount,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Items:         []orderitem.OrderItem{}, // Will be populated separately
	}, nil
}

// OrderDalFromModel converts service layer Order model to OrderDal.
func OrderDalFromModel(o *order.Order) *OrderDal {
	return &OrderDal{
		Id:            o.ID,
		TableNumber:   o.TableNumber,
		Status:        o.Status.String(),
		ParentOrderId: o.ParentOrderID,
		TotalAmount:   o.TotalAmount,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (o *OrderDal) scanTargets() []any {
	return []any{
		&o.Id,
		&o.TableNumber,
		&o.Status,
		&o.ParentOrderId,
		&o.TotalAmount,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}

// PostgresOrderRepository represents a Postgres order repository.
type PostgresOrderRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderRepository creates a new Postgres order repository.
func NewPostgresOrderRepository(conn postgres.Conn) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert stores a new order and returns it with the generated id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	dal := OrderDalFromModel(&o)

	sql, args, err := r.sb.
		Insert("orders").
		Columns("table_number", "status", "parent_order_id", "total_amount", "created_at", "updated_at").
		Values(dal.TableNumber, dal.Status, dal.ParentOrderId, dal.TotalAmount, dal.CreatedAt, dal.UpdatedAt).
		Suffix("RETURNING id, table_number, status, parent_order_id, total_amount, created_at, updated_at").
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	var inserted OrderDal
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(inserted.scanTargets()...); err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	model, err := inserted.ToModel()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to convert order dal to model: %w", err)
	}

	return *model, nil
}

// Query retrieves orders based on filter criteria, newest first.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	query := r.sb.
		Select(orderColumns...).
		From("orders").
		OrderBy("id DESC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"id": filter.Ids})
	}

	if len(filter.TableNumbers) > 0 {
		query = query.Where(sq.Eq{"table_number": filter.TableNumbers})
	}

	if len(filter.Statuses) > 0 {
		query = query.Where(sq.Eq{"status": order.Strings(filter.Statuses)})
	}

	if len(filter.ParentIds) > 0 {
		query = query.Where(sq.Eq{"parent_order_id": filter.ParentIds})
	}

	if filter.RootOnly {
		query = query.Where(sq.Eq{"parent_order_id": nil})
	}

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	return r.queryOrders(ctx, sql, args...)
}

// LockByIDs selects the given orders FOR UPDATE in ascending id order.
func (r *PostgresOrderRepository) LockByIDs(ctx context.Context, ids ...int64) ([]order.Order, error) {
	sql, args, err := r.sb.
		Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": ids}).
		OrderBy("id ASC").
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build lock query: %w", err)
	}

	return r.queryOrders(ctx, sql, args...)
}

// UpdateStatus sets status on a root order currently in one of allowedFrom.
func (r *PostgresOrderRepository) UpdateStatus(
	ctx context.Context,
	id int64,
	status order.Status,
	allowedFrom []order.Status,
) (bool, error) {
	sql, args, err := r.sb.
		Update("orders").
		Set("status", status.String()).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"parent_order_id": nil}).
		Where(sq.Eq{"status": order.Strings(allowedFrom)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// MarkMerged closes childID as merged into parentID.
func (r *PostgresOrderRepository) MarkMerged(
	ctx context.Context,
	childID, parentID int64,
	allowedChild []order.Status,
) (bool, error) {
	sql, args, err := r.sb.
		Update("orders").
		Set("status", order.StatusMerged.String()).
		Set("parent_order_id", parentID).
		Set("total_amount", decimal.Zero).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": childID}).
		Where(sq.Eq{"parent_order_id": nil}).
		Where(sq.Eq{"status": order.Strings(allowedChild)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build merge query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("failed to mark order merged: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// RecalculateTotal stores the sum of the order's item subtotals as its total.
func (r *PostgresOrderRepository) RecalculateTotal(ctx context.Context, id int64) (decimal.Decimal, error) {
	sql, args, err := r.sb.
		Update("orders").
		Set("total_amount", sq.Expr(
			"COALESCE((SELECT SUM(price_at_time * quantity) FROM order_items WHERE order_id = ?), 0)", id,
		)).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING total_amount").
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build total query: %w", err)
	}

	var total decimal.Decimal
	if err := r.conn.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, order.ErrNotFound
		}

		return decimal.Zero, fmt.Errorf("failed to recalculate order total: %w", err)
	}

	return total, nil
}

// Delete removes the order. Items, merged children and status history go with it.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.
		Delete("orders").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}

	return nil
}

func (r *PostgresOrderRepository) queryOrders(ctx context.Context, sql string, args ...any) ([]order.Order, error) {
	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		if err := rows.Scan(dal.scanTargets()...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
