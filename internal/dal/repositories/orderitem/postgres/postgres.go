package postgresrepo

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/postgres"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/orderitem"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// OrderItemDal represents order item data access layer model.
type OrderItemDal struct {
	Id          int64           `db:"id"`
	OrderId     int64           `db:"order_id"`
	MenuItemId  int64           `db:"menu_item_id"`
	Name        pgtype.Text     `db:"name"`
	Quantity    int             `db:"quantity"`
	PriceAtTime decimal.Decimal `db:"price_at_time"`
	Note        *string         `db:"note"`
	CreatedAt   time.Time       `db:"created_at"`
}

// ToModel converts OrderItemDal to service layer OrderItem model.
func (oi *OrderItemDal) ToModel() *orderitem.OrderItem {
	return &orderitem.OrderItem{
		ID:         oi.Id,
		OrderID:    oi.OrderId,
		MenuItemID: oi.MenuItemId,
		Name:       oi.Name.String,
		Quantity:   oi.Quantity,
		Price:      oi.PriceAtTime,
		Note:       oi.Note,
		CreatedAt:  oi.CreatedAt,
	}
}

// OrderItemDalFromModel converts service layer OrderItem model to OrderItemDal.
func OrderItemDalFromModel(oi *orderitem.OrderItem) *OrderItemDal {
	return &OrderItemDal{
		Id:          oi.ID,
		OrderId:     oi.OrderID,
		MenuItemId:  oi.MenuItemID,
		Name:        pgtype.Text{String: oi.Name, Valid: oi.Name != ""},
		Quantity:    oi.Quantity,
		PriceAtTime: oi.Price,
		Note:        oi.Note,
		CreatedAt:   oi.CreatedAt,
	}
}

// PostgresOrderItemRepository represents a Postgres order item repository.
type PostgresOrderItemRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresOrderItemRepository creates a new Postgres order item repository.
func NewPostgresOrderItemRepository(conn postgres.Conn) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// BulkInsert inserts multiple order items and returns them with generated ids.
// Names are carried over from the input since they live in menu_items.
func (r *PostgresOrderItemRepository) BulkInsert(
	ctx context.Context,
	orderItems []orderitem.OrderItem,
) ([]orderitem.OrderItem, error) {
	if len(orderItems) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	query := r.sb.
		Insert("order_items").
		Columns("order_id", "menu_item_id", "quantity", "price_at_time", "note", "created_at").
		Suffix("RETURNING id, order_id, menu_item_id, quantity, price_at_time, note, created_at")

	for i := range orderItems {
		dal := OrderItemDalFromModel(&orderItems[i])
		query = query.Values(dal.OrderId, dal.MenuItemId, dal.Quantity, dal.PriceAtTime, dal.Note, dal.CreatedAt)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return nil, order.ErrMenuItemNotFound
		}

		return nil, fmt.Errorf("failed to bulk insert order items: %w", err)
	}
	defer rows.Close()

	result := make([]orderitem.OrderItem, 0, len(orderItems))
	i := 0
	for rows.Next() {
		var dal OrderItemDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.MenuItemId,
			&dal.Quantity,
			&dal.PriceAtTime,
			&dal.Note,
			&dal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		model := dal.ToModel()
		if i < len(orderItems) {
			model.Name = orderItems[i].Name
		}
		i++

		result = append(result, *model)
	}

	if err = rows.Err(); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return nil, order.ErrMenuItemNotFound
		}

		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Query retrieves order items based on filter criteria together with the menu item name.
func (r *PostgresOrderItemRepository) Query(
	ctx context.Context,
	filter *orderitem.QueryOrderItemsModel,
) ([]orderitem.OrderItem, error) {
	query := r.sb.
		Select(
			"oi.id",
			"oi.order_id",
			"oi.menu_item_id",
			"mi.name",
			"oi.quantity",
			"oi.price_at_time",
			"oi.note",
			"oi.created_at",
		).
		From("order_items oi").
		LeftJoin("menu_items mi ON mi.id = oi.menu_item_id").
		OrderBy("oi.id ASC")

	if len(filter.Ids) > 0 {
		query = query.Where(sq.Eq{"oi.id": filter.Ids})
	}

	if len(filter.OrderIds) > 0 {
		query = query.Where(sq.Eq{"oi.order_id": filter.OrderIds})
	}

	if len(filter.MenuItemIds) > 0 {
		query = query.Where(sq.Eq{"oi.menu_item_id": filter.MenuItemIds})
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

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var result []orderitem.OrderItem
	for rows.Next() {
		var dal OrderItemDal

		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.MenuItemId,
			&dal.Name,
			&dal.Quantity,
			&dal.PriceAtTime,
			&dal.Note,
			&dal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		result = append(result, *dal.ToModel())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// DeleteByOrderID removes every item of the order.
func (r *PostgresOrderItemRepository) DeleteByOrderID(ctx context.Context, orderID int64) error {
	sql, args, err := r.sb.
		Delete("order_items").
		Where(sq.Eq{"order_id": orderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}

	return nil
}

// MoveToOrder reassigns items of fromOrderID to toOrderID without copying them.
func (r *PostgresOrderItemRepository) MoveToOrder(ctx context.Context, fromOrderID, toOrderID int64) error {
	sql, args, err := r.sb.
		Update("order_items").
		Set("order_id", toOrderID).
		Where(sq.Eq{"order_id": fromOrderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build move query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to move order items: %w", err)
	}

	return nil
}
