package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/postgres"
	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/jackc/pgx/v5/pgtype"
)

// PostgresStatusLogRepository represents a Postgres order status history repository.
type PostgresStatusLogRepository struct {
	conn postgres.Conn
	sb   sq.StatementBuilderType
}

// NewPostgresStatusLogRepository creates a new Postgres order status history repository.
func NewPostgresStatusLogRepository(conn postgres.Conn) *PostgresStatusLogRepository {
	return &PostgresStatusLogRepository{
		conn: conn,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert appends entries to the history. changed_at is assigned by the database.
func (r *PostgresStatusLogRepository) Insert(ctx context.Context, entries ...order.StatusLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := r.sb.
		Insert("order_status_log").
		Columns("order_id", "status", "note")

	for _, e := range entries {
		query = query.Values(e.OrderID, e.Status.String(), pgtype.Text{String: e.Note, Valid: e.Note != ""})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("failed to insert status log: %w", err)
	}

	return nil
}

// QueryByOrderID returns the history of an order, oldest first.
func (r *PostgresStatusLogRepository) QueryByOrderID(
	ctx context.Context,
	orderID int64,
) ([]order.StatusLogEntry, error) {
	sql, args, err := r.sb.
		Select("id", "order_id", "status", "note", "changed_at").
		From("order_status_log").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("changed_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query status log: %w", err)
	}
	defer rows.Close()

	var result []order.StatusLogEntry
	for rows.Next() {
		var (
			entry  order.StatusLogEntry
			status string
			note   pgtype.Text
		)
		if err := rows.Scan(&entry.ID, &entry.OrderID, &status, &note, &entry.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status log: %w", err)
		}
		entry.Status = order.Status(status)
		entry.Note = note.String
		result = append(result, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
