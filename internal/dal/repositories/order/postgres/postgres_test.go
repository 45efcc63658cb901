package postgresrepo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/M-505/mitra-da-dhaba-sg/internal/service/models/order"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type execConn struct {
	sql  string
	args []any
	tag  string
	err  error
}

var errNoQuery = errors.New("query not served")

func (c *execConn) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	c.sql = sql
	c.args = args

	return nil, errNoQuery
}

func (c *execConn) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	c.sql = sql
	c.args = args

	return errRow{err: c.err}
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error {
	if r.err != nil {
		return r.err
	}

	return pgx.ErrNoRows
}

func assertFragments(t *testing.T, sql string, fragments ...string) {
	t.Helper()

	for _, fragment := range fragments {
		if !strings.Contains(sql, fragment) {
			t.Errorf("query %q does not contain %q", sql, fragment)
		}
	}
}

func (c *execConn) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	c.sql = sql
	c.args = args

	return pgconn.NewCommandTag(c.tag), c.err
}

func TestUpdateStatusIsConditional(t *testing.T) {
	tests := []struct {
		name string
		tag  string
		want bool
	}{
		{name: "row updated", tag: "UPDATE 1", want: true},
		{name: "guard failed", tag: "UPDATE 0", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &execConn{tag: tt.tag}
			repo := NewPostgresOrderRepository(conn)

			ok, err := repo.UpdateStatus(context.Background(), 7, order.StatusPreparing,
				[]order.Status{order.StatusPending, order.StatusAccepted})
			if err != nil {
				t.Fatalf("UpdateStatus: %v", err)
			}
			if ok != tt.want {
				t.Errorf("updated = %v, want %v", ok, tt.want)
			}

			for _, fragment := range []string{"UPDATE orders", "parent_order_id IS NULL", "status IN ($"} {
				if !strings.Contains(conn.sql, fragment) {
					t.Errorf("query %q does not contain %q", conn.sql, fragment)
				}
			}
		})
	}
}

func TestMarkMergedGuardsChild(t *testing.T) {
	conn := &execConn{tag: "UPDATE 1"}
	repo := NewPostgresOrderRepository(conn)

	ok, err := repo.MarkMerged(context.Background(), 9, 3, order.MergeableChildStatuses(order.StatusAccepted))
	if err != nil {
		t.Fatalf("MarkMerged: %v", err)
	}
	if !ok {
		t.Fatal("expected the child to be marked")
	}
	if !strings.Contains(conn.sql, "parent_order_id IS NULL") {
		t.Errorf("query %q does not guard against already merged children", conn.sql)
	}
}

func TestUpdateStatusWrapsErrors(t *testing.T) {
	boom := errors.New("connection lost")
	repo := NewPostgresOrderRepository(&execConn{err: boom})

	_, err := repo.UpdateStatus(context.Background(), 1, order.StatusPaid, []order.Status{order.StatusCompleted})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}

func TestRecalculateTotalSumsItemRows(t *testing.T) {
	conn := &execConn{}
	repo := NewPostgresOrderRepository(conn)

	_, err := repo.RecalculateTotal(context.Background(), 5)
	if !errors.Is(err, order.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for a missing order", err)
	}

	assertFragments(t, conn.sql,
		"UPDATE orders",
		"COALESCE((SELECT SUM(price_at_time * quantity) FROM order_items WHERE order_id = $1), 0)",
		"RETURNING total_amount",
	)
	if len(conn.args) != 2 || conn.args[0] != int64(5) || conn.args[1] != int64(5) {
		t.Errorf("args = %v, want the order id for the sum and the row", conn.args)
	}
}

func TestLockByIDsLocksInIDOrder(t *testing.T) {
	conn := &execConn{}
	repo := NewPostgresOrderRepository(conn)

	if _, err := repo.LockByIDs(context.Background(), 9, 3); !errors.Is(err, errNoQuery) {
		t.Fatalf("err = %v, want %v", err, errNoQuery)
	}

	assertFragments(t, conn.sql, "FROM orders", "id IN ($1,$2)", "ORDER BY id ASC", "FOR UPDATE")
	if !strings.HasSuffix(conn.sql, "FOR UPDATE") {
		t.Errorf("query %q must end with FOR UPDATE", conn.sql)
	}
}
