package uow

import (
	"context"
	"errors"

	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/interfaces/imenurepo"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/interfaces/iorderitemrepo"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/interfaces/iorderrepo"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/interfaces/istatuslogrepo"
	"github.com/M-505/mitra-da-dhaba-sg/internal/dal/postgres"
	menurepo "github.com/M-505/mitra-da-dhaba-sg/internal/dal/repositories/menu/postgres"
	orderrepo "github.com/M-505/mitra-da-dhaba-sg/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/M-505/mitra-da-dhaba-sg/internal/dal/repositories/orderitem/postgres"
	statuslogrepo "github.com/M-505/mitra-da-dhaba-sg/internal/dal/repositories/statuslog/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnitOfWork groups repositories that share one transaction once Begin is called.
// Before Begin the repositories run on the pool.
type UnitOfWork struct {
	pool          *pgxpool.Pool
	tx            pgx.Tx
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	menuRepo      imenurepo.IMenuRepository
	statusLogRepo istatuslogrepo.IStatusLogRepository
}

func (u *UnitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *UnitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *UnitOfWork) MenuRepository() imenurepo.IMenuRepository {
	return u.menuRepo
}

func (u *UnitOfWork) StatusLogRepository() istatuslogrepo.IStatusLogRepository {
	return u.statusLogRepo
}

// NewUnitOfWork creates a unit of work bound to the client's pool.
func NewUnitOfWork(db *postgres.Client) *UnitOfWork {
	u := &UnitOfWork{pool: db.Pool()}
	u.bind(db.Pool())

	return u
}

func (u *UnitOfWork) bind(conn postgres.Conn) {
	u.orderRepo = orderrepo.NewPostgresOrderRepository(conn)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(conn)
	u.menuRepo = menurepo.NewPostgresMenuRepository(conn)
	u.statusLogRepo = statuslogrepo.NewPostgresStatusLogRepository(conn)
}

// Begin starts a transaction and rebinds every repository to it.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.bind(tx)

	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

// Rollback aborts the transaction. Calling it after Commit is a no-op.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}

	return err
}
