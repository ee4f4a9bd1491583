package tr

import (
	"context"
	"fmt"

	"github.com/DRSN-tech/inventory-backend/pkg/e"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type txKey struct{}

// Querier — общий набор методов pgx.Tx и pgxpool.Pool, которым пользуются репозитории.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithTx кладёт транзакцию в контекст
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromCtx извлекает объект транзакции (pgx.Tx) из контекста
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}
	return tx, nil
}

// QuerierFromCtx возвращает транзакцию из контекста, а если её нет — пул.
func QuerierFromCtx(ctx context.Context, pool Querier) Querier {
	if tx, err := TxFromCtx(ctx); err == nil {
		return tx
	}
	return pool
}

// Manager выполняет функцию в рамках одной транзакции PostgreSQL.
type Manager struct {
	db   transaction.Transactional
	opts pgx.TxOptions
}

func NewManager(db transaction.Transactional) *Manager {
	return &Manager{
		db:   db,
		opts: pgx.TxOptions{IsoLevel: pgx.ReadCommitted},
	}
}

// Do открывает транзакцию, передаёт её fn через контекст и коммитит при успехе.
// Если fn вернула ошибку или запаниковала, транзакция откатывается.
// Вложенный вызов переиспользует уже открытую транзакцию.
func (m *Manager) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	const op = "tr.Manager.Do"

	if _, txErr := TxFromCtx(ctx); txErr == nil {
		return fn(ctx)
	}

	ctx, tx, err := transaction.NewTransaction(ctx, m.opts, m.db)
	if err != nil {
		return e.Wrap(op, err)
	}

	pgxTx, ok := tx.Transaction().(pgx.Tx)
	if !ok {
		_ = tx.Rollback(ctx)
		return e.Wrap(op, fmt.Errorf("unexpected transaction type %T", tx.Transaction()))
	}

	defer func() {
		if p := recover(); p != nil {
			if tx.IsActive() {
				_ = tx.Rollback(ctx)
			}
			panic(p)
		}

		if err != nil && tx.IsActive() {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(WithTx(ctx, pgxTx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
