package pgdb

import (
	"context"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const transactionColumns = "id, product_id, change_amount, reason, performed_by, created_at"

// TransactionRepo хранит журнал движения остатков в inventory_transactions.
// Внешнего ключа на products нет: записи переживают удаление товара.
type TransactionRepo struct {
	pool *pgxpool.Pool
	conv converter.TransactionConverter
}

func NewTransactionRepo(pool *pgxpool.Pool, conv converter.TransactionConverter) *TransactionRepo {
	return &TransactionRepo{
		pool: pool,
		conv: conv,
	}
}

func (t *TransactionRepo) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	q := tr.QuerierFromCtx(ctx, t.pool)

	model := t.conv.ToModel(transaction)
	query := `
		INSERT INTO inventory_transactions (product_id, change_amount, reason, performed_by)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + transactionColumns

	var created converter.TransactionModel
	err := scanTransaction(q.QueryRow(ctx, query, model.ProductID, model.ChangeAmount, model.Reason, model.PerformedBy), &created)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return t.conv.ToEntity(&created), nil
}

func (t *TransactionRepo) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	q := tr.QuerierFromCtx(ctx, t.pool)

	var model converter.TransactionModel
	err := scanTransaction(q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM inventory_transactions WHERE id = $1`, id), &model)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), notFound(err, e.ErrLedgerEntryNotFound))
	}

	return t.conv.ToEntity(&model), nil
}

// List возвращает записи по фильтрам (AND), новые первыми.
func (t *TransactionRepo) List(ctx context.Context, filter domain.TransactionFilter, page domain.Pagination) ([]domain.Transaction, error) {
	var where whereBuilder
	if filter.ProductID != nil {
		where.add("product_id = $%d", *filter.ProductID)
	}
	if filter.PerformedBy != nil {
		where.add("performed_by = $%d", *filter.PerformedBy)
	}
	if filter.Reason != nil {
		where.addLike("reason", *filter.Reason)
	}
	limit, args := where.page(page.Limit, page.Skip)

	query := `SELECT ` + transactionColumns + ` FROM inventory_transactions` + where.sql() +
		` ORDER BY created_at DESC, id DESC` + limit

	return t.query(ctx, query, args...)
}

// ListByProduct возвращает весь журнал товара в хронологическом порядке.
func (t *TransactionRepo) ListByProduct(ctx context.Context, productID int64) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM inventory_transactions
		WHERE product_id = $1
		ORDER BY created_at, id`

	return t.query(ctx, query, productID)
}

func (t *TransactionRepo) query(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	q := tr.QuerierFromCtx(ctx, t.pool)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	models := make([]*converter.TransactionModel, 0)
	for rows.Next() {
		var model converter.TransactionModel
		if err := scanTransaction(rows, &model); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		models = append(models, &model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return t.conv.ToArrEntity(models), nil
}

// Update меняет только reason и performed_by. change_amount в запросе отсутствует.
func (t *TransactionRepo) Update(ctx context.Context, id int64, correction domain.TransactionCorrection) (*domain.Transaction, error) {
	q := tr.QuerierFromCtx(ctx, t.pool)

	query := `
		UPDATE inventory_transactions SET
			reason = CASE WHEN $4 THEN NULL ELSE COALESCE($2, reason) END,
			performed_by = CASE WHEN $5 THEN NULL ELSE COALESCE($3, performed_by) END
		WHERE id = $1
		RETURNING ` + transactionColumns

	row := q.QueryRow(ctx, query, id, correction.Reason, correction.PerformedBy, correction.ClearReason, correction.ClearPerformedBy)

	var model converter.TransactionModel
	if err := scanTransaction(row, &model); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), notFound(err, e.ErrLedgerEntryNotFound))
	}

	return t.conv.ToEntity(&model), nil
}

func (t *TransactionRepo) Delete(ctx context.Context, id int64) (*domain.Transaction, error) {
	q := tr.QuerierFromCtx(ctx, t.pool)

	var model converter.TransactionModel
	err := scanTransaction(q.QueryRow(ctx, `DELETE FROM inventory_transactions WHERE id = $1 RETURNING `+transactionColumns, id), &model)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), notFound(err, e.ErrLedgerEntryNotFound))
	}

	return t.conv.ToEntity(&model), nil
}

// Summarize агрегирует журнал товара на стороне БД. Пустой журнал даёт нули.
func (t *TransactionRepo) Summarize(ctx context.Context, productID int64) (*domain.TransactionSummary, error) {
	q := tr.QuerierFromCtx(ctx, t.pool)

	query := `
		SELECT
			COALESCE(SUM(CASE WHEN change_amount > 0 THEN change_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN change_amount < 0 THEN -change_amount ELSE 0 END), 0),
			COUNT(*)
		FROM inventory_transactions
		WHERE product_id = $1
	`

	var totalIn, totalOut, count int64
	if err := q.QueryRow(ctx, query, productID).Scan(&totalIn, &totalOut, &count); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return domain.NewTransactionSummary(productID, totalIn, totalOut, count), nil
}

func scanTransaction(row rowScanner, m *converter.TransactionModel) error {
	return row.Scan(&m.ID, &m.ProductID, &m.ChangeAmount, &m.Reason, &m.PerformedBy, &m.CreatedAt)
}
