package usecase

import (
	"context"
	"errors"

	"github.com/DRSN-tech/inventory-backend/internal/cfg"
	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
)

// ledgerWriter пишет запись журнала и событие outbox в текущей транзакции.
type ledgerWriter struct {
	transactionRepo TransactionRepository
	outboxRepo      OutboxRepository
}

func (w *ledgerWriter) record(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	created, err := w.transactionRepo.Create(ctx, tx)
	if err != nil {
		return nil, err
	}

	if err := w.publish(ctx, LedgerEntryRecorded, created); err != nil {
		return nil, err
	}

	return created, nil
}

func (w *ledgerWriter) publish(ctx context.Context, eventType OutboxEventType, tx *domain.Transaction) error {
	event, err := NewLedgerOutboxEvent(eventType, tx)
	if err != nil {
		return err
	}

	_, err = w.outboxRepo.Create(ctx, event)
	return err
}

// TransactionUseCase — журнал движения остатков.
// Существование товара при добавлении записи не проверяется.
type TransactionUseCase struct {
	ledger          *ledgerWriter
	transactionRepo TransactionRepository
	catalog         ProductCatalog
	txManager       TxManager
	exportInfra     LedgerExportInfra // nil, если выгрузка выключена
	cfg             *cfg.InventoryCfg
	logger          logger.Logger
}

func NewTransactionUC(
	transactionRepo TransactionRepository,
	outboxRepo OutboxRepository,
	catalog ProductCatalog,
	txManager TxManager,
	exportInfra LedgerExportInfra,
	cfg *cfg.InventoryCfg,
	logger logger.Logger,
) *TransactionUseCase {
	return &TransactionUseCase{
		ledger: &ledgerWriter{
			transactionRepo: transactionRepo,
			outboxRepo:      outboxRepo,
		},
		transactionRepo: transactionRepo,
		catalog:         catalog,
		txManager:       txManager,
		exportInfra:     exportInfra,
		cfg:             cfg,
		logger:          logger,
	}
}

// AppendTransaction добавляет запись в журнал.
func (t *TransactionUseCase) AppendTransaction(ctx context.Context, req *CreateTransactionReq) (*domain.Transaction, error) {
	const op = "TransactionUseCase.AppendTransaction"

	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(
		attribute.Int64("product.id", req.ProductID),
		attribute.Int("ledger.change_amount", req.ChangeAmount),
	)

	if !domain.ChangeInRange(req.ChangeAmount) {
		return nil, e.Wrap(op, e.ErrChangeOutOfRange)
	}
	if err := validateReason(req.Reason); err != nil {
		return nil, e.Wrap(op, err)
	}

	var created *domain.Transaction
	err := t.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		created, err = t.ledger.record(ctx, domain.NewTransaction(req.ProductID, req.ChangeAmount, req.Reason, req.PerformedBy))
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, failSpan(span, err))
	}

	return created, nil
}

// GetTransaction возвращает запись журнала и товар, если он ещё существует.
func (t *TransactionUseCase) GetTransaction(ctx context.Context, id int64) (*domain.TransactionWithProduct, error) {
	const op = "TransactionUseCase.GetTransaction"

	tx, err := t.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res := &domain.TransactionWithProduct{Transaction: *tx}

	product, err := t.catalog.GetProduct(ctx, tx.ProductID)
	switch {
	case err == nil:
		res.Product = product
	case errors.Is(err, e.ErrProductNotFound):
		// журнал может ссылаться на удалённый товар
	default:
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// ListTransactions возвращает записи журнала, новые первыми.
func (t *TransactionUseCase) ListTransactions(ctx context.Context, req *ListTransactionsReq) ([]domain.Transaction, error) {
	const op = "TransactionUseCase.ListTransactions"

	if err := validatePage(req.Page, t.cfg.MaxLimit); err != nil {
		return nil, e.Wrap(op, err)
	}

	txs, err := t.transactionRepo.List(ctx, req.Filter, req.Page)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return txs, nil
}

// UpdateTransaction исправляет причину и исполнителя. ChangeAmount из запроса
// отбрасывается до обращения к хранилищу.
func (t *TransactionUseCase) UpdateTransaction(ctx context.Context, id int64, req *UpdateTransactionReq) (*domain.Transaction, error) {
	const op = "TransactionUseCase.UpdateTransaction"

	if req.ChangeAmount != nil {
		t.logger.Warnf("%s: change_amount update ignored for transaction %d", op, id)
	}

	if err := validateReason(req.Reason); err != nil {
		return nil, e.Wrap(op, err)
	}

	correction := domain.TransactionCorrection{
		Reason:           req.Reason,
		PerformedBy:      req.PerformedBy,
		ClearReason:      req.ClearReason,
		ClearPerformedBy: req.ClearPerformedBy,
	}

	if correction.Empty() {
		tx, err := t.transactionRepo.GetByID(ctx, id)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		return tx, nil
	}

	var updated *domain.Transaction
	err := t.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		updated, err = t.transactionRepo.Update(ctx, id, correction)
		if err != nil {
			return err
		}
		return t.ledger.publish(ctx, LedgerEntryCorrected, updated)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return updated, nil
}

// DeleteTransaction удаляет запись безусловно и возвращает предупреждение об аудите.
func (t *TransactionUseCase) DeleteTransaction(ctx context.Context, id int64) (*DeleteTransactionRes, error) {
	const op = "TransactionUseCase.DeleteTransaction"

	var deleted *domain.Transaction
	err := t.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		deleted, err = t.transactionRepo.Delete(ctx, id)
		if err != nil {
			return err
		}
		return t.ledger.publish(ctx, LedgerEntryDeleted, deleted)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	t.logger.Warnf("transaction %d deleted (product_id=%d): %s", id, deleted.ProductID, domain.AuditWarning)

	return &DeleteTransactionRes{
		Transaction: *deleted,
		Warning:     domain.AuditWarning,
	}, nil
}

// Summarize возвращает сводку по товару. Для товара без записей — нули, не ошибка.
func (t *TransactionUseCase) Summarize(ctx context.Context, productID int64) (*domain.TransactionSummary, error) {
	const op = "TransactionUseCase.Summarize"

	summary, err := t.transactionRepo.Summarize(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return summary, nil
}

// ExportLedger выгружает весь журнал товара в объектное хранилище.
func (t *TransactionUseCase) ExportLedger(ctx context.Context, productID int64) (*ExportLedgerRes, error) {
	const op = "TransactionUseCase.ExportLedger"

	if t.exportInfra == nil {
		return nil, e.Wrap(op, e.ErrExportDisabled)
	}

	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", productID))

	entries, err := t.transactionRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, failSpan(span, err))
	}

	res, err := t.exportInfra.ExportLedger(ctx, productID, entries)
	if err != nil {
		return nil, e.Wrap(op, failSpan(span, err))
	}

	t.logger.Infof("ledger exported: product_id=%d entries=%d key=%s", productID, res.Entries, res.ObjectKey)
	return res, nil
}
