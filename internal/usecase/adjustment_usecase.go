package usecase

import (
	"context"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"go.opentelemetry.io/otel/attribute"
)

// AdjustmentUseCase меняет остатки вместе с записью в журнал.
// Чтение, запись остатка и запись журнала выполняются в одной транзакции
// под блокировкой строки остатка, поэтому параллельные корректировки одной
// строки не теряют изменений.
type AdjustmentUseCase struct {
	inventoryRepo InventoryRepository
	ledger        *ledgerWriter
	txManager     TxManager
	logger        logger.Logger
}

func NewAdjustmentUC(
	inventoryRepo InventoryRepository,
	transactionRepo TransactionRepository,
	outboxRepo OutboxRepository,
	txManager TxManager,
	logger logger.Logger,
) *AdjustmentUseCase {
	return &AdjustmentUseCase{
		inventoryRepo: inventoryRepo,
		ledger: &ledgerWriter{
			transactionRepo: transactionRepo,
			outboxRepo:      outboxRepo,
		},
		txManager: txManager,
		logger:    logger,
	}
}

// AdjustByDelta прибавляет Delta к остатку с обрезкой до нуля.
// В журнал пишется фактическое изменение, и только если оно ненулевое.
func (a *AdjustmentUseCase) AdjustByDelta(ctx context.Context, req *AdjustQuantityReq) (*domain.Inventory, error) {
	const op = "AdjustmentUseCase.AdjustByDelta"

	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(
		attribute.Int64("inventory.id", req.InventoryID),
		attribute.Int("adjustment.delta", req.Delta),
	)

	if !domain.ChangeInRange(req.Delta) {
		return nil, e.Wrap(op, e.ErrChangeOutOfRange)
	}
	if err := validateReason(req.Reason); err != nil {
		return nil, e.Wrap(op, err)
	}

	reason := domain.DefaultAdjustmentReason
	if req.Reason != nil && !isBlank(*req.Reason) {
		reason = *req.Reason
	}

	var (
		updated      *domain.Inventory
		actualChange int
	)
	err := a.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := a.inventoryRepo.GetForUpdate(ctx, req.InventoryID)
		if err != nil {
			return err
		}

		var newQuantity int
		newQuantity, actualChange = domain.ApplyDelta(current.Quantity, req.Delta)
		if !domain.QuantityInRange(newQuantity) {
			return e.ErrQuantityOutOfRange
		}

		updated, err = a.inventoryRepo.SetQuantity(ctx, current.ID, newQuantity)
		if err != nil {
			return err
		}

		if !req.RecordTransaction || actualChange == 0 {
			return nil
		}

		_, err = a.ledger.record(ctx, domain.NewTransaction(current.ProductID, actualChange, &reason, req.PerformedBy))
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, failSpan(span, err))
	}

	span.SetAttributes(attribute.Int("adjustment.actual_change", actualChange))
	if actualChange != req.Delta {
		a.logger.Debugf("inventory %d: requested delta %d clamped to %d", req.InventoryID, req.Delta, actualChange)
	}

	return updated, nil
}

// SetAbsolute устанавливает остаток в NewQuantity. Причина обязательна.
// Запись журнала создаётся на разницу со старым значением, если она ненулевая.
func (a *AdjustmentUseCase) SetAbsolute(ctx context.Context, req *SetQuantityReq) (*domain.Inventory, error) {
	const op = "AdjustmentUseCase.SetAbsolute"

	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(
		attribute.Int64("inventory.id", req.InventoryID),
		attribute.Int("adjustment.new_quantity", req.NewQuantity),
	)

	if req.NewQuantity < 0 {
		return nil, e.Wrap(op, e.ErrNegativeQuantity)
	}
	if !domain.QuantityInRange(req.NewQuantity) {
		return nil, e.Wrap(op, e.ErrQuantityOutOfRange)
	}
	if isBlank(req.Reason) {
		return nil, e.Wrap(op, e.ErrReasonRequired)
	}
	if tooLong(req.Reason, maxReasonLength) {
		return nil, e.Wrap(op, e.Wrap("reason", e.ErrFieldTooLong))
	}

	var updated *domain.Inventory
	err := a.txManager.Do(ctx, func(ctx context.Context) error {
		current, err := a.inventoryRepo.GetForUpdate(ctx, req.InventoryID)
		if err != nil {
			return err
		}

		delta := req.NewQuantity - current.Quantity

		updated, err = a.inventoryRepo.SetQuantity(ctx, current.ID, req.NewQuantity)
		if err != nil {
			return err
		}

		if delta == 0 {
			return nil
		}

		reason := req.Reason
		_, err = a.ledger.record(ctx, domain.NewTransaction(current.ProductID, delta, &reason, req.PerformedBy))
		return err
	})
	if err != nil {
		return nil, e.Wrap(op, failSpan(span, err))
	}

	return updated, nil
}
