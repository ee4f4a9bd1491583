package usecase

import (
	"context"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
)

// TxManager выполняет fn в одной транзакции хранилища
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

type LedgerExportInfra interface {
	ExportLedger(ctx context.Context, productID int64, entries []domain.Transaction) (*ExportLedgerRes, error)
}
