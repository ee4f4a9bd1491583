package usecase

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/google/uuid"
)

// PRODUCT USECASE

// CreateProductReq — запрос на добавление товара в каталог.
type CreateProductReq struct {
	Name     string
	SKU      string
	Category string
	Price    int64
}

// UpdateProductReq — частичное обновление товара.
type UpdateProductReq struct {
	Name     *string
	SKU      *string
	Category *string
	Price    *int64
}

type ListProductsReq struct {
	Filter domain.ProductFilter
	Page   domain.Pagination
}

// INVENTORY USECASE

type CreateInventoryReq struct {
	ProductID int64
	Quantity  int
	Location  string
}

type UpdateInventoryReq struct {
	Quantity *int
	Location *string
}

type ListInventoryReq struct {
	Filter domain.InventoryFilter
	Page   domain.Pagination
}

// LowStockReq — запрос остатков на уровне порога или ниже.
// Threshold == nil — порог из конфигурации.
type LowStockReq struct {
	Threshold *int
	Page      domain.Pagination
}

// ADJUSTMENT USECASE

// AdjustQuantityReq — изменение остатка на величину Delta.
type AdjustQuantityReq struct {
	InventoryID       int64
	Delta             int
	Reason            *string
	PerformedBy       *int64
	RecordTransaction bool
}

// SetQuantityReq — установка остатка в абсолютное значение. Reason обязателен.
type SetQuantityReq struct {
	InventoryID int64
	NewQuantity int
	Reason      string
	PerformedBy *int64
}

// TRANSACTION USECASE

type CreateTransactionReq struct {
	ProductID    int64
	ChangeAmount int
	Reason       *string
	PerformedBy  *int64
}

// UpdateTransactionReq принимает ChangeAmount, но это поле никогда не сохраняется.
// ClearReason и ClearPerformedBy сбрасывают поле в NULL.
type UpdateTransactionReq struct {
	ChangeAmount     *int
	Reason           *string
	PerformedBy      *int64
	ClearReason      bool
	ClearPerformedBy bool
}

type ListTransactionsReq struct {
	Filter domain.TransactionFilter
	Page   domain.Pagination
}

// DeleteTransactionRes — результат удаления записи журнала с предупреждением об аудите.
type DeleteTransactionRes struct {
	Transaction domain.Transaction
	Warning     string
}

// ExportLedgerRes — результат выгрузки журнала в объектное хранилище.
type ExportLedgerRes struct {
	Bucket      string
	ObjectKey   string // CSV с записями
	ManifestKey string // JSON со сводкой по выгрузке
	Entries     int
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	LedgerEntryRecorded  OutboxEventType = "ledger.entry_recorded"
	LedgerEntryCorrected OutboxEventType = "ledger.entry_corrected"
	LedgerEntryDeleted   OutboxEventType = "ledger.entry_deleted"
)

// OutboxEvent — событие журнала, которое публикуется в Kafka после коммита.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	ProductID   int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// LedgerEventPayload — тело события в топике.
type LedgerEventPayload struct {
	EventID       string          `json:"event_id"`
	EventType     OutboxEventType `json:"event_type"`
	TransactionID int64           `json:"transaction_id"`
	ProductID     int64           `json:"product_id"`
	ChangeAmount  int             `json:"change_amount"`
	Reason        *string         `json:"reason,omitempty"`
	PerformedBy   *int64          `json:"performed_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// WriteRawMessageReq — готовое событие outbox для отправки в топик.
// Ключ сообщения — ProductID, чтобы события одного товара шли в одну партицию.
type WriteRawMessageReq struct {
	ProductID int64
	EventID   string
	EventType OutboxEventType
	Payload   []byte
}

// MAPPERS

func NewLedgerOutboxEvent(eventType OutboxEventType, tx *domain.Transaction) (*OutboxEvent, error) {
	eventID := uuid.NewString()
	now := time.Now().UTC()

	payload, err := json.Marshal(LedgerEventPayload{
		EventID:       eventID,
		EventType:     eventType,
		TransactionID: tx.ID,
		ProductID:     tx.ProductID,
		ChangeAmount:  tx.ChangeAmount,
		Reason:        tx.Reason,
		PerformedBy:   tx.PerformedBy,
		CreatedAt:     tx.CreatedAt,
		OccurredAt:    now,
	})
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:   eventID,
		EventType: eventType,
		ProductID: tx.ProductID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: now,
	}, nil
}

func NewWriteRawMessageReq(event *OutboxEvent) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		ProductID: event.ProductID,
		EventID:   event.EventID,
		EventType: event.EventType,
		Payload:   event.Payload,
	}
}

func NewExportLedgerRes(bucket, key, manifestKey string, entries int) *ExportLedgerRes {
	return &ExportLedgerRes{
		Bucket:      bucket,
		ObjectKey:   key,
		ManifestKey: manifestKey,
		Entries:     entries,
	}
}

func NewAdjustQuantityReq(inventoryID int64, delta int, reason *string, performedBy *int64, record bool) *AdjustQuantityReq {
	return &AdjustQuantityReq{
		InventoryID:       inventoryID,
		Delta:             delta,
		Reason:            reason,
		PerformedBy:       performedBy,
		RecordTransaction: record,
	}
}

func NewSetQuantityReq(inventoryID int64, newQuantity int, reason string, performedBy *int64) *SetQuantityReq {
	return &SetQuantityReq{
		InventoryID: inventoryID,
		NewQuantity: newQuantity,
		Reason:      reason,
		PerformedBy: performedBy,
	}
}
