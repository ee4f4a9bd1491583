package usecase

import (
	"context"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter, page domain.Pagination) ([]domain.Product, error)
	Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type InventoryRepository interface {
	Create(ctx context.Context, inventory *domain.Inventory) (*domain.Inventory, error)
	GetByID(ctx context.Context, id int64) (*domain.Inventory, error)
	// GetForUpdate блокирует строку до конца текущей транзакции
	GetForUpdate(ctx context.Context, id int64) (*domain.Inventory, error)
	GetWithProduct(ctx context.Context, id int64) (*domain.InventoryWithProduct, error)
	List(ctx context.Context, filter domain.InventoryFilter, page domain.Pagination) ([]domain.Inventory, error)
	ListLowStock(ctx context.Context, threshold int, page domain.Pagination) ([]domain.InventoryWithProduct, error)
	Update(ctx context.Context, id int64, patch domain.InventoryPatch) (*domain.Inventory, error)
	SetQuantity(ctx context.Context, id int64, quantity int) (*domain.Inventory, error)
	Delete(ctx context.Context, id int64) error
}

type TransactionRepository interface {
	Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error)
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter, page domain.Pagination) ([]domain.Transaction, error)
	ListByProduct(ctx context.Context, productID int64) ([]domain.Transaction, error)
	Update(ctx context.Context, id int64, correction domain.TransactionCorrection) (*domain.Transaction, error)
	// Delete удаляет запись и возвращает её последнее состояние
	Delete(ctx context.Context, id int64) (*domain.Transaction, error)
	Summarize(ctx context.Context, productID int64) (*domain.TransactionSummary, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	ReleaseProcessing(ctx context.Context, id int64) error
	// ReleaseStale возвращает в очередь события, зависшие в processing
	ReleaseStale(ctx context.Context, olderThanSeconds int) (int64, error)
}

type CacheRepository interface {
	GetProducts(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
	SetProducts(ctx context.Context, products []domain.Product) error
	DeleteProducts(ctx context.Context, ids []int64) error
}

type ObjectRepository interface {
	Upload(ctx context.Context, object *domain.Object) (string, error)
	Delete(ctx context.Context, key string) error
}
