package usecase

import (
	"context"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
)

type ProductUC interface {
	CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, req *ListProductsReq) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *UpdateProductReq) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ProductExists(ctx context.Context, id int64) (bool, error)
}

type InventoryUC interface {
	CreateInventory(ctx context.Context, req *CreateInventoryReq) (*domain.Inventory, error)
	GetInventory(ctx context.Context, id int64) (*domain.InventoryWithProduct, error)
	ListInventory(ctx context.Context, req *ListInventoryReq) ([]domain.Inventory, error)
	ListLowStock(ctx context.Context, req *LowStockReq) ([]domain.InventoryWithProduct, error)
	UpdateInventory(ctx context.Context, id int64, req *UpdateInventoryReq) (*domain.Inventory, error)
	DeleteInventory(ctx context.Context, id int64) error
}

type AdjustmentUC interface {
	AdjustByDelta(ctx context.Context, req *AdjustQuantityReq) (*domain.Inventory, error)
	SetAbsolute(ctx context.Context, req *SetQuantityReq) (*domain.Inventory, error)
}

type TransactionUC interface {
	AppendTransaction(ctx context.Context, req *CreateTransactionReq) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (*domain.TransactionWithProduct, error)
	ListTransactions(ctx context.Context, req *ListTransactionsReq) ([]domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, req *UpdateTransactionReq) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) (*DeleteTransactionRes, error)
	Summarize(ctx context.Context, productID int64) (*domain.TransactionSummary, error)
	ExportLedger(ctx context.Context, productID int64) (*ExportLedgerRes, error)
}

// ProductCatalog — то, что остальным компонентам нужно от каталога.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ProductExists(ctx context.Context, id int64) (bool, error)
}
