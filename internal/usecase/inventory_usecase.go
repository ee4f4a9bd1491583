package usecase

import (
	"context"

	"github.com/DRSN-tech/inventory-backend/internal/cfg"
	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
)

// InventoryUseCase — хранилище остатков. Записей в журнал не создаёт:
// изменения с аудитом идут через AdjustmentUseCase.
type InventoryUseCase struct {
	inventoryRepo InventoryRepository
	catalog       ProductCatalog
	cfg           *cfg.InventoryCfg
	logger        logger.Logger
}

func NewInventoryUC(
	inventoryRepo InventoryRepository,
	catalog ProductCatalog,
	cfg *cfg.InventoryCfg,
	logger logger.Logger,
) *InventoryUseCase {
	return &InventoryUseCase{
		inventoryRepo: inventoryRepo,
		catalog:       catalog,
		cfg:           cfg,
		logger:        logger,
	}
}

// CreateInventory заводит остаток для существующего товара.
// Отрицательное количество обрезается до нуля.
func (i *InventoryUseCase) CreateInventory(ctx context.Context, req *CreateInventoryReq) (*domain.Inventory, error) {
	const op = "InventoryUseCase.CreateInventory"

	if tooLong(req.Location, maxLocationLength) {
		return nil, e.Wrap(op, e.Wrap("location", e.ErrFieldTooLong))
	}
	if !domain.QuantityInRange(req.Quantity) {
		return nil, e.Wrap(op, e.ErrQuantityOutOfRange)
	}

	exists, err := i.catalog.ProductExists(ctx, req.ProductID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if !exists {
		return nil, e.Wrap(op, e.ErrProductDoesNotExist)
	}

	inventory, err := i.inventoryRepo.Create(ctx, domain.NewInventory(req.ProductID, req.Quantity, req.Location))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return inventory, nil
}

// GetInventory возвращает остаток вместе с товаром.
func (i *InventoryUseCase) GetInventory(ctx context.Context, id int64) (*domain.InventoryWithProduct, error) {
	const op = "InventoryUseCase.GetInventory"

	res, err := i.inventoryRepo.GetWithProduct(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// ListInventory возвращает остатки с фильтрами по локации и товару.
func (i *InventoryUseCase) ListInventory(ctx context.Context, req *ListInventoryReq) ([]domain.Inventory, error) {
	const op = "InventoryUseCase.ListInventory"

	if err := validatePage(req.Page, i.cfg.MaxLimit); err != nil {
		return nil, e.Wrap(op, err)
	}

	items, err := i.inventoryRepo.List(ctx, req.Filter, req.Page)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return items, nil
}

// ListLowStock возвращает остатки, количество которых не больше порога.
func (i *InventoryUseCase) ListLowStock(ctx context.Context, req *LowStockReq) ([]domain.InventoryWithProduct, error) {
	const op = "InventoryUseCase.ListLowStock"

	threshold := i.cfg.LowStockThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 {
		return nil, e.Wrap(op, e.ErrInvalidThreshold)
	}

	if err := validatePage(req.Page, i.cfg.MaxLimit); err != nil {
		return nil, e.Wrap(op, err)
	}

	items, err := i.inventoryRepo.ListLowStock(ctx, threshold, req.Page)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return items, nil
}

// UpdateInventory меняет количество и/или локацию без записи в журнал.
func (i *InventoryUseCase) UpdateInventory(ctx context.Context, id int64, req *UpdateInventoryReq) (*domain.Inventory, error) {
	const op = "InventoryUseCase.UpdateInventory"

	if req.Location != nil && tooLong(*req.Location, maxLocationLength) {
		return nil, e.Wrap(op, e.Wrap("location", e.ErrFieldTooLong))
	}

	patch := domain.InventoryPatch{Location: req.Location}
	if req.Quantity != nil {
		if !domain.QuantityInRange(*req.Quantity) {
			return nil, e.Wrap(op, e.ErrQuantityOutOfRange)
		}
		q := domain.ClampQuantity(*req.Quantity)
		patch.Quantity = &q
	}

	inventory, err := i.inventoryRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return inventory, nil
}

func (i *InventoryUseCase) DeleteInventory(ctx context.Context, id int64) error {
	const op = "InventoryUseCase.DeleteInventory"

	if err := i.inventoryRepo.Delete(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
