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

// ProductUseCase реализует каталог товаров: CRUD, поиск и проверку существования.
// Чтение по ID идёт через кэш, изменения кэш инвалидируют.
type ProductUseCase struct {
	productRepo ProductRepository
	cacheRepo   CacheRepository
	cfg         *cfg.InventoryCfg
	logger      logger.Logger
}

func NewProductUC(
	productRepo ProductRepository,
	cacheRepo CacheRepository,
	cfg *cfg.InventoryCfg,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		cacheRepo:   cacheRepo,
		cfg:         cfg,
		logger:      logger,
	}
}

// CreateProduct валидирует запрос и добавляет товар в каталог.
func (p *ProductUseCase) CreateProduct(ctx context.Context, req *CreateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.CreateProduct"

	if err := p.validateProduct(req); err != nil {
		return nil, e.Wrap(op, err)
	}

	product, err := p.productRepo.Create(ctx, domain.NewProduct(req.Name, req.SKU, req.Category, req.Price))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.logger.Infof("product created: id=%d sku=%s", product.ID, product.SKU)
	return product, nil
}

// GetProduct возвращает товар по ID, сначала заглядывая в кэш.
func (p *ProductUseCase) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "ProductUseCase.GetProduct"

	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", id))

	// Промах кэша или ошибка Redis не мешают чтению из БД
	cached, err := p.cacheRepo.GetProducts(ctx, []int64{id})
	if err != nil {
		p.logger.Warnf("product cache lookup failed: %v", e.Wrap(op, err))
	} else if product, ok := cached[id]; ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &product, nil
	}

	product, err := p.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, failSpan(span, err))
	}

	if err := p.cacheRepo.SetProducts(ctx, []domain.Product{*product}); err != nil {
		p.logger.Warnf("Failed to cache product: %v", e.Wrap(op, err))
	}

	return product, nil
}

// ListProducts ищет товары по подстроке имени и категории.
func (p *ProductUseCase) ListProducts(ctx context.Context, req *ListProductsReq) ([]domain.Product, error) {
	const op = "ProductUseCase.ListProducts"

	if err := validatePage(req.Page, p.cfg.MaxLimit); err != nil {
		return nil, e.Wrap(op, err)
	}

	products, err := p.productRepo.List(ctx, req.Filter, req.Page)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

// UpdateProduct применяет частичное обновление и сбрасывает кэш товара.
func (p *ProductUseCase) UpdateProduct(ctx context.Context, id int64, req *UpdateProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.UpdateProduct"

	if req.Name != nil && isBlank(*req.Name) {
		return nil, e.Wrap(op, e.ErrProductNameRequired)
	}
	if req.SKU != nil && isBlank(*req.SKU) {
		return nil, e.Wrap(op, e.ErrSKURequired)
	}
	if req.Price != nil && *req.Price < 0 {
		return nil, e.Wrap(op, e.ErrInvalidPrice)
	}

	product, err := p.productRepo.Update(ctx, id, domain.ProductPatch{
		Name:     req.Name,
		SKU:      req.SKU,
		Category: req.Category,
		Price:    req.Price,
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	p.invalidate(ctx, op, id)
	return product, nil
}

// DeleteProduct удаляет товар. Остатки удаляются каскадно, журнал остаётся.
func (p *ProductUseCase) DeleteProduct(ctx context.Context, id int64) error {
	const op = "ProductUseCase.DeleteProduct"

	if err := p.productRepo.Delete(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	p.invalidate(ctx, op, id)
	p.logger.Infof("product deleted: id=%d", id)
	return nil
}

// ProductExists проверяет, что товар с таким ID есть в каталоге.
// Читает из БД мимо кэша: после неудачной инвалидации кэш может помнить удалённый товар.
func (p *ProductUseCase) ProductExists(ctx context.Context, id int64) (bool, error) {
	const op = "ProductUseCase.ProductExists"

	_, err := p.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrProductNotFound) {
			return false, nil
		}
		return false, e.Wrap(op, err)
	}

	return true, nil
}

func (p *ProductUseCase) invalidate(ctx context.Context, op string, id int64) {
	if err := p.cacheRepo.DeleteProducts(ctx, []int64{id}); err != nil {
		p.logger.Warnf("Failed to delete products from cache: %v", e.Wrap(op, err))
	}
}

// validateProduct проверяет корректность входных данных запроса на добавление товара.
func (p *ProductUseCase) validateProduct(req *CreateProductReq) error {
	if isBlank(req.Name) {
		return e.ErrProductNameRequired
	}

	if isBlank(req.SKU) {
		return e.ErrSKURequired
	}

	if req.Price < 0 {
		return e.ErrInvalidPrice
	}

	return nil
}
