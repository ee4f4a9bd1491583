package converter

import (
	"github.com/DRSN-tech/inventory-backend/internal/domain"
)

type ProductConverter interface {
	ToRedisModel(entity *domain.Product) *ProductRedisModel
	ToEntity(model *ProductRedisModel) *domain.Product
	ToArrRedisModel(entities []domain.Product) []ProductRedisModel
}

type ProductConverterImpl struct{}

func NewProductConverterImpl() *ProductConverterImpl { return &ProductConverterImpl{} }

func (ProductConverterImpl) ToRedisModel(entity *domain.Product) *ProductRedisModel {
	if entity == nil {
		return nil
	}
	return &ProductRedisModel{
		ID:        entity.ID,
		Name:      entity.Name,
		SKU:       entity.SKU,
		Category:  entity.Category,
		Price:     entity.Price,
		CreatedAt: entity.CreatedAt,
		UpdatedAt: entity.UpdatedAt,
	}
}

func (ProductConverterImpl) ToEntity(model *ProductRedisModel) *domain.Product {
	if model == nil {
		return nil
	}
	return &domain.Product{
		ID:        model.ID,
		Name:      model.Name,
		SKU:       model.SKU,
		Category:  model.Category,
		Price:     model.Price,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func (c ProductConverterImpl) ToArrRedisModel(entities []domain.Product) []ProductRedisModel {
	res := make([]ProductRedisModel, 0, len(entities))
	for i := range entities {
		res = append(res, *c.ToRedisModel(&entities[i]))
	}
	return res
}
