package converter

import (
	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter interface {
	ToModel(entity *domain.Product) *ProductModel
	ToEntity(model *ProductModel) *domain.Product
}

// InventoryConverter преобразует сущности Inventory между domain и моделью PostgreSQL.
type InventoryConverter interface {
	ToModel(entity *domain.Inventory) *InventoryModel
	ToEntity(model *InventoryModel) *domain.Inventory
}

// TransactionConverter преобразует записи журнала между domain и моделью PostgreSQL.
type TransactionConverter interface {
	ToModel(entity *domain.Transaction) *TransactionModel
	ToEntity(model *TransactionModel) *domain.Transaction
	ToArrEntity(models []*TransactionModel) []domain.Transaction
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type ProductConverterImpl struct{}

func NewProductConverterImpl() *ProductConverterImpl { return &ProductConverterImpl{} }

func (ProductConverterImpl) ToModel(entity *domain.Product) *ProductModel {
	if entity == nil {
		return nil
	}
	return &ProductModel{
		ID:        entity.ID,
		Name:      entity.Name,
		SKU:       entity.SKU,
		Category:  entity.Category,
		Price:     entity.Price,
		CreatedAt: entity.CreatedAt,
		UpdatedAt: entity.UpdatedAt,
	}
}

func (ProductConverterImpl) ToEntity(model *ProductModel) *domain.Product {
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

type InventoryConverterImpl struct{}

func NewInventoryConverterImpl() *InventoryConverterImpl { return &InventoryConverterImpl{} }

func (InventoryConverterImpl) ToModel(entity *domain.Inventory) *InventoryModel {
	if entity == nil {
		return nil
	}
	return &InventoryModel{
		ID:        entity.ID,
		ProductID: entity.ProductID,
		Quantity:  entity.Quantity,
		Location:  entity.Location,
		UpdatedAt: entity.UpdatedAt,
	}
}

func (InventoryConverterImpl) ToEntity(model *InventoryModel) *domain.Inventory {
	if model == nil {
		return nil
	}
	return &domain.Inventory{
		ID:        model.ID,
		ProductID: model.ProductID,
		Quantity:  model.Quantity,
		Location:  model.Location,
		UpdatedAt: model.UpdatedAt,
	}
}

type TransactionConverterImpl struct{}

func NewTransactionConverterImpl() *TransactionConverterImpl { return &TransactionConverterImpl{} }

func (TransactionConverterImpl) ToModel(entity *domain.Transaction) *TransactionModel {
	if entity == nil {
		return nil
	}
	return &TransactionModel{
		ID:           entity.ID,
		ProductID:    entity.ProductID,
		ChangeAmount: entity.ChangeAmount,
		Reason:       entity.Reason,
		PerformedBy:  entity.PerformedBy,
		CreatedAt:    entity.CreatedAt,
	}
}

func (TransactionConverterImpl) ToEntity(model *TransactionModel) *domain.Transaction {
	if model == nil {
		return nil
	}
	return &domain.Transaction{
		ID:           model.ID,
		ProductID:    model.ProductID,
		ChangeAmount: model.ChangeAmount,
		Reason:       model.Reason,
		PerformedBy:  model.PerformedBy,
		CreatedAt:    model.CreatedAt,
	}
}

func (c TransactionConverterImpl) ToArrEntity(models []*TransactionModel) []domain.Transaction {
	res := make([]domain.Transaction, 0, len(models))
	for _, m := range models {
		res = append(res, *c.ToEntity(m))
	}
	return res
}

type OutboxEventConverterImpl struct{}

func NewOutboxEventConverterImpl() *OutboxEventConverterImpl { return &OutboxEventConverterImpl{} }

func (OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	if entity == nil {
		return nil
	}
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		ProductID:   entity.ProductID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	if model == nil {
		return nil
	}
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		ProductID:   model.ProductID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverterImpl) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	res := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		res = append(res, c.ToEntity(m))
	}
	return res
}
