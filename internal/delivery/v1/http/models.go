package http

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
)

// REQUESTS

// CreateProductRequest — тело POST /products. Цена в рублях, не больше двух знаков после точки.
type CreateProductRequest struct {
	Name     string      `json:"name"`
	SKU      string      `json:"sku"`
	Category string      `json:"category"`
	Price    json.Number `json:"price" swaggertype:"string" example:"599.99"`
}

type UpdateProductRequest struct {
	Name     *string      `json:"name,omitempty"`
	SKU      *string      `json:"sku,omitempty"`
	Category *string      `json:"category,omitempty"`
	Price    *json.Number `json:"price,omitempty" swaggertype:"string" example:"599.99"`
}

type CreateInventoryRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Location  string `json:"location"`
}

type UpdateInventoryRequest struct {
	Quantity *int    `json:"quantity,omitempty"`
	Location *string `json:"location,omitempty"`
}

type CreateTransactionRequest struct {
	ProductID    int64   `json:"product_id"`
	ChangeAmount int     `json:"change_amount"`
	Reason       *string `json:"reason,omitempty"`
	PerformedBy  *int64  `json:"performed_by,omitempty"`
}

// UpdateTransactionRequest — change_amount принимается, но не сохраняется.
// Явный null в reason или performed_by очищает поле.
type UpdateTransactionRequest struct {
	ChangeAmount *int             `json:"change_amount,omitempty"`
	Reason       nullable[string] `json:"reason" swaggertype:"string"`
	PerformedBy  nullable[int64]  `json:"performed_by" swaggertype:"integer"`
}

// nullable отличает отсутствующее поле от явного null.
type nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// cleared сообщает, что клиент прислал null.
func (n nullable[T]) cleared() bool {
	return n.Set && n.Value == nil
}

// RESPONSES

type ProductResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Category  string    `json:"category"`
	Price     string    `json:"price" example:"599.99"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InventoryResponse struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Location  string    `json:"location"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InventoryWithProductResponse struct {
	InventoryResponse
	Product ProductResponse `json:"product"`
}

type TransactionResponse struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	ChangeAmount int       `json:"change_amount"`
	Reason       *string   `json:"reason"`
	PerformedBy  *int64    `json:"performed_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// TransactionWithProductResponse — product равен null, если товар уже удалён.
type TransactionWithProductResponse struct {
	TransactionResponse
	Product *ProductResponse `json:"product"`
}

type DeleteTransactionResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Warning     string              `json:"warning"`
}

type TransactionSummaryResponse struct {
	ProductID        int64 `json:"product_id"`
	TotalIn          int64 `json:"total_in"`
	TotalOut         int64 `json:"total_out"`
	NetChange        int64 `json:"net_change"`
	TransactionCount int64 `json:"transaction_count"`
}

type ExportLedgerResponse struct {
	Bucket      string `json:"bucket"`
	ObjectKey   string `json:"object_key"`
	ManifestKey string `json:"manifest_key"`
	Entries     int    `json:"entries"`
}

type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// MAPPERS

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		SKU:       p.SKU,
		Category:  p.Category,
		Price:     formatCents(p.Price),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toProductResponses(products []domain.Product) []ProductResponse {
	res := make([]ProductResponse, len(products))
	for i := range products {
		res[i] = toProductResponse(&products[i])
	}
	return res
}

func toInventoryResponse(inv *domain.Inventory) InventoryResponse {
	return InventoryResponse{
		ID:        inv.ID,
		ProductID: inv.ProductID,
		Quantity:  inv.Quantity,
		Location:  inv.Location,
		UpdatedAt: inv.UpdatedAt,
	}
}

func toInventoryResponses(items []domain.Inventory) []InventoryResponse {
	res := make([]InventoryResponse, len(items))
	for i := range items {
		res[i] = toInventoryResponse(&items[i])
	}
	return res
}

func toInventoryWithProductResponse(item *domain.InventoryWithProduct) InventoryWithProductResponse {
	return InventoryWithProductResponse{
		InventoryResponse: toInventoryResponse(&item.Inventory),
		Product:           toProductResponse(&item.Product),
	}
}

func toInventoryWithProductResponses(items []domain.InventoryWithProduct) []InventoryWithProductResponse {
	res := make([]InventoryWithProductResponse, len(items))
	for i := range items {
		res[i] = toInventoryWithProductResponse(&items[i])
	}
	return res
}

func toTransactionResponse(tx *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           tx.ID,
		ProductID:    tx.ProductID,
		ChangeAmount: tx.ChangeAmount,
		Reason:       tx.Reason,
		PerformedBy:  tx.PerformedBy,
		CreatedAt:    tx.CreatedAt,
	}
}

func toTransactionResponses(txs []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txs))
	for i := range txs {
		res[i] = toTransactionResponse(&txs[i])
	}
	return res
}

func toTransactionWithProductResponse(item *domain.TransactionWithProduct) TransactionWithProductResponse {
	res := TransactionWithProductResponse{TransactionResponse: toTransactionResponse(&item.Transaction)}
	if item.Product != nil {
		product := toProductResponse(item.Product)
		res.Product = &product
	}
	return res
}

func toSummaryResponse(s *domain.TransactionSummary) TransactionSummaryResponse {
	return TransactionSummaryResponse{
		ProductID:        s.ProductID,
		TotalIn:          s.TotalIn,
		TotalOut:         s.TotalOut,
		NetChange:        s.NetChange,
		TransactionCount: s.TransactionCount,
	}
}

func toExportResponse(res *usecase.ExportLedgerRes) ExportLedgerResponse {
	return ExportLedgerResponse{
		Bucket:      res.Bucket,
		ObjectKey:   res.ObjectKey,
		ManifestKey: res.ManifestKey,
		Entries:     res.Entries,
	}
}
