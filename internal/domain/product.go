package domain

import "time"

// Product описывает товар каталога
type Product struct {
	ID        int64
	Name      string
	SKU       string
	Category  string
	Price     int64 // Цена хранится в копейках
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewProduct(name, sku, category string, price int64) *Product {
	return &Product{
		Name:     name,
		SKU:      sku,
		Category: category,
		Price:    price,
	}
}

// ProductPatch описывает частичное обновление товара. nil означает «не менять».
type ProductPatch struct {
	Name     *string
	SKU      *string
	Category *string
	Price    *int64
}

// ProductFilter задаёт фильтры поиска товаров (подстрока без учёта регистра).
type ProductFilter struct {
	Name     *string
	Category *string
}
