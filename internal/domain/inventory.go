package domain

import (
	"math"
	"time"
)

// Inventory описывает запись об остатке товара в конкретной локации
type Inventory struct {
	ID        int64
	ProductID int64
	Quantity  int
	Location  string
	UpdatedAt time.Time
}

func NewInventory(productID int64, quantity int, location string) *Inventory {
	return &Inventory{
		ProductID: productID,
		Quantity:  ClampQuantity(quantity),
		Location:  location,
	}
}

// InventoryWithProduct содержит остаток вместе с товаром, к которому он относится
type InventoryWithProduct struct {
	Inventory Inventory
	Product   Product
}

// InventoryPatch описывает частичное обновление остатка
type InventoryPatch struct {
	Quantity *int
	Location *string
}

// InventoryFilter задаёт фильтры списка остатков
type InventoryFilter struct {
	Location  *string
	ProductID *int64
}

// Границы совпадают с колонками INTEGER в inventory и inventory_transactions.
const (
	MaxQuantity     = math.MaxInt32
	MinChangeAmount = math.MinInt32
	MaxChangeAmount = math.MaxInt32
)

// QuantityInRange сообщает, помещается ли количество в колонку quantity.
// Отрицательные значения допустимы: их обрезает ClampQuantity.
func QuantityInRange(q int) bool {
	return q <= MaxQuantity
}

// ChangeInRange сообщает, помещается ли изменение в колонку change_amount.
func ChangeInRange(c int) bool {
	return c >= MinChangeAmount && c <= MaxChangeAmount
}

// ClampQuantity не даёт остатку уйти в минус: всё, что меньше нуля, становится нулём.
func ClampQuantity(q int) int {
	if q < 0 {
		return 0
	}
	return q
}

// ApplyDelta возвращает новый остаток и фактическое изменение после обрезки до нуля.
// При переполнении int сумма насыщается, а не заворачивается.
func ApplyDelta(current, delta int) (newQuantity, actualChange int) {
	sum := current + delta
	switch {
	case delta > 0 && sum < current:
		sum = math.MaxInt
	case delta < 0 && sum > current:
		sum = math.MinInt
	}
	newQuantity = ClampQuantity(sum)
	return newQuantity, newQuantity - current
}
