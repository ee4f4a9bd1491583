package converter

import "time"

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	SKU       string    `db:"sku"`
	Category  string    `db:"category"`
	Price     int64     `db:"price"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// InventoryModel представляет запись таблицы inventory в PostgreSQL.
type InventoryModel struct {
	ID        int64     `db:"id"`
	ProductID int64     `db:"product_id"`
	Quantity  int       `db:"quantity"`
	Location  string    `db:"location"`
	UpdatedAt time.Time `db:"updated_at"`
}

// TransactionModel представляет запись таблицы inventory_transactions в PostgreSQL.
type TransactionModel struct {
	ID           int64     `db:"id"`
	ProductID    int64     `db:"product_id"`
	ChangeAmount int       `db:"change_amount"`
	Reason       *string   `db:"reason"`
	PerformedBy  *int64    `db:"performed_by"`
	CreatedAt    time.Time `db:"created_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	ProductID   int64      `db:"product_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
