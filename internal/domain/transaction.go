package domain

import "time"

const DefaultAdjustmentReason = "Quantity adjustment"

// AuditWarning сопровождает удаление записи журнала
const AuditWarning = "Audit trail integrity may be compromised"

// Transaction описывает запись журнала движения остатков.
// ChangeAmount после записи не меняется.
type Transaction struct {
	ID           int64
	ProductID    int64
	ChangeAmount int
	Reason       *string
	PerformedBy  *int64
	CreatedAt    time.Time
}

func NewTransaction(productID int64, changeAmount int, reason *string, performedBy *int64) *Transaction {
	return &Transaction{
		ProductID:    productID,
		ChangeAmount: changeAmount,
		Reason:       reason,
		PerformedBy:  performedBy,
	}
}

// TransactionWithProduct содержит запись журнала с товаром.
// Product может быть nil: журнал не ссылается на products внешним ключом.
type TransactionWithProduct struct {
	Transaction Transaction
	Product     *Product
}

// TransactionCorrection описывает исправление записи журнала.
// Изменить можно только причину и исполнителя.
// Clear* сбрасывает поле в NULL и имеет приоритет над значением.
type TransactionCorrection struct {
	Reason           *string
	PerformedBy      *int64
	ClearReason      bool
	ClearPerformedBy bool
}

// Empty сообщает, что исправление ничего не меняет.
func (c TransactionCorrection) Empty() bool {
	return c.Reason == nil && c.PerformedBy == nil && !c.ClearReason && !c.ClearPerformedBy
}

// TransactionFilter задаёт фильтры журнала, объединяются через AND
type TransactionFilter struct {
	ProductID   *int64
	PerformedBy *int64
	Reason      *string
}

// TransactionSummary содержит сводку движения по товару
type TransactionSummary struct {
	ProductID        int64
	TotalIn          int64
	TotalOut         int64
	NetChange        int64
	TransactionCount int64
}

func NewTransactionSummary(productID, totalIn, totalOut, count int64) *TransactionSummary {
	return &TransactionSummary{
		ProductID:        productID,
		TotalIn:          totalIn,
		TotalOut:         totalOut,
		NetChange:        totalIn - totalOut,
		TransactionCount: count,
	}
}

// Summarize считает сводку по набору записей одного товара.
func Summarize(productID int64, txs []Transaction) *TransactionSummary {
	var in, out int64
	for _, t := range txs {
		switch {
		case t.ChangeAmount > 0:
			in += int64(t.ChangeAmount)
		case t.ChangeAmount < 0:
			out += int64(-t.ChangeAmount)
		}
	}
	return NewTransactionSummary(productID, in, out, int64(len(txs)))
}
