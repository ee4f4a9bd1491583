package infrastructure

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
)

const (
	ContentTypeCSV  = "text/csv"
	ContentTypeJSON = "application/json"
)

var ledgerCSVHeader = []string{"id", "product_id", "change_amount", "reason", "performed_by", "created_at"}

// EncodeLedgerCSV сериализует записи журнала в CSV с заголовком.
// Пустые reason и performed_by выгружаются пустыми ячейками.
func EncodeLedgerCSV(entries []domain.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(ledgerCSVHeader); err != nil {
		return nil, err
	}

	for _, t := range entries {
		var reason, performedBy string
		if t.Reason != nil {
			reason = *t.Reason
		}
		if t.PerformedBy != nil {
			performedBy = strconv.FormatInt(*t.PerformedBy, 10)
		}

		record := []string{
			strconv.FormatInt(t.ID, 10),
			strconv.FormatInt(t.ProductID, 10),
			strconv.Itoa(t.ChangeAmount),
			reason,
			performedBy,
			t.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
