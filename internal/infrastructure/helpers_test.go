package infrastructure

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLedgerCSV(t *testing.T) {
	reason := "damaged, returned"
	by := int64(3)
	created := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	data, err := EncodeLedgerCSV([]domain.Transaction{
		{ID: 1, ProductID: 9, ChangeAmount: -2, Reason: &reason, PerformedBy: &by, CreatedAt: created},
		{ID: 2, ProductID: 9, ChangeAmount: 5, CreatedAt: created},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ledgerCSVHeader, records[0])
	assert.Equal(t, []string{"1", "9", "-2", "damaged, returned", "3", "2026-05-04T10:00:00Z"}, records[1])
	assert.Equal(t, []string{"2", "9", "5", "", "", "2026-05-04T10:00:00Z"}, records[2])
}

func TestEncodeLedgerCSV_Empty(t *testing.T) {
	data, err := EncodeLedgerCSV(nil)
	require.NoError(t, err)
	assert.Equal(t, "id,product_id,change_amount,reason,performed_by,created_at\n", string(data))
}
