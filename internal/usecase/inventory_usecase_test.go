package usecase

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInventory_ProductMustExist(t *testing.T) {
	env := newEnv()

	_, err := env.inventory.CreateInventory(context.Background(), &CreateInventoryReq{ProductID: 42, Quantity: 5, Location: "A1"})
	assert.ErrorIs(t, err, e.ErrProductDoesNotExist)
	assert.ErrorIs(t, err, e.ErrValidation)
}

func TestCreateInventory_ClampsNegative(t *testing.T) {
	env := newEnv()
	inv := seedStock(t, env, -7)
	assert.Equal(t, 0, inv.Quantity)
}

func TestCreateInventory_QuantityOutOfRange(t *testing.T) {
	ctx := context.Background()
	env := newEnv()
	p, err := env.products.CreateProduct(ctx, &CreateProductReq{Name: "A", SKU: "A"})
	require.NoError(t, err)

	for _, q := range []int{math.MaxInt32 + 1, math.MaxInt64} {
		_, err = env.inventory.CreateInventory(ctx, &CreateInventoryReq{ProductID: p.ID, Quantity: q, Location: "A1"})
		assert.ErrorIs(t, err, e.ErrQuantityOutOfRange)
		assert.ErrorIs(t, err, e.ErrValidation)
	}

	inv, err := env.inventory.CreateInventory(ctx, &CreateInventoryReq{ProductID: p.ID, Quantity: math.MinInt64, Location: "A1"})
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Quantity)
}

func TestUpdateInventory_QuantityOutOfRange(t *testing.T) {
	ctx := context.Background()
	env := newEnv()
	inv := seedStock(t, env, 4)

	_, err := env.inventory.UpdateInventory(ctx, inv.ID, &UpdateInventoryReq{Quantity: ptr(math.MaxInt32 + 1)})
	assert.ErrorIs(t, err, e.ErrQuantityOutOfRange)

	got, err := env.inventory.GetInventory(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Inventory.Quantity)
}

func TestCreateInventory_LocationTooLong(t *testing.T) {
	ctx := context.Background()
	env := newEnv()
	p, err := env.products.CreateProduct(ctx, &CreateProductReq{Name: "A", SKU: "A"})
	require.NoError(t, err)

	_, err = env.inventory.CreateInventory(ctx, &CreateInventoryReq{
		ProductID: p.ID,
		Location:  strings.Repeat("л", maxLocationLength+1),
	})
	assert.ErrorIs(t, err, e.ErrFieldTooLong)
}

func TestUpdateInventory_NoLedgerEntry(t *testing.T) {
	ctx := context.Background()
	env := newEnv()
	inv := seedStock(t, env, 10)

	res, err := env.inventory.UpdateInventory(ctx, inv.ID, &UpdateInventoryReq{Quantity: ptr(-3), Location: ptr("B2")})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Quantity)
	assert.Equal(t, "B2", res.Location)
	assert.Empty(t, env.db.ledger())

	_, err = env.inventory.UpdateInventory(ctx, 999, &UpdateInventoryReq{Location: ptr("C3")})
	assert.ErrorIs(t, err, e.ErrInventoryNotFound)
}

func TestGetInventory_WithProduct(t *testing.T) {
	ctx := context.Background()
	env := newEnv()
	inv := seedStock(t, env, 10)

	res, err := env.inventory.GetInventory(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", res.Product.Name)
	assert.Equal(t, 10, res.Inventory.Quantity)
}

func TestListLowStock(t *testing.T) {
	ctx := context.Background()
	env := newEnv()

	p, err := env.products.CreateProduct(ctx, &CreateProductReq{Name: "A", SKU: "A"})
	require.NoError(t, err)
	for _, q := range []int{0, 5, 10, 11, 50} {
		_, err := env.inventory.CreateInventory(ctx, &CreateInventoryReq{ProductID: p.ID, Quantity: q, Location: "A1"})
		require.NoError(t, err)
	}

	res, err := env.inventory.ListLowStock(ctx, &LowStockReq{Page: domain.NewPagination(0, 100)})
	require.NoError(t, err)
	require.Len(t, res, 3)
	for _, item := range res {
		assert.LessOrEqual(t, item.Inventory.Quantity, 10)
	}

	res, err = env.inventory.ListLowStock(ctx, &LowStockReq{Threshold: ptr(0), Page: domain.NewPagination(0, 100)})
	require.NoError(t, err)
	assert.Len(t, res, 1)

	_, err = env.inventory.ListLowStock(ctx, &LowStockReq{Threshold: ptr(-1), Page: domain.NewPagination(0, 100)})
	assert.ErrorIs(t, err, e.ErrInvalidThreshold)
}

func TestListInventory_Filters(t *testing.T) {
	ctx := context.Background()
	env := newEnv()
	inv := seedStock(t, env, 10)

	_, err := env.inventory.CreateInventory(ctx, &CreateInventoryReq{ProductID: inv.ProductID, Quantity: 1, Location: "Warehouse B"})
	require.NoError(t, err)

	res, err := env.inventory.ListInventory(ctx, &ListInventoryReq{
		Filter: domain.InventoryFilter{Location: ptr("warehouse")},
		Page:   domain.NewPagination(0, 100),
	})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Warehouse B", res[0].Location)

	res, err = env.inventory.ListInventory(ctx, &ListInventoryReq{
		Filter: domain.InventoryFilter{ProductID: ptr(inv.ProductID)},
		Page:   domain.NewPagination(0, 100),
	})
	require.NoError(t, err)
	assert.Len(t, res, 2)

	_, err = env.inventory.ListInventory(ctx, &ListInventoryReq{Page: domain.NewPagination(0, 0)})
	assert.ErrorIs(t, err, e.ErrInvalidPagination)
}

func TestDeleteInventory(t *testing.T) {
	ctx := context.Background()
	env := newEnv()
	inv := seedStock(t, env, 10)

	require.NoError(t, env.inventory.DeleteInventory(ctx, inv.ID))
	assert.ErrorIs(t, env.inventory.DeleteInventory(ctx, inv.ID), e.ErrInventoryNotFound)
}
