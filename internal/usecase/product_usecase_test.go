package usecase

import (
	"context"
	"testing"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct_Validation(t *testing.T) {
	env := newEnv()

	testCases := []struct {
		name    string
		req     CreateProductReq
		wantErr error
	}{
		{name: "blank name", req: CreateProductReq{Name: " ", SKU: "A"}, wantErr: e.ErrProductNameRequired},
		{name: "blank sku", req: CreateProductReq{Name: "A", SKU: ""}, wantErr: e.ErrSKURequired},
		{name: "negative price", req: CreateProductReq{Name: "A", SKU: "A", Price: -1}, wantErr: e.ErrInvalidPrice},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.products.CreateProduct(context.Background(), &tc.req)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, e.ErrValidation)
		})
	}
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	ctx := context.Background()
	env := newEnv()

	_, err := env.products.CreateProduct(ctx, &CreateProductReq{Name: "A", SKU: "SKU-1"})
	require.NoError(t, err)

	_, err = env.products.CreateProduct(ctx, &CreateProductReq{Name: "B", SKU: "SKU-1"})
	assert.ErrorIs(t, err, e.ErrDuplicateSKU)
}

func TestGetProduct_ReadThroughCache(t *testing.T) {
	ctx := context.Background()
	env := newEnv()

	p, err := env.products.CreateProduct(ctx, &CreateProductReq{Name: "Widget", SKU: "W-1", Price: 100})
	require.NoError(t, err)

	_, err = env.products.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, env.cache.hits)

	got, err := env.products.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, env.cache.hits)
	assert.Equal(t, p.SKU, got.SKU)

	_, err = env.products.UpdateProduct(ctx, p.ID, &UpdateProductReq{Price: ptr(int64(250))})
	require.NoError(t, err)

	got, err = env.products.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(250), got.Price)
}

func TestGetProduct_CacheFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	env := newEnv()

	p, err := env.products.CreateProduct(ctx, &CreateProductReq{Name: "Widget", SKU: "W-1"})
	require.NoError(t, err)

	env.cache.failGets = true
	got, err := env.products.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestProductExists(t *testing.T) {
	ctx := context.Background()
	env := newEnv()

	p, err := env.products.CreateProduct(ctx, &CreateProductReq{Name: "Widget", SKU: "W-1"})
	require.NoError(t, err)

	ok, err := env.products.ProductExists(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.products.ProductExists(ctx, p.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProductExists_IgnoresStaleCache(t *testing.T) {
	ctx := context.Background()
	env := newEnv()

	p, err := env.products.CreateProduct(ctx, &CreateProductReq{Name: "Widget", SKU: "W-1"})
	require.NoError(t, err)
	_, err = env.products.GetProduct(ctx, p.ID)
	require.NoError(t, err)

	env.cache.failDeletes = true
	require.NoError(t, env.products.DeleteProduct(ctx, p.ID))

	ok, err := env.products.ProductExists(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = env.inventory.CreateInventory(ctx, &CreateInventoryReq{ProductID: p.ID, Quantity: 1, Location: "A1"})
	assert.ErrorIs(t, err, e.ErrProductDoesNotExist)
}

func TestDeleteProduct_CascadesInventoryKeepsLedger(t *testing.T) {
	ctx := context.Background()
	env := newEnv()
	inv := seedStock(t, env, 10)

	_, err := env.adjustment.AdjustByDelta(ctx, NewAdjustQuantityReq(inv.ID, 1, nil, nil, true))
	require.NoError(t, err)

	require.NoError(t, env.products.DeleteProduct(ctx, inv.ProductID))

	_, err = env.inventory.GetInventory(ctx, inv.ID)
	assert.ErrorIs(t, err, e.ErrInventoryNotFound)
	assert.Len(t, env.db.ledger(), 1)

	_, err = env.products.GetProduct(ctx, inv.ProductID)
	assert.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()
	env := newEnv()

	for _, req := range []CreateProductReq{
		{Name: "Red Hammer", SKU: "H-1", Category: "Tools"},
		{Name: "Blue hammer", SKU: "H-2", Category: "tools"},
		{Name: "Screw", SKU: "S-1", Category: "fasteners"},
	} {
		_, err := env.products.CreateProduct(ctx, &req)
		require.NoError(t, err)
	}

	res, err := env.products.ListProducts(ctx, &ListProductsReq{
		Filter: domain.ProductFilter{Name: ptr("HAMMER"), Category: ptr("tool")},
		Page:   domain.NewPagination(0, 10),
	})
	require.NoError(t, err)
	assert.Len(t, res, 2)

	res, err = env.products.ListProducts(ctx, &ListProductsReq{Page: domain.NewPagination(2, 10)})
	require.NoError(t, err)
	assert.Len(t, res, 1)

	_, err = env.products.ListProducts(ctx, &ListProductsReq{Page: domain.NewPagination(-1, 10)})
	assert.ErrorIs(t, err, e.ErrInvalidPagination)
}
