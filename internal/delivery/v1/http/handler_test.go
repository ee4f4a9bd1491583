package http

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductUC struct {
	created *usecase.CreateProductReq
	err     error
}

func (f *fakeProductUC) CreateProduct(_ context.Context, req *usecase.CreateProductReq) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = req
	return &domain.Product{ID: 1, Name: req.Name, SKU: req.SKU, Category: req.Category, Price: req.Price}, nil
}

func (f *fakeProductUC) GetProduct(context.Context, int64) (*domain.Product, error) {
	return nil, e.Wrap("ProductUseCase.GetProduct", e.ErrProductNotFound)
}

func (f *fakeProductUC) ListProducts(_ context.Context, req *usecase.ListProductsReq) ([]domain.Product, error) {
	if !req.Page.Valid(1000) {
		return nil, e.ErrInvalidPagination
	}
	return []domain.Product{}, nil
}

func (f *fakeProductUC) UpdateProduct(context.Context, int64, *usecase.UpdateProductReq) (*domain.Product, error) {
	return nil, f.err
}

func (f *fakeProductUC) DeleteProduct(context.Context, int64) error { return f.err }

func (f *fakeProductUC) ProductExists(context.Context, int64) (bool, error) { return true, nil }

type fakeInventoryUC struct {
	usecase.InventoryUC
	lowStock *usecase.LowStockReq
}

func (f *fakeInventoryUC) ListLowStock(_ context.Context, req *usecase.LowStockReq) ([]domain.InventoryWithProduct, error) {
	f.lowStock = req
	return []domain.InventoryWithProduct{{
		Inventory: domain.Inventory{ID: 3, ProductID: 1, Quantity: 2, Location: "A1"},
		Product:   domain.Product{ID: 1, Name: "Widget", Price: 1050},
	}}, nil
}

type fakeAdjustmentUC struct {
	adjust *usecase.AdjustQuantityReq
	set    *usecase.SetQuantityReq
	err    error
}

func (f *fakeAdjustmentUC) AdjustByDelta(_ context.Context, req *usecase.AdjustQuantityReq) (*domain.Inventory, error) {
	f.adjust = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Inventory{ID: req.InventoryID, Quantity: 5}, nil
}

func (f *fakeAdjustmentUC) SetAbsolute(_ context.Context, req *usecase.SetQuantityReq) (*domain.Inventory, error) {
	f.set = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Inventory{ID: req.InventoryID, Quantity: req.NewQuantity}, nil
}

type fakeTransactionUC struct {
	usecase.TransactionUC
	exportErr error
	updated   *usecase.UpdateTransactionReq
}

func (f *fakeTransactionUC) UpdateTransaction(_ context.Context, id int64, req *usecase.UpdateTransactionReq) (*domain.Transaction, error) {
	f.updated = req
	return &domain.Transaction{ID: id, ProductID: 9, ChangeAmount: 3, Reason: req.Reason, PerformedBy: req.PerformedBy}, nil
}

func (f *fakeTransactionUC) GetTransaction(_ context.Context, id int64) (*domain.TransactionWithProduct, error) {
	return &domain.TransactionWithProduct{Transaction: domain.Transaction{ID: id, ProductID: 9, ChangeAmount: -2}}, nil
}

func (f *fakeTransactionUC) DeleteTransaction(_ context.Context, id int64) (*usecase.DeleteTransactionRes, error) {
	return &usecase.DeleteTransactionRes{
		Transaction: domain.Transaction{ID: id, ProductID: 9, ChangeAmount: 4},
		Warning:     domain.AuditWarning,
	}, nil
}

func (f *fakeTransactionUC) Summarize(_ context.Context, productID int64) (*domain.TransactionSummary, error) {
	return domain.NewTransactionSummary(productID, 0, 0, 0), nil
}

func (f *fakeTransactionUC) ExportLedger(context.Context, int64) (*usecase.ExportLedgerRes, error) {
	return nil, f.exportErr
}

type fakeHealth struct{ err error }

func (f fakeHealth) Ping(context.Context) error { return f.err }

type testEnv struct {
	handler http.Handler
	product *fakeProductUC
	inv     *fakeInventoryUC
	adj     *fakeAdjustmentUC
	tx      *fakeTransactionUC
}

func newTestEnv(health HealthChecker) *testEnv {
	env := &testEnv{
		product: &fakeProductUC{},
		inv:     &fakeInventoryUC{},
		adj:     &fakeAdjustmentUC{},
		tx:      &fakeTransactionUC{},
	}

	mux := chi.NewRouter()
	NewRouter(mux, logger.NewNop(), "localhost:8080").Init(env.product, env.inv, env.adj, env.tx, health)
	env.handler = mux
	return env
}

func (env *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestToHTTPResponse(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		code int
	}{
		{name: "duplicate sku", err: e.Wrap("op", e.ErrDuplicateSKU), code: http.StatusConflict},
		{name: "not found", err: e.Wrap("op", e.ErrInventoryNotFound), code: http.StatusNotFound},
		{name: "validation", err: e.Wrap("op", e.ErrReasonRequired), code: http.StatusBadRequest},
		{name: "export disabled", err: e.Wrap("op", e.ErrExportDisabled), code: http.StatusNotImplemented},
		{name: "internal", err: errors.New("connection reset"), code: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, msg := ToHTTPResponse(tc.err)
			assert.Equal(t, tc.code, code)
			assert.NotContains(t, msg, "op:")
		})
	}
}

func TestParsePriceToCents(t *testing.T) {
	testCases := []struct {
		in      string
		want    int64
		wantErr error
	}{
		{in: "599.99", want: 59999},
		{in: "600", want: 60000},
		{in: "0.5", want: 50},
		{in: "1.100", want: 110},
		{in: "1.005", wantErr: e.ErrPricePrecision},
		{in: "-1", wantErr: e.ErrInvalidPrice},
		{in: "abc", wantErr: e.ErrInvalidPrice},
		{in: "", wantErr: e.ErrInvalidPrice},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parsePriceToCents(tc.in)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(http.MethodPost, "/api/v1/products", `{"name":"Widget","sku":"W-1","category":"tools","price":"12.50"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(1250), env.product.created.Price)
	res := decode[ProductResponse](t, rec)
	assert.Equal(t, "12.50", res.Price)
}

func TestCreateProduct_NumericPrice(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(http.MethodPost, "/api/v1/products", `{"name":"Widget","sku":"W-1","category":"tools","price":7}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(700), env.product.created.Price)
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	env := newTestEnv(nil)
	env.product.err = e.Wrap("ProductRepo.Create", e.ErrDuplicateSKU)

	rec := env.do(http.MethodPost, "/api/v1/products", `{"name":"Widget","sku":"W-1","category":"tools","price":"1"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, http.StatusConflict, decode[ErrorResponse](t, rec).Code)
}

func TestCreateProduct_UnknownField(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(http.MethodPost, "/api/v1/products", `{"name":"Widget","colour":"red"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProduct_NotFound(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(http.MethodGet, "/api/v1/products/42", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, e.ErrProductNotFound.Error(), decode[ErrorResponse](t, rec).Message)
}

func TestGetProduct_InvalidID(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(http.MethodGet, "/api/v1/products/abc", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListProducts_InvalidLimit(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(http.MethodGet, "/api/v1/products?limit=5000", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdjustQuantity_Defaults(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(http.MethodPatch, "/api/v1/inventory/3/adjust?quantity_change=-4", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.adj.adjust)
	assert.Equal(t, int64(3), env.adj.adjust.InventoryID)
	assert.Equal(t, -4, env.adj.adjust.Delta)
	assert.True(t, env.adj.adjust.RecordTransaction)
	assert.Nil(t, env.adj.adjust.Reason)
	assert.Nil(t, env.adj.adjust.PerformedBy)
}

func TestAdjustQuantity_AllParams(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(http.MethodPatch, "/api/v1/inventory/3/adjust?quantity_change=2&reason=restock&performed_by=7&create_transaction=false", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, env.adj.adjust.RecordTransaction)
	assert.Equal(t, "restock", *env.adj.adjust.Reason)
	assert.Equal(t, int64(7), *env.adj.adjust.PerformedBy)
}

func TestAdjustQuantity_MissingChange(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(http.MethodPatch, "/api/v1/inventory/3/adjust", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, env.adj.adjust)
}

func TestSetQuantity_ReasonRequired(t *testing.T) {
	env := newTestEnv(nil)
	env.adj.err = e.Wrap("AdjustmentUseCase.SetAbsolute", e.ErrReasonRequired)

	rec := env.do(http.MethodPut, "/api/v1/inventory/3/set-quantity?new_quantity=10", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, e.ErrReasonRequired.Error(), decode[ErrorResponse](t, rec).Message)
}

func TestListLowStock_DefaultThreshold(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(http.MethodGet, "/api/v1/inventory/low-stock", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, env.inv.lowStock.Threshold)
	assert.Equal(t, domain.NewPagination(0, 100), env.inv.lowStock.Page)

	res := decode[[]InventoryWithProductResponse](t, rec)
	require.Len(t, res, 1)
	assert.Equal(t, "10.50", res[0].Product.Price)
}

func TestGetTransaction_DeletedProduct(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(http.MethodGet, "/api/v1/transactions/5", "")

	require.Equal(t, http.StatusOK, rec.Code)
	raw := decode[map[string]any](t, rec)
	assert.Contains(t, raw, "product")
	assert.Nil(t, raw["product"])
}

func TestDeleteTransaction_Warning(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(http.MethodDelete, "/api/v1/transactions/5", "")

	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[DeleteTransactionResponse](t, rec)
	assert.Equal(t, domain.AuditWarning, res.Warning)
	assert.Equal(t, int64(5), res.Transaction.ID)
}

func TestSummary_UnknownProduct(t *testing.T) {
	env := newTestEnv(nil)

	rec := env.do(http.MethodGet, "/api/v1/transactions/summary/404", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, TransactionSummaryResponse{ProductID: 404}, decode[TransactionSummaryResponse](t, rec))
}

func TestExportLedger_Disabled(t *testing.T) {
	env := newTestEnv(nil)
	env.tx.exportErr = e.Wrap("TransactionUseCase.ExportLedger", e.ErrExportDisabled)

	rec := env.do(http.MethodPost, "/api/v1/transactions/export/1", "")

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHealthz(t *testing.T) {
	assert.Equal(t, http.StatusOK, newTestEnv(fakeHealth{}).do(http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable,
		newTestEnv(fakeHealth{err: context.DeadlineExceeded}).do(http.MethodGet, "/healthz", "").Code)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.05", formatCents(5))
	assert.Equal(t, "1234.00", formatCents(123400))
}

func TestPager_Parse(t *testing.T) {
	p := pager{defaultLimit: 25}

	page, err := p.parse(httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	require.NoError(t, err)
	assert.Equal(t, 0, page.Skip)
	assert.Equal(t, 25, page.Limit)

	page, err = p.parse(httptest.NewRequest(http.MethodGet, "/api/v1/products?skip=10&limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, 10, page.Skip)
	assert.Equal(t, 5, page.Limit)

	_, err = p.parse(httptest.NewRequest(http.MethodGet, "/api/v1/products?skip=x", nil))
	assert.ErrorIs(t, err, e.ErrInvalidQueryParam)
}

func TestAdjustQuantity_OutOfRangeIsBadRequest(t *testing.T) {
	env := newTestEnv(nil)
	env.adj.err = e.Wrap("AdjustmentUseCase.AdjustByDelta", e.ErrChangeOutOfRange)

	rec := env.do(http.MethodPatch, "/api/v1/inventory/3/adjust?quantity_change=9223372036854775807", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.adj.adjust)
	assert.Equal(t, math.MaxInt64, env.adj.adjust.Delta)
}

func TestUpdateTransaction_NullClearsField(t *testing.T) {
	testCases := []struct {
		name             string
		body             string
		wantReason       *string
		wantClearReason  bool
		wantClearPerfBy  bool
		wantChangeAmount *int
	}{
		{name: "absent fields", body: `{}`},
		{name: "null reason", body: `{"reason": null}`, wantClearReason: true},
		{name: "null performed_by", body: `{"performed_by": null}`, wantClearPerfBy: true},
		{name: "new reason", body: `{"reason": "recount", "change_amount": 7}`, wantReason: ptr("recount"), wantChangeAmount: ptr(7)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(nil)

			rec := env.do(http.MethodPut, "/api/v1/transactions/5", tc.body)

			require.Equal(t, http.StatusOK, rec.Code)
			require.NotNil(t, env.tx.updated)
			assert.Equal(t, tc.wantReason, env.tx.updated.Reason)
			assert.Nil(t, env.tx.updated.PerformedBy)
			assert.Equal(t, tc.wantClearReason, env.tx.updated.ClearReason)
			assert.Equal(t, tc.wantClearPerfBy, env.tx.updated.ClearPerformedBy)
			assert.Equal(t, tc.wantChangeAmount, env.tx.updated.ChangeAmount)
		})
	}
}

func ptr[T any](v T) *T { return &v }
