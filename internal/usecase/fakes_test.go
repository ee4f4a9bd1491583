package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/inventory-backend/internal/cfg"
	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
)

// memDB хранит данные в памяти, общие для всех фейковых репозиториев.
type memDB struct {
	mu        sync.Mutex
	seq       int64
	products  map[int64]domain.Product
	inventory map[int64]domain.Inventory
	txs       map[int64]domain.Transaction
	outbox    []*OutboxEvent

	failTxCreate error
}

func newMemDB() *memDB {
	return &memDB{
		products:  map[int64]domain.Product{},
		inventory: map[int64]domain.Inventory{},
		txs:       map[int64]domain.Transaction{},
	}
}

func (db *memDB) nextID() int64 {
	db.seq++
	return db.seq
}

type memSnapshot struct {
	products  map[int64]domain.Product
	inventory map[int64]domain.Inventory
	txs       map[int64]domain.Transaction
	outbox    []*OutboxEvent
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()

	s := memSnapshot{
		products:  make(map[int64]domain.Product, len(db.products)),
		inventory: make(map[int64]domain.Inventory, len(db.inventory)),
		txs:       make(map[int64]domain.Transaction, len(db.txs)),
		outbox:    append([]*OutboxEvent(nil), db.outbox...),
	}
	for k, v := range db.products {
		s.products[k] = v
	}
	for k, v := range db.inventory {
		s.inventory[k] = v
	}
	for k, v := range db.txs {
		s.txs[k] = v
	}
	return s
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.products = s.products
	db.inventory = s.inventory
	db.txs = s.txs
	db.outbox = s.outbox
}

func (db *memDB) ledger() []domain.Transaction {
	db.mu.Lock()
	defer db.mu.Unlock()

	res := make([]domain.Transaction, 0, len(db.txs))
	for _, t := range db.txs {
		res = append(res, t)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (db *memDB) events() []*OutboxEvent {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]*OutboxEvent(nil), db.outbox...)
}

// fakeTxManager сериализует транзакции и откатывает состояние при ошибке,
// как это делает блокировка строки в Postgres.
type fakeTxManager struct {
	mu sync.Mutex
	db *memDB
}

type fakeTxKey struct{}

func (m *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.db.snapshot()
	if err := fn(context.WithValue(ctx, fakeTxKey{}, true)); err != nil {
		m.db.restore(snap)
		return err
	}
	return nil
}

type fakeProductRepo struct{ db *memDB }

func (r *fakeProductRepo) Create(_ context.Context, p *domain.Product) (*domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.products {
		if existing.SKU == p.SKU {
			return nil, e.ErrDuplicateSKU
		}
	}
	created := *p
	created.ID = r.db.nextID()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	r.db.products[created.ID] = created
	return &created, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) List(_ context.Context, f domain.ProductFilter, page domain.Pagination) ([]domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var res []domain.Product
	for _, p := range r.db.products {
		if f.Name != nil && !containsFold(p.Name, *f.Name) {
			continue
		}
		if f.Category != nil && !containsFold(p.Category, *f.Category) {
			continue
		}
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return paginate(res, page), nil
}

func (r *fakeProductRepo) Update(_ context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.SKU != nil {
		p.SKU = *patch.SKU
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	r.db.products[id] = p
	return &p, nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.products[id]; !ok {
		return e.ErrProductNotFound
	}
	delete(r.db.products, id)
	for invID, inv := range r.db.inventory {
		if inv.ProductID == id {
			delete(r.db.inventory, invID)
		}
	}
	return nil
}

type fakeInventoryRepo struct{ db *memDB }

func (r *fakeInventoryRepo) Create(_ context.Context, inv *domain.Inventory) (*domain.Inventory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	created := *inv
	created.ID = r.db.nextID()
	created.UpdatedAt = time.Now()
	r.db.inventory[created.ID] = created
	return &created, nil
}

func (r *fakeInventoryRepo) GetByID(_ context.Context, id int64) (*domain.Inventory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	inv, ok := r.db.inventory[id]
	if !ok {
		return nil, e.ErrInventoryNotFound
	}
	return &inv, nil
}

func (r *fakeInventoryRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Inventory, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeInventoryRepo) GetWithProduct(_ context.Context, id int64) (*domain.InventoryWithProduct, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	inv, ok := r.db.inventory[id]
	if !ok {
		return nil, e.ErrInventoryNotFound
	}
	return &domain.InventoryWithProduct{Inventory: inv, Product: r.db.products[inv.ProductID]}, nil
}

func (r *fakeInventoryRepo) List(_ context.Context, f domain.InventoryFilter, page domain.Pagination) ([]domain.Inventory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var res []domain.Inventory
	for _, inv := range r.db.inventory {
		if f.Location != nil && !containsFold(inv.Location, *f.Location) {
			continue
		}
		if f.ProductID != nil && inv.ProductID != *f.ProductID {
			continue
		}
		res = append(res, inv)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return paginate(res, page), nil
}

func (r *fakeInventoryRepo) ListLowStock(_ context.Context, threshold int, page domain.Pagination) ([]domain.InventoryWithProduct, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var res []domain.InventoryWithProduct
	for _, inv := range r.db.inventory {
		if inv.Quantity <= threshold {
			res = append(res, domain.InventoryWithProduct{Inventory: inv, Product: r.db.products[inv.ProductID]})
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Inventory.Quantity < res[j].Inventory.Quantity })
	return paginate(res, page), nil
}

func (r *fakeInventoryRepo) Update(_ context.Context, id int64, patch domain.InventoryPatch) (*domain.Inventory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	inv, ok := r.db.inventory[id]
	if !ok {
		return nil, e.ErrInventoryNotFound
	}
	if patch.Quantity != nil {
		inv.Quantity = *patch.Quantity
	}
	if patch.Location != nil {
		inv.Location = *patch.Location
	}
	r.db.inventory[id] = inv
	return &inv, nil
}

func (r *fakeInventoryRepo) SetQuantity(ctx context.Context, id int64, quantity int) (*domain.Inventory, error) {
	return r.Update(ctx, id, domain.InventoryPatch{Quantity: &quantity})
}

func (r *fakeInventoryRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.inventory[id]; !ok {
		return e.ErrInventoryNotFound
	}
	delete(r.db.inventory, id)
	return nil
}

type fakeTransactionRepo struct{ db *memDB }

func (r *fakeTransactionRepo) Create(_ context.Context, t *domain.Transaction) (*domain.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if r.db.failTxCreate != nil {
		return nil, r.db.failTxCreate
	}
	created := *t
	created.ID = r.db.nextID()
	created.CreatedAt = time.Now()
	r.db.txs[created.ID] = created
	return &created, nil
}

func (r *fakeTransactionRepo) GetByID(_ context.Context, id int64) (*domain.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.txs[id]
	if !ok {
		return nil, e.ErrLedgerEntryNotFound
	}
	return &t, nil
}

func (r *fakeTransactionRepo) List(_ context.Context, f domain.TransactionFilter, page domain.Pagination) ([]domain.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var res []domain.Transaction
	for _, t := range r.db.txs {
		if f.ProductID != nil && t.ProductID != *f.ProductID {
			continue
		}
		if f.PerformedBy != nil && (t.PerformedBy == nil || *t.PerformedBy != *f.PerformedBy) {
			continue
		}
		if f.Reason != nil && (t.Reason == nil || !containsFold(*t.Reason, *f.Reason)) {
			continue
		}
		res = append(res, t)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return paginate(res, page), nil
}

func (r *fakeTransactionRepo) ListByProduct(ctx context.Context, productID int64) ([]domain.Transaction, error) {
	return r.List(ctx, domain.TransactionFilter{ProductID: &productID}, domain.NewPagination(0, 1<<30))
}

func (r *fakeTransactionRepo) Update(_ context.Context, id int64, c domain.TransactionCorrection) (*domain.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.txs[id]
	if !ok {
		return nil, e.ErrLedgerEntryNotFound
	}
	if c.Reason != nil {
		t.Reason = c.Reason
	}
	if c.PerformedBy != nil {
		t.PerformedBy = c.PerformedBy
	}
	if c.ClearReason {
		t.Reason = nil
	}
	if c.ClearPerformedBy {
		t.PerformedBy = nil
	}
	r.db.txs[id] = t
	return &t, nil
}

func (r *fakeTransactionRepo) Delete(_ context.Context, id int64) (*domain.Transaction, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.txs[id]
	if !ok {
		return nil, e.ErrLedgerEntryNotFound
	}
	delete(r.db.txs, id)
	return &t, nil
}

func (r *fakeTransactionRepo) Summarize(ctx context.Context, productID int64) (*domain.TransactionSummary, error) {
	txs, err := r.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return domain.Summarize(productID, txs), nil
}

type fakeOutboxRepo struct{ db *memDB }

func (r *fakeOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	created := *event
	created.ID = r.db.nextID()
	r.db.outbox = append(r.db.outbox, &created)
	return &created, nil
}

func (r *fakeOutboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeOutboxRepo) MarkAsProcessed(context.Context, int64) error {
	return errors.New("not implemented")
}

func (r *fakeOutboxRepo) ReleaseProcessing(context.Context, int64) error {
	return errors.New("not implemented")
}

func (r *fakeOutboxRepo) ReleaseStale(context.Context, int) (int64, error) {
	return 0, errors.New("not implemented")
}

type fakeCache struct {
	mu          sync.Mutex
	items       map[int64]domain.Product
	hits        int
	failGets    bool
	failDeletes bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[int64]domain.Product{}}
}

func (c *fakeCache) GetProducts(_ context.Context, ids []int64) (map[int64]domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failGets {
		return nil, errors.New("redis: connection refused")
	}
	res := map[int64]domain.Product{}
	for _, id := range ids {
		if p, ok := c.items[id]; ok {
			res[id] = p
			c.hits++
		}
	}
	return res, nil
}

func (c *fakeCache) SetProducts(_ context.Context, products []domain.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, p := range products {
		c.items[p.ID] = p
	}
	return nil
}

func (c *fakeCache) DeleteProducts(_ context.Context, ids []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failDeletes {
		return errors.New("redis: connection refused")
	}
	for _, id := range ids {
		delete(c.items, id)
	}
	return nil
}

type fakeExporter struct {
	productID int64
	entries   []domain.Transaction
}

func (f *fakeExporter) ExportLedger(_ context.Context, productID int64, entries []domain.Transaction) (*ExportLedgerRes, error) {
	f.productID = productID
	f.entries = entries
	return NewExportLedgerRes("inventory-ledger", "ledger/1/export.csv", "ledger/1/export.json", len(entries)), nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func paginate[T any](items []T, page domain.Pagination) []T {
	if page.Skip >= len(items) {
		return nil
	}
	end := page.Skip + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Skip:end]
}

// env собирает все юзкейсы поверх одного memDB.
type env struct {
	db          *memDB
	cache       *fakeCache
	exporter    *fakeExporter
	products    *ProductUseCase
	inventory   *InventoryUseCase
	adjustment  *AdjustmentUseCase
	transaction *TransactionUseCase
}

func newEnv() *env {
	db := newMemDB()
	cache := newFakeCache()
	exporter := &fakeExporter{}
	invCfg := &cfg.InventoryCfg{DefaultLimit: 100, MaxLimit: 1000, LowStockThreshold: 10}
	log := logger.NewNop()
	txm := &fakeTxManager{db: db}

	productRepo := &fakeProductRepo{db: db}
	inventoryRepo := &fakeInventoryRepo{db: db}
	transactionRepo := &fakeTransactionRepo{db: db}
	outboxRepo := &fakeOutboxRepo{db: db}

	products := NewProductUC(productRepo, cache, invCfg, log)

	return &env{
		db:          db,
		cache:       cache,
		exporter:    exporter,
		products:    products,
		inventory:   NewInventoryUC(inventoryRepo, products, invCfg, log),
		adjustment:  NewAdjustmentUC(inventoryRepo, transactionRepo, outboxRepo, txm, log),
		transaction: NewTransactionUC(transactionRepo, outboxRepo, products, txm, exporter, invCfg, log),
	}
}

func ptr[T any](v T) *T { return &v }
