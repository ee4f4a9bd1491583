package pgdb

import (
	"context"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const inventoryColumns = "id, product_id, quantity, location, updated_at"

// InventoryRepo хранит остатки в таблице inventory.
type InventoryRepo struct {
	pool        *pgxpool.Pool
	conv        converter.InventoryConverter
	productConv converter.ProductConverter
}

func NewInventoryRepo(pool *pgxpool.Pool, conv converter.InventoryConverter, productConv converter.ProductConverter) *InventoryRepo {
	return &InventoryRepo{
		pool:        pool,
		conv:        conv,
		productConv: productConv,
	}
}

func (i *InventoryRepo) Create(ctx context.Context, inventory *domain.Inventory) (*domain.Inventory, error) {
	q := tr.QuerierFromCtx(ctx, i.pool)

	query := `
		INSERT INTO inventory (product_id, quantity, location)
		VALUES ($1, $2, $3)
		RETURNING ` + inventoryColumns

	var model converter.InventoryModel
	err := scanInventory(q.QueryRow(ctx, query, inventory.ProductID, inventory.Quantity, inventory.Location), &model)
	if err != nil {
		if postgresMissingReference(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductDoesNotExist)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return i.conv.ToEntity(&model), nil
}

func (i *InventoryRepo) GetByID(ctx context.Context, id int64) (*domain.Inventory, error) {
	return i.get(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE id = $1`, id)
}

// GetForUpdate читает остаток и блокирует строку до конца транзакции из контекста.
func (i *InventoryRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Inventory, error) {
	if _, err := tr.TxFromCtx(ctx); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return i.get(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE id = $1 FOR UPDATE`, id)
}

func (i *InventoryRepo) get(ctx context.Context, query string, id int64) (*domain.Inventory, error) {
	q := tr.QuerierFromCtx(ctx, i.pool)

	var model converter.InventoryModel
	if err := scanInventory(q.QueryRow(ctx, query, id), &model); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), notFound(err, e.ErrInventoryNotFound))
	}

	return i.conv.ToEntity(&model), nil
}

// GetWithProduct возвращает остаток вместе с товаром.
func (i *InventoryRepo) GetWithProduct(ctx context.Context, id int64) (*domain.InventoryWithProduct, error) {
	q := tr.QuerierFromCtx(ctx, i.pool)

	query := `
		SELECT i.id, i.product_id, i.quantity, i.location, i.updated_at,
		       p.id, p.name, p.sku, p.category, p.price, p.created_at, p.updated_at
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE i.id = $1
	`

	res, err := i.scanWithProduct(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), notFound(err, e.ErrInventoryNotFound))
	}

	return res, nil
}

func (i *InventoryRepo) List(ctx context.Context, filter domain.InventoryFilter, page domain.Pagination) ([]domain.Inventory, error) {
	q := tr.QuerierFromCtx(ctx, i.pool)

	var where whereBuilder
	if filter.Location != nil {
		where.addLike("location", *filter.Location)
	}
	if filter.ProductID != nil {
		where.add("product_id = $%d", *filter.ProductID)
	}
	limit, args := where.page(page.Limit, page.Skip)

	query := `SELECT ` + inventoryColumns + ` FROM inventory` + where.sql() + ` ORDER BY id` + limit

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Inventory, 0)
	for rows.Next() {
		var model converter.InventoryModel
		if err := scanInventory(rows, &model); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *i.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// ListLowStock возвращает остатки с quantity <= threshold, меньшие первыми.
func (i *InventoryRepo) ListLowStock(ctx context.Context, threshold int, page domain.Pagination) ([]domain.InventoryWithProduct, error) {
	q := tr.QuerierFromCtx(ctx, i.pool)

	query := `
		SELECT i.id, i.product_id, i.quantity, i.location, i.updated_at,
		       p.id, p.name, p.sku, p.category, p.price, p.created_at, p.updated_at
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		WHERE i.quantity <= $1
		ORDER BY i.quantity, i.id
		LIMIT $2 OFFSET $3
	`

	rows, err := q.Query(ctx, query, threshold, page.Limit, page.Skip)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.InventoryWithProduct, 0)
	for rows.Next() {
		item, err := i.scanWithProduct(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

func (i *InventoryRepo) Update(ctx context.Context, id int64, patch domain.InventoryPatch) (*domain.Inventory, error) {
	q := tr.QuerierFromCtx(ctx, i.pool)

	query := `
		UPDATE inventory SET
			quantity = COALESCE($2, quantity),
			location = COALESCE($3, location),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + inventoryColumns

	var model converter.InventoryModel
	if err := scanInventory(q.QueryRow(ctx, query, id, patch.Quantity, patch.Location), &model); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), notFound(err, e.ErrInventoryNotFound))
	}

	return i.conv.ToEntity(&model), nil
}

func (i *InventoryRepo) SetQuantity(ctx context.Context, id int64, quantity int) (*domain.Inventory, error) {
	return i.Update(ctx, id, domain.InventoryPatch{Quantity: &quantity})
}

func (i *InventoryRepo) Delete(ctx context.Context, id int64) error {
	q := tr.QuerierFromCtx(ctx, i.pool)

	tag, err := q.Exec(ctx, `DELETE FROM inventory WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrInventoryNotFound)
	}

	return nil
}

func (i *InventoryRepo) scanWithProduct(row rowScanner) (*domain.InventoryWithProduct, error) {
	var (
		inv converter.InventoryModel
		pr  converter.ProductModel
	)

	err := row.Scan(
		&inv.ID, &inv.ProductID, &inv.Quantity, &inv.Location, &inv.UpdatedAt,
		&pr.ID, &pr.Name, &pr.SKU, &pr.Category, &pr.Price, &pr.CreatedAt, &pr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &domain.InventoryWithProduct{
		Inventory: *i.conv.ToEntity(&inv),
		Product:   *i.productConv.ToEntity(&pr),
	}, nil
}

func scanInventory(row rowScanner, m *converter.InventoryModel) error {
	return row.Scan(&m.ID, &m.ProductID, &m.Quantity, &m.Location, &m.UpdatedAt)
}
