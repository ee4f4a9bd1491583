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

const productColumns = "id, name, sku, category, price, created_at, updated_at"

// ProductRepo реализует репозиторий продуктов поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// Create добавляет товар. Повтор SKU возвращает e.ErrDuplicateSKU.
func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	query := `
		INSERT INTO products (name, sku, category, price)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + productColumns

	var model converter.ProductModel
	err := scanProduct(q.QueryRow(ctx, query, product.Name, product.SKU, product.Category, product.Price), &model)
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrDuplicateSKU)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(&model), nil
}

func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var model converter.ProductModel
	if err := scanProduct(q.QueryRow(ctx, query, id), &model); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), notFound(err, e.ErrProductNotFound))
	}

	return p.conv.ToEntity(&model), nil
}

// List ищет товары по подстроке имени и категории без учёта регистра.
func (p *ProductRepo) List(ctx context.Context, filter domain.ProductFilter, page domain.Pagination) ([]domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	var where whereBuilder
	if filter.Name != nil {
		where.addLike("name", *filter.Name)
	}
	if filter.Category != nil {
		where.addLike("category", *filter.Category)
	}
	limit, args := where.page(page.Limit, page.Skip)

	query := `SELECT ` + productColumns + ` FROM products` + where.sql() + ` ORDER BY id` + limit

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.Product, 0)
	for rows.Next() {
		var model converter.ProductModel
		if err := scanProduct(rows, &model); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *p.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// Update применяет частичное обновление. nil-поля сохраняют текущие значения.
func (p *ProductRepo) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	q := tr.QuerierFromCtx(ctx, p.pool)

	query := `
		UPDATE products SET
			name = COALESCE($2, name),
			sku = COALESCE($3, sku),
			category = COALESCE($4, category),
			price = COALESCE($5, price),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	var model converter.ProductModel
	err := scanProduct(q.QueryRow(ctx, query, id, patch.Name, patch.SKU, patch.Category, patch.Price), &model)
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrDuplicateSKU)
		}
		return nil, e.Wrap(whereami.WhereAmI(), notFound(err, e.ErrProductNotFound))
	}

	return p.conv.ToEntity(&model), nil
}

// Delete удаляет товар. Остатки удаляются каскадом в БД, журнал не затрагивается.
func (p *ProductRepo) Delete(ctx context.Context, id int64) error {
	q := tr.QuerierFromCtx(ctx, p.pool)

	tag, err := q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, m *converter.ProductModel) error {
	return row.Scan(&m.ID, &m.Name, &m.SKU, &m.Category, &m.Price, &m.CreatedAt, &m.UpdatedAt)
}
