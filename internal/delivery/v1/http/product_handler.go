package http

import (
	"net/http"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
)

type ProductHandler struct {
	pager
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, defaultLimit int, logger logger.Logger) *ProductHandler {
	return &ProductHandler{pager: pager{defaultLimit: defaultLimit}, productUsecase: productUsecase, logger: logger}
}

// createProduct
//
//	@Summary		Добавление товара
//	@Description	Создает товар в каталоге. SKU уникален.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			product	body		CreateProductRequest	true	"Товар"
//	@Success		201		{object}	ProductResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		409		{object}	ErrorResponse	"SKU уже занят"
//	@Router			/products [post]
func (p *ProductHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var body CreateProductRequest
	if err := decodeBody(w, r, &body); err != nil {
		p.logger.Warnf("%d %s", http.StatusBadRequest, err.Error())
		WriteError(w, err)
		return
	}

	price, err := parsePriceToCents(body.Price.String())
	if err != nil {
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.CreateProduct(r.Context(), &usecase.CreateProductReq{
		Name:     body.Name,
		SKU:      body.SKU,
		Category: body.Category,
		Price:    price,
	})
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toProductResponse(product))
}

// listProducts
//
//	@Summary	Список товаров
//	@Tags		products
//	@Produce	json
//	@Param		name		query		string	false	"Подстрока имени"
//	@Param		category	query		string	false	"Подстрока категории"
//	@Param		skip		query		int		false	"Смещение"	default(0)
//	@Param		limit		query		int		false	"Размер страницы"	default(100)
//	@Success	200			{array}		ProductResponse
//	@Failure	400			{object}	ErrorResponse
//	@Router		/products [get]
func (p *ProductHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	page, err := p.parse(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	products, err := p.productUsecase.ListProducts(r.Context(), &usecase.ListProductsReq{
		Filter: domain.ProductFilter{
			Name:     queryString(r, "name"),
			Category: queryString(r, "category"),
		},
		Page: page,
	})
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponses(products))
}

// getProduct
//
//	@Summary	Товар по ID
//	@Tags		products
//	@Produce	json
//	@Param		id	path		int	true	"ID товара"
//	@Success	200	{object}	ProductResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/products/{id} [get]
func (p *ProductHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	product, err := p.productUsecase.GetProduct(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// updateProduct
//
//	@Summary	Частичное обновление товара
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"ID товара"
//	@Param		product	body		UpdateProductRequest	true	"Изменяемые поля"
//	@Success	200		{object}	ProductResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/products/{id} [put]
func (p *ProductHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	var body UpdateProductRequest
	if err := decodeBody(w, r, &body); err != nil {
		WriteError(w, err)
		return
	}

	req := &usecase.UpdateProductReq{
		Name:     body.Name,
		SKU:      body.SKU,
		Category: body.Category,
	}
	if body.Price != nil {
		price, err := parsePriceToCents(body.Price.String())
		if err != nil {
			WriteError(w, err)
			return
		}
		req.Price = &price
	}

	product, err := p.productUsecase.UpdateProduct(r.Context(), id, req)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toProductResponse(product))
}

// deleteProduct
//
//	@Summary		Удаление товара
//	@Description	Остатки товара удаляются каскадно, записи журнала остаются.
//	@Tags			products
//	@Produce		json
//	@Param			id	path		int	true	"ID товара"
//	@Success		200	{object}	DeleteResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/products/{id} [delete]
func (p *ProductHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := p.productUsecase.DeleteProduct(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, DeleteResponse{Deleted: true})
}
