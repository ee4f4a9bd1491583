package http

import (
	"net/http"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
)

// InventoryHandler обслуживает остатки и корректировки количества.
type InventoryHandler struct {
	pager
	inventoryUsecase  usecase.InventoryUC
	adjustmentUsecase usecase.AdjustmentUC
	logger            logger.Logger
}

func NewInventoryHandler(inventoryUsecase usecase.InventoryUC, adjustmentUsecase usecase.AdjustmentUC, defaultLimit int, logger logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		pager:             pager{defaultLimit: defaultLimit},
		inventoryUsecase:  inventoryUsecase,
		adjustmentUsecase: adjustmentUsecase,
		logger:            logger,
	}
}

// createInventory
//
//	@Summary		Добавление остатка
//	@Description	Отрицательное количество сохраняется как 0.
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			inventory	body		CreateInventoryRequest	true	"Остаток"
//	@Success		201			{object}	InventoryResponse
//	@Failure		400			{object}	ErrorResponse	"Товар не существует или ошибка валидации"
//	@Router			/inventory [post]
func (h *InventoryHandler) createInventory(w http.ResponseWriter, r *http.Request) {
	var body CreateInventoryRequest
	if err := decodeBody(w, r, &body); err != nil {
		WriteError(w, err)
		return
	}

	inv, err := h.inventoryUsecase.CreateInventory(r.Context(), &usecase.CreateInventoryReq{
		ProductID: body.ProductID,
		Quantity:  body.Quantity,
		Location:  body.Location,
	})
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toInventoryResponse(inv))
}

// listInventory
//
//	@Summary	Список остатков
//	@Tags		inventory
//	@Produce	json
//	@Param		location	query		string	false	"Подстрока локации"
//	@Param		product_id	query		int		false	"ID товара"
//	@Param		skip		query		int		false	"Смещение"	default(0)
//	@Param		limit		query		int		false	"Размер страницы"	default(100)
//	@Success	200			{array}		InventoryResponse
//	@Failure	400			{object}	ErrorResponse
//	@Router		/inventory [get]
func (h *InventoryHandler) listInventory(w http.ResponseWriter, r *http.Request) {
	page, err := h.parse(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	productID, err := queryInt64(r, "product_id")
	if err != nil {
		WriteError(w, err)
		return
	}

	items, err := h.inventoryUsecase.ListInventory(r.Context(), &usecase.ListInventoryReq{
		Filter: domain.InventoryFilter{
			Location:  queryString(r, "location"),
			ProductID: productID,
		},
		Page: page,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toInventoryResponses(items))
}

// listLowStock
//
//	@Summary		Остатки ниже порога
//	@Description	Возвращает записи с quantity <= threshold вместе с товаром.
//	@Tags			inventory
//	@Produce		json
//	@Param			threshold	query		int	false	"Порог"	default(10)
//	@Param			skip		query		int	false	"Смещение"	default(0)
//	@Param			limit		query		int	false	"Размер страницы"	default(100)
//	@Success		200			{array}		InventoryWithProductResponse
//	@Failure		400			{object}	ErrorResponse
//	@Router			/inventory/low-stock [get]
func (h *InventoryHandler) listLowStock(w http.ResponseWriter, r *http.Request) {
	page, err := h.parse(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	threshold, err := queryInt(r, "threshold")
	if err != nil {
		WriteError(w, err)
		return
	}

	items, err := h.inventoryUsecase.ListLowStock(r.Context(), &usecase.LowStockReq{Threshold: threshold, Page: page})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toInventoryWithProductResponses(items))
}

// getInventory
//
//	@Summary	Остаток по ID
//	@Tags		inventory
//	@Produce	json
//	@Param		id	path		int	true	"ID остатка"
//	@Success	200	{object}	InventoryWithProductResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/inventory/{id} [get]
func (h *InventoryHandler) getInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	item, err := h.inventoryUsecase.GetInventory(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toInventoryWithProductResponse(item))
}

// updateInventory
//
//	@Summary		Частичное обновление остатка
//	@Description	Запись в журнал не создается.
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int						true	"ID остатка"
//	@Param			inventory	body		UpdateInventoryRequest	true	"Изменяемые поля"
//	@Success		200			{object}	InventoryResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/inventory/{id} [put]
func (h *InventoryHandler) updateInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	var body UpdateInventoryRequest
	if err := decodeBody(w, r, &body); err != nil {
		WriteError(w, err)
		return
	}

	inv, err := h.inventoryUsecase.UpdateInventory(r.Context(), id, &usecase.UpdateInventoryReq{
		Quantity: body.Quantity,
		Location: body.Location,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toInventoryResponse(inv))
}

// deleteInventory
//
//	@Summary	Удаление остатка
//	@Tags		inventory
//	@Produce	json
//	@Param		id	path		int	true	"ID остатка"
//	@Success	200	{object}	DeleteResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/inventory/{id} [delete]
func (h *InventoryHandler) deleteInventory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.inventoryUsecase.DeleteInventory(r.Context(), id); err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, DeleteResponse{Deleted: true})
}

// adjustQuantity
//
//	@Summary		Изменение остатка на величину
//	@Description	Остаток не уходит ниже нуля. В журнал пишется фактическое изменение.
//	@Tags			inventory
//	@Produce		json
//	@Param			id					path		int		true	"ID остатка"
//	@Param			quantity_change		query		int		true	"Изменение"
//	@Param			reason				query		string	false	"Причина"
//	@Param			performed_by		query		int		false	"ID исполнителя"
//	@Param			create_transaction	query		bool	false	"Писать ли запись в журнал"	default(true)
//	@Success		200					{object}	InventoryResponse
//	@Failure		400					{object}	ErrorResponse
//	@Failure		404					{object}	ErrorResponse
//	@Router			/inventory/{id}/adjust [patch]
func (h *InventoryHandler) adjustQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	delta, err := queryInt(r, "quantity_change")
	if err != nil {
		WriteError(w, err)
		return
	}
	if delta == nil {
		WriteError(w, e.Wrap("quantity_change", e.ErrInvalidQueryParam))
		return
	}

	performedBy, err := queryInt64(r, "performed_by")
	if err != nil {
		WriteError(w, err)
		return
	}

	record, err := queryBool(r, "create_transaction", true)
	if err != nil {
		WriteError(w, err)
		return
	}

	inv, err := h.adjustmentUsecase.AdjustByDelta(r.Context(),
		usecase.NewAdjustQuantityReq(id, *delta, queryString(r, "reason"), performedBy, record))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toInventoryResponse(inv))
}

// setQuantity
//
//	@Summary		Установка остатка
//	@Description	Причина обязательна. Если значение изменилось, в журнал пишется разница.
//	@Tags			inventory
//	@Produce		json
//	@Param			id				path		int		true	"ID остатка"
//	@Param			new_quantity	query		int		true	"Новое количество"
//	@Param			reason			query		string	true	"Причина"
//	@Param			performed_by	query		int		false	"ID исполнителя"
//	@Success		200				{object}	InventoryResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		404				{object}	ErrorResponse
//	@Router			/inventory/{id}/set-quantity [put]
func (h *InventoryHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	newQuantity, err := queryInt(r, "new_quantity")
	if err != nil {
		WriteError(w, err)
		return
	}
	if newQuantity == nil {
		WriteError(w, e.Wrap("new_quantity", e.ErrInvalidQueryParam))
		return
	}

	performedBy, err := queryInt64(r, "performed_by")
	if err != nil {
		WriteError(w, err)
		return
	}

	inv, err := h.adjustmentUsecase.SetAbsolute(r.Context(),
		usecase.NewSetQuantityReq(id, *newQuantity, r.URL.Query().Get("reason"), performedBy))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toInventoryResponse(inv))
}
