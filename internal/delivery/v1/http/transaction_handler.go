package http

import (
	"net/http"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/internal/usecase"
	"github.com/DRSN-tech/inventory-backend/pkg/logger"
)

type TransactionHandler struct {
	pager
	transactionUsecase usecase.TransactionUC
	logger             logger.Logger
}

func NewTransactionHandler(transactionUsecase usecase.TransactionUC, defaultLimit int, logger logger.Logger) *TransactionHandler {
	return &TransactionHandler{pager: pager{defaultLimit: defaultLimit}, transactionUsecase: transactionUsecase, logger: logger}
}

// createTransaction
//
//	@Summary		Запись в журнал
//	@Description	Существование товара не проверяется.
//	@Tags			transactions
//	@Accept			json
//	@Produce		json
//	@Param			transaction	body		CreateTransactionRequest	true	"Запись"
//	@Success		201			{object}	TransactionResponse
//	@Failure		400			{object}	ErrorResponse
//	@Router			/transactions [post]
func (h *TransactionHandler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var body CreateTransactionRequest
	if err := decodeBody(w, r, &body); err != nil {
		WriteError(w, err)
		return
	}

	tx, err := h.transactionUsecase.AppendTransaction(r.Context(), &usecase.CreateTransactionReq{
		ProductID:    body.ProductID,
		ChangeAmount: body.ChangeAmount,
		Reason:       body.Reason,
		PerformedBy:  body.PerformedBy,
	})
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toTransactionResponse(tx))
}

// listTransactions
//
//	@Summary		Журнал движения остатков
//	@Description	Фильтры объединяются через AND. Сортировка от новых к старым.
//	@Tags			transactions
//	@Produce		json
//	@Param			product_id		query		int		false	"ID товара"
//	@Param			performed_by	query		int		false	"ID исполнителя"
//	@Param			reason			query		string	false	"Подстрока причины"
//	@Param			skip			query		int		false	"Смещение"	default(0)
//	@Param			limit			query		int		false	"Размер страницы"	default(100)
//	@Success		200				{array}		TransactionResponse
//	@Failure		400				{object}	ErrorResponse
//	@Router			/transactions [get]
func (h *TransactionHandler) listTransactions(w http.ResponseWriter, r *http.Request) {
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

	performedBy, err := queryInt64(r, "performed_by")
	if err != nil {
		WriteError(w, err)
		return
	}

	txs, err := h.transactionUsecase.ListTransactions(r.Context(), &usecase.ListTransactionsReq{
		Filter: domain.TransactionFilter{
			ProductID:   productID,
			PerformedBy: performedBy,
			Reason:      queryString(r, "reason"),
		},
		Page: page,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toTransactionResponses(txs))
}

// getTransaction
//
//	@Summary	Запись журнала по ID
//	@Tags		transactions
//	@Produce	json
//	@Param		id	path		int	true	"ID записи"
//	@Success	200	{object}	TransactionWithProductResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/transactions/{id} [get]
func (h *TransactionHandler) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	item, err := h.transactionUsecase.GetTransaction(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toTransactionWithProductResponse(item))
}

// updateTransaction
//
//	@Summary		Исправление записи журнала
//	@Description	Меняются только reason и performed_by. change_amount игнорируется.
//	@Tags			transactions
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int							true	"ID записи"
//	@Param			transaction	body		UpdateTransactionRequest	true	"Изменяемые поля"
//	@Success		200			{object}	TransactionResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/transactions/{id} [put]
func (h *TransactionHandler) updateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	var body UpdateTransactionRequest
	if err := decodeBody(w, r, &body); err != nil {
		WriteError(w, err)
		return
	}

	tx, err := h.transactionUsecase.UpdateTransaction(r.Context(), id, &usecase.UpdateTransactionReq{
		ChangeAmount:     body.ChangeAmount,
		Reason:           body.Reason.Value,
		PerformedBy:      body.PerformedBy.Value,
		ClearReason:      body.Reason.cleared(),
		ClearPerformedBy: body.PerformedBy.cleared(),
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toTransactionResponse(tx))
}

// deleteTransaction
//
//	@Summary		Удаление записи журнала
//	@Description	Ответ содержит предупреждение о нарушении целостности аудита.
//	@Tags			transactions
//	@Produce		json
//	@Param			id	path		int	true	"ID записи"
//	@Success		200	{object}	DeleteTransactionResponse
//	@Failure		404	{object}	ErrorResponse
//	@Router			/transactions/{id} [delete]
func (h *TransactionHandler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.transactionUsecase.DeleteTransaction(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.logger.Warnf("ledger entry %d deleted: %s", id, res.Warning)
	WriteSuccess(w, http.StatusOK, DeleteTransactionResponse{
		Transaction: toTransactionResponse(&res.Transaction),
		Warning:     res.Warning,
	})
}

// getSummary
//
//	@Summary		Сводка по товару
//	@Description	Для товара без записей возвращаются нули.
//	@Tags			transactions
//	@Produce		json
//	@Param			product_id	path		int	true	"ID товара"
//	@Success		200			{object}	TransactionSummaryResponse
//	@Failure		400			{object}	ErrorResponse
//	@Router			/transactions/summary/{product_id} [get]
func (h *TransactionHandler) getSummary(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "product_id")
	if err != nil {
		WriteError(w, err)
		return
	}

	summary, err := h.transactionUsecase.Summarize(r.Context(), productID)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toSummaryResponse(summary))
}

// exportLedger
//
//	@Summary		Выгрузка журнала товара в MinIO
//	@Description	Пишет CSV с записями и JSON-манифест. 501, если хранилище не настроено.
//	@Tags			transactions
//	@Produce		json
//	@Param			product_id	path		int	true	"ID товара"
//	@Success		201			{object}	ExportLedgerResponse
//	@Failure		400			{object}	ErrorResponse
//	@Failure		501			{object}	ErrorResponse
//	@Router			/transactions/export/{product_id} [post]
func (h *TransactionHandler) exportLedger(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "product_id")
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.transactionUsecase.ExportLedger(r.Context(), productID)
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toExportResponse(res))
}
