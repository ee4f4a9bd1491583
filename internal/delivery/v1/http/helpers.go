package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const (
	defaultSkip  = 0
	defaultLimit = 100

	maxBodySize = 1 << 20
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// ToHTTPResponse переводит ошибку use case в HTTP-статус.
// ErrDuplicateSKU относится к ошибкам валидации, поэтому проверяется первым.
func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrDuplicateSKU):
		return http.StatusConflict, e.ErrDuplicateSKU.Error()
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound, rootMessage(err)
	case errors.Is(err, e.ErrValidation):
		return http.StatusBadRequest, rootMessage(err)
	case errors.Is(err, e.ErrExportDisabled):
		return http.StatusNotImplemented, e.ErrExportDisabled.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

// rootMessage отрезает от ошибки префиксы e.Wrap, оставляя текст сентинела.
// Имена операций и пути к файлам наружу не уходят.
func rootMessage(err error) string {
	for _, sentinel := range []error{
		e.ErrProductNotFound, e.ErrInventoryNotFound, e.ErrLedgerEntryNotFound,
		e.ErrProductDoesNotExist, e.ErrInvalidPagination, e.ErrNegativeQuantity,
		e.ErrReasonRequired, e.ErrProductNameRequired, e.ErrSKURequired,
		e.ErrLocationRequired, e.ErrInvalidThreshold, e.ErrInvalidPrice,
		e.ErrPricePrecision, e.ErrInvalidID, e.ErrInvalidQueryParam,
		e.ErrInvalidBody, e.ErrFieldTooLong,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}

	switch {
	case errors.Is(err, e.ErrNotFound):
		return e.ErrNotFound.Error()
	default:
		return e.ErrValidation.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeBody читает JSON-тело запроса, лишние поля считаются ошибкой.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return e.Wrap(err.Error(), e.ErrInvalidBody)
	}
	return nil
}

// parsePriceToCents переводит строку вида "599.99" или "600" в копейки.
// Отрицательная цена, больше двух знаков после точки или больше 10^9 рублей — ошибка.
func parsePriceToCents(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, e.ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, e.ErrInvalidPrice
	}

	if d.IsNegative() {
		return 0, e.ErrInvalidPrice
	}

	maxPrice := decimal.NewFromInt(1_000_000_000)
	if d.GreaterThan(maxPrice) {
		return 0, e.ErrInvalidPrice
	}

	if !d.Equal(d.Truncate(2)) {
		return 0, e.ErrPricePrecision
	}

	return d.Shift(2).Round(0).IntPart(), nil
}

// formatCents печатает копейки как десятичную цену с двумя знаками.
func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, e.Wrap(name, e.ErrInvalidID)
	}
	return id, nil
}

func queryString(r *http.Request, key string) *string {
	if !r.URL.Query().Has(key) {
		return nil
	}
	v := r.URL.Query().Get(key)
	return &v
}

func queryInt(r *http.Request, key string) (*int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, e.Wrap(key, e.ErrInvalidQueryParam)
	}
	return &n, nil
}

func queryInt64(r *http.Request, key string) (*int64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, e.Wrap(key, e.ErrInvalidQueryParam)
	}
	return &n, nil
}

func queryBool(r *http.Request, key string, defaultValue bool) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, e.Wrap(key, e.ErrInvalidQueryParam)
	}
	return b, nil
}

// pager читает skip и limit. Границы проверяет use case.
type pager struct {
	defaultLimit int
}

func (p pager) parse(r *http.Request) (domain.Pagination, error) {
	skip, err := queryInt(r, "skip")
	if err != nil {
		return domain.Pagination{}, err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return domain.Pagination{}, err
	}

	page := domain.NewPagination(defaultSkip, p.defaultLimit)
	if skip != nil {
		page.Skip = *skip
	}
	if limit != nil {
		page.Limit = *limit
	}
	return page, nil
}
