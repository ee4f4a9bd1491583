package e

import (
	"errors"
	"fmt"
)

var (
	// Базовые категории ошибок. Конкретные ошибки ниже оборачивают одну из них,
	// поэтому слой доставки проверяет только категорию.
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")

	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// 404 Not Found
	ErrProductNotFound     = fmt.Errorf("product %w", ErrNotFound)
	ErrInventoryNotFound   = fmt.Errorf("inventory item %w", ErrNotFound)
	ErrLedgerEntryNotFound = fmt.Errorf("transaction %w", ErrNotFound)

	// 400 Bad Request
	ErrProductDoesNotExist = fmt.Errorf("%w: product with the given ID does not exist", ErrValidation)
	ErrInvalidPagination   = fmt.Errorf("%w: skip must be >= 0 and limit must be in [1, 1000]", ErrValidation)
	ErrNegativeQuantity    = fmt.Errorf("%w: quantity must be >= 0", ErrValidation)
	ErrReasonRequired      = fmt.Errorf("%w: reason is required", ErrValidation)
	ErrProductNameRequired = fmt.Errorf("%w: product name is required", ErrValidation)
	ErrSKURequired         = fmt.Errorf("%w: sku is required", ErrValidation)
	ErrLocationRequired    = fmt.Errorf("%w: location is required", ErrValidation)
	ErrInvalidThreshold    = fmt.Errorf("%w: threshold must be >= 0", ErrValidation)
	ErrInvalidPrice        = fmt.Errorf("%w: invalid price", ErrValidation)
	ErrPricePrecision      = fmt.Errorf("%w: price must have at most 2 decimal places", ErrValidation)
	ErrInvalidID           = fmt.Errorf("%w: invalid id", ErrValidation)
	ErrInvalidQueryParam   = fmt.Errorf("%w: invalid query parameter", ErrValidation)
	ErrInvalidBody         = fmt.Errorf("%w: invalid request body", ErrValidation)
	ErrFieldTooLong        = fmt.Errorf("%w: field is too long", ErrValidation)
	ErrQuantityOutOfRange  = fmt.Errorf("%w: quantity is out of range", ErrValidation)
	ErrChangeOutOfRange    = fmt.Errorf("%w: change amount is out of range", ErrValidation)

	// 409 Conflict
	ErrDuplicateSKU = fmt.Errorf("%w: product with this sku already exists", ErrValidation)

	// 501 Not Implemented
	ErrExportDisabled = fmt.Errorf("ledger export is disabled")

	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrInternalServerError  = fmt.Errorf("internal server error")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
