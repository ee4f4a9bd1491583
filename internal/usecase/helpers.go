package usecase

import (
	"strings"
	"unicode/utf8"

	"github.com/DRSN-tech/inventory-backend/internal/domain"
	"github.com/DRSN-tech/inventory-backend/pkg/e"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxLocationLength = 150
	maxReasonLength   = 100
)

var tracer = otel.Tracer("github.com/DRSN-tech/inventory-backend/internal/usecase")

// validatePage проверяет общие для всех списков ограничения пагинации.
func validatePage(page domain.Pagination, maxLimit int) error {
	if !page.Valid(maxLimit) {
		return e.ErrInvalidPagination
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}

func validateReason(reason *string) error {
	if reason != nil && tooLong(*reason, maxReasonLength) {
		return e.Wrap("reason", e.ErrFieldTooLong)
	}
	return nil
}

// failSpan помечает спан ошибкой и возвращает её же.
func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
