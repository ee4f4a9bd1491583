package domain

// Pagination задаёт смещение и размер страницы для всех списков
type Pagination struct {
	Skip  int
	Limit int
}

func NewPagination(skip, limit int) Pagination {
	return Pagination{Skip: skip, Limit: limit}
}

// Valid проверяет skip >= 0 и 1 <= limit <= maxLimit.
func (p Pagination) Valid(maxLimit int) bool {
	return p.Skip >= 0 && p.Limit >= 1 && p.Limit <= maxLimit
}
