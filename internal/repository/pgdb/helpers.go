package pgdb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// postgresDuplicate сообщает, что запрос нарушил уникальный индекс.
func postgresDuplicate(err error) bool {
	return hasPgCode(err, uniqueViolationCode)
}

// postgresMissingReference сообщает, что внешний ключ ссылается на несуществующую строку.
func postgresMissingReference(err error) bool {
	return hasPgCode(err, foreignKeyViolationCode)
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// notFound подменяет pgx.ErrNoRows доменной ошибкой.
func notFound(err, target error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return target
	}
	return err
}

// whereBuilder собирает условия WHERE с позиционными параметрами.
// Условия объединяются через AND.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

// addLike добавляет регистронезависимый поиск подстроки.
func (w *whereBuilder) addLike(column, value string) {
	w.add(column+" ILIKE '%%' || $%d || '%%'", escapeLike(value))
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// page дописывает LIMIT/OFFSET и возвращает итоговые аргументы.
func (w *whereBuilder) page(limit, skip int) (string, []any) {
	args := append(w.args, limit, skip)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
