package postgres

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// Коды ошибок PostgreSQL, которые переводим в доменные.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// whereBuilder собирает параметризованное условие WHERE из фильтра.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

// add добавляет условие; %s в format заменяются плейсхолдерами значений
// (для повторного использования одного значения: %[1]s).
func (w *whereBuilder) add(format string, values ...any) {
	placeholders := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = w.arg(v)
	}
	w.conds = append(w.conds, fmt.Sprintf(format, placeholders...))
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// likePattern превращает строку поиска в шаблон ILIKE с экранированием.
func likePattern(search string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.TrimSpace(search)) + "%"
}

// scanner: общий интерфейс *sql.Row и *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// mapWriteError переводит нарушения ограничений в доменные ошибки.
func mapWriteError(err error, entity string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s: %s", domain.ErrConflict, entity, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return &domain.ReferentialError{Entity: entity, Field: pgErr.ConstraintName, Reason: pgErr.Detail}
		}
	}
	return fmt.Errorf("write %s: %w", entity, err)
}
