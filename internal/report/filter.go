package report

import (
	"errors"
	"time"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// Filter: общий фильтр отчётов. Все поля необязательны, границы дат
// включительны, критерии объединяются через AND. Пустой фильтр даёт полную выборку.
type Filter struct {
	DateFrom     *time.Time `json:"dateFrom,omitempty"`
	DateTo       *time.Time `json:"dateTo,omitempty"`
	ContractorID *int64     `json:"contractorId,omitempty"`
}

// Normalize приводит даты к UTC и проверяет согласованность фильтра.
func (f Filter) Normalize() (Filter, error) {
	verr := &domain.ValidationError{}
	out := Filter{}

	if f.DateFrom != nil {
		from := f.DateFrom.UTC()
		out.DateFrom = &from
	}
	if f.DateTo != nil {
		to := f.DateTo.UTC()
		out.DateTo = &to
	}
	if out.DateFrom != nil && out.DateTo != nil && out.DateFrom.After(*out.DateTo) {
		verr.Add("dateFrom", "must not be after dateTo")
	}
	if f.ContractorID != nil {
		if *f.ContractorID <= 0 {
			verr.Add("contractorId", "must be greater than 0")
		}
		id := *f.ContractorID
		out.ContractorID = &id
	}

	if err := verr.OrNil(); err != nil {
		return Filter{}, err
	}
	return out, nil
}

var errBadBound = errors.New("must be RFC 3339 timestamp or YYYY-MM-DD date")

// ParseBound разбирает границу периода: метку RFC 3339 или дату
// YYYY-MM-DD. Дата без времени для верхней границы означает конец суток.
func ParseBound(raw string, upper bool) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), nil
	}
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errBadBound
	}
	if upper {
		day = day.Add(24*time.Hour - time.Nanosecond)
	}
	return day, nil
}

func (f Filter) hasDateBounds() bool {
	return f.DateFrom != nil || f.DateTo != nil
}

// matchDate проверяет дату строки. Строка без даты проходит только при
// отсутствии ограничений по датам.
func (f Filter) matchDate(t *time.Time) bool {
	if t == nil {
		return !f.hasDateBounds()
	}
	return domain.InRange(*t, f.DateFrom, f.DateTo)
}

// matchContractor истинно, если фильтра по контрагенту нет или он среди участников.
func (f Filter) matchContractor(participants ...int64) bool {
	if f.ContractorID == nil {
		return true
	}
	for _, id := range participants {
		if id == *f.ContractorID {
			return true
		}
	}
	return false
}
