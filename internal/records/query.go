// query.go — параметры выборки и разбор границ дат.
package records

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// ErrInvalidDate — граница диапазона дат не распознана.
var ErrInvalidDate = errors.New("некорректная дата")

// SortDirection — направление сортировки.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection разбирает "asc"/"desc" без учёта регистра. Пустая строка — asc.
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return SortAsc, nil
	case "desc":
		return SortDesc, nil
	default:
		return "", fmt.Errorf("неизвестное направление сортировки %q", s)
	}
}

// DateRange — диапазон дат. Обе границы включительны, nil — граница не задана.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// IsZero сообщает, что ни одна граница не задана.
func (r DateRange) IsZero() bool { return r.From == nil && r.To == nil }

// Contains проверяет, попадает ли t в диапазон.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// Query — параметры выборки.
type Query struct {
	// Search — строка свободного поиска (пустая или из пробелов — не применяется)
	Search string
	// Fields — фильтры по подстроке: ключ поля схемы → значение
	Fields map[string]string
	// Dates — фильтры по диапазону: ключ поля даты схемы → диапазон
	Dates map[string]DateRange
	// SortKey — ключ колонки сортировки (пусто — исходный порядок)
	SortKey string
	// SortDir — направление сортировки
	SortDir SortDirection
	// Language — локаль сравнения строк (по умолчанию корневая)
	Language language.Tag
}

const (
	dateOnlyLayout = "2006-01-02"
	endOfDay       = 24*time.Hour - time.Millisecond
)

// ParseDateRange разбирает границы диапазона.
// Допустимы YYYY-MM-DD (в часовом поясе loc) и RFC 3339. Пустая строка — граница не задана.
// Верхняя граница в виде даты включает весь день до 23:59:59.999.
func ParseDateRange(from, to string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}

	var r DateRange
	if from = strings.TrimSpace(from); from != "" {
		t, _, err := parseBound(from, loc)
		if err != nil {
			return DateRange{}, err
		}
		r.From = &t
	}
	if to = strings.TrimSpace(to); to != "" {
		t, dateOnly, err := parseBound(to, loc)
		if err != nil {
			return DateRange{}, err
		}
		if dateOnly {
			t = t.Add(endOfDay)
		}
		r.To = &t
	}
	return r, nil
}

func parseBound(s string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateOnlyLayout, s, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, fmt.Errorf("%w: %q (ожидается YYYY-MM-DD или RFC 3339)", ErrInvalidDate, s)
}
