// apply.go — фильтрация и сортировка.
package records

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
)

// Apply возвращает новый срез записей, удовлетворяющих всем активным условиям q,
// упорядоченный по q.SortKey. Входной срез не изменяется, nil равнозначен пустому.
// Сортировка устойчивая, отсутствующие значения всегда в конце.
func Apply[T any](schema Schema[T], records []T, q Query) []T {
	m := newMatcher(schema, q)

	out := make([]T, 0, len(records))
	for _, rec := range records {
		if m.match(rec) {
			out = append(out, rec)
		}
	}

	if col, ok := schema.Column(q.SortKey); ok {
		sortRecords(out, col, q)
	}
	return out
}

// matcher — подготовленные предикаты одного вызова Apply.
// Caser не потокобезопасен: один matcher на вызов.
type matcher[T any] struct {
	schema Schema[T]
	fold   cases.Caser
	search string
	fields map[string]string
	dates  map[string]DateRange
}

func newMatcher[T any](schema Schema[T], q Query) *matcher[T] {
	m := &matcher[T]{
		schema: schema,
		fold:   cases.Fold(),
		fields: make(map[string]string, len(q.Fields)),
		dates:  make(map[string]DateRange, len(q.Dates)),
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		m.search = m.fold.String(s)
	}
	for key, v := range q.Fields {
		if _, known := schema.Fields[key]; !known {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			m.fields[key] = m.fold.String(v)
		}
	}
	for key, r := range q.Dates {
		if _, known := schema.Dates[key]; !known || r.IsZero() {
			continue
		}
		m.dates[key] = r
	}
	return m
}

func (m *matcher[T]) match(rec T) bool {
	if m.search != "" && !m.matchSearch(rec) {
		return false
	}
	for key, needle := range m.fields {
		if !m.contains(m.schema.Fields[key](rec), needle) {
			return false
		}
	}
	for key, r := range m.dates {
		t, ok := m.schema.Dates[key](rec)
		if !ok || !r.Contains(t) {
			return false
		}
	}
	return true
}

func (m *matcher[T]) matchSearch(rec T) bool {
	for _, acc := range m.schema.Search {
		if m.contains(acc(rec), m.search) {
			return true
		}
	}
	return false
}

func (m *matcher[T]) contains(values []string, needle string) bool {
	for _, v := range values {
		if strings.Contains(m.fold.String(v), needle) {
			return true
		}
	}
	return false
}

func sortRecords[T any](recs []T, col Column[T], q Query) {
	var coll *collate.Collator
	if col.Kind == KindString {
		coll = collate.New(q.Language)
	}
	desc := q.SortDir == SortDesc

	slices.SortStableFunc(recs, func(a, b T) int {
		va, vb := col.Value(a), col.Value(b)
		switch {
		case !va.Valid && !vb.Valid:
			return 0
		case !va.Valid:
			return 1
		case !vb.Valid:
			return -1
		}

		c := compareCells(col.Kind, coll, va, vb)
		if desc {
			return -c
		}
		return c
	})
}

func compareCells(kind Kind, coll *collate.Collator, a, b Cell) int {
	switch kind {
	case KindDate:
		return a.Time.Compare(b.Time)
	case KindNumber:
		return cmp.Compare(a.Num, b.Num)
	default:
		return coll.CompareString(a.Str, b.Str)
	}
}
