// selection.go — множество выбранных записей для массовых операций.
package records

import "slices"

// Selection — множество выбранных идентификаторов.
// Не потокобезопасно: владелец один (CLI-команда или сессия UI).
type Selection[T any] struct {
	id  func(T) string
	ids map[string]struct{}
}

// NewSelection создаёт пустой выбор для записей схемы.
func NewSelection[T any](schema Schema[T]) *Selection[T] {
	return &Selection[T]{id: schema.ID, ids: make(map[string]struct{})}
}

// Toggle переключает выбор одной записи.
func (s *Selection[T]) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// Has сообщает, выбрана ли запись.
func (s *Selection[T]) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len — число выбранных записей.
func (s *Selection[T]) Len() int { return len(s.ids) }

// IDs возвращает выбранные идентификаторы в отсортированном виде.
func (s *Selection[T]) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// SelectAll выбирает ровно записи view.
func (s *Selection[T]) SelectAll(view []T) {
	s.ids = make(map[string]struct{}, len(view))
	for _, rec := range view {
		s.ids[s.id(rec)] = struct{}{}
	}
}

// ClearAll снимает выбор.
func (s *Selection[T]) ClearAll() {
	clear(s.ids)
}

// AllSelected сообщает, что view непуст и все его записи выбраны.
func (s *Selection[T]) AllSelected(view []T) bool {
	if len(view) == 0 {
		return false
	}
	for _, rec := range view {
		if !s.Has(s.id(rec)) {
			return false
		}
	}
	return true
}

// ToggleAll снимает выбор, если выбраны все записи view, иначе выбирает все.
func (s *Selection[T]) ToggleAll(view []T) {
	if s.AllSelected(view) {
		s.ClearAll()
		return
	}
	s.SelectAll(view)
}

// Prune оставляет в выборе только записи, присутствующие во view.
func (s *Selection[T]) Prune(view []T) {
	visible := make(map[string]struct{}, len(view))
	for _, rec := range view {
		visible[s.id(rec)] = struct{}{}
	}
	for id := range s.ids {
		if _, ok := visible[id]; !ok {
			delete(s.ids, id)
		}
	}
}

// Subset возвращает записи для экспорта: выбранные записи view в порядке view,
// либо весь view, если ничего не выбрано.
func (s *Selection[T]) Subset(view []T) []T {
	if len(s.ids) == 0 {
		return slices.Clone(view)
	}
	out := make([]T, 0, len(s.ids))
	for _, rec := range view {
		if s.Has(s.id(rec)) {
			out = append(out, rec)
		}
	}
	return out
}
