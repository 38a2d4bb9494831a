// Пакет records — фильтрация, сортировка, выбор и CSV-экспорт записей в памяти.
//
// Движок обобщён по типу записи: сущность описывается схемой Schema[T]
// (поля поиска, поля фильтров, диапазоны дат, колонки). Все операции чистые:
// входной срез не изменяется, результат полностью определяется входом.
package records

import "time"

// Kind — тип значения колонки. Определяет сравнение и форматирование.
type Kind int

const (
	// KindString — строка, сравнивается с учётом локали
	KindString Kind = iota
	// KindDate — дата/время, сравнивается хронологически, в CSV — MM/DD/YYYY
	KindDate
	// KindNumber — число, сравнивается по величине
	KindNumber
)

// String возвращает имя типа.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Cell — типизированное значение одной ячейки.
// Valid == false означает отсутствующее значение (null).
type Cell struct {
	Str   string
	Time  time.Time
	Num   float64
	Valid bool
}

// StringCell — строковая ячейка.
func StringCell(s string) Cell { return Cell{Str: s, Valid: true} }

// OptionalStringCell — строковая ячейка из указателя (nil — null).
func OptionalStringCell(s *string) Cell {
	if s == nil {
		return Cell{}
	}
	return StringCell(*s)
}

// DateCell — ячейка даты. Нулевое время считается отсутствующим значением.
func DateCell(t time.Time) Cell {
	if t.IsZero() {
		return Cell{}
	}
	return Cell{Time: t, Valid: true}
}

// NumberCell — числовая ячейка.
func NumberCell(n float64) Cell { return Cell{Num: n, Valid: true} }

// NullCell — отсутствующее значение.
func NullCell() Cell { return Cell{} }

// TextAccessor возвращает ноль или более строковых значений поля записи.
// Многозначное поле совпадает, если совпадает хотя бы одно значение.
type TextAccessor[T any] func(T) []string

// DateAccessor возвращает дату поля записи. ok == false — значения нет.
type DateAccessor[T any] func(T) (t time.Time, ok bool)

// Column — описание колонки таблицы: ключ сортировки, заголовок экспорта,
// тип значения и функция получения значения.
type Column[T any] struct {
	Key   string
	Label string
	Kind  Kind
	Value func(T) Cell
	// SortOnly — колонка участвует только в сортировке и не экспортируется
	SortOnly bool
}

// Schema — описание сущности для движка.
type Schema[T any] struct {
	// Entity — имя сущности в нижнем регистре (используется в имени файла экспорта)
	Entity string
	// ID — идентификатор записи (для выбора)
	ID func(T) string
	// Search — поля свободного поиска
	Search []TextAccessor[T]
	// Fields — поля фильтров по подстроке
	Fields map[string]TextAccessor[T]
	// Dates — поля фильтров по диапазону дат
	Dates map[string]DateAccessor[T]
	// Columns — колонки в порядке экспорта
	Columns []Column[T]
}

// Column возвращает колонку по ключу.
func (s Schema[T]) Column(key string) (Column[T], bool) {
	for _, c := range s.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}

// ExportColumns возвращает экспортируемые колонки в порядке объявления.
func (s Schema[T]) ExportColumns() []Column[T] {
	out := make([]Column[T], 0, len(s.Columns))
	for _, c := range s.Columns {
		if !c.SortOnly {
			out = append(out, c)
		}
	}
	return out
}

// SortKeys возвращает ключи колонок в порядке объявления.
func (s Schema[T]) SortKeys() []string {
	keys := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		keys = append(keys, c.Key)
	}
	return keys
}
