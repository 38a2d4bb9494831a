// csv.go — экспорт записей в CSV.
package records

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const csvDateLayout = "01/02/2006"

// WriteCSV записывает rows в w: строка заголовков колонок, затем по строке на запись.
// Каждое значение в двойных кавычках, внутренние кавычки удваиваются,
// строки разделяются "\n". Заголовок пишется и при пустом rows.
// Даты выводятся в часовом поясе loc (nil — без преобразования).
func WriteCSV[T any](w io.Writer, rows []T, columns []Column[T], loc *time.Location) error {
	bw := bufio.NewWriter(w)

	fields := make([]string, len(columns))
	for i, c := range columns {
		fields[i] = c.Label
	}
	writeLine(bw, fields)

	for _, rec := range rows {
		for i, c := range columns {
			fields[i] = FormatCell(c.Kind, c.Value(rec), loc)
		}
		writeLine(bw, fields)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("ошибка записи CSV: %w", err)
	}
	return nil
}

// FormatCell возвращает строковое представление ячейки для экспорта.
// Отсутствующее значение — пустая строка. Дата переводится в loc, если он задан.
func FormatCell(kind Kind, c Cell, loc *time.Location) string {
	if !c.Valid {
		return ""
	}
	switch kind {
	case KindDate:
		t := c.Time
		if loc != nil {
			t = t.In(loc)
		}
		return t.Format(csvDateLayout)
	case KindNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	default:
		return c.Str
	}
}

func writeLine(bw *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			bw.WriteByte(',')
		}
		bw.WriteByte('"')
		bw.WriteString(strings.ReplaceAll(f, `"`, `""`))
		bw.WriteByte('"')
	}
	bw.WriteByte('\n')
}

// ExportFilename возвращает имя файла экспорта: <entity>-export-<unix-ms>.csv.
func ExportFilename(entity string, now time.Time) string {
	return fmt.Sprintf("%s-export-%d.csv", entity, now.UnixMilli())
}
