// view.go — флаги выборки (поиск, фильтры, даты, сортировка, выбор) и вывод таблиц.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/bigkaa/quickfolio/internal/records"
)

// viewOptions — флаги list и export.
type viewOptions struct {
	search   string
	fields   map[string]string
	dateFrom map[string]string
	dateTo   map[string]string
	sortKey  string
	sortDir  string
	lang     string
	tz       string
	selected []string
	asJSON   bool

	// loc — часовой пояс --tz, заполняется в query.
	loc *time.Location
}

func (v *viewOptions) register(cmd *cobra.Command, withJSON bool) {
	f := cmd.Flags()
	f.StringVarP(&v.search, "search", "s", "", "поиск по подстроке без учёта регистра")
	f.StringToStringVar(&v.fields, "filter", nil, "фильтр поля: --filter draftedBy=alice")
	f.StringToStringVar(&v.dateFrom, "from", nil, "нижняя граница даты: --from letterDate=2024-03-01")
	f.StringToStringVar(&v.dateTo, "to", nil, "верхняя граница даты (весь день включительно): --to createdAt=2024-06-30")
	f.StringVar(&v.sortKey, "sort", "", "колонка сортировки")
	f.StringVar(&v.sortDir, "dir", "asc", "направление сортировки: asc, desc")
	f.StringVar(&v.lang, "lang", "und", "локаль сравнения строк (BCP 47)")
	f.StringVar(&v.tz, "tz", "UTC", "часовой пояс границ дат и вывода дат")
	f.StringSliceVar(&v.selected, "select", nil, "идентификаторы записей (по умолчанию все отфильтрованные)")
	if withJSON {
		f.BoolVar(&v.asJSON, "json", false, "вывод в JSON")
	}
}

// query проверяет флаги по схеме и строит records.Query.
func query[T any](schema records.Schema[T], v *viewOptions) (records.Query, error) {
	q := records.Query{Search: v.search, Fields: map[string]string{}, Dates: map[string]records.DateRange{}}

	for key, val := range v.fields {
		if _, ok := schema.Fields[key]; !ok {
			return q, fmt.Errorf("неизвестное поле фильтра %q (допустимо: %s)", key, strings.Join(sortedKeys(schema.Fields), ", "))
		}
		q.Fields[key] = val
	}

	loc, err := time.LoadLocation(v.tz)
	if err != nil {
		return q, fmt.Errorf("часовой пояс %q: %w", v.tz, err)
	}
	v.loc = loc
	dateKeys := map[string]struct{}{}
	for key := range v.dateFrom {
		dateKeys[key] = struct{}{}
	}
	for key := range v.dateTo {
		dateKeys[key] = struct{}{}
	}
	for key := range dateKeys {
		if _, ok := schema.Dates[key]; !ok {
			return q, fmt.Errorf("неизвестное поле даты %q (допустимо: %s)", key, strings.Join(sortedKeys(schema.Dates), ", "))
		}
		r, err := records.ParseDateRange(v.dateFrom[key], v.dateTo[key], loc)
		if err != nil {
			return q, fmt.Errorf("поле %s: %w", key, err)
		}
		q.Dates[key] = r
	}

	if v.sortKey != "" {
		if _, ok := schema.Column(v.sortKey); !ok {
			return q, fmt.Errorf("неизвестная колонка сортировки %q (допустимо: %s)", v.sortKey, strings.Join(schema.SortKeys(), ", "))
		}
		q.SortKey = v.sortKey
	}
	if q.SortDir, err = records.ParseSortDirection(v.sortDir); err != nil {
		return q, err
	}
	if q.Language, err = language.Parse(v.lang); err != nil {
		return q, fmt.Errorf("локаль %q: %w", v.lang, err)
	}
	return q, nil
}

// view применяет выборку и выбор. Идентификаторы --select вне выборки отбрасываются.
func view[T any](schema records.Schema[T], all []T, v *viewOptions) ([]T, error) {
	q, err := query(schema, v)
	if err != nil {
		return nil, err
	}
	visible := records.Apply(schema, all, q)

	sel := records.NewSelection(schema)
	for _, id := range v.selected {
		if !sel.Has(id) {
			sel.Toggle(id)
		}
	}
	requested := sel.Len()
	sel.Prune(visible)
	if requested > 0 && sel.Len() == 0 {
		return []T{}, nil
	}
	return sel.Subset(visible), nil
}

// printTable выводит записи колонками схемы, даты — в часовом поясе loc.
func printTable[T any](w io.Writer, schema records.Schema[T], rows []T, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	cols := schema.ExportColumns()

	header := []string{"ID"}
	for _, c := range cols {
		header = append(header, strings.ToUpper(c.Label))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, rec := range rows {
		line := []string{schema.ID(rec)}
		for _, c := range cols {
			line = append(line, records.FormatCell(c.Kind, c.Value(rec), loc))
		}
		fmt.Fprintln(tw, strings.Join(line, "\t"))
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exportCSV пишет CSV в файл out ("" — имя по шаблону, "-" — stdout).
func exportCSV[T any](cmd *cobra.Command, schema records.Schema[T], rows []T, out string, loc *time.Location, now time.Time) error {
	if out == "-" {
		return records.WriteCSV(cmd.OutOrStdout(), rows, schema.ExportColumns(), loc)
	}
	if out == "" {
		out = records.ExportFilename(schema.Entity, now)
	}

	f, err := os.Create(out) //nolint:gosec // G304: путь задаёт пользователь
	if err != nil {
		return fmt.Errorf("создание файла экспорта: %w", err)
	}
	if err := records.WriteCSV(f, rows, schema.ExportColumns(), loc); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("закрытие файла экспорта: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Экспортировано записей: %d → %s\n", len(rows), out)
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
