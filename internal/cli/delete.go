// delete.go — удаление нескольких записей по ID или по выборке.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bigkaa/quickfolio/internal/records"
)

// selectionFlags — флаги, при которых удаляемые записи берутся из выборки.
var selectionFlags = []string{"search", "filter", "from", "to", "select", "all"}

// deleteTarget описывает сущность для удаления.
type deleteTarget[T any] struct {
	schema  records.Schema[T]
	fetch   func(cmd *cobra.Command) ([]T, error)
	remove  func(ctx context.Context, id string) error
	deleted string // формат сообщения об успехе, %s — ID
}

// newDeleteCommand создаёт команду delete [ID...].
// Без флагов выборки удаляются переданные ID. С флагами записи загружаются,
// фильтруются движком records, а ID из аргументов добавляются к --select.
func newDeleteCommand[T any](short string, target deleteTarget[T]) *cobra.Command {
	var (
		v   viewOptions
		all bool
	)
	cmd := &cobra.Command{
		Use:   "delete [ID...]",
		Short: short,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := deleteIDs(cmd, target, &v, args)
			if err != nil {
				return err
			}
			return deleteEach(cmd, ids, target)
		},
	}
	v.register(cmd, false)
	cmd.Flags().BoolVar(&all, "all", false, "удалить все записи выборки (без фильтров — все записи)")
	return cmd
}

func deleteIDs[T any](cmd *cobra.Command, target deleteTarget[T], v *viewOptions, args []string) ([]string, error) {
	if !anyChanged(cmd, selectionFlags...) {
		if len(args) == 0 {
			return nil, errors.New("укажите ID, флаги выборки или --all")
		}
		return args, nil
	}

	v.selected = append(v.selected, args...)
	all, err := target.fetch(cmd)
	if err != nil {
		return nil, err
	}
	rows, err := view(target.schema, all, v)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, rec := range rows {
		ids = append(ids, target.schema.ID(rec))
	}
	return ids, nil
}

// deleteEach удаляет записи по одной. Ошибка по одному ID не прерывает остальные.
func deleteEach[T any](cmd *cobra.Command, ids []string, target deleteTarget[T]) error {
	if len(ids) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Нет записей для удаления")
		return nil
	}

	var errs []error
	for _, id := range ids {
		if err := target.remove(cmd.Context(), id); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", id, err)
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), target.deleted+"\n", id)
	}
	if len(errs) > 0 {
		return fmt.Errorf("не удалено %d из %d: %w", len(errs), len(ids), errors.Join(errs...))
	}
	return nil
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}
