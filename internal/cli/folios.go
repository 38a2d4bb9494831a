// folios.go — команды quickfolio folios.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bigkaa/quickfolio/internal/api/dto"
	"github.com/bigkaa/quickfolio/internal/domain/model"
	"github.com/bigkaa/quickfolio/internal/records"
)

func newFoliosCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "folios",
		Aliases: []string{"folio"},
		Short:   "Фолио",
	}
	cmd.AddCommand(
		foliosListCommand(opts),
		foliosGetCommand(opts),
		foliosCreateCommand(opts),
		foliosUpdateCommand(opts),
		foliosDeleteCommand(opts),
		foliosExportCommand(opts),
	)
	return cmd
}

func fetchFolios(cmd *cobra.Command, opts *rootOptions, fileID string) ([]*model.Folio, error) {
	list, err := opts.client.ListFolios(cmd.Context(), fileID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Folio, 0, len(list))
	for _, fo := range list {
		out = append(out, fo.Model())
	}
	return out, nil
}

// letterDate приводит YYYY-MM-DD или RFC 3339 к формату API.
func letterDate(s string) (string, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC().Format(dto.DateTimeLayout), nil
	}
	if _, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return s, nil
	}
	return "", fmt.Errorf("%w: letter-date %q", records.ErrInvalidDate, s)
}

func foliosListCommand(opts *rootOptions) *cobra.Command {
	var (
		v      viewOptions
		fileID string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Список фолио",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, err := fetchFolios(cmd, opts, fileID)
			if err != nil {
				return err
			}
			rows, err := view(records.FolioSchema(), all, &v)
			if err != nil {
				return err
			}
			if v.asJSON {
				out := make([]dto.Folio, 0, len(rows))
				for _, fo := range rows {
					out = append(out, dto.FromFolio(fo))
				}
				return printJSON(cmd.OutOrStdout(), out)
			}
			return printTable(cmd.OutOrStdout(), records.FolioSchema(), rows, v.loc)
		},
	}
	v.register(cmd, true)
	cmd.Flags().StringVar(&fileID, "file-id", "", "только фолио указанной папки")
	return cmd
}

func foliosGetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Фолио с папкой",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fo, err := opts.client.GetFolio(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), fo)
		},
	}
}

func foliosCreateCommand(opts *rootOptions) *cobra.Command {
	var (
		req  dto.CreateFolioRequest
		date string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Создать фолио",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if date != "" {
				var err error
				if req.LetterDate, err = letterDate(date); err != nil {
					return err
				}
			}
			setOptional(cmd, "description", &req.Description)
			setOptional(cmd, "file-id", &req.FileID)

			fo, err := opts.client.CreateFolio(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), fo)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Item, "item", "", "номер фолио, например AGENCY/DEPT/VOL/0673")
	f.StringVar(&req.RunningNo, "running-no", "", "порядковый номер")
	f.StringVar(&req.DraftedBy, "drafted-by", "", "составитель")
	f.StringVar(&date, "letter-date", "", "дата письма (YYYY-MM-DD или RFC 3339)")
	f.String("description", "", "описание")
	f.String("file-id", "", "папка-владелец")
	return cmd
}

func foliosUpdateCommand(opts *rootOptions) *cobra.Command {
	var detach bool
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Изменить фолио (только заданные флаги)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dto.UpdateFolioRequest
			setOptional(cmd, "item", &req.Item)
			setOptional(cmd, "running-no", &req.RunningNo)
			setOptional(cmd, "description", &req.Description)
			setOptional(cmd, "drafted-by", &req.DraftedBy)
			if cmd.Flags().Changed("letter-date") {
				raw, _ := cmd.Flags().GetString("letter-date")
				ld, err := letterDate(raw)
				if err != nil {
					return err
				}
				req.LetterDate = &ld
			}

			switch {
			case detach && cmd.Flags().Changed("file-id"):
				return errors.New("флаги --file-id и --detach несовместимы")
			case detach:
				req.FileID = dto.Null()
			case cmd.Flags().Changed("file-id"):
				id, _ := cmd.Flags().GetString("file-id")
				req.FileID = dto.Some(id)
			}

			if req == (dto.UpdateFolioRequest{}) {
				return errors.New("не задано ни одного изменяемого поля")
			}

			fo, err := opts.client.UpdateFolio(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), fo)
		},
	}
	f := cmd.Flags()
	f.String("item", "", "номер фолио")
	f.String("running-no", "", "порядковый номер")
	f.String("description", "", "описание")
	f.String("drafted-by", "", "составитель")
	f.String("letter-date", "", "дата письма (YYYY-MM-DD или RFC 3339)")
	f.String("file-id", "", "переложить в папку")
	f.BoolVar(&detach, "detach", false, "отвязать от папки")
	return cmd
}

func foliosDeleteCommand(opts *rootOptions) *cobra.Command {
	return newDeleteCommand("Удалить фолио", deleteTarget[*model.Folio]{
		schema: records.FolioSchema(),
		fetch: func(cmd *cobra.Command) ([]*model.Folio, error) {
			return fetchFolios(cmd, opts, "")
		},
		remove: func(ctx context.Context, id string) error {
			return opts.client.DeleteFolio(ctx, id)
		},
		deleted: "Фолио %s удалено",
	})
}

func foliosExportCommand(opts *rootOptions) *cobra.Command {
	var (
		v      viewOptions
		out    string
		fileID string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Экспорт фолио в CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, err := fetchFolios(cmd, opts, fileID)
			if err != nil {
				return err
			}
			rows, err := view(records.FolioSchema(), all, &v)
			if err != nil {
				return err
			}
			return exportCSV(cmd, records.FolioSchema(), rows, out, v.loc, opts.now())
		},
	}
	v.register(cmd, false)
	cmd.Flags().StringVarP(&out, "out", "o", "", "файл CSV (по умолчанию folios-export-<ms>.csv, - для stdout)")
	cmd.Flags().StringVar(&fileID, "file-id", "", "только фолио указанной папки")
	return cmd
}
