// files.go — команды quickfolio files.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/bigkaa/quickfolio/internal/api/dto"
	"github.com/bigkaa/quickfolio/internal/domain/model"
	"github.com/bigkaa/quickfolio/internal/records"
)

func newFilesCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"file"},
		Short:   "Папки",
	}
	cmd.AddCommand(
		filesListCommand(opts),
		filesGetCommand(opts),
		filesCreateCommand(opts),
		filesUpdateCommand(opts),
		filesDeleteCommand(opts),
		filesExportCommand(opts),
	)
	return cmd
}

// fetchFiles загружает папки и переводит их в доменные модели для движка.
func fetchFiles(cmd *cobra.Command, opts *rootOptions, folioID string) ([]*model.File, error) {
	list, err := opts.client.ListFiles(cmd.Context(), folioID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.File, 0, len(list))
	for _, f := range list {
		out = append(out, f.Model())
	}
	return out, nil
}

func filesListCommand(opts *rootOptions) *cobra.Command {
	var (
		v       viewOptions
		folioID string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Список папок",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, err := fetchFiles(cmd, opts, folioID)
			if err != nil {
				return err
			}
			rows, err := view(records.FileSchema(), all, &v)
			if err != nil {
				return err
			}
			if v.asJSON {
				out := make([]dto.File, 0, len(rows))
				for _, f := range rows {
					out = append(out, dto.FromFile(f))
				}
				return printJSON(cmd.OutOrStdout(), out)
			}
			return printTable(cmd.OutOrStdout(), records.FileSchema(), rows, v.loc)
		},
	}
	v.register(cmd, true)
	cmd.Flags().StringVar(&folioID, "folio-id", "", "только папка, содержащая фолио")
	return cmd
}

func filesGetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Папка с фолио",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := opts.client.GetFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), f)
		},
	}
}

func filesCreateCommand(opts *rootOptions) *cobra.Command {
	var req dto.CreateFileRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Создать папку",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			setOptional(cmd, "description", &req.Description)
			setOptional(cmd, "folio-number", &req.FolioNumber)

			f, err := opts.client.CreateFile(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), f)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Name, "name", "", "название")
	f.StringVar(&req.CreatedBy, "created-by", "", "создатель")
	f.String("description", "", "описание")
	f.String("folio-number", "", "номер (item) фолио, которое кладётся в папку")
	return cmd
}

func filesUpdateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Изменить папку (только заданные флаги)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dto.UpdateFileRequest
			setOptional(cmd, "name", &req.Name)
			setOptional(cmd, "description", &req.Description)
			setOptional(cmd, "created-by", &req.CreatedBy)
			if req == (dto.UpdateFileRequest{}) {
				return errors.New("не задано ни одного изменяемого поля")
			}

			f, err := opts.client.UpdateFile(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), f)
		},
	}
	f := cmd.Flags()
	f.String("name", "", "название")
	f.String("description", "", "описание")
	f.String("created-by", "", "создатель")
	return cmd
}

func filesDeleteCommand(opts *rootOptions) *cobra.Command {
	return newDeleteCommand("Удалить папки (фолио остаются без папки)", deleteTarget[*model.File]{
		schema: records.FileSchema(),
		fetch: func(cmd *cobra.Command) ([]*model.File, error) {
			return fetchFiles(cmd, opts, "")
		},
		remove: func(ctx context.Context, id string) error {
			return opts.client.DeleteFile(ctx, id)
		},
		deleted: "Папка %s удалена",
	})
}

func filesExportCommand(opts *rootOptions) *cobra.Command {
	var (
		v   viewOptions
		out string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Экспорт папок в CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, err := fetchFiles(cmd, opts, "")
			if err != nil {
				return err
			}
			rows, err := view(records.FileSchema(), all, &v)
			if err != nil {
				return err
			}
			return exportCSV(cmd, records.FileSchema(), rows, out, v.loc, opts.now())
		},
	}
	v.register(cmd, false)
	cmd.Flags().StringVarP(&out, "out", "o", "", "файл CSV (по умолчанию files-export-<ms>.csv, - для stdout)")
	return cmd
}

// setOptional записывает значение строкового флага в dst, только если флаг задан.
func setOptional(cmd *cobra.Command, name string, dst **string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	v, _ := cmd.Flags().GetString(name)
	*dst = &v
}
