// Пакет cli — консольный клиент QuickFolio на cobra.
// Команды: files|folios list|get|create|update|delete|export.
// Списки и экспорт фильтруются и сортируются движком records на стороне клиента.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bigkaa/quickfolio/internal/apiclient"
	"github.com/bigkaa/quickfolio/internal/config"
)

// Значения по умолчанию.
const (
	defaultAPIURL  = "http://localhost:8080"
	defaultTimeout = 30 * time.Second
)

// rootOptions — глобальные флаги.
type rootOptions struct {
	apiURL   string
	token    string
	timeout  time.Duration
	logLevel string

	client *apiclient.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewRootCommand создаёт корневую команду quickfolio.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{now: time.Now}

	root := &cobra.Command{
		Use:           "quickfolio",
		Short:         "Консольный клиент QuickFolio",
		Long:          "Управление папками (files) и фолио (folios) через QuickFolio API.",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.apiURL, "api-url", envDefault("QF_API_URL", defaultAPIURL), "адрес QuickFolio API (QF_API_URL)")
	pf.StringVar(&opts.token, "token", os.Getenv("QF_API_TOKEN"), "bearer-токен (QF_API_TOKEN)")
	pf.DurationVar(&opts.timeout, "timeout", defaultTimeout, "таймаут запроса")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "уровень логирования: debug, info, warn, error")

	root.AddCommand(newFilesCommand(opts), newFoliosCommand(opts))
	return root
}

// Execute запускает CLI и возвращает код завершения.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Ошибка:", err)
		return 1
	}
	return 0
}

func (o *rootOptions) init(stderr io.Writer) error {
	level, err := config.ParseLogLevel(o.logLevel)
	if err != nil {
		return err
	}
	o.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	o.client = apiclient.New(o.apiURL, o.token, o.timeout, o.logger)
	return nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
