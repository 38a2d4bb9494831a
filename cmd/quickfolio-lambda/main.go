// Точка входа QuickFolio API для AWS Lambda (API Gateway REST proxy).
// Приложение собирается один раз при холодном старте и обслуживает все вызовы.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/bigkaa/quickfolio/internal/app"
	"github.com/bigkaa/quickfolio/internal/config"
	"github.com/bigkaa/quickfolio/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := config.SetupLogger(cfg)
	logger.Info("QuickFolio Lambda запускается", slog.String("version", config.Version))

	// Параллельные экземпляры функции не видят сбросов кэша друг друга.
	if cfg.CacheSize > 0 {
		logger.Warn("Кэш записей в Lambda отключён", slog.Int("QF_CACHE_SIZE", cfg.CacheSize))
		cfg.CacheSize = 0
	}

	application, err := app.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Ошибка инициализации", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer application.Close()

	lambda.Start(server.NewLambdaAdapter(application.Handler).Handle)
}
