// Точка входа QuickFolio API — HTTP-сервер папок и фолио.
// Загружает конфигурацию, собирает приложение (миграции, PostgreSQL, сервисы,
// JWT, topologymetrics) и запускает HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/bigkaa/quickfolio/internal/app"
	"github.com/bigkaa/quickfolio/internal/config"
	"github.com/bigkaa/quickfolio/internal/server"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("QuickFolio API запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Сборка зависимостей
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка инициализации", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer application.Close()

	// 4. Запуск сервера (блокирующий вызов с graceful shutdown)
	srv := server.New(cfg, logger, application.Handler)
	if err := srv.Run(); err != nil {
		logger.Error("Сервер завершился с ошибкой", slog.String("error", err.Error()))
		application.Close()
		os.Exit(1)
	}

	logger.Info("QuickFolio API остановлен")
}
