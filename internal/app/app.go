// Пакет app — сборка зависимостей QuickFolio API.
// Общий код для HTTP-сервера и AWS Lambda: миграции, pgxpool, репозитории,
// сервисы, кэш, JWT, topologymetrics и маршрутизатор.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/quickfolio/internal/api/handlers"
	"github.com/bigkaa/quickfolio/internal/api/middleware"
	"github.com/bigkaa/quickfolio/internal/api/openapi"
	"github.com/bigkaa/quickfolio/internal/config"
	"github.com/bigkaa/quickfolio/internal/database"
	"github.com/bigkaa/quickfolio/internal/repository"
	"github.com/bigkaa/quickfolio/internal/server"
	"github.com/bigkaa/quickfolio/internal/service"
)

// ServiceID — имя приложения в графе зависимостей topologymetrics.
const ServiceID = "quickfolio-api"

// App — собранное приложение.
type App struct {
	// Handler — корневой HTTP-обработчик
	Handler http.Handler

	pool      *pgxpool.Pool
	pgDB      *sql.DB
	dephealth *service.DephealthService
	logger    *slog.Logger
}

// Build собирает приложение по конфигурации.
// Вызывающий обязан вызвать Close.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	// 1. Контракт OpenAPI (проверяется при старте)
	doc, err := openapi.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("контракт OpenAPI: %w", err)
	}
	logger.Info("Контракт OpenAPI загружен",
		slog.String("version", doc.Info.Version),
		slog.Int("operations", len(openapi.Operations(doc))),
	)

	// 2. Миграции БД
	if cfg.DBMigrate {
		logger.Info("Применение миграций БД...")
		if err := database.Migrate(cfg, logger); err != nil {
			return nil, err
		}
	}

	// 3. Подключение к PostgreSQL
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &App{pool: pool, logger: logger}

	// 4. Репозитории, кэш и сервисы
	repos := repository.NewRepos(pool)
	txRunner := repository.NewTxRunner(pool)
	cache := service.NewRecordCache(cfg.CacheSize, cfg.CacheTTL)
	if cache == nil {
		logger.Info("Кэш записей отключён")
	} else {
		logger.Info("Кэш записей включён",
			slog.Int("size", cfg.CacheSize),
			slog.String("ttl", cfg.CacheTTL.String()),
		)
	}

	filesSvc := service.NewFileService(repos.Files, repos.Folios, txRunner, cache, logger)
	foliosSvc := service.NewFolioService(repos.Folios, repos.Files, cache, logger)

	// 5. JWT middleware (опционально)
	var authMw func(http.Handler) http.Handler
	if cfg.AuthEnabled() {
		jwtAuth, err := middleware.NewJWTAuth(
			cfg.JWTJWKSURL,
			cfg.JWTIssuer,
			cfg.JWKSRefreshInterval,
			cfg.JWTLeeway,
			logger,
		)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("создание JWT middleware: %w", err)
		}
		authMw = jwtAuth.Middleware()
		logger.Info("JWT middleware инициализирован",
			slog.String("jwks_url", cfg.JWTJWKSURL),
			slog.String("issuer", cfg.JWTIssuer),
		)
	} else {
		logger.Warn("QF_JWT_JWKS_URL не задана, API записей доступен без аутентификации")
	}

	// 6. topologymetrics (опционально)
	if cfg.DephealthEnabled {
		a.startDephealth(ctx, cfg)
	}

	// 7. Маршрутизатор
	health := handlers.NewHealthHandler(database.NewReadinessChecker(pool))
	if a.dephealth != nil {
		health.SetDependencies(a.dephealth)
	}
	a.Handler = server.NewRouter(server.RouterDeps{
		API:             handlers.NewAPIHandler(filesSvc, foliosSvc, logger),
		Health:          health,
		OpenAPI:         handlers.NewOpenAPIHandler(openapi.Document()),
		Auth:            authMw,
		CORSAllowOrigin: cfg.CORSAllowOrigin,
		Logger:          logger,
	})

	return a, nil
}

// startDephealth запускает мониторинг зависимостей. Ошибки не фатальны.
func (a *App) startDephealth(ctx context.Context, cfg *config.Config) {
	// Проверка PostgreSQL идёт через существующий пул (connection pool mode)
	a.pgDB = stdlib.OpenDBFromPool(a.pool)

	dh, err := service.NewDephealthService(service.DephealthConfig{
		ServiceID:     ServiceID,
		Group:         cfg.DephealthGroup,
		PgConnURL:     cfg.DatabaseURL(),
		JWKSURL:       cfg.JWTJWKSURL,
		CheckInterval: cfg.DephealthCheckInterval,
	}, a.pgDB, a.logger)
	if err != nil {
		a.logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
		return
	}
	if err := dh.Start(ctx); err != nil {
		a.logger.Warn("Ошибка запуска topologymetrics", slog.String("error", err.Error()))
		return
	}
	a.dephealth = dh
	a.logger.Info("topologymetrics запущен",
		slog.String("group", cfg.DephealthGroup),
		slog.String("check_interval", cfg.DephealthCheckInterval.String()),
	)
}

// Close останавливает фоновые задачи и закрывает подключения.
func (a *App) Close() {
	if a.dephealth != nil {
		a.dephealth.Stop()
	}
	if a.pgDB != nil {
		_ = a.pgDB.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
