// Пакет server — маршрутизация и HTTP-сервер QuickFolio API с graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/quickfolio/internal/api/errors"
	"github.com/bigkaa/quickfolio/internal/api/handlers"
	"github.com/bigkaa/quickfolio/internal/api/middleware"
	"github.com/bigkaa/quickfolio/internal/config"
)

// RouterDeps — зависимости маршрутизатора.
type RouterDeps struct {
	// API — обработчики /api/files и /api/folios
	API *handlers.APIHandler
	// Health — /health/live, /health/ready, /metrics
	Health *handlers.HealthHandler
	// OpenAPI — /api/openapi.yaml (nil — не публикуется)
	OpenAPI http.Handler
	// Auth — JWT middleware для API записей (nil — аутентификация отключена)
	Auth func(http.Handler) http.Handler
	// CORSAllowOrigin — значение Access-Control-Allow-Origin
	CORSAllowOrigin string
	Logger          *slog.Logger
}

// NewRouter собирает chi-маршрутизатор со всеми middleware.
// Порядок: logging → metrics → recover → CORS → (JWT для API записей).
// Ответ 500 после паники проходит через логирование и метрики.
func NewRouter(deps RouterDeps) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.Recoverer(deps.Logger))
	router.Use(middleware.CORS(deps.CORSAllowOrigin))

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		apierrors.NotFound(w, "Not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		apierrors.MethodNotAllowed(w)
	})

	router.Group(func(r chi.Router) {
		if deps.Auth != nil {
			r.Use(deps.Auth)
		}
		r.HandleFunc("/api/files", deps.API.Files)
		r.HandleFunc("/api/folios", deps.API.Folios)
	})

	if deps.OpenAPI != nil {
		router.Method(http.MethodGet, "/api/openapi.yaml", deps.OpenAPI)
	}
	if deps.Health != nil {
		router.Get("/health/live", deps.Health.HealthLive)
		router.Get("/health/ready", deps.Health.HealthReady)
		router.Get("/metrics", deps.Health.GetMetrics)
	}

	return router
}

// Server — HTTP-сервер QuickFolio API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер поверх готового обработчика.
func New(cfg *config.Config, logger *slog.Logger, handler http.Handler) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
