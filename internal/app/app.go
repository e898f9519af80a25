package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"actionTracker/internal/config"
	"actionTracker/internal/handlers"
	"actionTracker/internal/logger"
	"actionTracker/internal/middleware"
	"actionTracker/internal/repository/actionitem/inmemory"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// App is the in-memory stub of the action item service.
type App struct {
	config    *config.Config
	server    *http.Server
	router    http.Handler
	store     *inmemory.ItemStorage
	shutdowns []func() // функции для graceful shutdown
	now       func() time.Time
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
		now:       time.Now,
	}
}

func (a *App) Init(ctx context.Context) (*App, error) {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	if err := a.config.Server.Validate(); err != nil {
		return nil, fmt.Errorf("конфигурация сервера: %w", err)
	}

	a.store = inmemory.NewItemStorage()
	if path := a.config.Server.SeedFile; path != "" {
		items, err := LoadSeed(path, a.now())
		if err != nil {
			return nil, fmt.Errorf("загрузка seed: %w", err)
		}
		if err := a.store.ReplaceAll(ctx, items); err != nil {
			return nil, fmt.Errorf("загрузка seed: %w", err)
		}
		logger.Info("App: Seed загружен", zap.String("path", path), zap.Int("count", len(items)))
	}

	if a.config.Server.APIKey == "" {
		logger.Warn("App: server.api_key пуст, проверка ключа отключена")
	}

	h := handlers.NewItemHandler(a.store, a.now)
	a.router = NewRouter(h, a.config.Server.APIKey, a.config.Server.RateLimit)
	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return a, nil
}

func (a *App) Router() http.Handler {
	return a.router
}

// NewRouter собирает маршруты заглушки. Проверка ключа и лимит не касаются /health.
func NewRouter(h *handlers.ItemHandler, apiKey string, rateLimit int) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.APIKeyHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck) // GET /health

	r.Route("/action-items", func(r chi.Router) {
		r.Use(middleware.APIKey(apiKey))
		r.Use(middleware.RateLimit(rateLimit))

		r.Get("/", h.ListItems)   // GET /action-items
		r.Post("/", h.CreateItem) // POST /action-items

		r.Route("/{id}", func(r chi.Router) {
			r.Put("/", h.UpdateItem)         // PUT /action-items/{id}
			r.Delete("/", h.DeleteItem)      // DELETE /action-items/{id}
			r.Patch("/status", h.SetStatus) // PATCH /action-items/{id}/status
		})
	})

	return otelhttp.NewHandler(r, "action-items")
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		a.Shutdown()
		return fmt.Errorf("запуск сервера: %w", err)
	case <-ctx.Done():
	}

	logger.Info("App: Остановка сервера...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := a.server.Shutdown(shutdownCtx)
	a.Shutdown()
	if err != nil {
		return fmt.Errorf("остановка сервера: %w", err)
	}
	return nil
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
