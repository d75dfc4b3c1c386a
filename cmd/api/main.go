package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Lelo88/inventory-api-golang/internal/barcode"
	"github.com/Lelo88/inventory-api-golang/internal/cache"
	"github.com/Lelo88/inventory-api-golang/internal/config"
	"github.com/Lelo88/inventory-api-golang/internal/dashboard"
	"github.com/Lelo88/inventory-api-golang/internal/db"
	"github.com/Lelo88/inventory-api-golang/internal/docs"
	"github.com/Lelo88/inventory-api-golang/internal/health"
	"github.com/Lelo88/inventory-api-golang/internal/httpx"
	"github.com/Lelo88/inventory-api-golang/internal/items"
	"github.com/Lelo88/inventory-api-golang/internal/logger"
)

const (
	requestTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

// backend es la persistencia elegida por STORE_DRIVER.
type backend struct {
	store  items.Store
	pinger health.Pinger
	close  func()
}

// appDeps agrupa lo que run necesita del mundo exterior, para poder reemplazarlo en tests.
type appDeps struct {
	loadConfig func() (config.Config, error)
	newLogger  func(environment string) (*zap.Logger, error)
	openStore  func(ctx context.Context, cfg config.Config) (backend, error)
	newCache   func(opts cache.Options, logger *zap.Logger) cache.Cache
	serve      func(ctx context.Context, server *http.Server) error
}

var (
	runFn  = run
	fatalf = log.Fatal
)

func main() {
	// El contexto raíz se cancela con SIGINT/SIGTERM y dispara el shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runFn(ctx, defaultDeps()); err != nil {
		fatalf(err)
	}
}

func defaultDeps() appDeps {
	return appDeps{
		loadConfig: config.Load,
		newLogger:  logger.New,
		openStore:  openStore,
		newCache:   cache.New,
		serve:      serveHTTP,
	}
}

func run(ctx context.Context, deps appDeps) error {
	cfg, err := deps.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	appLogger, err := deps.newLogger(cfg.Environment)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = appLogger.Sync() }()

	store, err := deps.openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer store.close()

	renderCache := deps.newCache(cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, appLogger)
	if closer, ok := renderCache.(interface{ Close() error }); ok {
		defer func() { _ = closer.Close() }()
	}

	itemService := items.NewService(store.store, cfg.LowStockThreshold, appLogger)
	if cfg.SeedSampleData {
		if _, err := items.SeedSampleData(ctx, itemService, appLogger); err != nil {
			return fmt.Errorf("seed sample data: %w", err)
		}
	}

	codec := barcode.NewCodec(barcode.Options{
		BarcodeWidth:  cfg.BarcodeWidth,
		BarcodeHeight: cfg.BarcodeHeight,
		QRWidth:       cfg.QRWidth,
		QRHeight:      cfg.QRHeight,
	})
	renderer := barcode.NewService(codec, renderCache, cfg.RenderCacheTTL, appLogger)

	router := buildRouter(routerDeps{
		logger:     appLogger,
		corsOrigin: cfg.CORSAllowedOrigin,
		pinger:     store.pinger,
		items:      items.NewHandler(itemService, dashboard.NewAggregator(store.store)),
		barcode:    barcode.NewHandler(renderer, itemService, appLogger),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	appLogger.Info("listening",
		zap.String("addr", server.Addr),
		zap.String("store", cfg.StoreDriver),
		zap.String("environment", cfg.Environment),
	)
	return deps.serve(ctx, server)
}

// openStore abre la base según el driver y deja el esquema listo.
func openStore(ctx context.Context, cfg config.Config) (backend, error) {
	if cfg.StoreDriver == config.DriverSQLite {
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return backend{}, err
		}
		repository := items.NewSQLiteRepository(conn)
		return backend{
			store:  repository,
			pinger: repository,
			close:  func() { _ = conn.Close() },
		}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return backend{}, err
	}
	if err := db.MigratePostgres(ctx, pool); err != nil {
		pool.Close()
		return backend{}, err
	}
	return backend{
		store:  items.NewRepository(pool),
		pinger: pool,
		close:  pool.Close,
	}, nil
}

// serveHTTP atiende hasta que ctx se cancela y después cierra sin cortar requests en curso.
func serveHTTP(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

type routerDeps struct {
	logger     *zap.Logger
	corsOrigin string
	pinger     health.Pinger
	items      *items.Handler
	barcode    *barcode.Handler
}

func buildRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	// Middlewares base para trazabilidad y estabilidad.
	r.Use(httpx.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(deps.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(httpx.CORS(deps.corsOrigin))

	// Errores de routing se manejan a nivel router.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, r, http.StatusNotFound, httpx.CodeNotFound, "resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	healthHandler := health.New(deps.pinger)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	docs.RegisterRoutes(r)

	r.Route("/api", func(r chi.Router) {
		items.RegisterRoutes(r, deps.items)
		barcode.RegisterRoutes(r, deps.barcode)
	})

	return r
}
