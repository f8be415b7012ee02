package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	catalogapp "github.com/stockledger/backend/internal/application/catalog"
	inventoryapp "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/infrastructure/cache"
	"github.com/stockledger/backend/internal/infrastructure/config"
	"github.com/stockledger/backend/internal/infrastructure/event"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"github.com/stockledger/backend/internal/infrastructure/persistence"
	"github.com/stockledger/backend/internal/infrastructure/telemetry"
	"github.com/stockledger/backend/internal/interfaces/http/handler"
	"github.com/stockledger/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	// Telemetry is bootstrapped before anything else logs heavily so the
	// OTEL log bridge can be teed into the main logger.
	tp, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, cfg.App.Name, log)
	if err != nil {
		log.Fatal("failed to initialize tracer provider", zap.Error(err))
	}
	lp, err := telemetry.NewLoggerProvider(context.Background(), cfg.Telemetry, cfg.App.Name, log)
	if err != nil {
		log.Fatal("failed to initialize logger provider", zap.Error(err))
	}
	if lp.IsEnabled() {
		bridged, err := logger.NewWithCore(cfg.Log, lp.ZapCore(cfg.App.Name, logger.ParseLevel(cfg.Log.Level)))
		if err != nil {
			log.Fatal("failed to initialize bridged logger", zap.Error(err))
		}
		log = bridged
	}

	log.Info("starting stock ledger service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()
	log.Info("database connected")

	if tp.IsEnabled() {
		if err := telemetry.RegisterGormTracing(db.DB, cfg.Database.DBName); err != nil {
			log.Warn("database tracing not registered", zap.Error(err))
		}
	}

	// Repositories
	itemRepo := persistence.NewGormItemRepository(db.DB)
	entryRepo := persistence.NewGormStockEntryRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	levelRepo := persistence.NewGormStockLevelRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// Event bus
	var bus *event.InMemoryEventBus
	if cfg.Event.Async {
		bus = event.NewAsyncEventBus(log)
	} else {
		bus = event.NewInMemoryEventBus(log)
	}
	lowStock := inventoryapp.NewLowStockHandler(log)
	bus.Subscribe(lowStock, lowStock.EventTypes()...)

	// Application services
	itemService := catalogapp.NewItemService(itemRepo)
	itemService.SetEventPublisher(bus)

	entryService := inventoryapp.NewStockEntryService(entryRepo, batchRepo, scope)
	entryService.SetEventPublisher(bus)

	batchService := inventoryapp.NewBatchService(batchRepo, catalogapp.NewItemLookupAdapter(itemRepo))
	batchService.SetEventPublisher(bus)

	levelService := inventoryapp.NewStockLevelService(levelRepo, movementRepo, scope)
	levelService.SetEventPublisher(bus)

	// Optional Redis read-through cache for balance lookups
	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable, balance cache disabled", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		}
		cancel()
	}
	if redisClient != nil {
		levelCache := cache.NewRedisStockLevelCache(redisClient, log, cfg.Redis.CacheTTL)
		levelService.SetCache(levelCache)
		invalidator := inventoryapp.NewBalanceCacheHandler(log, levelCache)
		bus.Subscribe(invalidator, invalidator.EventTypes()...)
		log.Info("balance cache enabled", zap.String("addr", cfg.Redis.Addr()))
	}

	// HTTP
	var tracingMiddleware gin.HandlerFunc
	if tp.IsEnabled() {
		tracingMiddleware = telemetry.GinMiddleware(cfg.App.Name)
	}
	r := router.NewWithTracing(log, cfg.App.IsProduction(), tracingMiddleware,
		handler.NewItemHandler(itemService),
		handler.NewStockEntryHandler(entryService),
		handler.NewBatchHandler(batchService),
		handler.NewStockLevelHandler(levelService),
	)
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := r.Engine().SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("invalid trusted proxies", zap.Error(err))
		}
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        r.Handler(),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	// Drain in-flight async event handlers before closing resources.
	bus.Wait()
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		log.Error("tracer provider shutdown", zap.Error(err))
	}
	if err := lp.Shutdown(context.Background()); err != nil {
		log.Error("logger provider shutdown", zap.Error(err))
	}
	log.Info("stopped")
}
