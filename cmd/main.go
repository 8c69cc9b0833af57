package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	allocateSlotHandler "github.com/m04kA/SMC-StaffAllocator/internal/api/handlers/allocate_slot"
	clearOutDayHandler "github.com/m04kA/SMC-StaffAllocator/internal/api/handlers/clear_out_day"
	getAvailabilityHandler "github.com/m04kA/SMC-StaffAllocator/internal/api/handlers/get_availability"
	getDayRecordsHandler "github.com/m04kA/SMC-StaffAllocator/internal/api/handlers/get_day_records"
	healthHandler "github.com/m04kA/SMC-StaffAllocator/internal/api/handlers/health"
	releaseSlotHandler "github.com/m04kA/SMC-StaffAllocator/internal/api/handlers/release_slot"
	"github.com/m04kA/SMC-StaffAllocator/internal/api/middleware"
	"github.com/m04kA/SMC-StaffAllocator/internal/availability"
	"github.com/m04kA/SMC-StaffAllocator/internal/config"
	"github.com/m04kA/SMC-StaffAllocator/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-StaffAllocator/internal/infra/storage/availability"
	"github.com/m04kA/SMC-StaffAllocator/internal/infra/storage/availabilitymem"
	"github.com/m04kA/SMC-StaffAllocator/internal/infra/storage/availabilityredis"
	"github.com/m04kA/SMC-StaffAllocator/internal/integrations/notifier"
	"github.com/m04kA/SMC-StaffAllocator/internal/integrations/staffdirectory"
	"github.com/m04kA/SMC-StaffAllocator/internal/service/daystate"
	"github.com/m04kA/SMC-StaffAllocator/internal/service/slotledger"
	allocateSlotUC "github.com/m04kA/SMC-StaffAllocator/internal/usecase/allocate_slot"
	computeAvailabilityUC "github.com/m04kA/SMC-StaffAllocator/internal/usecase/compute_availability"
	releaseSlotUC "github.com/m04kA/SMC-StaffAllocator/internal/usecase/release_slot"
	"github.com/m04kA/SMC-StaffAllocator/migrations"
	"github.com/m04kA/SMC-StaffAllocator/pkg/dbmetrics"
	"github.com/m04kA/SMC-StaffAllocator/pkg/logger"
	"github.com/m04kA/SMC-StaffAllocator/pkg/metrics"
)

// availabilityStore общий контракт трех бэкендов хранилища
type availabilityStore interface {
	slotledger.Store
	GetAllForDate(ctx context.Context, date time.Time) ([]*domain.AvailabilityRecord, error)
	Ping(ctx context.Context) error
}

type staffLister interface {
	ListEligibleStaff(ctx context.Context, date time.Time) ([]int64, error)
}

type publisher interface {
	Publish(ctx context.Context, event notifier.Event) error
	Close() error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-StaffAllocator...")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})
	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Сетка рабочего времени неизменна после старта
	grid, err := domain.NewTimeGrid(cfg.Grid.Opening, cfg.Grid.Closing, cfg.Grid.GranularityMinutes)
	if err != nil {
		log.Fatal("Invalid grid configuration: %v", err)
	}
	log.Info("Time grid %s-%s, step %d min", grid.Opening(), grid.Closing(), grid.GranularityMinutes())

	// Хранилище записей доступности
	var store availabilityStore
	switch cfg.Allocation.Store {
	case config.StorePostgres:
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		if cfg.Database.MigrationsEnabled {
			if err := migrations.Up(context.Background(), db); err != nil {
				log.Fatal("Failed to apply migrations: %v", err)
			}
			log.Info("Database migrations applied")
		}

		if cfg.Metrics.Enabled {
			store = availabilityRepo.NewRepository(dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh))
			log.Info("Database metrics collection started")
		} else {
			store = availabilityRepo.NewRepository(db)
		}

	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to ping redis: %v", err)
		}
		store = availabilityredis.NewRepository(rdb, cfg.Redis.KeyPrefix)
		log.Info("Using redis availability store (addr=%s, prefix=%s)", cfg.Redis.Addr, cfg.Redis.KeyPrefix)

	case config.StoreMemory:
		store = availabilitymem.NewRepository()
		log.Warn("Using in-memory availability store, records are lost on restart")
	}

	// Справочник сотрудников: HTTP сервис, статический список или ничего
	var directory staffLister
	switch {
	case cfg.StaffService.URL != "":
		directory = staffdirectory.NewClient(
			cfg.StaffService.URL,
			time.Duration(cfg.StaffService.Timeout)*time.Second,
			log,
		)
		log.Info("Staff directory client initialized (url=%s, timeout=%ds)", cfg.StaffService.URL, cfg.StaffService.Timeout)
	case len(cfg.Allocation.DefaultStaffIDs) > 0:
		directory = staffdirectory.Static(cfg.Allocation.DefaultStaffIDs)
		log.Info("Using static staff list: %v", cfg.Allocation.DefaultStaffIDs)
	default:
		log.Warn("Staff directory is not configured, staffIds are required in requests")
	}

	// Уведомления о бронированиях
	var events publisher
	switch cfg.Notifications.Driver {
	case config.NotifierAsynq:
		events = notifier.NewAsynqPublisher(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Notifications.Queue, cfg.Notifications.MaxRetry)
		log.Info("Notifications via asynq (queue=%s)", cfg.Notifications.Queue)
	case config.NotifierKafka:
		events = notifier.NewKafkaPublisher(strings.Join(cfg.Notifications.Brokers, ","), cfg.Notifications.Topic)
		log.Info("Notifications via kafka (topic=%s)", cfg.Notifications.Topic)
	default:
		events = notifier.Noop{}
	}
	defer events.Close()

	// Инициализируем сервисы
	computer := availability.NewComputer(grid)
	ledger := slotledger.NewLedger(store, cfg.Allocation.MaxWriteAttempts, metricsCollector, log)
	dayStateSvc := daystate.NewService(store, ledger, log)

	// Инициализируем use cases
	computeAvailabilityUseCase := computeAvailabilityUC.NewUseCase(store, computer, directory, log)
	allocateSlotUseCase := allocateSlotUC.NewUseCase(store, ledger, computer, directory, events, metricsCollector, log)
	releaseSlotUseCase := releaseSlotUC.NewUseCase(ledger, grid, events, metricsCollector, log)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(computeAvailabilityUseCase, log)
	allocateSlot := allocateSlotHandler.NewHandler(allocateSlotUseCase, log)
	releaseSlot := releaseSlotHandler.NewHandler(releaseSlotUseCase, log)
	getDayRecords := getDayRecordsHandler.NewHandler(dayStateSvc, log)
	clearOutDay := clearOutDayHandler.NewHandler(dayStateSvc, log)
	health := healthHandler.NewHandler(store, 2*time.Second, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r.HandleFunc("/healthz", health.Live).Methods(http.MethodGet)
	r.HandleFunc("/readyz", health.Ready).Methods(http.MethodGet)

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()
	if cfg.RateLimit.Enabled {
		api.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log).Middleware())
		log.Info("Rate limit enabled (rps=%.1f, burst=%d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	// --- Доступность и бронирование ---
	api.HandleFunc("/availability", getAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/allocations", allocateSlot.Handle).Methods(http.MethodPost)
	api.HandleFunc("/allocations/release", releaseSlot.Handle).Methods(http.MethodPost)

	// --- Администрирование дня ---
	api.HandleFunc("/days/{date}/records", getDayRecords.Handle).Methods(http.MethodGet)
	api.HandleFunc("/staff/{staffId}/days/{date}/clear-out", clearOutDay.HandleClearOut).Methods(http.MethodPut)
	api.HandleFunc("/staff/{staffId}/days/{date}/clear-out", clearOutDay.HandleRestore).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
