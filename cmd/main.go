package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	approveBookingHandler "github.com/m04kA/PetCare-BookingService/internal/api/handlers/approve_booking"
	cancelBookingHandler "github.com/m04kA/PetCare-BookingService/internal/api/handlers/cancel_booking"
	checkAvailabilityHandler "github.com/m04kA/PetCare-BookingService/internal/api/handlers/check_availability"
	completeBookingHandler "github.com/m04kA/PetCare-BookingService/internal/api/handlers/complete_booking"
	createBookingHandler "github.com/m04kA/PetCare-BookingService/internal/api/handlers/create_booking"
	getBookingHandler "github.com/m04kA/PetCare-BookingService/internal/api/handlers/get_booking"
	getBookingEventsHandler "github.com/m04kA/PetCare-BookingService/internal/api/handlers/get_booking_events"
	listBookingsHandler "github.com/m04kA/PetCare-BookingService/internal/api/handlers/list_bookings"
	rejectBookingHandler "github.com/m04kA/PetCare-BookingService/internal/api/handlers/reject_booking"
	rescheduleBookingHandler "github.com/m04kA/PetCare-BookingService/internal/api/handlers/reschedule_booking"
	"github.com/m04kA/PetCare-BookingService/internal/api/middleware"
	"github.com/m04kA/PetCare-BookingService/internal/config"
	"github.com/m04kA/PetCare-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/PetCare-BookingService/internal/infra/storage/booking"
	eventsRepo "github.com/m04kA/PetCare-BookingService/internal/infra/storage/events"
	ledgerRepo "github.com/m04kA/PetCare-BookingService/internal/infra/storage/ledger"
	petServiceClient "github.com/m04kA/PetCare-BookingService/internal/integrations/petservice"
	bookingsService "github.com/m04kA/PetCare-BookingService/internal/service/bookings"
	reservationsService "github.com/m04kA/PetCare-BookingService/internal/service/reservations"
	checkAvailabilityUC "github.com/m04kA/PetCare-BookingService/internal/usecase/check_availability"
	createBookingUC "github.com/m04kA/PetCare-BookingService/internal/usecase/create_booking"
	rescheduleBookingUC "github.com/m04kA/PetCare-BookingService/internal/usecase/reschedule_booking"
	"github.com/m04kA/PetCare-BookingService/pkg/dbmetrics"
	"github.com/m04kA/PetCare-BookingService/pkg/logger"
	"github.com/m04kA/PetCare-BookingService/pkg/metrics"
	"github.com/m04kA/PetCare-BookingService/pkg/simpletxmanager"
	"github.com/m04kA/PetCare-BookingService/pkg/txmanager"
)

// TxManager общий интерфейс менеджеров транзакций (с метриками и без)
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// noopPetClient отключенная интеграция с сервисом профилей питомцев
type noopPetClient struct{}

func (noopPetClient) GetPetWithGracefulDegradation(_ context.Context, _ int64) (*petServiceClient.Pet, error) {
	return nil, nil
}

// ledgerOccupyingStatuses возвращает статусы, занимающие вместимость
// при пересчете журнала, с учетом политики pending-бронирований
func ledgerOccupyingStatuses(pendingHoldsCapacity bool) []domain.BookingStatus {
	if pendingHoldsCapacity {
		return domain.NonTerminalStatuses
	}
	return []domain.BookingStatus{domain.StatusConfirmed}
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

	log.Info("Starting PetCare-BookingService...")
	log.Info("Configuration loaded from config.toml")

	// Каталог услуг статичен на время работы сервиса
	catalog, err := cfg.Catalog()
	if err != nil {
		log.Fatal("Failed to build service catalog: %v", err)
	}
	log.Info("Service catalog loaded: %d services", len(catalog))

	pendingHoldsCapacity := cfg.Booking.HoldsPendingCapacity()
	reservationTimeout := time.Duration(cfg.Booking.ReservationTimeout) * time.Second
	log.Info("Booking policy: pending_holds_capacity=%t, reservation_timeout=%s",
		pendingHoldsCapacity, reservationTimeout)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Клиент сервиса профилей питомцев (денормализация имени питомца)
	var petClient createBookingUC.PetServiceClient
	if cfg.PetService.Enabled {
		petClient = petServiceClient.NewClient(
			cfg.PetService.URL,
			time.Duration(cfg.PetService.Timeout)*time.Second,
			log,
		)
		log.Info("PetService client initialized (url=%s, timeout=%ds)",
			cfg.PetService.URL, cfg.PetService.Timeout)
	} else {
		petClient = noopPetClient{}
		log.Info("PetService integration disabled")
	}

	// Инициализируем репозитории и менеджер транзакций (с метриками или без)
	var (
		bookingRepository *bookingRepo.Repository
		ledgerRepository  *ledgerRepo.Repository
		eventsRepository  *eventsRepo.Repository
		txMgr             TxManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		ledgerRepository = ledgerRepo.NewRepository(wrappedDB)
		eventsRepository = eventsRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		ledgerRepository = ledgerRepo.NewRepository(db)
		eventsRepository = eventsRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Пересчет журнала вместимости из бронирований (если запрошен)
	if cfg.Booking.RebuildLedgerOnStart {
		statuses := ledgerOccupyingStatuses(pendingHoldsCapacity)
		log.Info("Rebuilding capacity ledger from bookings (statuses=%v)...", statuses)

		rebuildCtx, cancelRebuild := context.WithTimeout(context.Background(), time.Minute)
		if err := ledgerRepository.RebuildFromBookings(rebuildCtx, statuses); err != nil {
			cancelRebuild()
			log.Fatal("Failed to rebuild capacity ledger: %v", err)
		}
		cancelRebuild()
		log.Info("Capacity ledger rebuilt")
	}

	// Менеджер резерваций - единственная точка изменения журнала вместимости
	reservationManager := reservationsService.NewManager(ledgerRepository, txMgr, reservationTimeout, log)

	// Сервис переходов жизненного цикла
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		eventsRepository,
		reservationManager,
		txMgr,
		catalog,
		pendingHoldsCapacity,
		&bookingsService.RealTimeProvider{},
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		eventsRepository,
		reservationManager,
		petClient,
		txMgr,
		catalog,
		pendingHoldsCapacity,
		reservationTimeout,
		log,
	)

	rescheduleBookingUseCase := rescheduleBookingUC.NewUseCase(
		bookingRepository,
		eventsRepository,
		reservationManager,
		txMgr,
		catalog,
		pendingHoldsCapacity,
		reservationTimeout,
		log,
	)

	checkAvailabilityUseCase := checkAvailabilityUC.NewUseCase(
		ledgerRepository,
		txMgr,
		catalog,
		log,
	)

	// Инициализируем handlers
	checkAvailability := checkAvailabilityHandler.NewHandler(checkAvailabilityUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	listBookings := listBookingsHandler.NewHandler(bookingSvc, log)
	approveBooking := approveBookingHandler.NewHandler(bookingSvc, log)
	rejectBooking := rejectBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	completeBooking := completeBookingHandler.NewHandler(bookingSvc, log)
	rescheduleBooking := rescheduleBookingHandler.NewHandler(rescheduleBookingUseCase, bookingSvc, log)
	getBookingEvents := getBookingEventsHandler.NewHandler(bookingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware и endpoint (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступность услуги на диапазон дат
	api.HandleFunc("/services/{serviceId}/availability", checkAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	// Создание бронирования
	protected.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)

	// Список бронирований
	protected.HandleFunc("/bookings", listBookings.Handle).Methods(http.MethodGet)

	// Получение бронирования по ID
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)

	// История событий бронирования
	protected.HandleFunc("/bookings/{bookingId}/events", getBookingEvents.Handle).Methods(http.MethodGet)

	// --- Переходы жизненного цикла ---
	protected.HandleFunc("/bookings/{bookingId}/approve", approveBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/reject", rejectBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/complete", completeBooking.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/bookings/{bookingId}/reschedule", rescheduleBooking.Handle).Methods(http.MethodPatch)

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

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

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
