package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	addSlotsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/add_slots"
	allocateBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/allocate_booking"
	approveBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/approve_booking"
	cancelBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/cancel_booking"
	createFacilityHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/create_facility"
	deleteFacilityHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/delete_facility"
	endBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/end_booking"
	extendBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/extend_booking"
	getAvailableSlotsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_available_slots"
	getBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_booking"
	getBookingQRHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_booking_qr"
	getFacilityHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_facility"
	getFacilityPricingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_facility_pricing"
	getHostBookingsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_host_bookings"
	getHostEarningsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_host_earnings"
	getUserBookingsHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/get_user_bookings"
	listBookingDisputesHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/list_booking_disputes"
	listFacilitiesHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/list_facilities"
	openDisputeHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/open_dispute"
	rejectBookingHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/reject_booking"
	resolveDisputeHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/resolve_dispute"
	updateFacilityHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/update_facility"
	updateSlotHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/update_slot"
	verifyEntryHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/verify_entry"
	verifyExitHandler "github.com/m04kA/SMC-ParkingService/internal/api/handlers/verify_exit"
	"github.com/m04kA/SMC-ParkingService/internal/api/middleware"
	"github.com/m04kA/SMC-ParkingService/internal/config"
	"github.com/m04kA/SMC-ParkingService/internal/integrations/notificationservice"
	"github.com/m04kA/SMC-ParkingService/internal/jobs/expiry"
	bookingsService "github.com/m04kA/SMC-ParkingService/internal/service/bookings"
	disputesService "github.com/m04kA/SMC-ParkingService/internal/service/disputes"
	facilitiesService "github.com/m04kA/SMC-ParkingService/internal/service/facilities"
	allocateSlotUC "github.com/m04kA/SMC-ParkingService/internal/usecase/allocate_slot"
	getAvailableSlotsUC "github.com/m04kA/SMC-ParkingService/internal/usecase/get_available_slots"
	verifyAccessUC "github.com/m04kA/SMC-ParkingService/internal/usecase/verify_access"
	"github.com/m04kA/SMC-ParkingService/pkg/logger"
	"github.com/m04kA/SMC-ParkingService/pkg/metrics"
)

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

	log.Info("Starting SMC-ParkingService...")
	log.Info("Configuration loaded from config.toml (storage=%s)", cfg.Storage.Driver)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаем хранилище
	store, err := openStorage(cfg, metricsCollector, stopMetricsCh, log)
	if err != nil {
		log.Fatal("Failed to initialize storage: %v", err)
	}
	defer store.close()

	// Уведомления: HTTP клиент или запись в лог
	var notifier interface {
		Notify(ctx context.Context, n notificationservice.Notification) error
	}
	if cfg.NotificationService.Enabled {
		notifier = notificationservice.NewClient(
			cfg.NotificationService.URL,
			time.Duration(cfg.NotificationService.Timeout)*time.Second,
			log,
		)
		log.Info("NotificationService client initialized (url=%s, timeout=%ds)",
			cfg.NotificationService.URL, cfg.NotificationService.Timeout)
	} else {
		notifier = notificationservice.NewLogNotifier(log)
		log.Info("NotificationService disabled, notifications are written to log")
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		store.bookings,
		store.facilities,
		store.tx,
		notifier,
		metricsCollector,
		log,
	)
	facilitySvc := facilitiesService.NewService(
		store.facilities,
		store.tx,
		log,
	)
	disputeSvc := disputesService.NewService(
		store.disputes,
		store.bookings,
		store.tx,
		notifier,
		log,
	)

	// Инициализируем use cases
	allocateSlotUseCase := allocateSlotUC.NewUseCase(
		store.facilities,
		store.bookings,
		store.tx,
		notifier,
		metricsCollector,
		log,
	)
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(store.facilities, log)
	verifyAccessUseCase := verifyAccessUC.NewUseCase(
		store.bookings,
		store.facilities,
		bookingSvc,
		cfg.AccessCode.Namespace,
		log,
	)

	// Фоновое истечение заявок без ответа хоста
	var expiryJob *expiry.Job
	if cfg.Expiry.Enabled {
		expiryJob, err = expiry.NewJob(bookingSvc, cfg.Expiry.Schedule, log)
		if err != nil {
			log.Fatal("Failed to schedule expiry job: %v", err)
		}
		expiryJob.Start()
	}

	// Инициализируем handlers
	createFacility := createFacilityHandler.NewHandler(facilitySvc, log)
	getFacility := getFacilityHandler.NewHandler(facilitySvc, log)
	updateFacility := updateFacilityHandler.NewHandler(facilitySvc, log)
	deleteFacility := deleteFacilityHandler.NewHandler(facilitySvc, log)
	listFacilities := listFacilitiesHandler.NewHandler(facilitySvc, log)
	getFacilityPricing := getFacilityPricingHandler.NewHandler(facilitySvc, log)
	addSlots := addSlotsHandler.NewHandler(facilitySvc, log)
	updateSlot := updateSlotHandler.NewHandler(facilitySvc, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, log)

	allocateBooking := allocateBookingHandler.NewHandler(allocateSlotUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getBookingQR := getBookingQRHandler.NewHandler(bookingSvc, cfg.AccessCode.Namespace, cfg.AccessCode.QRSize, log)
	approveBooking := approveBookingHandler.NewHandler(bookingSvc, log)
	rejectBooking := rejectBookingHandler.NewHandler(bookingSvc, log)
	extendBooking := extendBookingHandler.NewHandler(bookingSvc, log)
	endBooking := endBookingHandler.NewHandler(bookingSvc, log)
	cancelBooking := cancelBookingHandler.NewHandler(bookingSvc, log)
	getUserBookings := getUserBookingsHandler.NewHandler(bookingSvc, log)
	getHostBookings := getHostBookingsHandler.NewHandler(bookingSvc, log)
	getHostEarnings := getHostEarningsHandler.NewHandler(bookingSvc, log)

	verifyEntry := verifyEntryHandler.NewHandler(verifyAccessUseCase, log)
	verifyExit := verifyExitHandler.NewHandler(verifyAccessUseCase, log)

	openDispute := openDisputeHandler.NewHandler(disputeSvc, log)
	resolveDispute := resolveDisputeHandler.NewHandler(disputeSvc, log)
	listBookingDisputes := listBookingDisputesHandler.NewHandler(disputeSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.Recover(log))

	// Добавляем metrics middleware (если метрики включены)
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

	// Поиск площадок и карточка площадки
	api.HandleFunc("/facilities", listFacilities.Handle).Methods(http.MethodGet)
	api.HandleFunc("/facilities/{facilityId}", getFacility.Handle).Methods(http.MethodGet)

	// Свободные места и рекомендация цены
	api.HandleFunc("/facilities/{facilityId}/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)
	api.HandleFunc("/facilities/{facilityId}/pricing", getFacilityPricing.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Площадки (для хостов) ---
	protected.HandleFunc("/facilities", createFacility.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/facilities/{facilityId}", updateFacility.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/facilities/{facilityId}", deleteFacility.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/facilities/{facilityId}/slots", addSlots.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/facilities/{facilityId}/slots/{slotId}", updateSlot.Handle).Methods(http.MethodPatch)

	// --- Бронирования ---
	protected.HandleFunc("/bookings", allocateBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/qr", getBookingQR.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/bookings/{bookingId}/approve", approveBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/reject", rejectBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/extend", extendBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/end", endBooking.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPost)

	// История бронирований водителя и хоста
	protected.HandleFunc("/users/{userId}/bookings", getUserBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/hosts/{hostId}/bookings", getHostBookings.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/hosts/{hostId}/earnings", getHostEarnings.Handle).Methods(http.MethodGet)

	// --- Коды доступа ---
	protected.HandleFunc("/access/entry", verifyEntry.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/access/exit", verifyExit.Handle).Methods(http.MethodPost)

	// --- Жалобы ---
	protected.HandleFunc("/bookings/{bookingId}/disputes", openDispute.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/bookings/{bookingId}/disputes", listBookingDisputes.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/disputes/{disputeId}/resolve", resolveDispute.Handle).Methods(http.MethodPost)

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

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся текущего прогона expiry
	if expiryJob != nil {
		expiryJob.Stop(shutdownCtx)
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
