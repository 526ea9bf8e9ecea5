package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eclat/internal/api"
	"eclat/internal/config"
	"eclat/internal/database"
	"eclat/internal/domain"
	"eclat/internal/events"
	"eclat/internal/export"
	"eclat/internal/logging"
	"eclat/internal/mailer"
	"eclat/internal/metrics"
	"eclat/internal/repository"
	"eclat/internal/service"
	"eclat/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	engine, err := cfg.Schedule()
	if err != nil {
		return fmt.Errorf("build schedule engine: %w", err)
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()
	db.SetEngine(engine)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	cache := initScheduleCache(cfg, redisClient, &logger)

	eventBus := events.NewEventBus()
	mail := initMailer(cfg, &logger)
	subscribeMailHandlers(eventBus, mail, db, &logger)

	booking := service.NewBookingService(db, engine, cache, eventBus, cfg.Booking.MaxBookingDays, &logger)
	closures := service.NewClosureService(db, cache, eventBus, &logger)
	giftCards := service.NewGiftCardService(db, eventBus, &logger)
	clients := service.NewClientService(db)
	exporter := export.NewAgendaExporter(db, engine.Grid(), &logger)

	reminderWorker := worker.NewReminderWorker(db, mail, worker.RetryPolicy{}, &logger)
	go reminderWorker.Start(ctx)
	if err := reminderWorker.Schedule(ctx, cfg.Booking.ReminderTime); err != nil {
		logger.Error().Err(err).Msg("reminder scheduling failed, continuing without reminders")
	}
	defer func() { _ = reminderWorker.Shutdown() }()

	backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
	go backup.Start(ctx)

	startMetrics(ctx, cfg, &logger)

	httpServer := api.NewHTTPServer(cfg, booking, closures, giftCards, clients, exporter, &logger)
	return serve(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if !cfg.Redis.Enabled || cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing with in-memory cache")
		_ = redisClient.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// initScheduleCache wires the day-schedule cache: redis with in-memory
// failover when redis is configured, plain in-memory otherwise.
func initScheduleCache(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.ScheduleCache {
	memory := repository.NewMemoryScheduleCache(0)
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisScheduleCache(redisClient, 0)
	return repository.NewFailoverScheduleCache(primary, memory, logger)
}

func initMailer(cfg *config.Config, logger *zerolog.Logger) domain.Mailer {
	if !cfg.SMTP.Enabled {
		return mailer.NewNoopMailer(logger)
	}
	logger.Info().Str("host", cfg.SMTP.Host).Msg("smtp mailer enabled")
	return mailer.NewSMTPMailer(cfg.SMTP, logger)
}

// subscribeMailHandlers sends confirmation and notification email off the
// event bus, so a slow SMTP relay never blocks the booking response.
func subscribeMailHandlers(bus *events.EventBus, mail domain.Mailer, db *database.DB, logger *zerolog.Logger) {
	bus.Subscribe(events.EventAppointmentCreated, func(event *events.Event) error {
		var payload events.AppointmentEventPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}

		apt, err := db.GetAppointmentByReference(context.Background(), payload.Reference)
		if err != nil {
			logger.Error().Err(err).Str("reference", payload.Reference).Msg("load appointment for email")
			return err
		}

		go func() {
			if err := mail.SendBookingConfirmation(apt); err != nil {
				logger.Error().Err(err).Str("reference", apt.Reference).Msg("send booking confirmation")
			}
			if err := mail.SendAdminNotification(apt); err != nil {
				logger.Error().Err(err).Str("reference", apt.Reference).Msg("send admin notification")
			}
		}()
		return nil
	})

	bus.Subscribe(events.EventGiftCardIssued, func(event *events.Event) error {
		var payload struct {
			Code string `json:"code"`
		}
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return err
		}

		card, err := db.GetGiftCardByCode(context.Background(), payload.Code)
		if err != nil {
			logger.Error().Err(err).Str("code", payload.Code).Msg("load gift card for email")
			return err
		}

		go func() {
			if err := mail.SendGiftCard(card); err != nil {
				logger.Error().Err(err).Str("code", card.Code).Msg("send gift card email")
			}
		}()
		return nil
	})
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func serve(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}
