package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/segyhp/dealer-billing/internal/config"
	"github.com/segyhp/dealer-billing/internal/repository"
	"github.com/segyhp/dealer-billing/internal/scheduler"
	"github.com/segyhp/dealer-billing/internal/service"
	"github.com/segyhp/dealer-billing/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLog := logger.New(logger.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})
	logger.SetGlobalLogger(appLog)
	appLog.Info().Msg("Starting billing scheduler...")

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		appLog.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	billingService := service.NewBillingService(
		repository.NewSaleRepository(db),
		repository.NewPaymentRepository(db),
		repository.NewRedisKeyStore(redisClient, "billing:idempotency:"),
		cfg,
		appLog,
	)
	locks := repository.NewRedisKeyStore(redisClient, "billing:lock:")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scheduler.New(ctx, appLog, cfg.Location())

	// Daily portfolio sweep
	sweep := scheduler.NewDelinquencySweepJob(billingService, locks, appLog)
	if err := s.AddJob(cfg.Scheduler.SweepSchedule, sweep); err != nil {
		appLog.Fatal().Err(err).Msg("Error scheduling delinquency sweep job")
	}

	// Daily reminders for installments due soon
	reminders := scheduler.NewPaymentReminderJob(billingService, cfg.Business.ReminderWindowDays, appLog)
	if err := s.AddJob(cfg.Scheduler.ReminderSchedule, reminders); err != nil {
		appLog.Fatal().Err(err).Msg("Error scheduling payment reminder job")
	}

	s.Start()

	if cfg.Scheduler.SweepOnStart {
		// The day lock keeps this from repeating a sweep that already ran today.
		if err := s.RunNow(sweep); err != nil {
			appLog.Error().Err(err).Msg("Startup delinquency sweep failed")
		}
	}

	<-ctx.Done()
	appLog.Info().Msg("Shutting down scheduler...")
	s.Stop()
}
