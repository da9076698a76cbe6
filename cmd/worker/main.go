package main

import (
	"log"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/coach-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/coach-scheduler/internal/db"
	infraRepo "github.com/BruksfildServices01/coach-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/coach-scheduler/internal/logger"
	"github.com/BruksfildServices01/coach-scheduler/internal/reminder"
	"github.com/BruksfildServices01/coach-scheduler/internal/timezone"
)

// The worker delivers booking reminders queued by the API. It reads
// bookings from postgres, so both DATABASE_URL and REDIS_ADDR are required.
func main() {

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	timezone.SetDefault(cfg.DefaultTimezone)

	if cfg.DBUrl == "" || cfg.RedisAddr == "" {
		zl.Fatal("reminder worker needs DATABASE_URL and REDIS_ADDR")
	}

	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		zl.Fatal("database unavailable", zap.Error(err))
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisQueueDB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: zl.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(reminder.TypeBookingReminder, reminder.NewHandler(infraRepo.NewBookingGormRepository(db), zl))

	zl.Info("reminder worker starting", zap.String("redis", cfg.RedisAddr))

	// Run blocks until SIGTERM/SIGINT and drains in-flight tasks.
	if err := srv.Run(mux); err != nil {
		zl.Fatal("reminder worker stopped", zap.Error(err))
	}
}
