package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/coach-scheduler/internal/audit"
	"github.com/BruksfildServices01/coach-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/coach-scheduler/internal/db"
	domain "github.com/BruksfildServices01/coach-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/coach-scheduler/internal/fixtures"
	infraRepo "github.com/BruksfildServices01/coach-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/coach-scheduler/internal/infra/session"
	"github.com/BruksfildServices01/coach-scheduler/internal/logger"
	"github.com/BruksfildServices01/coach-scheduler/internal/reminder"
	"github.com/BruksfildServices01/coach-scheduler/internal/routes"
	"github.com/BruksfildServices01/coach-scheduler/internal/timezone"
	ucBooking "github.com/BruksfildServices01/coach-scheduler/internal/usecase/booking"
)

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

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// ======================================================
	// STORAGE
	// ======================================================
	var (
		repo       domain.Repository
		auditStore audit.Store
	)

	if cfg.DBUrl != "" {
		db, err := dbpkg.NewDB(cfg)
		if err != nil {
			zl.Fatal("database unavailable", zap.Error(err))
		}

		if cfg.SeedFixtures {
			coaches, err := fixtures.Coaches()
			if err != nil {
				zl.Fatal("invalid sample catalogue", zap.Error(err))
			}
			if err := dbpkg.SeedCoaches(context.Background(), db, coaches, zl); err != nil {
				zl.Fatal("seed failed", zap.Error(err))
			}
		}

		repo = infraRepo.NewBookingGormRepository(db)
		auditStore = audit.NewGormStore(db)
	} else {
		sample, err := fixtures.NewSampleRepository()
		if err != nil {
			zl.Fatal("invalid sample catalogue", zap.Error(err))
		}
		zl.Warn("DATABASE_URL not set, serving the in-memory sample catalogue")

		repo = sample
		auditStore = audit.NewMemoryStore()
	}

	// ======================================================
	// SESSIONS + REMINDERS
	// ======================================================
	var (
		sessions  domain.SessionStore
		reminders ucBooking.ReminderScheduler
	)

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisSessionDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(context.Background()).Err(); err != nil {
			zl.Fatal("redis unavailable", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)

		queue := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisQueueDB,
		})
		defer queue.Close()
		reminders = reminder.NewScheduler(queue, cfg.ReminderLead)
	} else {
		zl.Warn("REDIS_ADDR not set, booking sessions kept in memory and reminders disabled")
		sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	dispatcher := audit.NewDispatcher(audit.New(auditStore), zl)

	// ======================================================
	// HTTP
	// ======================================================
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Config:     cfg,
		Log:        zl,
		Repo:       repo,
		Sessions:   sessions,
		AuditStore: auditStore,
		Audit:      dispatcher,
		Reminders:  reminders,
	})

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	go func() {
		zl.Info("server running", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	dispatcher.Close()
	zl.Info("server exited")
}
