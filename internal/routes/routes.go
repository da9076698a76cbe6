package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/coach-scheduler/internal/audit"
	"github.com/BruksfildServices01/coach-scheduler/internal/config"
	domain "github.com/BruksfildServices01/coach-scheduler/internal/domain/booking"
	"github.com/BruksfildServices01/coach-scheduler/internal/handlers"
	"github.com/BruksfildServices01/coach-scheduler/internal/logger"
	"github.com/BruksfildServices01/coach-scheduler/internal/middleware"
	ucBooking "github.com/BruksfildServices01/coach-scheduler/internal/usecase/booking"
	"github.com/BruksfildServices01/coach-scheduler/internal/validators"
)

// Deps are the singletons built by main. Reminders may be nil.
type Deps struct {
	Config     *config.Config
	Log        *zap.Logger
	Repo       domain.Repository
	Sessions   domain.SessionStore
	AuditStore audit.Store
	Audit      *audit.Dispatcher
	Reminders  ucBooking.ReminderScheduler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	if d.Log == nil {
		d.Log = zap.NewNop()
	}

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(logger.GinLogger(d.Log))
	r.Use(middleware.CORSMiddleware(cfg.Origins()))
	r.Use(middleware.NewRateLimiter(cfg.RateLimitPerMin).Middleware())

	// ======================================================
	// USE CASES
	// ======================================================
	catalogueUC := ucBooking.NewCatalogue(d.Repo)
	slotsUC := ucBooking.NewGetSlots(d.Repo)

	sessionCfg := ucBooking.SessionConfig{
		FreeIntroMinutes: cfg.FreeIntroMinutes,
		SubmitLockTTL:    30 * time.Second,
	}
	if cfg.VerifyEmailDomain {
		sessionCfg.EmailCheck = validators.IsEmailDomainValid
	}
	sessionService := ucBooking.NewSessionService(
		d.Repo,
		d.Sessions,
		d.Audit,
		d.Reminders,
		d.Log,
		sessionCfg,
	)

	confirmUC := ucBooking.NewConfirmBooking(d.Repo, d.Audit)
	cancelUC := ucBooking.NewCancelBooking(d.Repo, d.Audit)
	completeUC := ucBooking.NewCompleteBooking(d.Repo, d.Audit)
	listByDateUC := ucBooking.NewListBookingsByDate(d.Repo)
	listByMonthUC := ucBooking.NewListBookingsByMonth(d.Repo)
	listMineUC := ucBooking.NewListStudentBookings(d.Repo)
	exportUC := ucBooking.NewExportCalendar(d.Repo)

	// ======================================================
	// HANDLERS
	// ======================================================
	coachHandler := handlers.NewCoachHandler(catalogueUC, slotsUC)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	bookingHandler := handlers.NewBookingHandler(
		confirmUC,
		cancelUC,
		completeUC,
		listByDateUC,
		listByMonthUC,
		listMineUC,
		exportUC,
	)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.AuditStore)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.GET("/coaches", coachHandler.List)
		api.GET("/coaches/:slug", coachHandler.Get)
		api.GET("/coaches/:slug/services", coachHandler.Services)
		api.GET("/coaches/:slug/slots", coachHandler.Slots)

		// ------------------------------
		// AUTHENTICATED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		{
			sessions := secured.Group("/booking-sessions")
			{
				sessions.POST("", sessionHandler.Start)
				sessions.GET("/:id", sessionHandler.Get)
				sessions.PUT("/:id/service", sessionHandler.SelectService)
				sessions.PUT("/:id/datetime", sessionHandler.SelectDateTime)
				sessions.POST("/:id/back", sessionHandler.Back)
				sessions.POST("/:id/submit", sessionHandler.Submit)
				sessions.POST("/:id/retry", sessionHandler.Retry)
				sessions.DELETE("/:id", sessionHandler.Cancel)
			}

			secured.GET("/me/bookings", bookingHandler.ListMine)
			secured.GET("/bookings/:id/calendar", bookingHandler.Calendar)

			// ------------------------------
			// COACH
			// ------------------------------
			coach := secured.Group("/coach")
			coach.Use(middleware.RequireRole(middleware.RoleCoach))
			{
				coach.GET("/bookings", bookingHandler.ListByDate)
				coach.GET("/bookings/month", bookingHandler.ListByMonth)
				coach.PATCH("/bookings/:id/confirm", bookingHandler.Confirm)
				coach.PATCH("/bookings/:id/cancel", bookingHandler.Cancel)
				coach.PATCH("/bookings/:id/complete", bookingHandler.Complete)
				coach.GET("/audit-logs", auditLogsHandler.List)
			}
		}
	}
}
