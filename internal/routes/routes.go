package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	"github.com/BruksfildServices01/barber-booking/internal/handlers"
	infraRepo "github.com/BruksfildServices01/barber-booking/internal/infra/repository"
	"github.com/BruksfildServices01/barber-booking/internal/infra/slotcache"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/barber-booking/internal/usecase/appointment"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	loc := timezone.Location(cfg.Timezone)

	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	cache := slotcache.New(cfg.RedisURL)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	// ======================================================
	// USE CASES — APPOINTMENTS
	// ======================================================
	bookUC := ucAppointment.NewBookAppointment(
		appointmentRepo,
		cache,
		auditDispatcher,
		loc,
	)

	cancelUC := ucAppointment.NewCancelAppointment(
		appointmentRepo,
		cache,
		auditDispatcher,
		loc,
	)

	updateStatusUC := ucAppointment.NewUpdateStatus(
		appointmentRepo,
		auditDispatcher,
	)

	occupiedSlotsUC := ucAppointment.NewGetOccupiedSlots(
		appointmentRepo,
		cache,
		loc,
	)

	listForClientUC := ucAppointment.NewListForClient(appointmentRepo)
	listAllUC := ucAppointment.NewListAll(appointmentRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	serviceHandler := handlers.NewServiceHandler(appointmentRepo)

	appointmentHandler := handlers.NewAppointmentHandler(
		bookUC,
		cancelUC,
		updateStatusUC,
		occupiedSlotsUC,
		listForClientUC,
		listAllUC,
		loc,
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/users/me", meHandler.GetMe)
			secured.PUT("/users/me", meHandler.UpdateMe)

			secured.GET("/services", serviceHandler.List)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/appointments", appointmentHandler.Book)
			secured.GET("/appointments", appointmentHandler.ListOwn)
			secured.GET("/appointments/occupied-slots", appointmentHandler.OccupiedSlots)
			secured.DELETE("/appointments/:id", appointmentHandler.Cancel)

			barber := secured.Group("/")
			barber.Use(middleware.RequireBarber())
			{
				barber.GET("/appointments/all", appointmentHandler.ListAll)
				barber.PATCH("/appointments/:id/status", appointmentHandler.UpdateStatus)
				barber.GET("/audit-logs", auditLogsHandler.List)
			}
		}
	}
}
