package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sohaibminhas1/lims-api/api/swagger"
	"github.com/sohaibminhas1/lims-api/internal/handler"
	"github.com/sohaibminhas1/lims-api/internal/middleware"
	"github.com/sohaibminhas1/lims-api/internal/models"
	"github.com/sohaibminhas1/lims-api/internal/repository"
	"github.com/sohaibminhas1/lims-api/internal/security"
	"github.com/sohaibminhas1/lims-api/internal/service"
	"github.com/sohaibminhas1/lims-api/internal/validation"
	"github.com/sohaibminhas1/lims-api/pkg/cache"
	"github.com/sohaibminhas1/lims-api/pkg/config"
	"github.com/sohaibminhas1/lims-api/pkg/database"
	"github.com/sohaibminhas1/lims-api/pkg/logger"
	corsmiddleware "github.com/sohaibminhas1/lims-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sohaibminhas1/lims-api/pkg/middleware/requestid"
)

// @title LIMS API
// @version 1.0.0
// @description Laboratory information management service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	// Redis is optional; the dashboard falls back to live queries.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validation.New()
	hasher := security.NewPasswordHasher(0)

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	computerRepo := repository.NewComputerRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	softwareRepo := repository.NewSoftwareRequestRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, auditRepo, hasher, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, auditRepo, hasher, validate, logr)
	computerSvc := service.NewComputerService(computerRepo, validate, logr)
	reservationSvc := service.NewReservationService(reservationRepo, computerRepo, validate, logr, cfg.Reservations)
	softwareSvc := service.NewSoftwareRequestService(softwareRepo, validate, logr)
	complaintSvc := service.NewComplaintService(complaintRepo, validate, logr)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheRepo, logr, cfg.Dashboard.CacheTTL)
	reportSvc := service.NewReportService(reservationRepo, complaintRepo, logr, cfg.Reports.MaxRows)

	authHandler := handler.NewAuthHandler(authSvc, metricsSvc)
	userHandler := handler.NewUserHandler(userSvc)
	computerHandler := handler.NewComputerHandler(computerSvc)
	reservationHandler := handler.NewReservationHandler(reservationSvc)
	softwareHandler := handler.NewSoftwareRequestHandler(softwareSvc)
	complaintHandler := handler.NewComplaintHandler(complaintSvc)
	feedbackHandler := handler.NewFeedbackHandler(feedbackSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	authed.Use(func(c *gin.Context) {
		c.Next()
		if c.Request.Method != http.MethodGet && c.Writer.Status() < 400 {
			dashboardSvc.Invalidate(c.Request.Context())
		}
	})

	authed.GET("/auth/me", authHandler.Me)
	authed.PUT("/auth/password", authHandler.ChangePassword)

	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleLabTechnician)

	users := authed.Group("/users")
	users.GET("", admin, userHandler.List)
	users.POST("", admin, userHandler.Create)
	users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Get)
	users.PUT("/:id", admin, userHandler.Update)
	users.DELETE("/:id", admin, userHandler.Deactivate)
	users.PUT("/:id/password", admin, userHandler.ResetPassword)
	users.GET("/:id/audit", admin, userHandler.Audit)

	computers := authed.Group("/computers")
	computers.GET("", computerHandler.List)
	computers.GET("/:id", computerHandler.Get)
	computers.POST("", staff, computerHandler.Create)
	computers.PUT("/:id", staff, computerHandler.Update)
	computers.PUT("/:id/status", staff, computerHandler.ChangeStatus)

	reservations := authed.Group("/reservations")
	reservations.GET("", reservationHandler.List)
	reservations.POST("", reservationHandler.Create)
	reservations.POST("/:id/approve", staff, reservationHandler.Approve)
	reservations.POST("/:id/reject", staff, reservationHandler.Reject)
	reservations.POST("/:id/cancel", reservationHandler.Cancel)

	software := authed.Group("/software-requests")
	software.GET("", softwareHandler.List)
	software.POST("", softwareHandler.Create)
	software.PUT("/:id/status", staff, softwareHandler.Transition)

	complaints := authed.Group("/complaints")
	complaints.GET("", complaintHandler.List)
	complaints.GET("/:id", complaintHandler.Get)
	complaints.POST("", complaintHandler.Create)
	complaints.PUT("/:id", staff, complaintHandler.Update)

	feedback := authed.Group("/feedback")
	feedback.GET("", feedbackHandler.List)
	feedback.POST("", feedbackHandler.Create)

	authed.GET("/dashboard", dashboardHandler.Get)

	reports := authed.Group("/reports")
	reports.Use(middleware.Audit(auditRepo, "REPORT_EXPORT", "reports"))
	reports.GET("/reservations", admin, reportHandler.Reservations)
	reports.GET("/complaints", admin, reportHandler.Complaints)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
