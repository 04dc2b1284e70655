// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"pms/internal/domain/auth"
	"pms/internal/domain/designs"
	"pms/internal/domain/leaves"
	"pms/internal/domain/meetings"
	"pms/internal/domain/projects"
	"pms/internal/domain/sales"
	"pms/internal/domain/tasks"
	"pms/internal/domain/users"
	"pms/internal/infrastructure/http/v1/handlers"
	"pms/internal/infrastructure/http/v1/middleware"
	"pms/internal/outbox"
	"pms/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool   *pgxpool.Pool
	Logger *logger.Logger

	JWTValidator middleware.JWTValidator

	AuthService    *auth.Service
	ProjectService *projects.Service
	TaskService    *tasks.Service
	MeetingService *meetings.Service
	SalesService   *sales.Service
	DesignService  *designs.Service
	LeaveService   *leaves.Service

	OutboxRepo  outbox.Repository
	OutboxQueue outbox.Queue
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	api := router.Group("/api/v1")
	{
		// Public auth endpoints
		authHandler := handlers.NewAuthHandler(cfg.AuthService)
		api.POST("/auth/login", authHandler.Login)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		// Projects
		projectHandler := handlers.NewProjectHandler(cfg.ProjectService)
		projectGroup := protected.Group("/projects")
		{
			projectGroup.GET("", projectHandler.List)
			projectGroup.POST("", projectHandler.Create)
			projectGroup.GET("/:id", projectHandler.Get)
			projectGroup.PUT("/:id", projectHandler.Update)
			projectGroup.DELETE("/:id", projectHandler.Delete)
			projectGroup.POST("/:id/restore", projectHandler.Restore)
		}

		// Tasks
		taskHandler := handlers.NewTaskHandler(cfg.TaskService)
		projectGroup.GET("/:id/tasks", taskHandler.ListByProject)
		projectGroup.POST("/:id/tasks", taskHandler.Create)
		taskGroup := protected.Group("/tasks")
		{
			taskGroup.GET("/:id", taskHandler.Get)
			taskGroup.PUT("/:id", taskHandler.Update)
			taskGroup.DELETE("/:id", taskHandler.Delete)
			taskGroup.POST("/:id/assignees", taskHandler.Assign)
		}

		// Meetings
		meetingHandler := handlers.NewMeetingHandler(cfg.MeetingService)
		projectGroup.POST("/:id/meetings", meetingHandler.Create)
		meetingGroup := protected.Group("/meetings")
		{
			meetingGroup.GET("/:id", meetingHandler.Get)
			meetingGroup.PUT("/:id", meetingHandler.Update)
			meetingGroup.DELETE("/:id", meetingHandler.Delete)
			meetingGroup.POST("/:id/attendees", meetingHandler.Invite)
		}

		// Sales and design tracks
		salesHandler := handlers.NewSalesHandler(cfg.SalesService)
		projectGroup.GET("/:id/sales", salesHandler.GetByProject)
		protected.PUT("/sales/:id", salesHandler.Update)

		designHandler := handlers.NewDesignHandler(cfg.DesignService)
		projectGroup.GET("/:id/designs", designHandler.GetByProject)
		protected.PUT("/designs/:id", designHandler.Update)
		protected.POST("/designs/:id/versions", designHandler.AddVersion)

		// Leaves
		leaveHandler := handlers.NewLeaveHandler(cfg.LeaveService)
		leaveGroup := protected.Group("/leaves")
		{
			leaveGroup.POST("/requests", leaveHandler.Submit)
			leaveGroup.GET("/balance", leaveHandler.Balance)
		}

		// Outbox operations (admin surface)
		outboxHandler := handlers.NewOutboxHandler(cfg.OutboxRepo, cfg.OutboxQueue)
		outboxGroup := protected.Group("/outbox")
		outboxGroup.Use(middleware.RequireRole(users.RoleAdmin))
		{
			outboxGroup.GET("/events", outboxHandler.List)
			outboxGroup.GET("/events/:id", outboxHandler.Get)
			outboxGroup.POST("/events/:id/retry", outboxHandler.Retry)
		}
	}

	return router
}
