package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-course-api/internal/dto"
	"github.com/noah-isme/sma-course-api/internal/middleware"
	"github.com/noah-isme/sma-course-api/internal/models"
	"github.com/noah-isme/sma-course-api/internal/service"
	"github.com/noah-isme/sma-course-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-course-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-course-api/pkg/middleware/requestid"
)

// RouterConfig carries every dependency of the HTTP surface. Snapshots may be
// nil, in which case the snapshot routes are not registered.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool

	Logger    *zap.Logger
	Validate  *validator.Validate
	Presenter Presenter

	Auth      *service.AuthService
	Metrics   *service.MetricsService
	Manager   *service.CourseManager
	Exports   *service.ScheduleExportService
	Snapshots *service.SnapshotService
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Validate == nil {
		cfg.Validate = dto.NewValidator()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(cfg.Logger))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))

	metricsHandler := NewMetricsHandler(cfg.Metrics, cfg.Manager)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	terms := NewTermHandler(cfg.Manager, cfg.Validate, cfg.Presenter)
	courses := NewCourseHandler(cfg.Manager, cfg.Validate, cfg.Presenter)
	students := NewStudentHandler(cfg.Manager, cfg.Validate)
	schedule := NewScheduleHandler(cfg.Manager, cfg.Exports, cfg.Validate)

	api := r.Group(cfg.APIPrefix)
	api.GET("/term", terms.Get)
	api.GET("/term/document", terms.Document)
	api.GET("/courses/:id", courses.Get)
	api.GET("/courses/:id/schedule", courses.Schedule)
	api.GET("/courses/:id/average-gpa", courses.AverageGPA)
	api.GET("/schedule", schedule.Term)
	api.GET("/schedule/export", schedule.Export)
	api.GET("/metrics/summary", metricsHandler.Summary)

	registrar := api.Group("", middleware.JWT(cfg.Auth), middleware.RequireRoles(models.RoleRegistrar))
	registrar.POST("/term", terms.Start)
	registrar.POST("/term/load", terms.Load)
	registrar.POST("/term/save", terms.Save)
	registrar.POST("/courses", courses.Create)
	registrar.POST("/courses/load", courses.Load)
	registrar.DELETE("/courses/:id", courses.Delete)
	registrar.POST("/courses/:id/students", students.Add)
	registrar.POST("/courses/:id/students/load", students.Load)
	registrar.DELETE("/courses/:id/students/:studentId", students.Remove)
	registrar.PUT("/courses/:id/students/:studentId/gpa", students.ChangeGPA)
	registrar.POST("/schedule/save", schedule.Save)

	if cfg.Snapshots != nil {
		snapshots := NewSnapshotHandler(cfg.Snapshots, cfg.Presenter)
		api.GET("/snapshots", snapshots.List)
		registrar.POST("/snapshots", snapshots.Create)
		registrar.POST("/snapshots/:id/restore", snapshots.Restore)
	}

	return r
}
