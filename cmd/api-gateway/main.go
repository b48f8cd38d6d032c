package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-course-api/api/swagger"
	"github.com/noah-isme/sma-course-api/internal/codec"
	"github.com/noah-isme/sma-course-api/internal/dto"
	"github.com/noah-isme/sma-course-api/internal/handler"
	"github.com/noah-isme/sma-course-api/internal/models"
	"github.com/noah-isme/sma-course-api/internal/repository"
	"github.com/noah-isme/sma-course-api/internal/service"
	"github.com/noah-isme/sma-course-api/pkg/cache"
	"github.com/noah-isme/sma-course-api/pkg/config"
	"github.com/noah-isme/sma-course-api/pkg/database"
	"github.com/noah-isme/sma-course-api/pkg/logger"
	"github.com/noah-isme/sma-course-api/pkg/storage"
)

// @title SMA Course API
// @version 1.0.0
// @description Term, course and enrollment management over tagged-text term documents
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	var (
		issueSubject string
		issueRole    string
	)
	flag.StringVar(&issueSubject, "issue-token", "", "Print an access token for this subject and exit")
	flag.StringVar(&issueRole, "role", string(models.RoleRegistrar), "Role of the issued token (REGISTRAR or VIEWER)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	auth := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            logger.ServiceName,
	})
	if issueSubject != "" {
		token, err := auth.IssueToken(issueSubject, models.Role(issueRole))
		if err != nil {
			logr.Fatal("issue token", zap.Error(err))
		}
		fmt.Println(token.AccessToken)
		return
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dates := codec.DateFormat{Layout: cfg.Documents.DateLayout, Location: cfg.Documents.Location()}
	docs, err := storage.NewLocalStorage(cfg.Documents.DataDir)
	if err != nil {
		logr.Fatal("init document storage", zap.Error(err))
	}
	exportStore, err := storage.NewLocalStorage(cfg.Exports.Dir)
	if err != nil {
		logr.Fatal("init export storage", zap.Error(err))
	}

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(newCacheRepository(ctx, cfg, logr), metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	enrollment := service.NewEnrollmentService(service.EnrollmentConfig{Dates: dates}, metrics, logr)
	terms := service.NewTermService(docs, codec.New(dates), enrollment, metrics, logr)
	manager := service.NewCourseManager(terms, enrollment, cacheSvc, metrics, logr)
	if cfg.Documents.TermFile != "" {
		if _, err := manager.LoadTerm(ctx, cfg.Documents.TermFile); err != nil {
			logr.Warn("initial term not loaded", zap.String("file", cfg.Documents.TermFile), zap.Error(err))
		} else {
			logr.Info("initial term loaded", zap.String("file", cfg.Documents.TermFile))
		}
	}
	exports := service.NewScheduleExportService(manager, exportStore, logr, nil, nil)

	var snapshots *service.SnapshotService
	if cfg.Snapshots.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("connect postgres", zap.Error(err))
		}
		defer closeDB(db, logr)
		snapshotRepo := repository.NewSnapshotRepository(db)
		if err := snapshotRepo.EnsureSchema(ctx); err != nil {
			logr.Fatal("prepare snapshot table", zap.Error(err))
		}
		snapshots = service.NewSnapshotService(snapshotRepo, manager, metrics, service.SnapshotConfig{
			Workers: cfg.Snapshots.Workers,
			Retries: cfg.Snapshots.Retries,
		}, logr)
		snapshots.Start(context.Background())
		defer snapshots.Stop()
	}

	router := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Validate:       dto.NewValidator(),
		Presenter:      handler.Presenter{Dates: dates, Lifecycle: enrollment.Lifecycle},
		Auth:           auth,
		Metrics:        metrics,
		Manager:        manager,
		Exports:        exports,
		Snapshots:      snapshots,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown", zap.Error(err))
	}
	if snapshots != nil {
		if err := snapshots.Drain(shutdownCtx); err != nil {
			logr.Warn("pending snapshots dropped", zap.Error(err))
		}
	}
	logr.Info("server stopped")
}

func newCacheRepository(ctx context.Context, cfg *config.Config, logr *zap.Logger) service.CacheRepository {
	if cfg.Cache.Enabled && cfg.Cache.Driver == config.CacheDriverRedis {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err == nil {
			return repository.NewCacheRepository(client, logr)
		}
		logr.Warn("redis unavailable, using in-process cache", zap.Error(err))
	}
	return repository.NewMemoryCacheRepository(cache.NewMemory(cfg.Cache.TTL))
}

func closeDB(db *sqlx.DB, logr *zap.Logger) {
	if err := db.Close(); err != nil {
		logr.Warn("close postgres", zap.Error(err))
	}
}
