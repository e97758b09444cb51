package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/noah-isme/academy-desk-api/api/swagger"
	"github.com/noah-isme/academy-desk-api/internal/handler"
	"github.com/noah-isme/academy-desk-api/internal/middleware"
	"github.com/noah-isme/academy-desk-api/internal/models"
	"github.com/noah-isme/academy-desk-api/internal/repository"
	"github.com/noah-isme/academy-desk-api/internal/service"
	"github.com/noah-isme/academy-desk-api/pkg/cache"
	"github.com/noah-isme/academy-desk-api/pkg/config"
	"github.com/noah-isme/academy-desk-api/pkg/database"
	"github.com/noah-isme/academy-desk-api/pkg/jobs"
	"github.com/noah-isme/academy-desk-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/academy-desk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academy-desk-api/pkg/middleware/requestid"
	"github.com/noah-isme/academy-desk-api/pkg/storage"
)

// @title Academy Desk API
// @version 1.0.0
// @description Admissions, verification and fee reconciliation for the academy front desk
// @BasePath /api
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to prepare schema", zap.Error(err))
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	priceRepo := repository.NewSessionPriceRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	pendingRepo := repository.NewPendingStudentRepository(db)
	exportRepo := repository.NewExportJobRepository(db)
	draftRepo := repository.NewDraftRepository(redisClient)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	if err := seedOwner(ctx, userRepo, cfg.Bootstrap, logr); err != nil {
		logr.Fatal("failed to seed owner account", zap.Error(err))
	}

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Admissions.SessionPriceCacheTTL, logr, true)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "academy-desk-api",
	})
	classSvc := service.NewClassService(classRepo, validate, logr)
	sessionSvc := service.NewSessionService(sessionRepo, validate, logr)
	priceSvc := service.NewSessionPriceService(priceRepo, sessionRepo, userRepo, cacheSvc, metricsSvc, cfg.Admissions.SessionPriceCacheTTL, logr)
	studentSvc := service.NewStudentService(studentRepo, classRepo, priceSvc, userRepo, metricsSvc, validate, logr)
	pendingSvc := service.NewPendingService(pendingRepo, studentRepo, classRepo, priceSvc, userRepo, userRepo, metricsSvc, validate, logr, service.PendingConfig{
		PublicRegistration: cfg.Admissions.PublicRegistration,
		PasswordLength:     cfg.Admissions.CredentialPasswordLength,
	})
	draftSvc := service.NewDraftService(draftRepo, cfg.Admissions.DraftTTL, logr)

	var reportHandler *handler.ReportHandler
	if cfg.Reports.Enabled {
		reportSvc, queue, err := buildReports(ctx, cfg, exportRepo, studentRepo, metricsSvc, validate, logr)
		if err != nil {
			logr.Fatal("failed to init reports", zap.Error(err))
		}
		defer queue.Stop()
		reportHandler = handler.NewReportHandler(reportSvc, logr)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.Pinger{
		"postgres": db,
		"redis":    handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
	})
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), routeDeps{
		auth:     handler.NewAuthHandler(authSvc),
		tokens:   authSvc,
		sessions: handler.NewSessionHandler(sessionSvc),
		classes:  handler.NewClassHandler(classSvc),
		prices:   handler.NewSessionPriceHandler(priceSvc),
		students: handler.NewStudentHandler(studentSvc),
		pending:  handler.NewPendingHandler(pendingSvc),
		drafts:   handler.NewDraftHandler(draftSvc),
		users:    handler.NewUserHandler(service.NewUserService(userRepo, validate, logr)),
		reports:  reportHandler,
		metrics:  metricsHandler,
		audit:    userRepo,
		logger:   logr,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

type routeDeps struct {
	auth     *handler.AuthHandler
	tokens   middleware.TokenValidator
	sessions *handler.SessionHandler
	classes  *handler.ClassHandler
	prices   *handler.SessionPriceHandler
	students *handler.StudentHandler
	pending  *handler.PendingHandler
	drafts   *handler.DraftHandler
	users    *handler.UserHandler
	reports  *handler.ReportHandler
	metrics  *handler.MetricsHandler
	audit    middleware.AuditWriter
	logger   *zap.Logger
}

func registerRoutes(api *gin.RouterGroup, d routeDeps) {
	authn := middleware.JWT(d.tokens)
	staff := middleware.RequireRoles(middleware.Staff...)
	managers := middleware.RequireRoles(middleware.Managers...)
	owner := middleware.RequireRoles(models.RoleOwner)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", d.auth.Login)
	authGroup.POST("/refresh", d.auth.Refresh)
	authGroup.POST("/logout", authn, d.auth.Logout)
	authGroup.POST("/change-password", authn, d.auth.ChangePassword)
	authGroup.GET("/me", authn, d.auth.Me)

	api.POST("/public/register", d.pending.Register)

	desk := api.Group("", authn, staff)
	desk.GET("/sessions", d.sessions.List)
	desk.POST("/sessions", managers, d.sessions.Create)
	desk.PUT("/sessions/:id", managers, d.sessions.Update)

	desk.GET("/classes", d.classes.List)
	desk.GET("/classes/:id", d.classes.Get)
	desk.POST("/classes", managers, d.classes.Create)
	desk.PUT("/classes/:id", managers, d.classes.Update)

	desk.GET("/config/session-price/:sessionId", d.prices.Lookup)
	desk.GET("/config/session-prices", d.prices.List)
	desk.PUT("/config/session-price/:sessionId", owner, d.prices.Set)
	desk.DELETE("/config/session-price/:sessionId", owner, d.prices.Delete)

	desk.GET("/students", d.students.List)
	desk.POST("/students", d.students.Create)
	desk.GET("/students/:id", d.students.Get)
	desk.POST("/students/:id/payments", d.students.CollectPayment)
	desk.GET("/students/:id/payments", d.students.Payments)

	desk.GET("/public/pending", d.pending.List)
	desk.POST("/public/approve/:id", d.pending.Approve)
	desk.DELETE("/public/reject/:id", d.pending.Reject)

	desk.GET("/drafts/admission", d.drafts.Get)
	desk.PUT("/drafts/admission", d.drafts.Save)
	desk.DELETE("/drafts/admission", d.drafts.Clear)

	desk.GET("/metrics/summary", managers, d.metrics.Summary)

	users := desk.Group("/users", owner)
	users.GET("", d.users.List)
	users.GET("/:id", d.users.Get)
	users.POST("", d.users.Create)
	users.PUT("/:id", d.users.Update)
	users.DELETE("/:id", d.users.Delete)

	if d.reports != nil {
		reports := api.Group("/reports")
		reports.GET("/download/:token", middleware.Audit(d.audit, d.logger, models.AuditActionReportDownload, "export_job"), d.reports.Download)
		reports.POST("/dues", authn, managers, d.reports.CreateDuesExport)
		reports.GET("/:id", authn, managers, d.reports.Status)
	}
}

func buildReports(ctx context.Context, cfg *config.Config, exportRepo *repository.ExportJobRepository, studentRepo *repository.StudentRepository,
	metricsSvc *service.MetricsService, validate *validator.Validate, logr *zap.Logger) (*service.ReportService, *jobs.Queue, error) {
	files, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exporter := service.NewExportService(studentRepo, files, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr)
	worker := service.NewDuesWorker(exportRepo, exporter, metricsSvc, cfg.Reports.WorkerRetries, logr)

	queue := jobs.NewQueue("dues-export", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
		OnGiveUp: func(job jobs.Job, err error) {
			logr.Error("dues export abandoned", zap.String("job_id", job.ID), zap.Int("attempts", job.Attempt), zap.Error(err))
		},
	})
	queue.Start(ctx)

	reportSvc := service.NewReportService(exportRepo, queue, exporter, validate, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})
	reportSvc.RecoverPendingJobs(ctx)
	reportSvc.StartCleanup(ctx)
	return reportSvc, queue, nil
}

// seedOwner creates the first owner login when configured and missing.
func seedOwner(ctx context.Context, users *repository.UserRepository, cfg config.BootstrapConfig, logr *zap.Logger) error {
	if cfg.OwnerUsername == "" || cfg.OwnerPassword == "" {
		return nil
	}
	if _, err := users.FindByUsername(ctx, cfg.OwnerUsername); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.OwnerPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := users.Create(ctx, &models.User{
		ID:           uuid.NewString(),
		Username:     cfg.OwnerUsername,
		PasswordHash: string(hash),
		FullName:     "Owner",
		Role:         models.RoleOwner,
		Active:       true,
	}); err != nil {
		return err
	}
	logr.Info("owner account created", zap.String("username", cfg.OwnerUsername))
	return nil
}
