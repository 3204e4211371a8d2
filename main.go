// @title FormCraft API
// @version 1.0
// @description Form builder backend: forms, templates, embeds and public submissions.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Supabase access token as "Bearer <token>".
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/formcraft/formcraft-backend/config"
	"github.com/formcraft/formcraft-backend/db"
	_ "github.com/formcraft/formcraft-backend/docs"
	"github.com/formcraft/formcraft-backend/handlers"
	"github.com/formcraft/formcraft-backend/internal/cache"
	"github.com/formcraft/formcraft-backend/internal/idempotency"
	"github.com/formcraft/formcraft-backend/internal/jobs"
	"github.com/formcraft/formcraft-backend/internal/ratelimit"
	"github.com/formcraft/formcraft-backend/internal/storage"
	"github.com/formcraft/formcraft-backend/internal/store/cached"
	"github.com/formcraft/formcraft-backend/internal/store/postgres"
	"github.com/formcraft/formcraft-backend/logger"
	"github.com/formcraft/formcraft-backend/middleware"
	creditsvc "github.com/formcraft/formcraft-backend/models/credit/service"
	"github.com/formcraft/formcraft-backend/models/embed"
	embedsvc "github.com/formcraft/formcraft-backend/models/embed/service"
	formsvc "github.com/formcraft/formcraft-backend/models/form/service"
	submissionsvc "github.com/formcraft/formcraft-backend/models/submission/service"
	templatesvc "github.com/formcraft/formcraft-backend/models/template/service"
	"github.com/formcraft/formcraft-backend/router"
	"github.com/formcraft/formcraft-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/supabase-community/supabase-go"
)

func main() {
	logger.InitLogger()
	log := logger.GetLogger()
	defer func() { _ = logger.Close() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	poolCfg, err := db.PoolConfig(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to build database config: %v", err)
	}
	dbClient := db.NewDatabaseClient(poolCfg)
	pool, err := dbClient.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbClient.Close()

	if cfg.Database.RunMigrations {
		if err := db.RunMigrations(cfg.Database.URL()); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	redisClient := config.NewRedisClient(&cfg.Redis, cfg.Server.Environment)
	defer func() { _ = redisClient.Close() }()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warnw("Redis unreachable at startup, continuing degraded", "address", cfg.Redis.Address, "error", err)
	}

	// Stores
	formStore := postgres.NewFormStore(pool)
	templateStore := postgres.NewTemplateStore(pool)
	submissionStore := postgres.NewSubmissionStore(pool)
	embedStore := postgres.NewEmbedStore(pool)
	embedLogStore := postgres.NewEmbedLogStore(pool)
	creditStore := postgres.NewCreditStore(pool)

	var readCache cache.Cache = cache.NoopCache{}
	if cfg.Cache.Enabled {
		readCache = cache.NewRedisCache(redisClient)
	}
	cachedForms := cached.NewFormStore(formStore, readCache, time.Duration(cfg.Cache.FormTTLSeconds)*time.Second)
	cachedTemplates := cached.NewTemplateStore(templateStore, readCache, time.Duration(cfg.Cache.TemplateTTLSeconds)*time.Second)

	// Background work
	workerPool := services.NewWorkerPool(cfg.WorkerPool)
	workerPool.Start()

	var notifier submissionsvc.Notifier
	if cfg.Email.Enabled {
		notifier = services.NewEmailService(&cfg.Email)
	}

	retention := jobs.NewEmbedLogRetention(embedLogStore, cfg.Retention.EmbedLogDays)
	scheduler, err := jobs.NewScheduler(cfg.Retention.Schedule, retention)
	if err != nil {
		log.Fatalf("Failed to schedule retention job: %v", err)
	}
	scheduler.Start()

	// Domain services
	authorizer := embed.NewAuthorizer(embedStore, cfg.Embed.AllowMissingReferer)
	idem := idempotency.NewStore(redisClient, time.Duration(cfg.Submission.IdempotencyTTLHours)*time.Hour)

	creditService := creditsvc.NewCreditService(creditStore)
	templateService := templatesvc.NewTemplateService(cachedTemplates, cachedForms, creditStore)
	formService := formsvc.NewFormService(cachedForms, submissionStore, templateService)
	embedService := embedsvc.NewEmbedService(embedStore, cachedForms, embedLogStore, authorizer, workerPool, cfg.Admin, cfg.Server.PublicBaseURL)
	submissionService := submissionsvc.NewSubmissionService(authorizer, formStore, submissionStore, idem, workerPool, notifier)

	// Uploads are optional
	var fileStore handlers.FileStore
	bucket, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	if bucket != nil {
		fileStore = bucket
	} else {
		log.Info("No storage provider configured, embed uploads disabled")
	}

	var supabaseClient *supabase.Client
	if cfg.ExternalServices.SupabaseURL != "" && cfg.ExternalServices.SupabaseAnonKey != "" {
		supabaseClient, err = supabase.NewClient(cfg.ExternalServices.SupabaseURL, cfg.ExternalServices.SupabaseAnonKey, &supabase.ClientOptions{})
		if err != nil {
			log.Fatalf("Failed to initialize Supabase client: %v", err)
		}
	}

	jwtValidator, err := middleware.NewJWTValidator(&cfg.ExternalServices)
	if err != nil {
		log.Fatalf("Failed to initialize JWT validator: %v", err)
	}

	embedLimiter := ratelimit.NewLimiter(cfg.RateLimit.EmbedLoadsPerMinute, cfg.RateLimit.EmbedLoadBurst)
	defer embedLimiter.Close()

	healthService := services.NewHealthService(pool, redisClient, cfg.Server.Version).
		WithWorkerPool(workerPool, cfg.WorkerPool.QueueSize)

	r := router.SetupRouter(router.Dependencies{
		Config:            cfg,
		JWTValidator:      jwtValidator,
		FormHandler:       handlers.NewFormHandler(formService),
		SubmissionHandler: handlers.NewSubmissionHandler(submissionService),
		TemplateHandler:   handlers.NewTemplateHandler(templateService),
		EmbedHandler:      handlers.NewEmbedHandler(embedService, cfg),
		UploadHandler:     handlers.NewUploadHandler(embedService, fileStore, cfg.Uploads),
		CreditHandler:     handlers.NewCreditHandler(creditService),
		AuthHandler:       handlers.NewAuthHandler(supabaseClient),
		HealthHandler:     handlers.NewHealthHandler(healthService),
		SubmitLimiter:     services.NewRateLimitService(redisClient),
		EmbedLimiter:      embedLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownTimeout := time.Duration(cfg.WorkerPool.ShutdownTimeoutSeconds) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
	<-scheduler.Stop().Done()
	if err := workerPool.Shutdown(shutdownCtx); err != nil {
		log.Warnw("Worker pool did not drain before timeout", "error", err)
	}
	log.Info("Server exited")
}
