package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"signalflow/internal/api/handler"
	"signalflow/internal/config"
	"signalflow/internal/core/postgres/repository"
	"signalflow/internal/domain"
	appredis "signalflow/internal/infrastructure/redis"
	"signalflow/internal/infrastructure/s3"
	"signalflow/internal/infrastructure/signalcloud"
	"signalflow/internal/log"
	"signalflow/internal/orchestrator"
	"signalflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	logger := log.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load configuration
	cfg := config.Load()

	// 2. Set up database connection
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&domain.ReportWorkflow{}, &domain.StageState{}); err != nil {
		logger.Fatalf("Failed to migrate schema: %v", err)
	}

	// 3. Initialize repository
	store := repository.NewWorkflowRepository(db)

	// 4. Initialize external collaborators
	redisClient, err := appredis.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		logger.Fatalf("Failed to connect to redis: %v", err)
	}
	usage := appredis.NewUsageNotifier(redisClient)

	objects, err := s3.NewObjectStore(ctx, cfg.S3Bucket, cfg.AWSRegion)
	if err != nil {
		logger.Fatalf("Failed to initialize object store: %v", err)
	}

	jobs := signalcloud.NewClient(cfg.SignalCloudURL, cfg.SignalCloudAPIKey)

	// 5. Initialize the orchestrator
	executor := orchestrator.NewStepExecutor(objects, jobs, usage, cfg.PollInterval, cfg.MaxPollWait, logger)
	registry := orchestrator.NewRegistry()
	orch := orchestrator.New(store, executor, registry, logger)

	// 6. Reconcile workflows interrupted by a previous process
	if n, err := orch.Reconcile(ctx, cfg.StaleThreshold); err != nil {
		logger.Errorf("Reconciliation failed: %v", err)
	} else if n > 0 {
		logger.Infof("Marked %d interrupted workflows as failed", n)
	}

	// 7. Initialize service and handler
	reportSvc := service.NewReportService(orch)
	reportHandler := handler.NewReportHandler(reportSvc)

	// 8. Set up routes
	router := gin.Default()

	api := router.Group("/api/v1")
	{
		api.POST("/reports", reportHandler.SubmitReport)
		api.GET("/reports/:id", reportHandler.GetReportStatus)
		api.POST("/reports/:id/cancel", reportHandler.CancelReport)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 9. Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Infof("Server starting on :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown: %v", err)
	}
}
