package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trash-report-service/config"
	"trash-report-service/database"
	"trash-report-service/handlers"
	"trash-report-service/metrics"
	"trash-report-service/middleware"
	"trash-report-service/openai"
	"trash-report-service/service"
	"trash-report-service/storage"
	"trash-report-service/utils"
	"trash-report-service/version"
)

const (
	EndPointHealth      = "/health"
	EndPointReports     = "/reports"
	EndPointReport      = "/reports/:seq"
	EndPointMarkCleaned = "/reports/:seq/mark_cleaned"
	EndPointRewards     = "/rewards"
	EndPointLocations   = "/locations"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Validate required configuration
	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	log.Info("Starting the trash report service...")

	// Connect to database
	db, err := utils.DBConnect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize database schema
	if err := database.InitSchema(db); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	// Initialize services
	reportService := database.NewReportService(db)
	rewardService := database.NewRewardService(db)
	classifier := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	blobStore := storage.NewDiskStore(cfg.ImageDir)
	submitService := service.NewSubmitService(
		blobStore,
		classifier,
		reportService,
		rewardService,
		time.Duration(cfg.ClassifierTimeoutSec)*time.Second,
	)

	// Initialize handlers
	handler := handlers.NewHandler(submitService, reportService, rewardService)

	metrics.Register()

	// Setup router
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, version.Get("trash-report-service"))
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET(EndPointHealth, handler.HealthCheck)

	// Serve stored report images
	router.Static("/public", cfg.ImageDir)

	// Create API v3 router group
	apiV3 := router.Group("/api/v3")
	{
		apiV3.POST(EndPointReports, middleware.AuthMiddleware(cfg), handler.SubmitReport)
		apiV3.POST(EndPointMarkCleaned, middleware.AuthMiddleware(cfg), handler.MarkCleaned)
		apiV3.GET(EndPointReports, handler.ListReports)
		apiV3.GET(EndPointReport, handler.GetReport)
		apiV3.GET(EndPointRewards, handler.ListRewards)
		apiV3.GET(EndPointLocations, handler.ListLocations)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Infof("Trash report service starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
