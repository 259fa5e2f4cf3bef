package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"medtriage/internal/config"
	"medtriage/internal/handler"
	"medtriage/internal/kafka"
	"medtriage/internal/repository"
	"medtriage/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Medical Urgency Triage Service")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if strings.EqualFold(cfg.Logging.Level, "debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to prepare database schema: %v", err)
	}

	log.Println("✅ Connected to PostgreSQL database")

	// Build the classifier once; failure leaves the analyzer in keyword-fallback mode
	analyzer := service.NewUrgencyAnalyzerWithFactory(func() (service.ZeroShotClassifier, error) {
		return service.NewZeroShotClassifier(cfg)
	})
	if analyzer.Available() {
		log.Printf("✅ Zero-shot classifier initialized")
		log.Printf("   - Provider: %s", analyzer.ProviderName())
		log.Printf("   - Timeout: %ds", cfg.Classifier.Timeout)
	} else {
		log.Println("⚠️  Zero-shot classification is disabled - transcripts are scored by keyword fallback")
		log.Println("   Set CLASSIFIER_PROVIDER with HF_API_KEY or OPENAI_API_KEY to enable it")
	}

	// Urgent alerts are optional
	var alerts service.AlertPublisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.AlertsTopic)
		defer producer.Close()
		alerts = producer
		log.Printf("✅ Kafka alert producer initialized")
		log.Printf("   - Brokers: %s", strings.Join(cfg.Kafka.Brokers, ","))
		log.Printf("   - Topic: %s", cfg.Kafka.AlertsTopic)
	} else {
		log.Println("⚠️  Kafka is disabled - urgent alerts will not be published")
	}

	// Initialize services
	triageService := service.NewTriageService(analyzer, repo, alerts, service.NewEmergencyRanker())

	log.Println("✅ Services initialized")

	// Initialize handlers
	triageHandler := handler.NewTriageHandler(triageService)
	submissionHandler := handler.NewSubmissionHandler(triageService, cfg.Triage.DefaultLimit, cfg.Triage.MaxLimit)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":               "healthy",
			"service":              "medical-urgency-triage",
			"version":              Version,
			"classifier_available": analyzer.Available(),
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes
	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/config", triageHandler.Config)
		apiV1.POST("/triage/analyze", triageHandler.Analyze)

		// Submission endpoints
		apiV1.POST("/submissions", submissionHandler.Create)
		apiV1.GET("/submissions", submissionHandler.List)
		apiV1.GET("/submissions/:id", submissionHandler.Get)
		apiV1.GET("/emergency-ranking", submissionHandler.EmergencyRanking)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	log.Printf("🚀 Starting server on %s", addr)
	log.Printf("📝 API Documentation: http://localhost:%d/api/v1", cfg.Server.Port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped")
}
