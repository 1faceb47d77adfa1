package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"catalog-quality-service/internal/config"
	"catalog-quality-service/internal/events"
	"catalog-quality-service/internal/handlers"
	"catalog-quality-service/internal/middleware"
	"catalog-quality-service/internal/normalizer"
	"catalog-quality-service/internal/repository"
)

// @title Catalog Quality API
// @version 1.0.0
// @description Product normalization and SEO scoring service with multi-tenant support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8093
// @BasePath /api/v1

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize database (optional; the engines run without it)
	var db *gorm.DB
	if cfg.PersistenceEnabled {
		var err error
		db, err = config.InitDB(cfg)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
	} else {
		log.Println("PERSISTENCE_ENABLED=false, running engine-only")
	}

	// Initialize Redis client
	var redisClient *redis.Client
	if cfg.PersistenceEnabled {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
			redisOpts = &redis.Options{
				Addr: "localhost:6379",
			}
		}
		redisClient = redis.NewClient(redisOpts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
		} else {
			log.Println("✓ Redis connected successfully")
		}
		cancel()
	}

	// Initialize the normalization engine with configured weights
	engine := normalizer.NewWithThreshold("api", &cfg.Weights, cfg.MinCompleteness)

	// Initialize repository (nil when persistence is disabled)
	var qualityRepo *repository.QualityRepository
	if db != nil {
		qualityRepo = repository.NewQualityRepository(db, redisClient)
	}

	// Initialize event publisher only if NATS_URL is set
	eventsPublisher, err := events.NewPublisher(cfg.NATSURL, logger)
	if err != nil {
		log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
	} else if eventsPublisher != nil {
		log.Println("✓ Events publisher initialized (NATS connected)")
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer eventsPublisher.Close()

	// Initialize handlers
	qualityHandler := handlers.NewQualityHandler(engine, qualityRepo, cfg.DefaultPageSize, cfg.MaxPageSize)
	importHandler := handlers.NewImportHandler(engine, qualityRepo, eventsPublisher)
	healthHandler := handlers.NewHealthHandler(db, redisClient)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected API routes
	api := router.Group("/api/v1")
	if cfg.Environment == "development" {
		api.Use(middleware.DevelopmentAuthMiddleware())
	}
	api.Use(middleware.TenantMiddleware())

	quality := api.Group("/quality")
	{
		quality.POST("/normalize", qualityHandler.NormalizeProduct)
		quality.POST("/normalize/batch", qualityHandler.NormalizeBatch)
		quality.POST("/seo/score", qualityHandler.ScoreSeo)
		quality.POST("/seo/score/batch", qualityHandler.ScoreSeoBatch)

		quality.GET("/import/template", importHandler.GetImportTemplate)
		quality.POST("/import", importHandler.ImportProducts)

		quality.GET("/products", qualityHandler.ListRecords)
		quality.GET("/products/:hash", qualityHandler.GetRecord)
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Catalog quality service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-quit
	log.Println("Shutting down catalog-quality-service...")
	log.Println("Catalog quality service stopped")
}
