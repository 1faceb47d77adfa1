package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog-quality-service/internal/models"
	"catalog-quality-service/internal/normalizer"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Persistence can be switched off entirely; the service then runs
	// engine-only (normalize/score/import with validateOnly semantics).
	PersistenceEnabled bool

	// Redis
	RedisURL string

	// NATS (events disabled when empty)
	NATSURL string

	// Server
	Port        string
	Environment string

	// Pagination
	DefaultPageSize int
	MaxPageSize     int

	// Normalizer tuning
	MinCompleteness int
	Weights         normalizer.Weights
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	defaultPageSize, _ := strconv.Atoi(getEnv("DEFAULT_PAGE_SIZE", "20"))
	maxPageSize, _ := strconv.Atoi(getEnv("MAX_PAGE_SIZE", "100"))
	persistenceEnabled, _ := strconv.ParseBool(getEnv("PERSISTENCE_ENABLED", "true"))
	minCompleteness, _ := strconv.Atoi(getEnv("NORMALIZER_MIN_COMPLETENESS", strconv.Itoa(normalizer.DefaultMinCompleteness)))

	return &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "catalog_quality_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		PersistenceEnabled: persistenceEnabled,

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// NATS
		NATSURL: os.Getenv("NATS_URL"),

		// Server
		Port:        getEnv("PORT", "8093"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Pagination
		DefaultPageSize: defaultPageSize,
		MaxPageSize:     maxPageSize,

		// Normalizer tuning
		MinCompleteness: minCompleteness,
		Weights:         loadWeights(),
	}
}

// loadWeights reads per-field completeness weight overrides. Any field
// without an override keeps its default.
func loadWeights() normalizer.Weights {
	w := normalizer.DefaultWeights()
	w.Title = envWeight("NORMALIZER_WEIGHT_TITLE", w.Title)
	w.Description = envWeight("NORMALIZER_WEIGHT_DESCRIPTION", w.Description)
	w.Price = envWeight("NORMALIZER_WEIGHT_PRICE", w.Price)
	w.Images = envWeight("NORMALIZER_WEIGHT_IMAGES", w.Images)
	w.Category = envWeight("NORMALIZER_WEIGHT_CATEGORY", w.Category)
	w.Tags = envWeight("NORMALIZER_WEIGHT_TAGS", w.Tags)
	w.SKU = envWeight("NORMALIZER_WEIGHT_SKU", w.SKU)
	w.SeoTitle = envWeight("NORMALIZER_WEIGHT_SEO_TITLE", w.SeoTitle)
	w.SeoDescription = envWeight("NORMALIZER_WEIGHT_SEO_DESCRIPTION", w.SeoDescription)
	return w
}

func envWeight(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return defaultValue
	}
	return parsed
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Running auto-migrations...")
	if err := db.AutoMigrate(&models.ProductRecord{}); err != nil {
		return nil, fmt.Errorf("failed to run auto-migrations: %w", err)
	}
	log.Println("Auto-migrations completed successfully")

	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
