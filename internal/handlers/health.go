package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

// HealthCheck returns service health status (basic)
// @Summary Health check
// @Description Returns the health status of the catalog quality service
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "catalog-quality-service",
		"version": "1.0.0",
	})
}

// ReadinessCheck returns detailed readiness including database and Redis
// @Summary Readiness check
// @Description Checks connectivity to the database and Redis
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	health := gin.H{
		"status":  "healthy",
		"service": "catalog-quality-service",
		"checks":  gin.H{},
	}
	checks := health["checks"].(gin.H)

	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			checks["database"] = gin.H{"status": "unhealthy", "error": err.Error()}
		} else {
			checks["database"] = gin.H{"status": "healthy"}
		}
	} else {
		checks["database"] = gin.H{"status": "disabled"}
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = gin.H{"status": "unhealthy", "error": err.Error()}
		} else {
			checks["redis"] = gin.H{"status": "healthy"}
		}
	} else {
		checks["redis"] = gin.H{"status": "disabled"}
	}

	status := http.StatusOK
	for _, check := range checks {
		if checkMap, ok := check.(gin.H); ok {
			if s, ok := checkMap["status"]; ok && s == "unhealthy" {
				health["status"] = "degraded"
				status = http.StatusServiceUnavailable
				break
			}
		}
	}

	c.JSON(status, health)
}
