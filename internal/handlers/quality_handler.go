package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"catalog-quality-service/internal/middleware"
	"catalog-quality-service/internal/models"
	"catalog-quality-service/internal/normalizer"
	"catalog-quality-service/internal/repository"
	"catalog-quality-service/internal/seo"
)

// QualityHandler serves the normalization and SEO scoring endpoints.
// The repository may be nil when persistence is disabled.
type QualityHandler struct {
	engine          *normalizer.Engine
	repo            *repository.QualityRepository
	defaultPageSize int
	maxPageSize     int
}

func NewQualityHandler(engine *normalizer.Engine, repo *repository.QualityRepository, defaultPageSize, maxPageSize int) *QualityHandler {
	return &QualityHandler{
		engine:          engine,
		repo:            repo,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// NormalizeProduct normalizes a single raw product object
// @Summary Normalize a product
// @Description Converts one raw product object into the canonical product shape
// @Tags quality
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/quality/normalize [post]
func (h *QualityHandler) NormalizeProduct(c *gin.Context) {
	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Request body must be a JSON object",
			},
		})
		return
	}

	product, err := h.engine.Normalize(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INVALID_INPUT",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: product})
}

// NormalizeBatch normalizes a batch of raw product objects
// @Summary Normalize a batch of products
// @Description Normalizes each product independently with per-item error isolation and content-hash dedup
// @Tags quality
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/quality/normalize/batch [post]
func (h *QualityHandler) NormalizeBatch(c *gin.Context) {
	var req models.NormalizeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Request body must contain a products array",
				Field:   "products",
			},
		})
		return
	}

	result := h.engine.NormalizeBatch(req.Products)
	middleware.CountNormalized(result.Stats.Success, result.Stats.Failed, result.Stats.Duplicates)

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: result})
}

// ScoreSeo audits a single product record
// @Summary Score product SEO
// @Description Runs the SEO rule audit over one product and returns score, grade and recommendations
// @Tags quality
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/quality/seo/score [post]
func (h *QualityHandler) ScoreSeo(c *gin.Context) {
	var product models.SeoProduct
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Request body must be a product object",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: seo.Score(&product)})
}

// ScoreSeoBatch audits a batch of product records
// @Summary Score SEO for a batch of products
// @Tags quality
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/quality/seo/score/batch [post]
func (h *QualityHandler) ScoreSeoBatch(c *gin.Context) {
	var req models.SeoBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: "Request body must contain a products array",
				Field:   "products",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: seo.ScoreBatch(req.Products)})
}

// ListRecords lists persisted normalized records for the tenant
// @Summary List normalized product records
// @Tags quality
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param status query string false "Filter by status (active, error_incomplete)"
// @Success 200 {object} models.ProductRecordListResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/v1/quality/products [get]
func (h *QualityHandler) ListRecords(c *gin.Context) {
	if h.repo == nil {
		h.persistenceDisabled(c)
		return
	}
	tenantID := middleware.GetTenantID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.defaultPageSize)))
	if limit < 1 {
		limit = h.defaultPageSize
	}
	if limit > h.maxPageSize {
		limit = h.maxPageSize
	}

	params := repository.ListRecordsParams{
		Page:   page,
		Limit:  limit,
		Status: models.ProductStatus(c.Query("status")),
	}

	records, total, err := h.repo.ListRecords(tenantID, params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "DATABASE_ERROR",
				Message: "Failed to list product records",
			},
		})
		return
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, models.ProductRecordListResponse{
		Success: true,
		Data:    records,
		Pagination: &models.PaginationInfo{
			Page:        page,
			Limit:       limit,
			Total:       total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrevious: page > 1,
		},
	})
}

// GetRecord fetches one persisted record by content hash
// @Summary Get a normalized product record
// @Tags quality
// @Produce json
// @Param hash path string true "Content hash"
// @Success 200 {object} models.ProductRecordResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/quality/products/{hash} [get]
func (h *QualityHandler) GetRecord(c *gin.Context) {
	if h.repo == nil {
		h.persistenceDisabled(c)
		return
	}
	tenantID := middleware.GetTenantID(c)

	record, err := h.repo.GetRecordByHash(tenantID, c.Param("hash"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "RECORD_NOT_FOUND",
					Message: "No product record with this content hash",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "DATABASE_ERROR",
				Message: "Failed to fetch product record",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.ProductRecordResponse{Success: true, Data: record})
}

func (h *QualityHandler) persistenceDisabled(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "PERSISTENCE_DISABLED",
			Message: "Record storage is disabled on this deployment",
		},
	})
}
