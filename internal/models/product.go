package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductStatus is the lifecycle status assigned by normalization.
type ProductStatus string

const (
	ProductStatusActive          ProductStatus = "active"
	ProductStatusErrorIncomplete ProductStatus = "error_incomplete"
)

// JSON type for PostgreSQL JSONB (object/map)
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// JSONArray type for PostgreSQL JSONB (array)
type JSONArray []interface{}

func (j JSONArray) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONArray, 0)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// ProductImage represents a validated product image
type ProductImage struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// NormalizedProduct is the canonical product record produced by the
// normalization engine. Core string fields are never null; optional
// fields are pointers that stay nil when the source had nothing usable.
type NormalizedProduct struct {
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Price             float64        `json:"price"`
	SKU               *string        `json:"sku"`
	Category          *string        `json:"category,omitempty"`
	Tags              []string       `json:"tags,omitempty"`
	SeoTitle          *string        `json:"seo_title,omitempty"`
	SeoDescription    *string        `json:"seo_description,omitempty"`
	Images            []ProductImage `json:"images"`
	SourceURL         *string        `json:"source_url"`
	URLSlug           *string        `json:"url_slug,omitempty"`
	CompletenessScore int            `json:"completeness_score"`
	ContentHash       string         `json:"content_hash"`
	Status            ProductStatus  `json:"status"`
}

// NormalizationError reports a single failed item in a batch, keyed by
// its position in the original input slice.
type NormalizationError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// DuplicateRef marks an input whose content hash matched an earlier
// surviving item. Both indices refer to the original input slice.
type DuplicateRef struct {
	Index       int `json:"index"`
	DuplicateOf int `json:"duplicateOf"`
}

// BatchStats aggregates a batch normalization run.
type BatchStats struct {
	Success         int `json:"success"`
	Failed          int `json:"failed"`
	Duplicates      int `json:"duplicates"`
	AvgCompleteness int `json:"avg_completeness"`
}

// BatchNormalizationResult is the full outcome of NormalizeBatch.
type BatchNormalizationResult struct {
	Products   []*NormalizedProduct `json:"products"`
	Errors     []NormalizationError `json:"errors"`
	Duplicates []DuplicateRef       `json:"duplicates"`
	Stats      BatchStats           `json:"stats"`
}

// NormalizeBatchRequest is the request body for batch normalization
type NormalizeBatchRequest struct {
	Products []interface{} `json:"products" binding:"required"`
}

// IssueSeverity ranks SEO findings. The same scale doubles as the
// recommendation impact level.
type IssueSeverity string

const (
	SeverityCritical IssueSeverity = "critical"
	SeverityHigh     IssueSeverity = "high"
	SeverityMedium   IssueSeverity = "medium"
	SeverityLow      IssueSeverity = "low"
)

// SeoStatus classifies an overall SEO score.
type SeoStatus string

const (
	SeoStatusOptimized        SeoStatus = "optimized"
	SeoStatusNeedsImprovement SeoStatus = "needs_improvement"
	SeoStatusCritical         SeoStatus = "critical"
)

// SeoProduct is the input record for SEO scoring. Absent fields are
// zero values and simply fail their rules; scoring never errors.
type SeoProduct struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	SeoTitle       string         `json:"seo_title"`
	SeoDescription string         `json:"seo_description"`
	Images         []ProductImage `json:"images"`
	Tags           []string       `json:"tags"`
	Price          float64        `json:"price"`
	SKU            string         `json:"sku"`
	Category       string         `json:"category"`
	URLSlug        string         `json:"url_slug"`
}

// SeoIssue is one triggered rule violation.
type SeoIssue struct {
	Category string        `json:"category"`
	Rule     string        `json:"rule"`
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// SeoRecommendation is an actionable fix derived from an issue.
type SeoRecommendation struct {
	Impact IssueSeverity `json:"impact"`
	Action string        `json:"action"`
}

// SeoScoreReport is the result of scoring a single product.
type SeoScoreReport struct {
	OverallScore    int                 `json:"overall_score"`
	Grade           string              `json:"grade"`
	Status          SeoStatus           `json:"status"`
	Issues          []SeoIssue          `json:"issues"`
	Recommendations []SeoRecommendation `json:"recommendations"`
}

// SeoBatchStats aggregates a batch scoring run.
type SeoBatchStats struct {
	AvgScore  int            `json:"avg_score"`
	ByGrade   map[string]int `json:"by_grade"`
	TopIssues []string       `json:"top_issues"`
}

// SeoBatchResult is the full outcome of ScoreBatch.
type SeoBatchResult struct {
	Results []*SeoScoreReport `json:"results"`
	Stats   SeoBatchStats     `json:"stats"`
}

// SeoBatchRequest is the request body for batch SEO scoring
type SeoBatchRequest struct {
	Products []*SeoProduct `json:"products" binding:"required"`
}

// ProductRecord is a persisted normalized product. Records are unique
// per (tenant, content hash); re-importing an equivalent product
// updates the existing row.
type ProductRecord struct {
	ID                uuid.UUID       `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID          string          `json:"tenantId" gorm:"not null;index:idx_product_records_tenant_hash,unique;index:idx_product_records_tenant_status"`
	ContentHash       string          `json:"contentHash" gorm:"not null;index:idx_product_records_tenant_hash,unique"`
	Title             string          `json:"title" gorm:"not null"`
	Description       *string         `json:"description,omitempty"`
	Price             float64         `json:"price" gorm:"not null;default:0"`
	SKU               *string         `json:"sku,omitempty" gorm:"index"`
	Category          *string         `json:"category,omitempty" gorm:"index"`
	Tags              *JSONArray      `json:"tags,omitempty" gorm:"type:jsonb"`
	SeoTitle          *string         `json:"seoTitle,omitempty" gorm:"column:seo_title;type:text"`
	SeoDescription    *string         `json:"seoDescription,omitempty" gorm:"column:seo_description;type:text"`
	Images            *JSONArray      `json:"images,omitempty" gorm:"type:jsonb"`
	SourceURL         *string         `json:"sourceUrl,omitempty" gorm:"column:source_url;type:text"`
	URLSlug           *string         `json:"urlSlug,omitempty" gorm:"column:url_slug"`
	CompletenessScore int             `json:"completenessScore" gorm:"not null;default:0"`
	Status            ProductStatus   `json:"status" gorm:"not null;default:'error_incomplete';index:idx_product_records_tenant_status"`
	SeoScore          *int            `json:"seoScore,omitempty"`
	SeoGrade          *string         `json:"seoGrade,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	DeletedAt         *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// TableName returns the table name for the ProductRecord model
func (ProductRecord) TableName() string {
	return "product_records"
}

// NewProductRecord builds a persistable record from a normalized product.
func NewProductRecord(tenantID string, p *NormalizedProduct) *ProductRecord {
	record := &ProductRecord{
		TenantID:          tenantID,
		ContentHash:       p.ContentHash,
		Title:             p.Title,
		Price:             p.Price,
		SKU:               p.SKU,
		Category:          p.Category,
		SeoTitle:          p.SeoTitle,
		SeoDescription:    p.SeoDescription,
		SourceURL:         p.SourceURL,
		URLSlug:           p.URLSlug,
		CompletenessScore: p.CompletenessScore,
		Status:            p.Status,
	}
	if p.Description != "" {
		desc := p.Description
		record.Description = &desc
	}
	if len(p.Tags) > 0 {
		tags := make(JSONArray, len(p.Tags))
		for i, t := range p.Tags {
			tags[i] = t
		}
		record.Tags = &tags
	}
	if len(p.Images) > 0 {
		images := make(JSONArray, len(p.Images))
		for i, img := range p.Images {
			images[i] = img
		}
		record.Images = &images
	}
	return record
}

// AttachSeoReport denormalizes the headline SEO numbers onto the record.
func (r *ProductRecord) AttachSeoReport(report *SeoScoreReport) {
	if report == nil {
		return
	}
	score := report.OverallScore
	grade := report.Grade
	r.SeoScore = &score
	r.SeoGrade = &grade
}

// Response types

type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
}

type ProductRecordResponse struct {
	Success bool           `json:"success"`
	Data    *ProductRecord `json:"data"`
	Message *string        `json:"message,omitempty"`
}

type ProductRecordListResponse struct {
	Success    bool            `json:"success"`
	Data       []ProductRecord `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     Error  `json:"error"`
	Timestamp string `json:"timestamp,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details *JSON  `json:"details,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}
