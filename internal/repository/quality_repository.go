package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"catalog-quality-service/internal/models"
)

// Cache TTL constants
const (
	RecordCacheTTL     = 5 * time.Minute // Single record cache
	RecordListCacheTTL = 2 * time.Minute // List cache (shorter due to frequent changes)
)

// ListRecordsParams filters and paginates record listing.
type ListRecordsParams struct {
	Page   int                  `json:"page"`
	Limit  int                  `json:"limit"`
	Status models.ProductStatus `json:"status,omitempty"`
}

type QualityRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewQualityRepository(db *gorm.DB, redis *redis.Client) *QualityRepository {
	return &QualityRepository{
		db:    db,
		redis: redis,
	}
}

// generateListCacheKey creates a deterministic cache key for list queries
func generateListCacheKey(tenantID string, prefix string, params interface{}) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("%s:%s:%s", prefix, tenantID, hex.EncodeToString(hash[:]))
}

// invalidateRecordCaches invalidates all caches related to a record
func (r *QualityRepository) invalidateRecordCaches(ctx context.Context, tenantID, contentHash string) {
	if r.redis == nil {
		return
	}

	_ = r.redis.Del(ctx, fmt.Sprintf("record:%s:%s", tenantID, contentHash)).Err()

	// Invalidate list caches for this tenant (pattern-based)
	pattern := fmt.Sprintf("records:list:%s:*", tenantID)
	iter := r.redis.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		_ = r.redis.Del(ctx, iter.Val()).Err()
	}
}

// UpsertRecord inserts a normalized record or, when the tenant already
// has a record with the same content hash, replaces its fields in
// place. The record's ID reflects the stored row on return.
func (r *QualityRepository) UpsertRecord(tenantID string, record *models.ProductRecord) error {
	record.TenantID = tenantID

	var existing models.ProductRecord
	err := r.db.Where("tenant_id = ? AND content_hash = ?", tenantID, record.ContentHash).
		First(&existing).Error
	switch {
	case err == nil:
		// Save with the existing primary key replaces every column,
		// including ones reset to zero values.
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		record.UpdatedAt = time.Now()
		err = r.db.Save(record).Error
	case err == gorm.ErrRecordNotFound:
		record.CreatedAt = time.Now()
		record.UpdatedAt = record.CreatedAt
		err = r.db.Create(record).Error
	default:
		return err
	}

	if err == nil {
		r.invalidateRecordCaches(context.Background(), tenantID, record.ContentHash)
	}
	return err
}

// GetRecordByHash retrieves a record by content hash with caching
func (r *QualityRepository) GetRecordByHash(tenantID, contentHash string) (*models.ProductRecord, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("record:%s:%s", tenantID, contentHash)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var record models.ProductRecord
			if err := json.Unmarshal([]byte(val), &record); err == nil {
				return &record, nil
			}
		}
	}

	var record models.ProductRecord
	if err := r.db.Where("tenant_id = ? AND content_hash = ?", tenantID, contentHash).
		First(&record).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		data, err := json.Marshal(record)
		if err == nil {
			r.redis.Set(ctx, cacheKey, data, RecordCacheTTL)
		}
	}

	return &record, nil
}

// ListRecords returns a page of records for a tenant with caching
func (r *QualityRepository) ListRecords(tenantID string, params ListRecordsParams) ([]models.ProductRecord, int64, error) {
	ctx := context.Background()
	cacheKey := generateListCacheKey(tenantID, "records:list", params)

	type cachedList struct {
		Records []models.ProductRecord `json:"records"`
		Total   int64                  `json:"total"`
	}

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var cached cachedList
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached.Records, cached.Total, nil
			}
		}
	}

	query := r.db.Model(&models.ProductRecord{}).Where("tenant_id = ?", tenantID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.ProductRecord
	offset := (params.Page - 1) * params.Limit
	if err := query.Order("updated_at DESC").
		Offset(offset).Limit(params.Limit).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	if r.redis != nil {
		data, err := json.Marshal(cachedList{Records: records, Total: total})
		if err == nil {
			r.redis.Set(ctx, cacheKey, data, RecordListCacheTTL)
		}
	}

	return records, total, nil
}
