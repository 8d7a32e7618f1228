// Package storage holds the online feature store: the per-policy summary
// row the dashboard materializes after each scored run, cached in Redis for
// low-latency reads and persisted in Postgres as the source of truth.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/underwriteiq/platform/pkg/common/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OnlineFeature is one materialized feature-store row.
type OnlineFeature struct {
	PolicyNumber      string    `gorm:"primaryKey;column:policy_number" json:"policy_number"`
	HasMIBData        bool      `gorm:"column:has_mib_data" json:"has_mib_data"`
	HasRXData         bool      `gorm:"column:has_rx_data" json:"has_rx_data"`
	CombinedRiskScore float64   `gorm:"column:combined_risk_score" json:"combined_risk_score"`
	FeatureCreatedAt  time.Time `gorm:"column:feature_created_at" json:"feature_created_at"`
	FeatureUpdatedAt  time.Time `gorm:"column:feature_updated_at" json:"feature_updated_at"`
}

// TableName overrides gorm naming.
func (OnlineFeature) TableName() string {
	return "online_features"
}

type FeatureStore struct {
	db       *gorm.DB
	redis    *redis.Client // optional cache layer
	cacheTTL time.Duration
}

func NewFeatureStore(db *gorm.DB, redisClient *redis.Client, cacheTTL time.Duration) *FeatureStore {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &FeatureStore{db: db, redis: redisClient, cacheTTL: cacheTTL}
}

func (f *FeatureStore) AutoMigrate() error {
	return f.db.AutoMigrate(&OnlineFeature{})
}

// Upsert merges the latest scored run into the policy's feature row and
// refreshes the cache. Cache writes are best effort.
func (f *FeatureStore) Upsert(ctx context.Context, policyNumber string, hasMIB, hasRX bool, riskScore float64) error {
	now := time.Now().UTC()
	row := OnlineFeature{
		PolicyNumber:      policyNumber,
		HasMIBData:        hasMIB,
		HasRXData:         hasRX,
		CombinedRiskScore: riskScore,
		FeatureCreatedAt:  now,
		FeatureUpdatedAt:  now,
	}

	err := f.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "policy_number"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"has_mib_data":        hasMIB,
			"has_rx_data":         hasRX,
			"combined_risk_score": riskScore,
			"feature_updated_at":  now,
		}),
	}).Create(&row).Error
	if err != nil {
		return err
	}

	f.cache(ctx, row)
	return nil
}

// Get reads the feature row, preferring the cache.
func (f *FeatureStore) Get(ctx context.Context, policyNumber string) (OnlineFeature, error) {
	if f.redis != nil {
		if data, err := f.redis.Get(ctx, featureKey(policyNumber)).Bytes(); err == nil {
			var row OnlineFeature
			if json.Unmarshal(data, &row) == nil {
				return row, nil
			}
		}
	}

	var row OnlineFeature
	if err := f.db.WithContext(ctx).First(&row, "policy_number = ?", policyNumber).Error; err != nil {
		return OnlineFeature{}, err
	}
	f.cache(ctx, row)
	return row, nil
}

// Recent returns the most recently created feature rows up to limit.
func (f *FeatureStore) Recent(ctx context.Context, limit int) ([]OnlineFeature, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []OnlineFeature
	err := f.db.WithContext(ctx).
		Order("feature_created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (f *FeatureStore) cache(ctx context.Context, row OnlineFeature) {
	if f.redis == nil {
		return
	}
	data, err := json.Marshal(row)
	if err != nil {
		return
	}
	if err := f.redis.Set(ctx, featureKey(row.PolicyNumber), data, f.cacheTTL).Err(); err != nil {
		logger.Log.WithError(err).Debug("Feature cache write failed")
	}
}

func featureKey(policyNumber string) string {
	return fmt.Sprintf("features:%s", policyNumber)
}
