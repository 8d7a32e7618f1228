package serving

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/underwriteiq/platform/pkg/common/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ModelPrediction is the persistence model for scored predictions.
type ModelPrediction struct {
	PredictionID    string            `gorm:"primaryKey;column:prediction_id"`
	PolicyNumber    string            `gorm:"column:policy_number;index"`
	Prediction      float64           `gorm:"column:prediction"`
	PredictionClass string            `gorm:"column:prediction_class"`
	ModelName       string            `gorm:"column:model_name"`
	ModelVersion    string            `gorm:"column:model_version"`
	Features        datatypes.JSONMap `gorm:"column:features"`
	InferenceMs     float64           `gorm:"column:inference_ms"`
	ScoreDate       time.Time         `gorm:"column:score_date"`
	CreatedAt       time.Time         `gorm:"column:created_at"`
}

// TableName overrides gorm naming.
func (ModelPrediction) TableName() string {
	return "model_predictions"
}

// Repository handles model prediction persistence and queries.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&ModelPrediction{})
}

// RecordPrediction appends one scored result. Prediction IDs carry a random
// suffix so the same policy can be rescored without key collisions.
func (r *Repository) RecordPrediction(ctx context.Context, result models.PredictionResult) error {
	now := time.Now().UTC()
	row := ModelPrediction{
		PredictionID:    fmt.Sprintf("PRED-%s-%s", result.PolicyNumber, uuid.New().String()[:8]),
		PolicyNumber:    result.PolicyNumber,
		Prediction:      result.RiskScore,
		PredictionClass: result.RiskLevel,
		ModelName:       models.ModelName,
		ModelVersion:    result.ModelVersion,
		Features:        datatypes.JSONMap(result.Features.Combined),
		InferenceMs:     result.InferenceMs,
		ScoreDate:       now,
		CreatedAt:       now,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// Recent returns the most recent predictions up to limit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]ModelPrediction, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []ModelPrediction
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
