package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorlane/pipeline-api/internal/domain"
)

type StatusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

func (r *StatusRepository) List(ctx context.Context) ([]domain.PipelineStatus, error) {
	var statuses []domain.PipelineStatus
	err := r.db.WithContext(ctx).Order("label ASC").Find(&statuses).Error
	return statuses, err
}

func (r *StatusRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PipelineStatus, error) {
	var status domain.PipelineStatus
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *StatusRepository) GetByCode(ctx context.Context, code domain.StatusCode) (*domain.PipelineStatus, error) {
	var status domain.PipelineStatus
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// ClosedStatusIDs returns the ids of all statuses that count as a closed deal
func (r *StatusRepository) ClosedStatusIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&domain.PipelineStatus{}).
		Where("is_closed = ?", true).
		Pluck("id", &ids).Error
	return ids, err
}

type MarketColorRepository struct {
	db *gorm.DB
}

func NewMarketColorRepository(db *gorm.DB) *MarketColorRepository {
	return &MarketColorRepository{db: db}
}

func (r *MarketColorRepository) List(ctx context.Context) ([]domain.MarketColor, error) {
	var colors []domain.MarketColor
	err := r.db.WithContext(ctx).Order("label ASC").Find(&colors).Error
	return colors, err
}

func (r *MarketColorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MarketColor, error) {
	var color domain.MarketColor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&color).Error
	if err != nil {
		return nil, err
	}
	return &color, nil
}
