package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/motorlane/pipeline-api/internal/domain"
)

// TransferActivityRepository writes and reads the transfer audit log.
// The log is append only: there are no update or delete operations.
type TransferActivityRepository struct {
	db *gorm.DB
}

func NewTransferActivityRepository(db *gorm.DB) *TransferActivityRepository {
	return &TransferActivityRepository{db: db}
}

func (r *TransferActivityRepository) Create(ctx context.Context, activity *domain.TransferActivity) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(activity).Error
}

func (r *TransferActivityRepository) List(ctx context.Context, limit int) ([]domain.TransferActivity, error) {
	var activities []domain.TransferActivity
	query := r.db.WithContext(ctx).
		Preload("InitiatorProfile").
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&activities).Error
	return activities, err
}

func (r *TransferActivityRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]domain.TransferActivity, error) {
	var activities []domain.TransferActivity
	err := r.db.WithContext(ctx).
		Preload("InitiatorProfile").
		Where("pipeline_item_id = ?", itemID).
		Order("created_at DESC").
		Find(&activities).Error
	return activities, err
}
