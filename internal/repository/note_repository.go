package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/motorlane/pipeline-api/internal/domain"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, note *domain.PipelineItemNote) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(note).Error
}

func (r *NoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PipelineItemNote, error) {
	var note domain.PipelineItemNote
	err := r.db.WithContext(ctx).
		Preload("UserProfile").
		Where("id = ?", id).
		First(&note).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *NoteRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]domain.PipelineItemNote, error) {
	var notes []domain.PipelineItemNote
	err := r.db.WithContext(ctx).
		Preload("UserProfile").
		Where("pipeline_item_id = ?", itemID).
		Order("created_at DESC").
		Find(&notes).Error
	return notes, err
}
