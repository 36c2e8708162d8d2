package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/motorlane/pipeline-api/internal/domain"
)

// PipelineItemFilters contains filter options for listing pipeline items
type PipelineItemFilters struct {
	// OwnerColumn and OwnerID restrict results to items owned by a user
	// through a specific role column. Both must be set together.
	OwnerColumn string
	OwnerID     *uuid.UUID
	// ClosedStatusIDs restricts results to items in one of the given
	// statuses with activity after ClosedSince.
	ClosedStatusIDs []uuid.UUID
	ClosedSince     *time.Time
}

type PipelineItemRepository struct {
	db *gorm.DB
}

func NewPipelineItemRepository(db *gorm.DB) *PipelineItemRepository {
	return &PipelineItemRepository{db: db}
}

// preloaded returns a query with the full association set loaded
func (r *PipelineItemRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Status").
		Preload("MarketColor").
		Preload("ATeamMemberProfile").
		Preload("SalesAdvisorProfile").
		Preload("PhoneNumbers").
		Preload("Notes").
		Preload("Notes.UserProfile")
}

// Create persists a pipeline item together with its phone numbers and notes
func (r *PipelineItemRepository) Create(ctx context.Context, item *domain.PipelineItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		phones := item.PhoneNumbers
		notes := item.Notes
		item.PhoneNumbers = nil
		item.Notes = nil

		// Omit associations to avoid GORM trying to upsert related records
		if err := tx.Omit(clause.Associations).Create(item).Error; err != nil {
			return err
		}

		for i := range phones {
			phones[i].PipelineItemID = item.ID
		}
		if len(phones) > 0 {
			if err := tx.Omit(clause.Associations).Create(&phones).Error; err != nil {
				return err
			}
		}

		for i := range notes {
			notes[i].PipelineItemID = item.ID
		}
		if len(notes) > 0 {
			if err := tx.Omit(clause.Associations).Create(&notes).Error; err != nil {
				return err
			}
		}

		item.PhoneNumbers = phones
		item.Notes = notes
		return nil
	})
}

func (r *PipelineItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PipelineItem, error) {
	var item domain.PipelineItem
	err := r.preloaded(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetOwned fetches an item only if the given user owns it through the given
// ownership column.
func (r *PipelineItemRepository) GetOwned(ctx context.Context, id uuid.UUID, ownerColumn string, ownerID uuid.UUID) (*domain.PipelineItem, error) {
	var item domain.PipelineItem
	err := r.preloaded(ctx).
		Where("id = ?", id).
		Where(ownerColumn+" = ?", ownerID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns pipeline items matching the filters, oldest contact first so
// the most neglected leads surface at the top.
func (r *PipelineItemRepository) List(ctx context.Context, filters *PipelineItemFilters) ([]domain.PipelineItem, error) {
	var items []domain.PipelineItem
	query := r.preloaded(ctx).Model(&domain.PipelineItem{})
	query = r.applyFilters(query, filters)
	err := query.Order("last_contact_date ASC NULLS FIRST").Find(&items).Error
	return items, err
}

// ListByAppointmentRange returns items with an appointment inside the
// half-open range [from, to), earliest first.
func (r *PipelineItemRepository) ListByAppointmentRange(ctx context.Context, from, to time.Time) ([]domain.PipelineItem, error) {
	var items []domain.PipelineItem
	err := r.preloaded(ctx).
		Where("appointment >= ? AND appointment < ?", from, to).
		Order("appointment ASC").
		Find(&items).Error
	return items, err
}

// Save persists changes to an item's own columns. Associations are managed
// through their own operations and never written here.
func (r *PipelineItemRepository) Save(ctx context.Context, item *domain.PipelineItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

// ReplacePhoneNumbers swaps the full phone number set of an item in one
// transaction. The old rows are gone even when the new set is empty.
func (r *PipelineItemRepository) ReplacePhoneNumbers(ctx context.Context, itemID uuid.UUID, numbers []domain.PipelineItemPhoneNumber) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pipeline_item_id = ?", itemID).
			Delete(&domain.PipelineItemPhoneNumber{}).Error; err != nil {
			return err
		}

		for i := range numbers {
			numbers[i].PipelineItemID = itemID
		}
		if len(numbers) > 0 {
			if err := tx.Omit(clause.Associations).Create(&numbers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete soft deletes a pipeline item
func (r *PipelineItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.PipelineItem{}, "id = ?", id).Error
}

// PurgeTrashed permanently removes items soft deleted before the cutoff.
// Returns the number of rows removed.
func (r *PipelineItemRepository) PurgeTrashed(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", before).
		Delete(&domain.PipelineItem{})
	return result.RowsAffected, result.Error
}

func (r *PipelineItemRepository) applyFilters(query *gorm.DB, filters *PipelineItemFilters) *gorm.DB {
	if filters == nil {
		return query
	}

	if filters.OwnerColumn != "" && filters.OwnerID != nil {
		query = query.Where(filters.OwnerColumn+" = ?", *filters.OwnerID)
	}

	if len(filters.ClosedStatusIDs) > 0 {
		query = query.Where("status_id IN ?", filters.ClosedStatusIDs)
		if filters.ClosedSince != nil {
			query = query.Where("updated_at > ?", *filters.ClosedSince)
		}
	}

	return query
}
