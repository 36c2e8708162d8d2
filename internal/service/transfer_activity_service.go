package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/motorlane/pipeline-api/internal/domain"
	"github.com/motorlane/pipeline-api/internal/mapper"
	"github.com/motorlane/pipeline-api/internal/repository"
)

// TransferActivityService exposes the transfer audit log to admins
type TransferActivityService struct {
	activityRepo *repository.TransferActivityRepository
	logger       *zap.Logger
}

func NewTransferActivityService(activityRepo *repository.TransferActivityRepository, logger *zap.Logger) *TransferActivityService {
	return &TransferActivityService{
		activityRepo: activityRepo,
		logger:       logger,
	}
}

func (s *TransferActivityService) List(ctx context.Context, limit int) ([]domain.TransferActivityDTO, error) {
	activities, err := s.activityRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfer activities: %w", err)
	}
	return mapper.ToTransferActivityDTOs(activities), nil
}

func (s *TransferActivityService) ListByItem(ctx context.Context, itemID uuid.UUID) ([]domain.TransferActivityDTO, error) {
	activities, err := s.activityRepo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfer activities: %w", err)
	}
	return mapper.ToTransferActivityDTOs(activities), nil
}
