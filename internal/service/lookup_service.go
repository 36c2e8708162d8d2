package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/motorlane/pipeline-api/internal/domain"
	"github.com/motorlane/pipeline-api/internal/repository"
)

// LookupService serves the small reference tables behind the intake form
type LookupService struct {
	statusRepo *repository.StatusRepository
	colorRepo  *repository.MarketColorRepository
	logger     *zap.Logger
}

func NewLookupService(
	statusRepo *repository.StatusRepository,
	colorRepo *repository.MarketColorRepository,
	logger *zap.Logger,
) *LookupService {
	return &LookupService{
		statusRepo: statusRepo,
		colorRepo:  colorRepo,
		logger:     logger,
	}
}

func (s *LookupService) ListStatuses(ctx context.Context) ([]domain.PipelineStatus, error) {
	statuses, err := s.statusRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline statuses: %w", err)
	}
	return statuses, nil
}

func (s *LookupService) ListMarketColors(ctx context.Context) ([]domain.MarketColor, error) {
	colors, err := s.colorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list market colors: %w", err)
	}
	return colors, nil
}
