package service

import (
	"context"

	"dirgate/internal/domain"
)

// StatsService serves the dashboard summary.
type StatsService struct {
	repo domain.StatsRepository
}

// NewStatsService creates a new StatsService.
func NewStatsService(repo domain.StatsRepository) *StatsService {
	return &StatsService{repo: repo}
}

func (s *StatsService) Summary(ctx context.Context) (*domain.DirectoryStats, error) {
	return s.repo.Summary(ctx)
}
