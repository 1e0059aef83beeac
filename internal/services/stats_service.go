package services

import (
	"context"
	"time"

	errs "github.com/lmercier/urlalias/internal/errors"
	"github.com/lmercier/urlalias/internal/repository"
)

// StatsService reports click counts over rolling windows (last hour, last
// day, all-time). Counts are computed live from the click rows at query
// time; there is no cached counter to drift out of sync.
type StatsService struct {
	shortURLRepo repository.ShortURLRepository
	nowFunc      func() time.Time
}

// NewStatsService creates and returns a new StatsService.
func NewStatsService(shortURLRepo repository.ShortURLRepository) *StatsService {
	return &StatsService{
		shortURLRepo: shortURLRepo,
		nowFunc:      time.Now,
	}
}

// ListStats returns the windowed click counts for every record, busiest
// first (all-time clicks descending, newest creation breaking ties).
// Inactive and expired records are included: stats outlive resolvability.
func (s *StatsService) ListStats(ctx context.Context) ([]repository.ShortURLStats, error) {
	return s.shortURLRepo.AggregateStats(ctx, "", s.nowFunc())
}

// KeyStats returns the windowed click counts for one key, in any state, or
// ErrNotFound if no record carries it.
func (s *StatsService) KeyStats(ctx context.Context, shortKey string) (*repository.ShortURLStats, error) {
	rows, err := s.shortURLRepo.AggregateStats(ctx, shortKey, s.nowFunc())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.ErrNotFound
	}
	return &rows[0], nil
}
