package repository

import (
	"context"

	"gorm.io/gorm"

	errs "github.com/lmercier/urlalias/internal/errors"
	"github.com/lmercier/urlalias/internal/models"
)

// ClickRepository defines the data-access contract for Click records.
// Clicks are append-only.
type ClickRepository interface {
	CreateClick(ctx context.Context, click *models.Click) error
	CountClicksByShortURLID(ctx context.Context, shortURLID uint) (int64, error)
}

// GormClickRepository is the gorm-backed implementation of ClickRepository.
type GormClickRepository struct {
	db *gorm.DB
}

// NewClickRepository creates and returns a new GormClickRepository.
func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

// CreateClick appends a new click record.
func (r *GormClickRepository) CreateClick(ctx context.Context, click *models.Click) error {
	if err := r.db.WithContext(ctx).Create(click).Error; err != nil {
		return errs.Store("insert click", err)
	}
	return nil
}

// CountClicksByShortURLID counts all clicks ever recorded for a record.
func (r *GormClickRepository) CountClicksByShortURLID(ctx context.Context, shortURLID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Click{}).
		Where("short_url_id = ?", shortURLID).
		Count(&count).Error
	if err != nil {
		return 0, errs.Store("count clicks", err)
	}
	return count, nil
}
