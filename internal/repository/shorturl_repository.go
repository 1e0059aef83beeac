package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	errs "github.com/lmercier/urlalias/internal/errors"
	"github.com/lmercier/urlalias/internal/models"
)

// ShortURLStats is one row of the windowed click aggregation.
type ShortURLStats struct {
	ShortKey       string `json:"short_key"`
	OriginalURL    string `json:"original_url"`
	LastHourClicks int64  `json:"last_hour_clicks"`
	LastDayClicks  int64  `json:"last_day_clicks"`
	AllTimeClicks  int64  `json:"all_time_clicks"`
}

// ShortURLRepository defines the data-access contract for ShortURL records.
// Read-modify-write operations (Create, Deactivate) are atomic at the
// storage layer; application code never relies on check-then-act alone.
type ShortURLRepository interface {
	// Create inserts a new record. Returns errs.ErrDuplicateKey if the
	// short key is already taken; the unique index closes the race between
	// concurrent creations.
	Create(ctx context.Context, shortURL *models.ShortURL) error
	// GetByKey returns the record for a key regardless of state, or
	// errs.ErrNotFound.
	GetByKey(ctx context.Context, shortKey string) (*models.ShortURL, error)
	// GetResolvableByKey returns the record only if it is active and not
	// expired at the given instant.
	GetResolvableByKey(ctx context.Context, shortKey string, now time.Time) (*models.ShortURL, error)
	// ExistsByKey reports whether any record, active or not, carries the key.
	ExistsByKey(ctx context.Context, shortKey string) (bool, error)
	// List returns a page of records, newest first. The active filter is an
	// explicit parameter: nil means no filtering, never an implicit default.
	List(ctx context.Context, active *bool, page, pageSize int) ([]models.ShortURL, int64, error)
	// ListActive returns every active record; used by the background monitor.
	ListActive(ctx context.Context) ([]models.ShortURL, error)
	// Deactivate atomically flips is_active to false. Reports false when the
	// record was already inactive (a concurrent deactivation won).
	Deactivate(ctx context.Context, id uint) (bool, error)
	// AggregateStats computes 1h/24h/all-time click counts ending at now.
	// An empty shortKey aggregates every record, ordered by all-time clicks
	// descending then creation time descending.
	AggregateStats(ctx context.Context, shortKey string, now time.Time) ([]ShortURLStats, error)
}

// GormShortURLRepository is the gorm-backed implementation of ShortURLRepository.
type GormShortURLRepository struct {
	db *gorm.DB
}

// NewShortURLRepository creates and returns a new GormShortURLRepository.
func NewShortURLRepository(db *gorm.DB) *GormShortURLRepository {
	return &GormShortURLRepository{db: db}
}

func (r *GormShortURLRepository) Create(ctx context.Context, shortURL *models.ShortURL) error {
	if err := r.db.WithContext(ctx).Create(shortURL).Error; err != nil {
		if errs.IsDuplicateKey(err) {
			return errs.ErrDuplicateKey
		}
		return errs.Store("insert short url", err)
	}
	return nil
}

func (r *GormShortURLRepository) GetByKey(ctx context.Context, shortKey string) (*models.ShortURL, error) {
	var shortURL models.ShortURL
	err := r.db.WithContext(ctx).Where("short_key = ?", shortKey).First(&shortURL).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, errs.Store("get short url by key", err)
	}
	return &shortURL, nil
}

func (r *GormShortURLRepository) GetResolvableByKey(ctx context.Context, shortKey string, now time.Time) (*models.ShortURL, error) {
	var shortURL models.ShortURL
	err := r.db.WithContext(ctx).
		Where("short_key = ? AND is_active = ? AND expires_at > ?", shortKey, true, now).
		First(&shortURL).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, errs.Store("get resolvable short url", err)
	}
	return &shortURL, nil
}

func (r *GormShortURLRepository) ExistsByKey(ctx context.Context, shortKey string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ShortURL{}).
		Where("short_key = ?", shortKey).
		Count(&count).Error
	if err != nil {
		return false, errs.Store("check short key existence", err)
	}
	return count > 0, nil
}

func (r *GormShortURLRepository) List(ctx context.Context, active *bool, page, pageSize int) ([]models.ShortURL, int64, error) {
	filtered := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.ShortURL{})
		if active != nil {
			q = q.Where("is_active = ?", *active)
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, errs.Store("count short urls", err)
	}

	var shortURLs []models.ShortURL
	err := filtered().
		Order("created_at DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&shortURLs).Error
	if err != nil {
		return nil, 0, errs.Store("list short urls", err)
	}
	return shortURLs, total, nil
}

func (r *GormShortURLRepository) ListActive(ctx context.Context) ([]models.ShortURL, error) {
	var shortURLs []models.ShortURL
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&shortURLs).Error
	if err != nil {
		return nil, errs.Store("list active short urls", err)
	}
	return shortURLs, nil
}

func (r *GormShortURLRepository) Deactivate(ctx context.Context, id uint) (bool, error) {
	// Conditional UPDATE keeps the flip atomic: only one of two concurrent
	// deactivations sees a row affected.
	res := r.db.WithContext(ctx).Model(&models.ShortURL{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return false, errs.Store("deactivate short url", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormShortURLRepository) AggregateStats(ctx context.Context, shortKey string, now time.Time) ([]ShortURLStats, error) {
	hourAgo := now.Add(-time.Hour)
	dayAgo := now.Add(-24 * time.Hour)

	q := r.db.WithContext(ctx).Table("short_urls").
		Select(`short_urls.short_key,
			short_urls.original_url,
			COUNT(CASE WHEN clicks.clicked_at > ? THEN clicks.id END) AS last_hour_clicks,
			COUNT(CASE WHEN clicks.clicked_at > ? THEN clicks.id END) AS last_day_clicks,
			COUNT(clicks.id) AS all_time_clicks`, hourAgo, dayAgo).
		Joins("LEFT JOIN clicks ON clicks.short_url_id = short_urls.id").
		Group("short_urls.id")
	if shortKey != "" {
		q = q.Where("short_urls.short_key = ?", shortKey)
	} else {
		// Deterministic ordering: busiest first, newest breaks ties.
		q = q.Order("all_time_clicks DESC, short_urls.created_at DESC")
	}

	var rows []ShortURLStats
	if err := q.Scan(&rows).Error; err != nil {
		return nil, errs.Store("aggregate click stats", err)
	}
	return rows, nil
}
