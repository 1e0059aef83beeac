package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	errs "github.com/lmercier/urlalias/internal/errors"
	"github.com/lmercier/urlalias/internal/models"
	"github.com/lmercier/urlalias/internal/repository"
)

const maxURLLength = 2048

// ExpiryPolicy bounds the expires_days input and supplies the default
// applied when the caller gives none.
type ExpiryPolicy struct {
	DefaultDays int
	MinDays     int
	MaxDays     int
}

// CreateParams is the input to ShortURLService.Create. ExpiresDays of zero
// means "use the default"; CustomKey of "" means "generate one".
type CreateParams struct {
	OriginalURL string
	CustomKey   string
	ExpiresDays int
}

// ShortURLService provides the create/get/list/deactivate lifecycle for
// short URLs.
type ShortURLService struct {
	shortURLRepo repository.ShortURLRepository
	clickRepo    repository.ClickRepository
	keyGen       *KeyGenerator
	expiry       ExpiryPolicy
	nowFunc      func() time.Time
}

// NewShortURLService creates and returns a new ShortURLService.
func NewShortURLService(
	shortURLRepo repository.ShortURLRepository,
	clickRepo repository.ClickRepository,
	keyGen *KeyGenerator,
	expiry ExpiryPolicy,
) *ShortURLService {
	return &ShortURLService{
		shortURLRepo: shortURLRepo,
		clickRepo:    clickRepo,
		keyGen:       keyGen,
		expiry:       expiry,
		nowFunc:      time.Now,
	}
}

// Create validates the input, allocates or validates a short key and
// persists the new record. Key assignment is an explicit step here, never a
// side effect of persistence. The insert itself is the uniqueness
// guarantee: a concurrent creation racing on the same key loses with
// ErrDuplicateKey.
func (s *ShortURLService) Create(ctx context.Context, p CreateParams) (*models.ShortURL, error) {
	originalURL, err := validateOriginalURL(p.OriginalURL)
	if err != nil {
		return nil, err
	}

	expiresDays := p.ExpiresDays
	if expiresDays == 0 {
		expiresDays = s.expiry.DefaultDays
	}
	if expiresDays < s.expiry.MinDays || expiresDays > s.expiry.MaxDays {
		return nil, fmt.Errorf("%w: expires_days must be between %d and %d",
			errs.ErrInvalidInput, s.expiry.MinDays, s.expiry.MaxDays)
	}

	var shortKey string
	if p.CustomKey != "" {
		// Format first, then the existence pre-check. The pre-check is a
		// fast-fail courtesy only; the unique index decides the race.
		if !ValidCustomKey(p.CustomKey) {
			return nil, errs.ErrInvalidKey
		}
		exists, err := s.shortURLRepo.ExistsByKey(ctx, p.CustomKey)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, errs.ErrDuplicateKey
		}
		shortKey = p.CustomKey
	} else {
		shortKey, err = s.keyGen.Generate(ctx)
		if err != nil {
			return nil, err
		}
	}

	now := s.nowFunc()
	shortURL := &models.ShortURL{
		OriginalURL: originalURL,
		ShortKey:    shortKey,
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Duration(expiresDays) * 24 * time.Hour),
		IsActive:    true,
	}

	if err := s.shortURLRepo.Create(ctx, shortURL); err != nil {
		return nil, err
	}
	return shortURL, nil
}

// GetByKey returns a record (any state) together with its all-time click
// count, or ErrNotFound.
func (s *ShortURLService) GetByKey(ctx context.Context, shortKey string) (*models.ShortURL, int64, error) {
	shortURL, err := s.shortURLRepo.GetByKey(ctx, shortKey)
	if err != nil {
		return nil, 0, err
	}
	clicks, err := s.clickRepo.CountClicksByShortURLID(ctx, shortURL.ID)
	if err != nil {
		return nil, 0, err
	}
	return shortURL, clicks, nil
}

// List returns a page of records, newest first, optionally filtered by
// active state, plus the unpaginated total.
func (s *ShortURLService) List(ctx context.Context, active *bool, page, pageSize int) ([]models.ShortURL, int64, error) {
	return s.shortURLRepo.List(ctx, active, page, pageSize)
}

// Deactivate atomically flips a record to inactive. A record that is
// already inactive yields ErrAlreadyDeactivated: the transition is one-way
// and a second attempt is a caller error, not a silent success. Click
// history and expiry are untouched.
func (s *ShortURLService) Deactivate(ctx context.Context, shortKey string) (*models.ShortURL, error) {
	shortURL, err := s.shortURLRepo.GetByKey(ctx, shortKey)
	if err != nil {
		return nil, err
	}
	if !shortURL.IsActive {
		return nil, errs.ErrAlreadyDeactivated
	}

	flipped, err := s.shortURLRepo.Deactivate(ctx, shortURL.ID)
	if err != nil {
		return nil, err
	}
	if !flipped {
		// A concurrent deactivation got there first.
		return nil, errs.ErrAlreadyDeactivated
	}

	shortURL.IsActive = false
	return shortURL, nil
}

// validateOriginalURL checks that the target is a non-empty absolute
// http/https URL within the length bound.
func validateOriginalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxURLLength {
		return "", errs.ErrInvalidURL
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", errs.ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errs.ErrInvalidURL
	}
	if parsed.Host == "" {
		return "", errs.ErrInvalidURL
	}
	return raw, nil
}
