package services

import (
	"context"
	"errors"
	"log"
	"time"

	errs "github.com/lmercier/urlalias/internal/errors"
	"github.com/lmercier/urlalias/internal/models"
	"github.com/lmercier/urlalias/internal/repository"
)

// RedirectService resolves short keys to their target URLs and emits click
// events for the analytics pipeline.
type RedirectService struct {
	shortURLRepo repository.ShortURLRepository
	clickEvents  chan<- models.ClickEvent
	nowFunc      func() time.Time
}

// NewRedirectService creates and returns a new RedirectService. Click
// events emitted during resolution go into clickEvents for the worker pool
// to persist.
func NewRedirectService(shortURLRepo repository.ShortURLRepository, clickEvents chan<- models.ClickEvent) *RedirectService {
	return &RedirectService{
		shortURLRepo: shortURLRepo,
		clickEvents:  clickEvents,
		nowFunc:      time.Now,
	}
}

// Resolve maps a short key to its original URL. The outcome is tri-state
// and the lookup order matters:
//
//  1. active and unexpired record -> record a click, return the target;
//  2. any record with this key, whatever its state -> ErrGone, so clients
//     can tell "removed or expired" apart from "never existed";
//  3. otherwise -> ErrNotFound.
//
// Click recording is best-effort: a full channel drops the event with a
// warning rather than delaying the redirect.
func (s *RedirectService) Resolve(ctx context.Context, shortKey string) (string, error) {
	now := s.nowFunc()

	shortURL, err := s.shortURLRepo.GetResolvableByKey(ctx, shortKey, now)
	if err == nil {
		s.recordClick(shortURL, now)
		return shortURL.OriginalURL, nil
	}
	if !errors.Is(err, errs.ErrNotFound) {
		return "", err
	}

	// No resolvable record. Distinguish Gone from NotFound.
	exists, err := s.shortURLRepo.ExistsByKey(ctx, shortKey)
	if err != nil {
		return "", err
	}
	if exists {
		return "", errs.ErrGone
	}
	return "", errs.ErrNotFound
}

// recordClick queues a click event without ever blocking the redirect path.
func (s *RedirectService) recordClick(shortURL *models.ShortURL, now time.Time) {
	event := models.ClickEvent{
		ShortURLID: shortURL.ID,
		ClickedAt:  now,
	}
	select {
	case s.clickEvents <- event:
	default:
		// Buffer is full: drop the event rather than delaying the user.
		log.Printf("WARNING: click events channel is full, dropping click for %s (ID: %d)",
			shortURL.ShortKey, shortURL.ID)
	}
}
