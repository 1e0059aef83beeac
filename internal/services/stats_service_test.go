package services

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "github.com/lmercier/urlalias/internal/errors"
	"github.com/lmercier/urlalias/internal/models"
)

func TestKeyStatsWindows(t *testing.T) {
	shortURLRepo, clickRepo := newTestRepos(t)
	keyGen := NewKeyGenerator(shortURLRepo, 8, 10)
	shortURLSvc := NewShortURLService(shortURLRepo, clickRepo, keyGen, testExpiryPolicy())
	statsSvc := NewStatsService(shortURLRepo)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	statsSvc.nowFunc = func() time.Time { return now }
	ctx := context.Background()

	created, err := shortURLSvc.Create(ctx, CreateParams{
		OriginalURL: "https://example.com",
		CustomKey:   "windowed",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// One click in the last hour, one more inside the last day, one older
	// than a day.
	for _, clickedAt := range []time.Time{
		now.Add(-30 * time.Minute),
		now.Add(-2 * time.Hour),
		now.Add(-30 * time.Hour),
	} {
		if err := clickRepo.CreateClick(ctx, &models.Click{
			ShortURLID: created.ID,
			ClickedAt:  clickedAt,
		}); err != nil {
			t.Fatalf("CreateClick: %v", err)
		}
	}

	stats, err := statsSvc.KeyStats(ctx, "windowed")
	if err != nil {
		t.Fatalf("KeyStats: %v", err)
	}
	if stats.LastHourClicks != 1 {
		t.Errorf("LastHourClicks = %d, want 1", stats.LastHourClicks)
	}
	if stats.LastDayClicks != 2 {
		t.Errorf("LastDayClicks = %d, want 2", stats.LastDayClicks)
	}
	if stats.AllTimeClicks != 3 {
		t.Errorf("AllTimeClicks = %d, want 3", stats.AllTimeClicks)
	}

	// Same question, same answer: aggregation has no side effects.
	again, err := statsSvc.KeyStats(ctx, "windowed")
	if err != nil {
		t.Fatalf("KeyStats again: %v", err)
	}
	if *again != *stats {
		t.Fatalf("stats not idempotent: %+v vs %+v", again, stats)
	}
}

func TestKeyStatsFreshRecordIsAllZero(t *testing.T) {
	shortURLRepo, clickRepo := newTestRepos(t)
	keyGen := NewKeyGenerator(shortURLRepo, 8, 10)
	shortURLSvc := NewShortURLService(shortURLRepo, clickRepo, keyGen, testExpiryPolicy())
	statsSvc := NewStatsService(shortURLRepo)
	ctx := context.Background()

	if _, err := shortURLSvc.Create(ctx, CreateParams{
		OriginalURL: "https://example.com",
		CustomKey:   "fresh123",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	stats, err := statsSvc.KeyStats(ctx, "fresh123")
	if err != nil {
		t.Fatalf("KeyStats: %v", err)
	}
	if stats.LastHourClicks != 0 || stats.LastDayClicks != 0 || stats.AllTimeClicks != 0 {
		t.Fatalf("expected all-zero stats for a fresh record, got %+v", stats)
	}
}

func TestKeyStatsVisibleForInactiveRecords(t *testing.T) {
	shortURLRepo, clickRepo := newTestRepos(t)
	keyGen := NewKeyGenerator(shortURLRepo, 8, 10)
	shortURLSvc := NewShortURLService(shortURLRepo, clickRepo, keyGen, testExpiryPolicy())
	statsSvc := NewStatsService(shortURLRepo)
	ctx := context.Background()

	if _, err := shortURLSvc.Create(ctx, CreateParams{
		OriginalURL: "https://example.com",
		CustomKey:   "retired1",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := shortURLSvc.Deactivate(ctx, "retired1"); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	if _, err := statsSvc.KeyStats(ctx, "retired1"); err != nil {
		t.Fatalf("stats must remain visible after deactivation, got %v", err)
	}
}

func TestKeyStatsUnknownKey(t *testing.T) {
	shortURLRepo, _ := newTestRepos(t)
	statsSvc := NewStatsService(shortURLRepo)

	_, err := statsSvc.KeyStats(context.Background(), "never999")
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListStatsOrdering(t *testing.T) {
	shortURLRepo, clickRepo := newTestRepos(t)
	keyGen := NewKeyGenerator(shortURLRepo, 8, 10)
	shortURLSvc := NewShortURLService(shortURLRepo, clickRepo, keyGen, testExpiryPolicy())
	statsSvc := NewStatsService(shortURLRepo)
	ctx := context.Background()

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// busy: oldest but most clicked. quiet and newest: both zero clicks, so
	// creation recency must break the tie.
	for i, key := range []string{"busy0001", "quiet001", "newest01"} {
		shortURLSvc.nowFunc = func() time.Time { return t0.Add(time.Duration(i) * time.Minute) }
		if _, err := shortURLSvc.Create(ctx, CreateParams{
			OriginalURL: "https://example.com/" + key,
			CustomKey:   key,
		}); err != nil {
			t.Fatalf("Create %s: %v", key, err)
		}
	}

	busy, err := shortURLRepo.GetByKey(ctx, "busy0001")
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := clickRepo.CreateClick(ctx, &models.Click{
			ShortURLID: busy.ID,
			ClickedAt:  t0.Add(10 * time.Minute),
		}); err != nil {
			t.Fatalf("CreateClick: %v", err)
		}
	}

	rows, err := statsSvc.ListStats(ctx)
	if err != nil {
		t.Fatalf("ListStats: %v", err)
	}
	got := make([]string, 0, len(rows))
	for _, row := range rows {
		got = append(got, row.ShortKey)
	}
	want := []string{"busy0001", "newest01", "quiet001"}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ordering = %v, want %v", got, want)
		}
	}
}
