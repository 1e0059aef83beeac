package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	errs "github.com/lmercier/urlalias/internal/errors"
	"github.com/lmercier/urlalias/internal/models"
)

func newTestRepo(t *testing.T) *GormShortURLRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.ShortURL{}, &models.Click{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return NewShortURLRepository(db)
}

func testRecord(key string, now time.Time) *models.ShortURL {
	return &models.ShortURL{
		OriginalURL: "https://example.com",
		ShortKey:    key,
		CreatedAt:   now,
		ExpiresAt:   now.Add(24 * time.Hour),
		IsActive:    true,
	}
}

// The unique index, not the existence pre-check, is what guarantees key
// uniqueness: a second insert with the same key must fail cleanly.
func TestCreateEnforcesUniqueKey(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	if err := repo.Create(ctx, testRecord("same1234", now)); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	err := repo.Create(ctx, testRecord("same1234", now))
	if !errors.Is(err, errs.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestDeactivateIsConditional(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	record := testRecord("flip1234", time.Now())
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create: %v", err)
	}

	flipped, err := repo.Deactivate(ctx, record.ID)
	if err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if !flipped {
		t.Fatal("expected first deactivation to flip the record")
	}

	// Second flip finds no active row; this is how a lost race looks.
	flipped, err = repo.Deactivate(ctx, record.ID)
	if err != nil {
		t.Fatalf("Deactivate again: %v", err)
	}
	if flipped {
		t.Fatal("expected second deactivation to affect no rows")
	}
}

func TestGetResolvableByKey(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Now()

	if err := repo.Create(ctx, testRecord("okey1234", now)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := repo.GetResolvableByKey(ctx, "okey1234", now); err != nil {
		t.Fatalf("expected resolvable record, got %v", err)
	}

	// Past expiry the record is invisible to the resolvable lookup but
	// still present for existence checks.
	_, err := repo.GetResolvableByKey(ctx, "okey1234", now.Add(48*time.Hour))
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
	exists, err := repo.ExistsByKey(ctx, "okey1234")
	if err != nil || !exists {
		t.Fatalf("ExistsByKey = %v, %v; want true, nil", exists, err)
	}
}

func TestListPagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, key := range []string{"page0001", "page0002", "page0003"} {
		record := testRecord(key, base.Add(time.Duration(i)*time.Minute))
		if err := repo.Create(ctx, record); err != nil {
			t.Fatalf("Create %s: %v", key, err)
		}
	}

	first, total, err := repo.List(ctx, nil, 1, 2)
	if err != nil {
		t.Fatalf("List page 1: %v", err)
	}
	if total != 3 || len(first) != 2 {
		t.Fatalf("page 1: total=%d len=%d, want 3/2", total, len(first))
	}
	// Newest first.
	if first[0].ShortKey != "page0003" || first[1].ShortKey != "page0002" {
		t.Fatalf("page 1 order: %s, %s", first[0].ShortKey, first[1].ShortKey)
	}

	second, _, err := repo.List(ctx, nil, 2, 2)
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if len(second) != 1 || second[0].ShortKey != "page0001" {
		t.Fatalf("page 2: %+v", second)
	}
}
