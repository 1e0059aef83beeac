package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lmercier/urlalias/internal/models"
	"github.com/lmercier/urlalias/internal/repository"
)

// newTestDB opens an in-memory sqlite database with the schema migrated.
// Max open connections is pinned to 1 so every query sees the same
// in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func newTestRepos(t *testing.T) (repository.ShortURLRepository, repository.ClickRepository) {
	t.Helper()
	db := newTestDB(t)
	return repository.NewShortURLRepository(db), repository.NewClickRepository(db)
}

func testExpiryPolicy() ExpiryPolicy {
	return ExpiryPolicy{DefaultDays: 1, MinDays: 1, MaxDays: 365}
}

func newTestShortURLService(t *testing.T) (*ShortURLService, repository.ShortURLRepository, repository.ClickRepository) {
	t.Helper()
	shortURLRepo, clickRepo := newTestRepos(t)
	keyGen := NewKeyGenerator(shortURLRepo, 8, 10)
	svc := NewShortURLService(shortURLRepo, clickRepo, keyGen, testExpiryPolicy())
	return svc, shortURLRepo, clickRepo
}
