package models

import "time"

// ShortURL represents a shortened URL record stored in the database.
// A record is resolvable only while IsActive is true and ExpiresAt is in
// the future; the short key itself is never reused, even after expiry.
type ShortURL struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// OriginalURL is the target of the redirect. Immutable after creation.
	OriginalURL string `gorm:"size:2048;not null" json:"original_url"`

	// ShortKey is the public identifier. The unique index is the actual
	// uniqueness guarantee; application-level existence checks are only a
	// fast-fail courtesy.
	ShortKey string `gorm:"uniqueIndex;size:20;not null" json:"short_key"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	// ExpiresAt is fixed at creation time. There is no renewal operation.
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`

	// IsActive flips to false exactly once, through deactivation.
	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	// Clicks are owned by the record and removed with it.
	Clicks []Click `gorm:"foreignKey:ShortURLID;constraint:OnDelete:CASCADE" json:"-"`
}
