package models

import "time"

// Click is one recorded redirect resolution. Rows are append-only: they are
// never updated or deleted individually, only cascaded away with their URL.
type Click struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// ShortURLID references the owning ShortURL.
	ShortURLID uint `gorm:"index;not null" json:"short_url_id"`

	// ClickedAt carries a descending index so the rolling-window
	// aggregations stay cheap.
	ClickedAt time.Time `gorm:"index:idx_clicks_clicked_at,sort:desc;not null" json:"clicked_at"`
}

// ClickEvent is the lightweight payload passed through the click channel.
// Redirect resolution emits these; the worker pool turns them into Click
// rows without ever blocking the redirect path.
type ClickEvent struct {
	ShortURLID uint
	ClickedAt  time.Time
}
