package model

import "time"

// Link maps a short code to its original URL. Links are immutable once
// created; there is no update, disable, or expiry path.
type Link struct {
	ID          int64     `db:"id" json:"id" gorm:"primaryKey;autoIncrement"`
	OriginalURL string    `db:"original_url" json:"original_url" gorm:"type:text;not null"`
	ShortCode   string    `db:"short_code" json:"short_code" gorm:"size:16;not null;uniqueIndex"`
	CreatedAt   time.Time `db:"created_at" json:"created_at" gorm:"autoCreateTime"`
}
