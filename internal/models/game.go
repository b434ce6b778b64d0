package models

import "time"

// Game is a catalog entry shared across all libraries. Optional fields are
// pointers so an explicit JSON null can clear them on update.
type Game struct {
	ID          uint    `gorm:"primaryKey"`
	Title       string  `gorm:"size:255;not null;index:idx_game_title"`
	Platform    *string `gorm:"size:100"`
	ReleaseYear *int
	Genre       *string `gorm:"size:100"`
	Developer   *string `gorm:"size:150"`
	CoverURL    *string `gorm:"column:cover_url;size:500"`
	CreatedAt   time.Time
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false"`
}
