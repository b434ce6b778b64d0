package models

import "time"

// PlayStatus describes progress on a game within a library.
type PlayStatus string

const (
	StatusBacklog   PlayStatus = "BACKLOG"
	StatusPlaying   PlayStatus = "PLAYING"
	StatusCompleted PlayStatus = "COMPLETED"
	StatusAbandoned PlayStatus = "ABANDONED"
)

// ValidPlayStatus reports whether s is one of the four known statuses.
func ValidPlayStatus(s string) bool {
	switch PlayStatus(s) {
	case StatusBacklog, StatusPlaying, StatusCompleted, StatusAbandoned:
		return true
	}
	return false
}

// LibraryGame links one Library to one Game and carries the play-tracking
// metadata. A game can appear at most once per library; deleting either side
// removes the link.
type LibraryGame struct {
	ID              uint       `gorm:"primaryKey"`
	LibraryID       uint       `gorm:"not null;uniqueIndex:uniq_library_game,priority:1"`
	GameID          uint       `gorm:"not null;uniqueIndex:uniq_library_game,priority:2"`
	Status          PlayStatus `gorm:"type:varchar(20);not null;default:'BACKLOG'"`
	Rating          *int       `gorm:"type:smallint"`
	ProgressPercent *int       `gorm:"type:smallint"`
	HoursPlayed     *float64   `gorm:"type:numeric(6,1)"`
	AddedAt         time.Time  `gorm:"not null"`

	Library Library `gorm:"foreignKey:LibraryID;constraint:OnDelete:CASCADE"`
	Game    Game    `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE"`
}
