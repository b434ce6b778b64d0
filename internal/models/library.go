package models

import "time"

// Library is a named, user-owned collection of games. A user cannot have two
// libraries with the same name.
type Library struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:120;not null;uniqueIndex:uniq_library_owner_name,priority:2"`
	OwnerID   uint   `gorm:"not null;uniqueIndex:uniq_library_owner_name,priority:1"`
	CreatedAt time.Time
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false"`

	Owner User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
}
