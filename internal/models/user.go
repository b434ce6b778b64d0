package models

import "time"

// User represents a registered account.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:50;not null;default:'user'"`
	CreatedAt    time.Time
}
