package models

import (
	"time"

	"gorm.io/gorm"
)

// Amulet is a physical NFC token bound to exactly one user. Unbinding flips
// IsActive instead of deleting the row; the UID stays unique forever so a
// retired token cannot be re-registered.
type Amulet struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	UID         string    `gorm:"size:50;uniqueIndex;not null" json:"uid"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ImageURL    string    `gorm:"type:text" json:"image_url"`
	IsActive    bool      `gorm:"default:true;not null" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Checkins    []Checkin `json:"-"`
}

func (a *Amulet) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	return nil
}

func (a *Amulet) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = time.Now().UTC()
	return nil
}
