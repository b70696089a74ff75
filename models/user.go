package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an app account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:80;uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	PasswordHash   string    `gorm:"size:255;not null" json:"-"`
	BlessingPoints int       `gorm:"default:0;not null" json:"blessing_points"`
	ProfileImage   string    `gorm:"type:text" json:"profile_image"`
	IsActive       bool      `gorm:"default:true;not null" json:"is_active"`
	IsAdmin        bool      `gorm:"default:false;not null" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Amulets        []Amulet  `json:"-"`
	Checkins       []Checkin `json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now().UTC()
	return nil
}
