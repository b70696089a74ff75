package models

import (
	"time"

	"gorm.io/gorm"
)

// Temple is a registered check-in location. Deactivated temples stay in the
// table so historical checkins keep their foreign keys.
type Temple struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:200;index;not null" json:"name"`
	MainDeity     string    `gorm:"size:100;not null" json:"main_deity"`
	Description   string    `gorm:"type:text" json:"description"`
	Address       string    `gorm:"type:text;not null" json:"address"`
	Latitude      float64   `gorm:"index;not null" json:"latitude"`
	Longitude     float64   `gorm:"index;not null" json:"longitude"`
	ImageURL      string    `gorm:"type:text" json:"image_url"`
	BlessingBonus int       `gorm:"default:1;not null" json:"blessing_bonus"`
	Phone         string    `gorm:"size:20" json:"phone"`
	Website       string    `gorm:"type:text" json:"website"`
	OpeningHours  string    `gorm:"type:text" json:"opening_hours"`
	IsActive      bool      `gorm:"default:true;not null" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Checkins      []Checkin `json:"-"`
}

func (t *Temple) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return nil
}

func (t *Temple) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now().UTC()
	return nil
}
