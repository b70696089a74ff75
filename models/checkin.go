package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Checkin is an immutable visit event. PointsEarned is fixed at creation time
// and never recomputed, even if the temple's bonus changes later.
type Checkin struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	TempleID     uint      `gorm:"index;not null" json:"temple_id"`
	AmuletID     uint      `gorm:"index;not null" json:"amulet_id"`
	PointsEarned int       `gorm:"not null" json:"points_earned"`
	CheckinTime  time.Time `gorm:"index;not null" json:"checkin_time"`
	Notes        string    `gorm:"type:text" json:"notes"`
	ExtraData    JSONMap   `gorm:"type:text" json:"extra_data"`
}

func (c *Checkin) BeforeCreate(tx *gorm.DB) error {
	if c.CheckinTime.IsZero() {
		c.CheckinTime = time.Now().UTC()
	}
	return nil
}

// JSONMap stores arbitrary key-value metadata (e.g. GPS fix) as a JSON column.
type JSONMap map[string]interface{}

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("unsupported type for JSONMap")
	}
	if len(b) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(b, m)
}
