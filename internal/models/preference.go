package models

import (
	"time"
)

// UserPreference lets a user opt out of receiving proposals or baby requests.
type UserPreference struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        string    `gorm:"uniqueIndex;size:100;not null" json:"user_id"`
	UserName      string    `gorm:"size:100" json:"user_name"`
	GroupID       string    `gorm:"size:100;index" json:"group_id"`
	AllowMarriage bool      `gorm:"default:true" json:"allow_marriage"`
	AllowBaby     bool      `gorm:"default:true" json:"allow_baby"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (UserPreference) TableName() string {
	return "user_preferences"
}
