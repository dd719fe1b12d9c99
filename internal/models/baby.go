package models

import (
	"time"
)

// BabyRecord is an immutable ledger entry for one completed gestation.
// BabyCount may be zero, meaning the attempt produced no babies. The
// marriage id is a back-reference only; it is not enforced as a foreign key
// and may dangle after a daily reset wipes the marriages table.
type BabyRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	MarriageID  string    `gorm:"size:64;not null;index" json:"marriage_id"`
	Parent1ID   string    `gorm:"size:100;not null;index" json:"parent1_id"`
	Parent1Name string    `gorm:"size:100" json:"parent1_name"`
	Parent2ID   string    `gorm:"size:100;not null;index" json:"parent2_id"`
	Parent2Name string    `gorm:"size:100" json:"parent2_name"`
	// No column default: gorm would skip a zero count on insert and let the
	// default overwrite it.
	BabyCount   int       `gorm:"not null" json:"baby_count"`
	GroupID     string    `gorm:"size:100;not null;index" json:"group_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (BabyRecord) TableName() string {
	return "baby_records"
}
