package models

import (
	"time"
)

type MarriageStatus string

const (
	MarriageStatusMarried  MarriageStatus = "married"
	MarriageStatusDivorced MarriageStatus = "divorced"
)

// Marriage is a durable relationship record between two users. It is only
// created by accepting a pending Proposal and only leaves the married status
// through divorce. A user may hold any number of concurrent marriages.
type Marriage struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	MarriageID   string         `gorm:"uniqueIndex;size:64;not null" json:"marriage_id"`
	ProposerID   string         `gorm:"size:100;not null;index" json:"proposer_id"`
	ProposerName string         `gorm:"size:100" json:"proposer_name"`
	TargetID     string         `gorm:"size:100;not null;index" json:"target_id"`
	TargetName   string         `gorm:"size:100" json:"target_name"`
	GroupID      string         `gorm:"size:100;not null;index" json:"group_id"`
	Status       MarriageStatus `gorm:"size:20;default:married;index" json:"status"`
	MarriedAt    time.Time      `json:"married_at"`
}

func (Marriage) TableName() string {
	return "marriages"
}

// Involves reports whether the user is either side of the marriage.
func (m *Marriage) Involves(userID string) bool {
	return m.ProposerID == userID || m.TargetID == userID
}

// SpouseOf returns the other participant's id and display name as recorded
// on the row.
func (m *Marriage) SpouseOf(userID string) (spouseID, spouseName string) {
	if m.ProposerID == userID {
		return m.TargetID, m.TargetName
	}
	return m.ProposerID, m.ProposerName
}
