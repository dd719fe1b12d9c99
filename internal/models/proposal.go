package models

import (
	"time"
)

type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusAccepted ProposalStatus = "accepted"
	ProposalStatusRejected ProposalStatus = "rejected"
	ProposalStatusExpired  ProposalStatus = "expired"
)

// Proposal represents a time-bounded marriage request from one user to another.
// Status moves one-way from pending to exactly one of accepted/rejected/expired.
type Proposal struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RequestID    string         `gorm:"uniqueIndex;size:64;not null" json:"request_id"`
	ProposerID   string         `gorm:"size:100;not null;index" json:"proposer_id"`
	ProposerName string         `gorm:"size:100" json:"proposer_name"`
	TargetID     string         `gorm:"size:100;not null;index" json:"target_id"`
	TargetName   string         `gorm:"size:100" json:"target_name"`
	GroupID      string         `gorm:"size:100;not null;index" json:"group_id"`
	Status       ProposalStatus `gorm:"size:20;default:pending;index" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
}

func (Proposal) TableName() string {
	return "proposals"
}
