package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"marriage-bot/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User-facing recoverable failures. Callers check these with errors.Is and
// render them as chat replies instead of logging them as faults.
var (
	ErrAlreadyProposedToday = errors.New("already proposed today")
	ErrNotMarried           = errors.New("not married")
)

// BirthResult summarizes one completed birth.
type BirthResult struct {
	Parent1Name string `json:"parent1_name"`
	Parent2Name string `json:"parent2_name"`
	BabyCount   int    `json:"baby_count"`
	TotalBabies int    `json:"total_babies"`
}

// MarriageService owns the proposal, marriage and baby-record lifecycle.
// Every operation runs as a single transaction against the store.
type MarriageService struct {
	db          *gorm.DB
	proposalTTL time.Duration
}

func NewMarriageService(db *gorm.DB, proposalTTL time.Duration) *MarriageService {
	return &MarriageService{
		db:          db,
		proposalTTL: proposalTTL,
	}
}

// CreateProposal records a new pending proposal and returns its request id.
// A proposer gets one proposal per calendar day: any pending or accepted
// proposal created today blocks a second one with ErrAlreadyProposedToday.
func (s *MarriageService) CreateProposal(proposerID, proposerName, targetID, targetName, groupID string) (string, error) {
	requestID := uuid.New().String()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		todayStart := startOfDay(time.Now())
		todayEnd := todayStart.Add(24 * time.Hour)

		var count int64
		if err := tx.Model(&models.Proposal{}).
			Where("proposer_id = ? AND created_at >= ? AND created_at < ? AND status IN ?",
				proposerID, todayStart, todayEnd,
				[]models.ProposalStatus{models.ProposalStatusPending, models.ProposalStatusAccepted}).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return ErrAlreadyProposedToday
		}

		proposal := models.Proposal{
			RequestID:    requestID,
			ProposerID:   proposerID,
			ProposerName: proposerName,
			TargetID:     targetID,
			TargetName:   targetName,
			GroupID:      groupID,
			Status:       models.ProposalStatusPending,
			CreatedAt:    time.Now(),
		}
		return tx.Create(&proposal).Error
	})

	if err != nil {
		return "", err
	}

	log.Printf("Proposal created: %s -> %s in group %s (request %s)", proposerID, targetID, groupID, requestID)
	return requestID, nil
}

// GetPendingProposal returns the most recent pending proposal addressed to
// the target in the group, or nil if there is none.
func (s *MarriageService) GetPendingProposal(targetID, groupID string) (*models.Proposal, error) {
	var proposal models.Proposal
	err := s.db.
		Where("target_id = ? AND group_id = ? AND status = ?", targetID, groupID, models.ProposalStatusPending).
		Order("created_at DESC").
		First(&proposal).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// GetPendingProposals returns pending proposals addressed to the target,
// newest first, keeping only the most recent proposal per proposer.
func (s *MarriageService) GetPendingProposals(targetID, groupID string) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := s.db.
		Where("target_id = ? AND group_id = ? AND status = ?", targetID, groupID, models.ProposalStatusPending).
		Order("created_at DESC").
		Find(&proposals).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(proposals))
	merged := make([]models.Proposal, 0, len(proposals))
	for _, p := range proposals {
		if seen[p.ProposerID] {
			continue
		}
		seen[p.ProposerID] = true
		merged = append(merged, p)
	}

	return merged, nil
}

// GetPendingProposalByID returns the pending proposal with the given request
// id, or nil if it does not exist or is no longer pending.
func (s *MarriageService) GetPendingProposalByID(requestID string) (*models.Proposal, error) {
	var proposal models.Proposal
	err := s.db.
		Where("request_id = ? AND status = ?", requestID, models.ProposalStatusPending).
		First(&proposal).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

// AcceptProposal marks the proposal accepted and creates the marriage row.
// Every other pending proposal addressed to the same target in the same
// group is rejected in the same transaction. Returns false when no pending
// proposal with that id exists. There is no monogamy check: both parties may
// hold any number of concurrent marriages.
func (s *MarriageService) AcceptProposal(requestID string) (bool, error) {
	accepted := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var proposal models.Proposal
		err := tx.
			Where("request_id = ? AND status = ?", requestID, models.ProposalStatusPending).
			First(&proposal).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Proposal{}).
			Where("request_id = ?", requestID).
			Update("status", models.ProposalStatusAccepted).Error; err != nil {
			return err
		}

		// Losing suitors are turned down as a side effect of the acceptance.
		if err := tx.Model(&models.Proposal{}).
			Where("target_id = ? AND group_id = ? AND status = ? AND request_id != ?",
				proposal.TargetID, proposal.GroupID, models.ProposalStatusPending, requestID).
			Update("status", models.ProposalStatusRejected).Error; err != nil {
			return err
		}

		marriage := models.Marriage{
			MarriageID:   uuid.New().String(),
			ProposerID:   proposal.ProposerID,
			ProposerName: proposal.ProposerName,
			TargetID:     proposal.TargetID,
			TargetName:   proposal.TargetName,
			GroupID:      proposal.GroupID,
			Status:       models.MarriageStatusMarried,
			MarriedAt:    time.Now(),
		}
		if err := tx.Create(&marriage).Error; err != nil {
			return err
		}

		accepted = true
		return nil
	})

	if err != nil {
		return false, err
	}

	if accepted {
		log.Printf("Proposal %s accepted", requestID)
	}
	return accepted, nil
}

// RejectProposal marks a pending proposal rejected. Returns false when no
// pending proposal with that id exists.
func (s *MarriageService) RejectProposal(requestID string) (bool, error) {
	result := s.db.Model(&models.Proposal{}).
		Where("request_id = ? AND status = ?", requestID, models.ProposalStatusPending).
		Update("status", models.ProposalStatusRejected)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetMarriage returns any current marriage involving the user, or nil.
func (s *MarriageService) GetMarriage(userID string) (*models.Marriage, error) {
	var marriage models.Marriage
	err := s.db.
		Where("(proposer_id = ? OR target_id = ?) AND status = ?", userID, userID, models.MarriageStatusMarried).
		First(&marriage).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &marriage, nil
}

// GetMarriages returns all current marriages involving the user.
func (s *MarriageService) GetMarriages(userID string) ([]models.Marriage, error) {
	var marriages []models.Marriage
	err := s.db.
		Where("(proposer_id = ? OR target_id = ?) AND status = ?", userID, userID, models.MarriageStatusMarried).
		Find(&marriages).Error
	if err != nil {
		return nil, err
	}
	return marriages, nil
}

// Divorce ends any one current marriage involving the user.
func (s *MarriageService) Divorce(userID string) (bool, error) {
	divorced := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var marriage models.Marriage
		err := tx.
			Where("(proposer_id = ? OR target_id = ?) AND status = ?", userID, userID, models.MarriageStatusMarried).
			First(&marriage).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Model(&models.Marriage{}).
			Where("marriage_id = ?", marriage.MarriageID).
			Update("status", models.MarriageStatusDivorced).Error; err != nil {
			return err
		}

		divorced = true
		return nil
	})

	if err != nil {
		return false, err
	}
	return divorced, nil
}

// DivorceWithSpouse ends the marriage between the user and a specific spouse.
func (s *MarriageService) DivorceWithSpouse(userID, spouseID string) (bool, error) {
	result := s.db.Model(&models.Marriage{}).
		Where("((proposer_id = ? AND target_id = ?) OR (proposer_id = ? AND target_id = ?)) AND status = ?",
			userID, spouseID, spouseID, userID, models.MarriageStatusMarried).
		Update("status", models.MarriageStatusDivorced)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CleanupExpiredProposals expires every pending proposal older than the
// proposal TTL and returns how many were swept.
func (s *MarriageService) CleanupExpiredProposals() (int64, error) {
	cutoff := time.Now().Add(-s.proposalTTL)

	result := s.db.Model(&models.Proposal{}).
		Where("status = ? AND created_at < ?", models.ProposalStatusPending, cutoff).
		Update("status", models.ProposalStatusExpired)

	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// DailyResetAll deletes all proposals and marriages. Baby records survive
// the reset; their marriage ids dangle afterwards, which queries tolerate.
func (s *MarriageService) DailyResetAll() error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Marriage{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&models.Proposal{}).Error
	})

	if err != nil {
		return fmt.Errorf("daily reset failed: %w", err)
	}

	log.Println("Daily reset: all proposals and marriages cleared")
	return nil
}

// HaveBaby records a birth for the user's first current marriage.
func (s *MarriageService) HaveBaby(userID, groupID string, babyCount int) (*BirthResult, error) {
	return s.haveBaby(userID, "", groupID, babyCount)
}

// HaveBabyWithSpouse records a birth for the marriage between the user and
// the given spouse. Fails with ErrNotMarried if no such marriage exists.
func (s *MarriageService) HaveBabyWithSpouse(userID, spouseID, groupID string, babyCount int) (*BirthResult, error) {
	return s.haveBaby(userID, spouseID, groupID, babyCount)
}

func (s *MarriageService) haveBaby(userID, spouseID, groupID string, babyCount int) (*BirthResult, error) {
	var result BirthResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var marriage models.Marriage
		query := tx.Where("status = ?", models.MarriageStatusMarried)
		if spouseID != "" {
			query = query.Where("(proposer_id = ? AND target_id = ?) OR (proposer_id = ? AND target_id = ?)",
				userID, spouseID, spouseID, userID)
		} else {
			query = query.Where("proposer_id = ? OR target_id = ?", userID, userID)
		}

		err := query.First(&marriage).Error
		if err == gorm.ErrRecordNotFound {
			return ErrNotMarried
		}
		if err != nil {
			return err
		}

		// Parent1 is always the acting user.
		spouse, spouseName := marriage.SpouseOf(userID)
		parent1Name := marriage.ProposerName
		if marriage.TargetID == userID {
			parent1Name = marriage.TargetName
		}

		record := models.BabyRecord{
			MarriageID:  marriage.MarriageID,
			Parent1ID:   userID,
			Parent1Name: parent1Name,
			Parent2ID:   spouse,
			Parent2Name: spouseName,
			BabyCount:   babyCount,
			GroupID:     groupID,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		total, err := s.totalBabies(tx, userID, spouse)
		if err != nil {
			return err
		}

		result = BirthResult{
			Parent1Name: parent1Name,
			Parent2Name: spouseName,
			BabyCount:   babyCount,
			TotalBabies: total,
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return &result, nil
}

// TotalBabies sums baby counts for a user. With a spouse id the sum covers
// only records for that parent pair in either order; without one it covers
// every record containing the user.
func (s *MarriageService) TotalBabies(userID string, spouseID ...string) (int, error) {
	spouse := ""
	if len(spouseID) > 0 {
		spouse = spouseID[0]
	}
	return s.totalBabies(s.db, userID, spouse)
}

func (s *MarriageService) totalBabies(tx *gorm.DB, userID, spouseID string) (int, error) {
	var total int64
	query := tx.Model(&models.BabyRecord{}).Select("COALESCE(SUM(baby_count), 0)")

	if spouseID != "" {
		query = query.Where("(parent1_id = ? AND parent2_id = ?) OR (parent1_id = ? AND parent2_id = ?)",
			userID, spouseID, spouseID, userID)
	} else {
		query = query.Where("parent1_id = ? OR parent2_id = ?", userID, userID)
	}

	if err := query.Row().Scan(&total); err != nil {
		return 0, err
	}
	return int(total), nil
}

// BabyRecords returns all of the user's baby records, newest first.
func (s *MarriageService) BabyRecords(userID string) ([]models.BabyRecord, error) {
	var records []models.BabyRecord
	err := s.db.
		Where("parent1_id = ? OR parent2_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// startOfDay truncates a time to local midnight.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
