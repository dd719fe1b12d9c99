package services

import (
	"fmt"
	"time"

	"marriage-bot/internal/models"

	"gorm.io/gorm"
)

// PreferenceService stores per-user opt-outs for marriage and babies.
type PreferenceService struct {
	db *gorm.DB
}

func NewPreferenceService(db *gorm.DB) *PreferenceService {
	return &PreferenceService{db: db}
}

// GetPreference returns the user's preference row, or nil when the user has
// never set one (defaults apply: everything allowed).
func (s *PreferenceService) GetPreference(userID string) (*models.UserPreference, error) {
	var pref models.UserPreference
	err := s.db.Where("user_id = ?", userID).First(&pref).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// AllowsMarriage reports whether the user accepts proposals.
func (s *PreferenceService) AllowsMarriage(userID string) (bool, error) {
	pref, err := s.GetPreference(userID)
	if err != nil {
		return false, err
	}
	return pref == nil || pref.AllowMarriage, nil
}

// AllowsBaby reports whether the user accepts gestation requests.
func (s *PreferenceService) AllowsBaby(userID string) (bool, error) {
	pref, err := s.GetPreference(userID)
	if err != nil {
		return false, err
	}
	return pref == nil || pref.AllowBaby, nil
}

// SetAllowMarriage toggles whether the user accepts proposals.
func (s *PreferenceService) SetAllowMarriage(userID, userName, groupID string, allow bool) error {
	return s.upsert(userID, userName, groupID, map[string]interface{}{"allow_marriage": allow})
}

// SetAllowBaby toggles whether the user accepts gestation requests.
func (s *PreferenceService) SetAllowBaby(userID, userName, groupID string, allow bool) error {
	return s.upsert(userID, userName, groupID, map[string]interface{}{"allow_baby": allow})
}

// ResetPreference restores the defaults (everything allowed).
func (s *PreferenceService) ResetPreference(userID, userName, groupID string) error {
	return s.upsert(userID, userName, groupID, map[string]interface{}{
		"allow_marriage": true,
		"allow_baby":     true,
	})
}

// upsert creates or updates the preference row. Updates go through a column
// map so a false value is not mistaken for a zero-value and skipped.
func (s *PreferenceService) upsert(userID, userName, groupID string, values map[string]interface{}) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var pref models.UserPreference
		err := tx.Where("user_id = ?", userID).First(&pref).Error

		if err == gorm.ErrRecordNotFound {
			pref = models.UserPreference{
				UserID:        userID,
				UserName:      userName,
				GroupID:       groupID,
				AllowMarriage: true,
				AllowBaby:     true,
			}
			if err := tx.Create(&pref).Error; err != nil {
				return fmt.Errorf("failed to create preference: %w", err)
			}
		} else if err != nil {
			return err
		}

		values["user_name"] = userName
		values["updated_at"] = time.Now()
		return tx.Model(&models.UserPreference{}).Where("user_id = ?", userID).Updates(values).Error
	})
}
