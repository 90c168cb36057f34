package services

import (
	"time"

	"admission-portal/models"

	"gorm.io/gorm"
)

// Fair-play flag reasons, checked in order; first match wins.
const (
	FlagNegativeScore    = "negative_score"
	FlagScoreTooLarge    = "score_too_large"
	FlagRapidSubmissions = "rapid_submissions"

	maxSaneScore         = 100000
	rapidWindow          = 120 * time.Second
	rapidSubmissionLimit = 20
)

// ShouldFlagScore applies the abuse heuristics to a submission. Flagged scores
// are still recorded for audit but must not move the discount ledger.
func ShouldFlagScore(tx *gorm.DB, app *models.Application, score int, now time.Time) (bool, string, error) {
	if score < 0 {
		return true, FlagNegativeScore, nil
	}
	if score > maxSaneScore {
		return true, FlagScoreTooLarge, nil
	}

	since := now.Add(-rapidWindow)
	var recent int64
	err := tx.Model(&models.GameScore{}).
		Where("application_id = ? AND created_at >= ?", app.ID, since).
		Count(&recent).Error
	if err != nil {
		return false, "", err
	}
	// The submission being checked counts toward the window, so the 20th
	// overall (19 prior rows) is the first one flagged.
	if recent+1 >= rapidSubmissionLimit {
		return true, FlagRapidSubmissions, nil
	}

	return false, "", nil
}
