package services

import (
	"errors"
	"log"
	"strings"
	"time"

	"admission-portal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EngagementService runs the full game-submission pipeline: fair-play check,
// score evaluation, discount update, stat rollup, activity mark, weekly bonus
// and badge pass, committed as one all-or-nothing transaction.
type EngagementService struct {
	DB        *gorm.DB
	Discounts *DiscountService
	Badges    *BadgeService
	Activity  *ActivityService
	Weekly    *WeeklyChallengeService
}

func NewEngagementService(db *gorm.DB, discounts *DiscountService, badges *BadgeService, activity *ActivityService, weekly *WeeklyChallengeService) *EngagementService {
	return &EngagementService{
		DB:        db,
		Discounts: discounts,
		Badges:    badges,
		Activity:  activity,
		Weekly:    weekly,
	}
}

// SubmitResult tells the caller everything it needs for user messaging.
// Locked means the whole submission was refused as a policy no-op.
type SubmitResult struct {
	Locked             bool                `json:"locked"`
	Flagged            bool                `json:"flagged"`
	FlagReason         string              `json:"flag_reason,omitempty"`
	EarnedPct          int                 `json:"earned_pct"`
	TotalPct           int                 `json:"total_pct"`
	FinalPrice         int                 `json:"final_price"`
	CapReached         bool                `json:"cap_reached"`
	WeeklyBonusAwarded bool                `json:"weekly_bonus_awarded"`
	NewBadges          []models.BadgeAward `json:"new_badges,omitempty"`
}

// SubmitGameScore processes one game result for an application. If the
// transaction fails no partial discount, badge or activity mark survives.
func (s *EngagementService) SubmitGameScore(app *models.Application, userID, gameKey string, score int) (*SubmitResult, error) {
	if app.DiscountsLocked() {
		return &SubmitResult{Locked: true, TotalPct: app.TotalDiscountPct(), FinalPrice: app.DiscountedAmount()}, nil
	}

	gameKey = strings.ToLower(strings.TrimSpace(gameKey))
	now := time.Now().UTC()
	result := &SubmitResult{}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		flagged, reason, err := ShouldFlagScore(tx, app, score, now)
		if err != nil {
			return err
		}

		earned := EvaluateScore(gameKey, score)
		if flagged {
			earned = 0
		}

		_, capReached, err := s.Discounts.ApplyGameResult(tx, app, earned)
		if err != nil {
			return err
		}

		if err := s.updateUserGameStat(tx, userID, gameKey, score, now); err != nil {
			return err
		}
		if err := s.Activity.RecordDay(tx, userID, now); err != nil {
			return err
		}

		scoreRow := models.GameScore{
			ID:                uuid.NewString(),
			ApplicationID:     app.ID,
			GameKey:           gameKey,
			Score:             score,
			EarnedDiscountPct: earned,
			IsFlagged:         flagged,
		}
		if reason != "" {
			scoreRow.FlagReason = &reason
		}
		if err := tx.Create(&scoreRow).Error; err != nil {
			return err
		}

		bonusAwarded, err := s.Weekly.MaybeAwardBonus(tx, app, now)
		if err != nil {
			return err
		}

		gameBadges, err := s.Badges.AwardGameBadges(tx, userID)
		if err != nil {
			return err
		}
		discountBadges, err := s.Badges.AwardDiscountBadges(tx, userID, app)
		if err != nil {
			return err
		}

		result.Flagged = flagged
		result.FlagReason = reason
		result.EarnedPct = earned
		result.CapReached = capReached
		result.WeeklyBonusAwarded = bonusAwarded
		result.NewBadges = append(gameBadges, discountBadges...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.TotalPct = app.TotalDiscountPct()
	result.FinalPrice = app.DiscountedAmount()

	if result.Flagged {
		log.Printf("[ENGAGE] Flagged submission app=%s game=%s score=%d reason=%s", app.ID, gameKey, score, result.FlagReason)
	}
	return result, nil
}

// updateUserGameStat bumps the (user, game) rollup, creating it on first play.
func (s *EngagementService) updateUserGameStat(tx *gorm.DB, userID, gameKey string, score int, now time.Time) error {
	var stat models.UserGameStat
	err := tx.Where("user_id = ? AND game_key = ?", userID, gameKey).First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stat = models.UserGameStat{
			ID:      uuid.NewString(),
			UserID:  userID,
			GameKey: gameKey,
		}
		if err := tx.Create(&stat).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	stat.PlaysCount++
	if stat.BestScore == nil || score > *stat.BestScore {
		stat.BestScore = &score
		stat.BestAt = &now
	}
	return tx.Save(&stat).Error
}

// PersonalBests returns the user's top rollups by best score.
func (s *EngagementService) PersonalBests(userID string, limit int) ([]models.UserGameStat, error) {
	var stats []models.UserGameStat
	err := s.DB.Where("user_id = ?", userID).
		Order("best_score DESC").
		Limit(limit).
		Find(&stats).Error
	return stats, err
}
