package services

import (
	"fmt"
	"time"

	"admission-portal/models"

	"gorm.io/gorm"
)

// WeeklyChallenge is the rotating per-application challenge for one ISO week.
type WeeklyChallenge struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	Target    int    `json:"target"`
	Progress  int    `json:"progress"`
	RewardPct int    `json:"reward_pct"`
	Complete  bool   `json:"complete"`
	WeekKey   string `json:"week_key"`
	Awarded   bool   `json:"awarded"`
}

// WeeklyChallengeService rotates a challenge by ISO week number and grants a
// one-time-per-week bonus discount on completion.
type WeeklyChallengeService struct {
	DB *gorm.DB
}

func NewWeeklyChallengeService(db *gorm.DB) *WeeklyChallengeService {
	return &WeeklyChallengeService{DB: db}
}

// WeekKeyFor formats the ISO week of t, e.g. "2026-W06".
func WeekKeyFor(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// mondayOf returns 00:00 UTC of the Monday starting t's week.
func mondayOf(t time.Time) time.Time {
	t = truncateToDay(t)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// ChallengeFor computes the active challenge, its progress for this application
// and whether this week's bonus is already banked. Even ISO weeks count
// accepted submissions since Monday; odd weeks count distinct games played.
func (s *WeeklyChallengeService) ChallengeFor(tx *gorm.DB, app *models.Application, today time.Time) (WeeklyChallenge, error) {
	wk := WeekKeyFor(today)
	_, isoWeek := today.ISOWeek()
	weekStart := mondayOf(today)

	ch := WeeklyChallenge{RewardPct: 1, WeekKey: wk}

	if isoWeek%2 == 0 {
		ch.Key = "play_5_games"
		ch.Title = "Weekly Challenge: Play 5 games"
		ch.Target = 5

		var count int64
		err := tx.Model(&models.GameScore{}).
			Where("application_id = ? AND created_at >= ? AND is_flagged = ?", app.ID, weekStart, false).
			Count(&count).Error
		if err != nil {
			return WeeklyChallenge{}, err
		}
		ch.Progress = int(count)
	} else {
		ch.Key = "play_3_unique"
		ch.Title = "Weekly Challenge: Play 3 different games"
		ch.Target = 3

		var count int64
		err := tx.Model(&models.GameScore{}).
			Where("application_id = ? AND created_at >= ? AND is_flagged = ?", app.ID, weekStart, false).
			Distinct("game_key").
			Count(&count).Error
		if err != nil {
			return WeeklyChallenge{}, err
		}
		ch.Progress = int(count)
	}

	ch.Complete = ch.Progress >= ch.Target
	ch.Awarded = app.BonusWeekKey != nil && *app.BonusWeekKey == wk && app.BonusDiscountPct > 0
	return ch, nil
}

// MaybeAwardBonus grants this week's bonus once the challenge is complete.
// Re-evaluating after the bonus is banked for the week is a no-op even though
// progress still reads complete; a locked application never changes.
func (s *WeeklyChallengeService) MaybeAwardBonus(tx *gorm.DB, app *models.Application, today time.Time) (bool, error) {
	if app.DiscountsLocked() {
		return false, nil
	}

	ch, err := s.ChallengeFor(tx, app, today)
	if err != nil {
		return false, err
	}
	if !ch.Complete || ch.Awarded {
		return false, nil
	}

	next := app.BonusDiscountPct + ch.RewardPct
	if next > models.MaxTotalDiscountPct {
		next = models.MaxTotalDiscountPct
	}

	// The week-key guard in the WHERE clause is the authority; the Awarded
	// check above is only a fast path. Concurrent completions race to this
	// update and exactly one row change wins the week.
	res := tx.Model(&models.Application{}).
		Where("id = ? AND payment_method IS NULL AND (bonus_week_key IS NULL OR bonus_week_key <> ?)", app.ID, ch.WeekKey).
		Updates(map[string]interface{}{
			"bonus_discount_pct": next,
			"bonus_week_key":     ch.WeekKey,
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	app.BonusDiscountPct = next
	app.BonusWeekKey = &ch.WeekKey
	return true, nil
}
