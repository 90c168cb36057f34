package services

import (
	"errors"
	"log"

	"admission-portal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BadgeService awards named achievements at most once per user. The unique
// (user_id, badge_key) index is the authority; a lost race on insert is treated
// as "already awarded", not an error.
type BadgeService struct {
	DB *gorm.DB
}

func NewBadgeService(db *gorm.DB) *BadgeService {
	return &BadgeService{DB: db}
}

// badgeRule is a declarative predicate over the user's current aggregates.
// Rules are idempotent and order-independent; every rule is re-checked on each
// pass and AwardOnce filters out badges already held.
type badgeRule struct {
	Key   string
	Title string
	Icon  string
	Met   func(st badgeState) bool
}

type badgeState struct {
	TotalPlays       int64
	TotalDiscountPct int
	SpinDiscountPct  int
}

var playBadgeRules = []badgeRule{
	{Key: "first_game", Title: "First Game", Icon: "🎮", Met: func(st badgeState) bool { return st.TotalPlays >= 1 }},
	{Key: "games_5", Title: "5 Games Played", Icon: "⭐", Met: func(st badgeState) bool { return st.TotalPlays >= 5 }},
	{Key: "games_10", Title: "10 Games Legend", Icon: "🔥", Met: func(st badgeState) bool { return st.TotalPlays >= 10 }},
	{Key: "games_25", Title: "Game Master", Icon: "👑", Met: func(st badgeState) bool { return st.TotalPlays >= 25 }},
}

var discountBadgeRules = []badgeRule{
	{Key: "discount_50", Title: "Reached 50% Discount", Icon: "💎", Met: func(st badgeState) bool { return st.TotalDiscountPct >= 50 }},
	{Key: "spin_30", Title: "30% Spin Winner", Icon: "🎰", Met: func(st badgeState) bool { return st.SpinDiscountPct >= 30 }},
}

// AwardOnce inserts the (user, badge) pair if absent and reports whether the
// badge is newly granted. A concurrent duplicate insert rejected by the unique
// constraint also reports false.
func (s *BadgeService) AwardOnce(tx *gorm.DB, userID, badgeKey, title, icon string) (bool, error) {
	var count int64
	err := tx.Model(&models.BadgeAward{}).
		Where("user_id = ? AND badge_key = ?", userID, badgeKey).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	row := models.BadgeAward{
		ID:       uuid.NewString(),
		UserID:   userID,
		BadgeKey: badgeKey,
		Title:    title,
		Icon:     icon,
	}
	if err := tx.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil // lost the race; the badge exists
		}
		return false, err
	}
	log.Printf("🎖️ Badge awarded: %s → %s", badgeKey, userID)
	return true, nil
}

// AwardGameBadges re-checks every play-count rule for the user and awards the
// newly crossed ones in the same pass.
func (s *BadgeService) AwardGameBadges(tx *gorm.DB, userID string) ([]models.BadgeAward, error) {
	var totalPlays int64
	err := tx.Model(&models.UserGameStat{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(plays_count), 0)").
		Scan(&totalPlays).Error
	if err != nil {
		return nil, err
	}

	return s.awardMatching(tx, userID, playBadgeRules, badgeState{TotalPlays: totalPlays})
}

// AwardDiscountBadges checks the discount-milestone rules against the given
// application's current state.
func (s *BadgeService) AwardDiscountBadges(tx *gorm.DB, userID string, app *models.Application) ([]models.BadgeAward, error) {
	st := badgeState{
		TotalDiscountPct: app.TotalDiscountPct(),
		SpinDiscountPct:  app.SpinDiscountPct,
	}
	return s.awardMatching(tx, userID, discountBadgeRules, st)
}

func (s *BadgeService) awardMatching(tx *gorm.DB, userID string, rules []badgeRule, st badgeState) ([]models.BadgeAward, error) {
	var awarded []models.BadgeAward
	for _, rule := range rules {
		if !rule.Met(st) {
			continue
		}
		fresh, err := s.AwardOnce(tx, userID, rule.Key, rule.Title, rule.Icon)
		if err != nil {
			return nil, err
		}
		if fresh {
			awarded = append(awarded, models.BadgeAward{UserID: userID, BadgeKey: rule.Key, Title: rule.Title, Icon: rule.Icon})
		}
	}
	return awarded, nil
}

// RecentBadges lists the user's latest awards for dashboard rendering.
func (s *BadgeService) RecentBadges(userID string, limit int) ([]models.BadgeAward, error) {
	var rows []models.BadgeAward
	err := s.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
