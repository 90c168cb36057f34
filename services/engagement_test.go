package services

import (
	"testing"
	"time"

	"admission-portal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestEngagementService(db *gorm.DB) *EngagementService {
	return NewEngagementService(db, NewDiscountService(db), NewBadgeService(db), NewActivityService(db), NewWeeklyChallengeService(db))
}

func TestSubmitGameScoreAccepted(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)
	engage := newTestEngagementService(db)

	res, err := engage.SubmitGameScore(app, user.ID, "click_rush", 160)
	require.NoError(t, err)

	assert.False(t, res.Locked)
	assert.False(t, res.Flagged)
	assert.Equal(t, 3, res.EarnedPct)
	assert.Equal(t, 3, res.TotalPct)
	assert.Equal(t, 9700, res.FinalPrice)

	var score models.GameScore
	require.NoError(t, db.First(&score, "application_id = ?", app.ID).Error)
	assert.Equal(t, "click_rush", score.GameKey)
	assert.Equal(t, 3, score.EarnedDiscountPct)
	assert.False(t, score.IsFlagged)

	var stat models.UserGameStat
	require.NoError(t, db.First(&stat, "user_id = ? AND game_key = ?", user.ID, "click_rush").Error)
	assert.EqualValues(t, 1, stat.PlaysCount)
	require.NotNil(t, stat.BestScore)
	assert.Equal(t, 160, *stat.BestScore)

	var days int64
	require.NoError(t, db.Model(&models.UserActivityDay{}).Where("user_id = ?", user.ID).Count(&days).Error)
	assert.EqualValues(t, 1, days)

	keys := make([]string, 0, len(res.NewBadges))
	for _, b := range res.NewBadges {
		keys = append(keys, b.BadgeKey)
	}
	assert.Contains(t, keys, "first_game")
}

func TestSubmitGameScoreNormalizesKey(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)
	engage := newTestEngagementService(db)

	res, err := engage.SubmitGameScore(app, user.ID, "  Click_Rush ", 400)
	require.NoError(t, err)
	assert.Equal(t, 5, res.EarnedPct)

	var score models.GameScore
	require.NoError(t, db.First(&score, "application_id = ?", app.ID).Error)
	assert.Equal(t, "click_rush", score.GameKey)
}

func TestSubmitGameScoreFlaggedEarnsNothing(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)
	engage := newTestEngagementService(db)

	res, err := engage.SubmitGameScore(app, user.ID, "click_rush", -5)
	require.NoError(t, err)

	assert.True(t, res.Flagged)
	assert.Equal(t, FlagNegativeScore, res.FlagReason)
	assert.Equal(t, 0, res.EarnedPct)
	assert.Equal(t, 0, res.TotalPct)

	// The flagged row is still recorded for audit.
	var score models.GameScore
	require.NoError(t, db.First(&score, "application_id = ?", app.ID).Error)
	assert.True(t, score.IsFlagged)
	require.NotNil(t, score.FlagReason)
	assert.Equal(t, FlagNegativeScore, *score.FlagReason)

	var saved models.Application
	require.NoError(t, db.First(&saved, "id = ?", app.ID).Error)
	assert.Equal(t, 0, saved.GamesDiscountPct)
}

func TestSubmitGameScoreLockedApplication(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)
	engage := newTestEngagementService(db)

	method := "bank"
	app.PaymentMethod = &method

	res, err := engage.SubmitGameScore(app, user.ID, "click_rush", 280)
	require.NoError(t, err)
	assert.True(t, res.Locked)

	var count int64
	require.NoError(t, db.Model(&models.GameScore{}).Where("application_id = ?", app.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count, "locked submissions record nothing")
}

func TestSubmitGameScoreUnknownGameEarnsNothing(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)
	engage := newTestEngagementService(db)

	res, err := engage.SubmitGameScore(app, user.ID, "no_such_game", 9999)
	require.NoError(t, err)
	assert.False(t, res.Flagged)
	assert.Equal(t, 0, res.EarnedPct)

	// Still counts as a play for stats and streaks.
	var stat models.UserGameStat
	require.NoError(t, db.First(&stat, "user_id = ? AND game_key = ?", user.ID, "no_such_game").Error)
	assert.EqualValues(t, 1, stat.PlaysCount)
}

func TestSubmitGameScoreWeeklyBonusOnce(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)
	engage := newTestEngagementService(db)

	// Five plays across five distinct games completes the week's challenge
	// whichever rotation is active.
	games := []string{"quiz", "memory", "slider", "keymaster", "math_sprint"}
	awarded := 0
	for _, g := range games {
		res, err := engage.SubmitGameScore(app, user.ID, g, 1)
		require.NoError(t, err)
		if res.WeeklyBonusAwarded {
			awarded++
		}
	}
	assert.Equal(t, 1, awarded, "the weekly bonus lands exactly once")

	var saved models.Application
	require.NoError(t, db.First(&saved, "id = ?", app.ID).Error)
	assert.Equal(t, 1, saved.BonusDiscountPct)
	require.NotNil(t, saved.BonusWeekKey)
	assert.Equal(t, WeekKeyFor(time.Now().UTC()), *saved.BonusWeekKey)
}

func TestSubmitGameScoreCapReached(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)
	engage := newTestEngagementService(db)

	app.GamesDiscountPct = 68
	require.NoError(t, db.Model(app).Update("games_discount_pct", 68).Error)

	res, err := engage.SubmitGameScore(app, user.ID, "click_rush", 400)
	require.NoError(t, err)
	assert.Equal(t, 5, res.EarnedPct)
	assert.True(t, res.CapReached)
	assert.Equal(t, models.MaxTotalDiscountPct, res.TotalPct)
	assert.Equal(t, 3000, res.FinalPrice)
}

func TestSubmitGameScoreBestTracksMax(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)
	engage := newTestEngagementService(db)

	_, err := engage.SubmitGameScore(app, user.ID, "quiz", 7)
	require.NoError(t, err)
	_, err = engage.SubmitGameScore(app, user.ID, "quiz", 4)
	require.NoError(t, err)

	var stat models.UserGameStat
	require.NoError(t, db.First(&stat, "user_id = ? AND game_key = ?", user.ID, "quiz").Error)
	assert.EqualValues(t, 2, stat.PlaysCount)
	require.NotNil(t, stat.BestScore)
	assert.Equal(t, 7, *stat.BestScore)

	bests, err := engage.PersonalBests(user.ID, 10)
	require.NoError(t, err)
	require.Len(t, bests, 1)
	assert.Equal(t, "quiz", bests[0].GameKey)
}
