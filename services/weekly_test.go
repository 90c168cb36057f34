package services

import (
	"testing"
	"time"

	"admission-portal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	// 2026-01-20 falls in ISO week 2026-W04 (even); 2026-01-14 in 2026-W03 (odd).
	evenWeekDay = time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	oddWeekDay  = time.Date(2026, 1, 14, 12, 0, 0, 0, time.UTC)
)

func seedScore(t *testing.T, db *gorm.DB, appID, gameKey string, flagged bool, createdAt time.Time) {
	t.Helper()
	row := models.GameScore{
		ID:            uuid.NewString(),
		ApplicationID: appID,
		GameKey:       gameKey,
		Score:         100,
		IsFlagged:     flagged,
		CreatedAt:     createdAt,
	}
	require.NoError(t, db.Create(&row).Error)
}

func TestWeekKeyFor(t *testing.T) {
	assert.Equal(t, "2026-W04", WeekKeyFor(evenWeekDay))
	assert.Equal(t, "2026-W03", WeekKeyFor(oddWeekDay))
	// Jan 1 2027 belongs to ISO week 53 of 2026.
	assert.Equal(t, "2026-W53", WeekKeyFor(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestMondayOf(t *testing.T) {
	assert.Equal(t, time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC), mondayOf(evenWeekDay))
	assert.Equal(t, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), mondayOf(oddWeekDay))
	// A Monday maps to itself.
	monday := time.Date(2026, 1, 19, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC), mondayOf(monday))
}

func TestChallengeEvenWeekCountsSubmissions(t *testing.T) {
	db := newTestDB(t)
	svc := NewWeeklyChallengeService(db)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)

	inWeek := time.Date(2026, 1, 19, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		seedScore(t, db, app.ID, "quiz", false, inWeek)
	}
	// Flagged and pre-Monday rows must not count.
	seedScore(t, db, app.ID, "quiz", true, inWeek)
	seedScore(t, db, app.ID, "quiz", false, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC))

	ch, err := svc.ChallengeFor(db, app, evenWeekDay)
	require.NoError(t, err)
	assert.Equal(t, "play_5_games", ch.Key)
	assert.Equal(t, 5, ch.Target)
	assert.Equal(t, 4, ch.Progress)
	assert.False(t, ch.Complete)

	seedScore(t, db, app.ID, "memory", false, inWeek)
	ch, err = svc.ChallengeFor(db, app, evenWeekDay)
	require.NoError(t, err)
	assert.Equal(t, 5, ch.Progress)
	assert.True(t, ch.Complete)
}

func TestChallengeOddWeekCountsDistinctGames(t *testing.T) {
	db := newTestDB(t)
	svc := NewWeeklyChallengeService(db)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)

	inWeek := time.Date(2026, 1, 13, 10, 0, 0, 0, time.UTC)
	seedScore(t, db, app.ID, "quiz", false, inWeek)
	seedScore(t, db, app.ID, "quiz", false, inWeek)
	seedScore(t, db, app.ID, "memory", false, inWeek)

	ch, err := svc.ChallengeFor(db, app, oddWeekDay)
	require.NoError(t, err)
	assert.Equal(t, "play_3_unique", ch.Key)
	assert.Equal(t, 3, ch.Target)
	assert.Equal(t, 2, ch.Progress, "repeat plays count once")
	assert.False(t, ch.Complete)

	seedScore(t, db, app.ID, "reaction", false, inWeek)
	ch, err = svc.ChallengeFor(db, app, oddWeekDay)
	require.NoError(t, err)
	assert.True(t, ch.Complete)
}

func TestMaybeAwardBonusOncePerWeek(t *testing.T) {
	db := newTestDB(t)
	svc := NewWeeklyChallengeService(db)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)

	inWeek := time.Date(2026, 1, 19, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedScore(t, db, app.ID, "quiz", false, inWeek)
	}

	awarded, err := svc.MaybeAwardBonus(db, app, evenWeekDay)
	require.NoError(t, err)
	assert.True(t, awarded)
	assert.Equal(t, 1, app.BonusDiscountPct)
	require.NotNil(t, app.BonusWeekKey)
	assert.Equal(t, "2026-W04", *app.BonusWeekKey)

	// Progress still reads complete, but the week is already banked.
	awarded, err = svc.MaybeAwardBonus(db, app, evenWeekDay)
	require.NoError(t, err)
	assert.False(t, awarded)
	assert.Equal(t, 1, app.BonusDiscountPct)
}

func TestMaybeAwardBonusGuardRejectsStaleRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewWeeklyChallengeService(db)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)

	inWeek := time.Date(2026, 1, 19, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedScore(t, db, app.ID, "quiz", false, inWeek)
	}

	// A second request that loaded the row before the first award still
	// believes the bonus is unbanked; the week-key guard on the update must
	// reject it.
	stale := *app

	awarded, err := svc.MaybeAwardBonus(db, app, evenWeekDay)
	require.NoError(t, err)
	assert.True(t, awarded)

	awarded, err = svc.MaybeAwardBonus(db, &stale, evenWeekDay)
	require.NoError(t, err)
	assert.False(t, awarded)

	var saved models.Application
	require.NoError(t, db.First(&saved, "id = ?", app.ID).Error)
	assert.Equal(t, 1, saved.BonusDiscountPct, "one row change wins the week")
	require.NotNil(t, saved.BonusWeekKey)
	assert.Equal(t, "2026-W04", *saved.BonusWeekKey)
}

func TestMaybeAwardBonusRefusedWhenIncomplete(t *testing.T) {
	db := newTestDB(t)
	svc := NewWeeklyChallengeService(db)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)

	awarded, err := svc.MaybeAwardBonus(db, app, evenWeekDay)
	require.NoError(t, err)
	assert.False(t, awarded)
	assert.Equal(t, 0, app.BonusDiscountPct)
}

func TestMaybeAwardBonusRefusedWhenLocked(t *testing.T) {
	db := newTestDB(t)
	svc := NewWeeklyChallengeService(db)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)

	inWeek := time.Date(2026, 1, 19, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedScore(t, db, app.ID, "quiz", false, inWeek)
	}

	method := "bkash"
	app.PaymentMethod = &method

	awarded, err := svc.MaybeAwardBonus(db, app, evenWeekDay)
	require.NoError(t, err)
	assert.False(t, awarded)
	assert.Equal(t, 0, app.BonusDiscountPct)
}
