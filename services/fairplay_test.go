package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldFlagNegativeScore(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)

	flagged, reason, err := ShouldFlagScore(db, app, -1, time.Now())
	require.NoError(t, err)
	assert.True(t, flagged)
	assert.Equal(t, FlagNegativeScore, reason)
}

func TestShouldFlagScoreTooLarge(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)

	flagged, reason, err := ShouldFlagScore(db, app, 200000, time.Now())
	require.NoError(t, err)
	assert.True(t, flagged)
	assert.Equal(t, FlagScoreTooLarge, reason)

	flagged, _, err = ShouldFlagScore(db, app, 100000, time.Now())
	require.NoError(t, err)
	assert.False(t, flagged, "exactly 100000 is still sane")
}

func TestShouldFlagRapidSubmissions(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)

	now := time.Now().UTC()
	for i := 0; i < 18; i++ {
		seedScore(t, db, app.ID, "quiz", false, now.Add(-time.Minute))
	}

	// 18 prior rows plus this one is the 19th in the window.
	flagged, _, err := ShouldFlagScore(db, app, 50, now)
	require.NoError(t, err)
	assert.False(t, flagged, "the 19th submission in the window still passes")

	// With 19 prior rows this submission is the 20th and gets flagged.
	seedScore(t, db, app.ID, "quiz", false, now.Add(-time.Minute))
	flagged, reason, err := ShouldFlagScore(db, app, 50, now)
	require.NoError(t, err)
	assert.True(t, flagged)
	assert.Equal(t, FlagRapidSubmissions, reason)
}

func TestRapidWindowIgnoresOldRows(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db)
	app := createTestApplication(t, db, user.ID)

	now := time.Now().UTC()
	for i := 0; i < 25; i++ {
		seedScore(t, db, app.ID, "quiz", false, now.Add(-3*time.Minute))
	}

	flagged, _, err := ShouldFlagScore(db, app, 50, now)
	require.NoError(t, err)
	assert.False(t, flagged, "rows older than the window do not count")
}
