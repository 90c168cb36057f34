package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateScoreClickRush(t *testing.T) {
	assert.Equal(t, 0, EvaluateScore("click_rush", 49))
	assert.Equal(t, 1, EvaluateScore("click_rush", 50))
	assert.Equal(t, 3, EvaluateScore("click_rush", 160))
	assert.Equal(t, 3, EvaluateScore("click_rush", 279))
	assert.Equal(t, 4, EvaluateScore("click_rush", 280))
	assert.Equal(t, 4, EvaluateScore("click_rush", 399))
	assert.Equal(t, 5, EvaluateScore("click_rush", 400))
	assert.Equal(t, 5, EvaluateScore("click_rush", 100000))
}

func TestEvaluateScoreReactionLowerIsBetter(t *testing.T) {
	assert.Equal(t, 5, EvaluateScore("reaction", 350))
	assert.Equal(t, 5, EvaluateScore("reaction", 120))
	assert.Equal(t, 1, EvaluateScore("reaction", 900))
	assert.Equal(t, 0, EvaluateScore("reaction", 1000))
}

func TestEvaluateScoreUnknownGame(t *testing.T) {
	assert.Equal(t, 0, EvaluateScore("tetris", 999999))
	assert.Equal(t, 0, EvaluateScore("", 50))
}

func TestEvaluateScoreCaseInsensitive(t *testing.T) {
	assert.Equal(t, EvaluateScore("click_rush", 160), EvaluateScore("CLICK_RUSH", 160))
	assert.Equal(t, EvaluateScore("memory", 7), EvaluateScore("  Memory ", 7))
}

func TestEvaluateScoreMonotonic(t *testing.T) {
	for key, rule := range gameRules {
		last := rule.Tiers[len(rule.Tiers)-1].Threshold
		prev := EvaluateScore(key, -1)
		for score := 0; score <= last+10; score++ {
			cur := EvaluateScore(key, score)
			if rule.Direction == LowerIsBetter {
				assert.LessOrEqual(t, cur, prev, "game %s at score %d", key, score)
			} else {
				assert.GreaterOrEqual(t, cur, prev, "game %s at score %d", key, score)
			}
			prev = cur
		}
	}
}

func TestValidateGameRules(t *testing.T) {
	require.NoError(t, validateGameRules())
	require.NotEmpty(t, KnownGameKeys())
}
