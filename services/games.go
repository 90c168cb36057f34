package services

import (
	"fmt"
	"sort"
	"strings"
)

// ScoreDirection says which way a game's raw score improves.
type ScoreDirection int

const (
	HigherIsBetter ScoreDirection = iota
	LowerIsBetter                 // e.g. reaction time in ms
)

// ScoreTier maps a threshold to the discount points it unlocks.
type ScoreTier struct {
	Threshold int
	Pct       int
}

// GameRule is the typed per-game tier table. Tiers are threshold-ascending;
// for LowerIsBetter games a smaller threshold carries the higher points.
type GameRule struct {
	Tiers     []ScoreTier
	Direction ScoreDirection
}

var gameRules = map[string]GameRule{
	"click_rush":   {Tiers: []ScoreTier{{50, 1}, {100, 2}, {160, 3}, {280, 4}, {400, 5}}},
	"reaction":     {Tiers: []ScoreTier{{350, 5}, {450, 4}, {550, 3}, {700, 2}, {900, 1}}, Direction: LowerIsBetter},
	"memory":       {Tiers: []ScoreTier{{3, 1}, {5, 2}, {7, 3}, {9, 4}, {11, 5}}},
	"quiz":         {Tiers: []ScoreTier{{3, 1}, {5, 2}, {7, 3}, {9, 4}, {10, 5}}},
	"lucky_number": {Tiers: []ScoreTier{{30, 1}, {45, 2}, {60, 3}, {75, 4}, {90, 5}}},
	"keymaster":    {Tiers: []ScoreTier{{20, 1}, {35, 2}, {50, 3}, {65, 4}, {80, 5}}},
	"math_sprint":  {Tiers: []ScoreTier{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}}},
	"coin_flip":    {Tiers: []ScoreTier{{4, 1}, {6, 2}, {7, 3}, {8, 4}, {9, 5}}},
	"slider":       {Tiers: []ScoreTier{{60, 1}, {70, 2}, {80, 3}, {90, 4}, {97, 5}}},

	"word_scramble":  {Tiers: []ScoreTier{{1, 1}, {2, 2}, {3, 3}, {4, 4}, {5, 5}}},
	"timing_tap":     {Tiers: []ScoreTier{{3, 1}, {5, 2}, {6, 3}, {8, 4}, {9, 5}}},
	"color_match":    {Tiers: []ScoreTier{{3, 1}, {4, 2}, {5, 3}, {6, 4}, {7, 5}}},
	"pattern_memory": {Tiers: []ScoreTier{{10, 1}, {20, 2}, {30, 3}, {40, 4}, {50, 5}}},
	"catch_falling":  {Tiers: []ScoreTier{{10, 1}, {20, 2}, {30, 3}, {40, 4}, {50, 5}}},
	"number_guess":   {Tiers: []ScoreTier{{30, 1}, {40, 2}, {50, 3}, {60, 4}, {70, 5}}},

	"emoji_roulette":   {Tiers: []ScoreTier{{10, 1}, {20, 2}, {30, 3}, {50, 4}, {70, 5}}},
	"truth_or_dare":    {Tiers: []ScoreTier{{20, 1}, {35, 2}, {50, 3}, {60, 4}, {75, 5}}},
	"would_you_rather": {Tiers: []ScoreTier{{10, 1}, {20, 2}, {30, 3}, {40, 4}, {50, 5}}},
	"pickup_line":      {Tiers: []ScoreTier{{15, 1}, {30, 2}, {45, 3}, {55, 4}, {70, 5}}},
	"dad_joke":         {Tiers: []ScoreTier{{15, 1}, {25, 2}, {40, 3}, {55, 4}, {70, 5}}},
	"hot_take":         {Tiers: []ScoreTier{{20, 1}, {35, 2}, {50, 3}, {65, 4}, {80, 5}}},
	"drunk_walk":       {Tiers: []ScoreTier{{50, 1}, {100, 2}, {200, 3}, {400, 4}, {600, 5}}},
	"speed_typer":      {Tiers: []ScoreTier{{20, 1}, {40, 2}, {60, 3}, {80, 4}, {100, 5}}},
	"flirty_dice":      {Tiers: []ScoreTier{{12, 1}, {24, 2}, {36, 3}, {48, 4}, {60, 5}}},
	"meme_caption":     {Tiers: []ScoreTier{{15, 1}, {30, 2}, {45, 3}, {55, 4}, {70, 5}}},

	"roast_master":      {Tiers: []ScoreTier{{10, 1}, {25, 2}, {45, 3}, {65, 4}, {80, 5}}},
	"nsfw_trivia":       {Tiers: []ScoreTier{{15, 1}, {30, 2}, {45, 3}, {60, 4}, {75, 5}}},
	"awkward_confess":   {Tiers: []ScoreTier{{15, 1}, {30, 2}, {50, 3}, {65, 4}, {80, 5}}},
	"dirty_mind":        {Tiers: []ScoreTier{{20, 1}, {35, 2}, {50, 3}, {60, 4}, {75, 5}}},
	"booty_shake":       {Tiers: []ScoreTier{{20, 1}, {40, 2}, {60, 3}, {75, 4}, {90, 5}}},
	"savage_comeback":   {Tiers: []ScoreTier{{20, 1}, {40, 2}, {55, 3}, {70, 4}, {85, 5}}},
	"never_have_i":      {Tiers: []ScoreTier{{20, 1}, {35, 2}, {50, 3}, {65, 4}, {80, 5}}},
	"cursed_compliment": {Tiers: []ScoreTier{{20, 1}, {40, 2}, {55, 3}, {70, 4}, {90, 5}}},

	"strip_pong":     {Tiers: []ScoreTier{{20, 1}, {40, 2}, {60, 3}, {80, 4}, {100, 5}}},
	"naughty_snake":  {Tiers: []ScoreTier{{10, 1}, {30, 2}, {50, 3}, {80, 4}, {120, 5}}},
	"kiss_catcher":   {Tiers: []ScoreTier{{30, 1}, {60, 2}, {100, 3}, {150, 4}, {200, 5}}},
	"spank_mole":     {Tiers: []ScoreTier{{20, 1}, {40, 2}, {60, 3}, {80, 4}, {120, 5}}},
	"body_shots":     {Tiers: []ScoreTier{{20, 1}, {50, 2}, {80, 3}, {120, 4}, {180, 5}}},
	"twerk_runner":   {Tiers: []ScoreTier{{15, 1}, {30, 2}, {50, 3}, {80, 4}, {120, 5}}},
	"strip_poker":    {Tiers: []ScoreTier{{20, 1}, {40, 2}, {50, 3}, {70, 4}, {90, 5}}},
	"naughty_blocks": {Tiers: []ScoreTier{{100, 1}, {250, 2}, {500, 3}, {800, 4}, {1200, 5}}},
}

func init() {
	if err := validateGameRules(); err != nil {
		panic(err)
	}
}

// validateGameRules asserts every tier table is threshold-ascending with point
// values in 1..5. Run once at startup so a bad edit fails fast.
func validateGameRules() error {
	for key, rule := range gameRules {
		if len(rule.Tiers) == 0 {
			return fmt.Errorf("game %q has no tiers", key)
		}
		ascending := sort.SliceIsSorted(rule.Tiers, func(i, j int) bool {
			return rule.Tiers[i].Threshold < rule.Tiers[j].Threshold
		})
		if !ascending {
			return fmt.Errorf("game %q tiers are not threshold-ascending", key)
		}
		for _, t := range rule.Tiers {
			if t.Pct < 1 || t.Pct > 5 {
				return fmt.Errorf("game %q tier %d has points %d outside 1..5", key, t.Threshold, t.Pct)
			}
		}
	}
	return nil
}

// KnownGameKeys returns the recognized game identifiers, sorted.
func KnownGameKeys() []string {
	keys := make([]string, 0, len(gameRules))
	for k := range gameRules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EvaluateScore maps a game identifier and raw score to discount points in 0..5.
// Policy is best-tier-reached: every satisfied tier is considered and the highest
// point value wins. Unrecognized games deterministically earn 0.
func EvaluateScore(gameKey string, score int) int {
	rule, ok := gameRules[strings.ToLower(strings.TrimSpace(gameKey))]
	if !ok {
		return 0
	}

	earned := 0
	for _, tier := range rule.Tiers {
		satisfied := score >= tier.Threshold
		if rule.Direction == LowerIsBetter {
			satisfied = score <= tier.Threshold
		}
		if satisfied && tier.Pct > earned {
			earned = tier.Pct
		}
	}
	return earned
}
