package models

import (
	"time"
)

// GameScore is an append-only record of one submission. Flagged rows are kept
// for the fair-play review screen but carry EarnedDiscountPct = 0.
type GameScore struct {
	ID                string    `gorm:"primaryKey;type:uuid" json:"id"`
	ApplicationID     string    `gorm:"index;not null" json:"application_id"`
	GameKey           string    `gorm:"type:varchar(50);not null" json:"game_key"`
	Score             int       `gorm:"not null" json:"score"`
	EarnedDiscountPct int       `gorm:"default:0;not null" json:"earned_discount_pct"`
	IsFlagged         bool      `gorm:"default:false;not null" json:"is_flagged"`
	FlagReason        *string   `gorm:"type:text" json:"flag_reason,omitempty"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// UserGameStat is the per (user, game) rollup, created lazily on first play.
type UserGameStat struct {
	ID         string     `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string     `gorm:"index;not null;uniqueIndex:uq_game_stat_user_key" json:"user_id"`
	GameKey    string     `gorm:"type:varchar(50);not null;uniqueIndex:uq_game_stat_user_key" json:"game_key"`
	PlaysCount int        `gorm:"default:0;not null" json:"plays_count"`
	BestScore  *int       `json:"best_score,omitempty"`
	BestAt     *time.Time `json:"best_at,omitempty"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
