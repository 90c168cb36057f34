package models

import (
	"time"
)

// BadgeAward is a one-time-per-user achievement. The unique index is what makes
// AwardOnce race-safe; a concurrent duplicate insert is rejected by the DB.
type BadgeAward struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"index;not null;uniqueIndex:uq_badge_user_key" json:"user_id"`
	BadgeKey  string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_badge_user_key" json:"badge_key"`
	Title     string    `gorm:"not null" json:"title"`
	Icon      string    `gorm:"type:varchar(16);default:'🏅';not null" json:"icon"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserActivityDay marks one calendar day of activity. Duplicate marks for the
// same day collapse onto the unique (user, day) row.
type UserActivityDay struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"index;not null;uniqueIndex:uq_activity_user_day" json:"user_id"`
	Day       time.Time `gorm:"type:date;not null;uniqueIndex:uq_activity_user_day" json:"day"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
