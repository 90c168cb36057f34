package models

import (
	"time"
)

// AdminAuditLog records one admin action for the audit screen.
type AdminAuditLog struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	AdminUserID string    `gorm:"index;not null" json:"admin_user_id"`
	Action      string    `gorm:"type:varchar(80);not null" json:"action"`
	TargetType  *string   `gorm:"type:varchar(40)" json:"target_type,omitempty"`
	TargetID    *string   `json:"target_id,omitempty"`
	Detail      *string   `gorm:"type:text" json:"detail,omitempty"`
	IPAddress   *string   `gorm:"type:varchar(64)" json:"ip_address,omitempty"`
	UserAgent   *string   `json:"user_agent,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Announcement is shown on the client dashboard; at most one is active.
type Announcement struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Title     string    `gorm:"type:varchar(120);not null" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	IsActive  bool      `gorm:"default:true;not null" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
