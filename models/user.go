package models

import (
	"time"
)

// User is the portal identity. Identity fields are immutable after signup;
// only the display name may change. Auth itself lives in the gateway.
type User struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"not null" json:"name"`
	IsAdmin   bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Applications []Application `gorm:"foreignKey:UserID" json:"applications,omitempty"`
}

// ClassFee is one row of the admin-managed fee table, e.g. "Class 6" -> 10000 BDT.
type ClassFee struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	ClassName string    `gorm:"uniqueIndex;not null" json:"class_name"`
	AmountBDT int       `gorm:"not null" json:"amount_bdt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
