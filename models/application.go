package models

import (
	"math"
	"time"
)

// Application status values (admin-reviewed).
const (
	AppStatusPending  = "pending"
	AppStatusAccepted = "accepted"
	AppStatusRejected = "rejected"
)

// MaxTotalDiscountPct caps the combined spin+games+bonus discount.
const MaxTotalDiscountPct = 70

// Application is one admission request. It owns the three discount components;
// once a payment method is recorded they are locked for good.
type Application struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID     string `gorm:"index;not null" json:"user_id"`
	ClassFeeID string `gorm:"not null" json:"class_fee_id"`

	Status string `gorm:"type:varchar(20);default:'pending';not null" json:"status"`

	PaymentMethod        *string    `gorm:"type:varchar(20)" json:"payment_method,omitempty"` // bkash/bank
	PaymentReference     *string    `json:"payment_reference,omitempty"`
	PaymentProofFilename *string    `json:"payment_proof_filename,omitempty"`
	PaidAt               *time.Time `json:"paid_at,omitempty"`

	SpinDiscountPct  int     `gorm:"default:0;not null" json:"spin_discount_pct"`  // 0..30, set at most once
	GamesDiscountPct int     `gorm:"default:0;not null" json:"games_discount_pct"` // 0..70, monotonic
	BonusDiscountPct int     `gorm:"default:0;not null" json:"bonus_discount_pct"` // weekly challenge bonus
	BonusWeekKey     *string `gorm:"type:varchar(12)" json:"bonus_week_key,omitempty"` // e.g. "2026-W06"

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User     *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ClassFee ClassFee `gorm:"foreignKey:ClassFeeID" json:"class_fee"`
}

// TotalDiscountPct is always computed fresh; the 70% ceiling applies to the sum,
// not to the stored fields.
func (a *Application) TotalDiscountPct() int {
	total := a.SpinDiscountPct + a.GamesDiscountPct + a.BonusDiscountPct
	if total > MaxTotalDiscountPct {
		return MaxTotalDiscountPct
	}
	return total
}

// DiscountsLocked reports whether payment has been submitted. There is no unlock.
func (a *Application) DiscountsLocked() bool {
	return a.PaymentMethod != nil
}

// CanSpin reports whether a fresh spin is still allowed.
func (a *Application) CanSpin() bool {
	return !a.DiscountsLocked() && a.SpinDiscountPct == 0
}

// FeeAmount requires ClassFee to be preloaded.
func (a *Application) FeeAmount() int {
	return a.ClassFee.AmountBDT
}

// DiscountedAmount is the final payable price after the capped total discount.
func (a *Application) DiscountedAmount() int {
	return int(math.Round(float64(a.FeeAmount()) * (1 - float64(a.TotalDiscountPct())/100.0)))
}

// ChatMessage is one line of the per-application client/admin conversation.
type ChatMessage struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	ApplicationID string    `gorm:"index;not null" json:"application_id"`
	SenderRole    string    `gorm:"type:varchar(20);not null" json:"sender_role"` // client/admin
	SenderName    string    `gorm:"not null" json:"sender_name"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
