package services

import (
	"time"

	"admission-portal/models"

	"gorm.io/gorm"
)

// DiscountService owns the three discount components on an application and the
// global cap. All mutations take the caller's transaction; locked applications
// turn every mutation into a reported no-op, never an error.
type DiscountService struct {
	DB *gorm.DB
}

func NewDiscountService(db *gorm.DB) *DiscountService {
	return &DiscountService{DB: db}
}

// ApplySpin sets the spin component exactly once. Returns false when the
// application is locked or a spin result already exists.
func (s *DiscountService) ApplySpin(tx *gorm.DB, app *models.Application, pct int) (bool, error) {
	if app.DiscountsLocked() || app.SpinDiscountPct > 0 {
		return false, nil
	}
	app.SpinDiscountPct = pct
	if err := tx.Model(app).Update("spin_discount_pct", pct).Error; err != nil {
		return false, err
	}
	return true, nil
}

// ApplyGameResult adds an evaluated discount to the games component, saturating
// the component at 70. capReached reports that the cap absorbed part (or all)
// of the increment so the caller can surface a notice.
func (s *DiscountService) ApplyGameResult(tx *gorm.DB, app *models.Application, evaluatedPct int) (applied bool, capReached bool, err error) {
	if app.DiscountsLocked() {
		return false, false, nil
	}

	beforeTotal := app.TotalDiscountPct()
	next := app.GamesDiscountPct + evaluatedPct
	if next > models.MaxTotalDiscountPct {
		next = models.MaxTotalDiscountPct
	}
	app.GamesDiscountPct = next
	if err := tx.Model(app).Update("games_discount_pct", next).Error; err != nil {
		return false, false, err
	}

	realizedDelta := app.TotalDiscountPct() - beforeTotal
	return true, evaluatedPct > 0 && realizedDelta < evaluatedPct, nil
}

// LockOnPayment records the payment fields; from here the discounts are locked
// forever. Returns false if payment was already submitted.
func (s *DiscountService) LockOnPayment(tx *gorm.DB, app *models.Application, method, reference string, proofFilename *string) (bool, error) {
	if app.DiscountsLocked() {
		return false, nil
	}

	now := time.Now().UTC()
	app.PaymentMethod = &method
	app.PaymentReference = &reference
	app.PaymentProofFilename = proofFilename
	app.PaidAt = &now

	err := tx.Model(app).Updates(map[string]interface{}{
		"payment_method":         method,
		"payment_reference":      reference,
		"payment_proof_filename": proofFilename,
		"paid_at":                now,
	}).Error
	if err != nil {
		return false, err
	}
	return true, nil
}
