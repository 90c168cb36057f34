package services

import (
	"errors"

	"admission-portal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// defaultClassFees seeds the admin-managed fee table on first boot.
var defaultClassFees = map[string]int{
	"Class 6":  10000,
	"Class 7":  11000,
	"Class 8":  12000,
	"Class 9":  13000,
	"Class 10": 14000,
	"Class 11": 15000,
	"Class 12": 16000,
}

// EnsureSeedData inserts any missing default class fee rows. Idempotent; safe
// to run on every boot.
func EnsureSeedData(db *gorm.DB) error {
	for className, amount := range defaultClassFees {
		var existing models.ClassFee
		err := db.Where("class_name = ?", className).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		row := models.ClassFee{
			ID:        uuid.NewString(),
			ClassName: className,
			AmountBDT: amount,
		}
		if err := db.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
