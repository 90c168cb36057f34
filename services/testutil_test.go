package services

import (
	"testing"

	"admission-portal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.ClassFee{},
		&models.Application{},
		&models.ChatMessage{},
		&models.GameScore{},
		&models.UserGameStat{},
		&models.BadgeAward{},
		&models.UserActivityDay{},
		&models.AdminAuditLog{},
		&models.Announcement{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		ID:    uuid.NewString(),
		Email: uuid.NewString() + "@example.com",
		Name:  "Test Student",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestApplication(t *testing.T, db *gorm.DB, userID string) *models.Application {
	t.Helper()

	fee := models.ClassFee{
		ID:        uuid.NewString(),
		ClassName: "Class 6",
		AmountBDT: 10000,
	}
	require.NoError(t, db.Create(&fee).Error)

	app := models.Application{
		ID:         uuid.NewString(),
		UserID:     userID,
		ClassFeeID: fee.ID,
		Status:     models.AppStatusPending,
	}
	require.NoError(t, db.Create(&app).Error)
	app.ClassFee = fee
	return &app
}
