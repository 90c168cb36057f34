package services

import (
	"errors"
	"time"

	"admission-portal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// streak scan window; anything older cannot extend a streak ending today.
const streakWindowDays = 40

// ActivityService records one attendance mark per user per calendar day and
// derives the consecutive-day streak from them.
type ActivityService struct {
	DB *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{DB: db}
}

// RecordDay inserts the (user, day) mark if absent. Concurrent duplicate marks
// collapse onto the unique row; both callers see success.
func (s *ActivityService) RecordDay(tx *gorm.DB, userID string, day time.Time) error {
	day = truncateToDay(day)

	var existing models.UserActivityDay
	err := tx.Where("user_id = ? AND day = ?", userID, day).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	row := models.UserActivityDay{
		ID:     uuid.NewString(),
		UserID: userID,
		Day:    day,
	}
	if err := tx.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil // a concurrent request marked the same day
		}
		return err
	}
	return nil
}

// StreakDays counts consecutive marked days ending exactly at today. A missing
// mark for today yields 0 regardless of earlier activity.
func (s *ActivityService) StreakDays(userID string, today time.Time) (int, error) {
	today = truncateToDay(today)
	windowStart := today.AddDate(0, 0, -streakWindowDays)

	var rows []models.UserActivityDay
	err := s.DB.Where("user_id = ? AND day >= ? AND day <= ?", userID, windowStart, today).
		Order("day DESC").
		Find(&rows).Error
	if err != nil {
		return 0, err
	}

	marked := make(map[string]bool, len(rows))
	for _, row := range rows {
		marked[row.Day.Format("2006-01-02")] = true
	}

	streak := 0
	cursor := today
	for marked[cursor.Format("2006-01-02")] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak, nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
