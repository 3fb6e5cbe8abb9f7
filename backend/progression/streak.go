package progression

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"typingtutor/backend/models"
)

// AdvanceStreak records today's practice activity on the user's
// DailyStreak row and updates the running streak counters on stats.
//
// One row exists per (user, date); further sessions on the same date
// increment that row in place and leave the streak count unchanged.
// A new day continues the streak only if the row for exactly yesterday
// exists; any gap resets the count to 1.
func AdvanceStreak(db *gorm.DB, stats *models.UserStats, now time.Time, words int, duration time.Duration) (*models.DailyStreak, error) {
	today := truncateToDay(now)

	var streak models.DailyStreak
	err := db.Where("user_id = ? AND date = ?", stats.UserID, today).First(&streak).Error
	if err == nil {
		streak.SessionsCompleted++
		streak.WordsTyped += words
		streak.TotalTime += duration
		if err := db.Save(&streak).Error; err != nil {
			return nil, err
		}
		stats.CurrentStreak = streak.StreakCount
		return &streak, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	count := 1
	var yesterday models.DailyStreak
	err = db.Where("user_id = ? AND date = ?", stats.UserID, today.AddDate(0, 0, -1)).First(&yesterday).Error
	if err == nil && yesterday.IsStreakDay {
		count = yesterday.StreakCount + 1
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	streak = models.DailyStreak{
		UserID:            stats.UserID,
		Date:              today,
		SessionsCompleted: 1,
		TotalTime:         duration,
		WordsTyped:        words,
		IsStreakDay:       true,
		StreakCount:       count,
	}
	if err := db.Create(&streak).Error; err != nil {
		return nil, err
	}

	stats.CurrentStreak = count
	if count > stats.LongestStreak {
		stats.LongestStreak = count
	}

	return &streak, nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
