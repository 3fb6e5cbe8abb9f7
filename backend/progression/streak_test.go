package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typingtutor/backend/models"
)

func TestAdvanceStreakConsecutiveDays(t *testing.T) {
	db := newTestDB(t)
	stats := &models.UserStats{UserID: 1}

	day1 := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	streak, err := AdvanceStreak(db, stats, day1, 100, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.StreakCount)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 1, stats.LongestStreak)

	streak, err = AdvanceStreak(db, stats, day1.AddDate(0, 0, 1), 80, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 2, streak.StreakCount)
	assert.Equal(t, 2, stats.CurrentStreak)
	assert.Equal(t, 2, stats.LongestStreak)

	streak, err = AdvanceStreak(db, stats, day1.AddDate(0, 0, 2), 80, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 3, streak.StreakCount)
}

func TestAdvanceStreakSameDay(t *testing.T) {
	db := newTestDB(t)
	stats := &models.UserStats{UserID: 1}

	morning := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 10, 21, 30, 0, 0, time.UTC)

	_, err := AdvanceStreak(db, stats, morning, 100, time.Minute)
	require.NoError(t, err)

	streak, err := AdvanceStreak(db, stats, evening, 50, 2*time.Minute)
	require.NoError(t, err)

	// Same day increments the row in place, streak count is unchanged
	assert.Equal(t, 1, streak.StreakCount)
	assert.Equal(t, 2, streak.SessionsCompleted)
	assert.Equal(t, 150, streak.WordsTyped)
	assert.Equal(t, 3*time.Minute, streak.TotalTime)
	assert.Equal(t, 1, stats.CurrentStreak)

	var count int64
	db.Model(&models.DailyStreak{}).Where("user_id = ?", stats.UserID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAdvanceStreakGapResets(t *testing.T) {
	db := newTestDB(t)
	stats := &models.UserStats{UserID: 1}

	day1 := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	_, err := AdvanceStreak(db, stats, day1, 100, time.Minute)
	require.NoError(t, err)
	_, err = AdvanceStreak(db, stats, day1.AddDate(0, 0, 1), 100, time.Minute)
	require.NoError(t, err)

	// Two day gap breaks the streak
	streak, err := AdvanceStreak(db, stats, day1.AddDate(0, 0, 4), 100, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.StreakCount)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, 2, stats.LongestStreak)
}
