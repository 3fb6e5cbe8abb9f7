package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"typingtutor/backend/models"
)

func TestLeaderboardByWPM(t *testing.T) {
	db := newTestDB(t)

	fast := createTestUser(t, db, "fast")
	slow := createTestUser(t, db, "slow")

	sessions := []models.TypingSession{
		{UserID: fast.ID, WordsPerMinute: 80, Accuracy: 95, IsCompleted: true},
		{UserID: fast.ID, WordsPerMinute: 90.2, Accuracy: 97, IsCompleted: true},
		{UserID: slow.ID, WordsPerMinute: 72.3, Accuracy: 90, IsCompleted: true},
		// Incomplete sessions are excluded from the ranking
		{UserID: slow.ID, WordsPerMinute: 200, Accuracy: 100, IsCompleted: false},
	}
	for i := range sessions {
		require.NoError(t, db.Create(&sessions[i]).Error)
	}

	entries, err := Leaderboard(db, LeaderboardQuery{Metric: "wpm", Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "fast@example.com", entries[0].UserEmail)
	assert.Equal(t, 85.1, entries[0].Score)
	assert.Equal(t, 2, entries[0].TotalSessions)

	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "slow@example.com", entries[1].UserEmail)
	assert.Equal(t, 72.3, entries[1].Score)
}

func TestLeaderboardByPoints(t *testing.T) {
	db := newTestDB(t)

	first := createTestUser(t, db, "first")
	second := createTestUser(t, db, "second")

	require.NoError(t, db.Create(&models.UserStats{UserID: first.ID, TotalPoints: 50, TotalSessions: 3, CurrentLevel: 1}).Error)
	require.NoError(t, db.Create(&models.UserStats{UserID: second.ID, TotalPoints: 120, TotalSessions: 8, CurrentLevel: 2}).Error)

	entries, err := Leaderboard(db, LeaderboardQuery{Metric: "points"})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "second@example.com", entries[0].UserEmail)
	assert.Equal(t, 120.0, entries[0].Score)
	assert.Equal(t, "first@example.com", entries[1].UserEmail)
}

func TestLeaderboardSchoolScope(t *testing.T) {
	db := newTestDB(t)

	schoolID := uint(5)
	inSchool := models.User{Username: "pupil", Email: "pupil@example.com", PasswordHash: "x", SchoolID: &schoolID}
	require.NoError(t, db.Create(&inSchool).Error)
	outside := createTestUser(t, db, "outsider")

	require.NoError(t, db.Create(&models.TypingSession{UserID: inSchool.ID, WordsPerMinute: 40, IsCompleted: true}).Error)
	require.NoError(t, db.Create(&models.TypingSession{UserID: outside.ID, WordsPerMinute: 99, IsCompleted: true}).Error)

	entries, err := Leaderboard(db, LeaderboardQuery{Metric: "wpm", SchoolID: &schoolID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pupil@example.com", entries[0].UserEmail)
}

func TestLeaderboardExcludesDeletedUsers(t *testing.T) {
	db := newTestDB(t)

	active := createTestUser(t, db, "active")
	departed := createTestUser(t, db, "departed")

	require.NoError(t, db.Create(&models.TypingSession{UserID: active.ID, WordsPerMinute: 50, IsCompleted: true}).Error)
	require.NoError(t, db.Create(&models.TypingSession{UserID: departed.ID, WordsPerMinute: 99, IsCompleted: true}).Error)
	require.NoError(t, db.Create(&models.UserStats{UserID: active.ID, TotalPoints: 10, CurrentLevel: 1}).Error)
	require.NoError(t, db.Create(&models.UserStats{UserID: departed.ID, TotalPoints: 500, CurrentLevel: 1}).Error)

	require.NoError(t, db.Delete(&departed).Error)

	entries, err := Leaderboard(db, LeaderboardQuery{Metric: "wpm"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "active@example.com", entries[0].UserEmail)

	entries, err = Leaderboard(db, LeaderboardQuery{Metric: "points"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "active@example.com", entries[0].UserEmail)
}

func TestProgressReport(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "reporter")

	sessions := []models.TypingSession{
		{UserID: user.ID, WordsPerMinute: 50, Accuracy: 90, TimeTaken: 2 * time.Minute, IsCompleted: true},
		{UserID: user.ID, WordsPerMinute: 60.5, Accuracy: 94, TimeTaken: 3 * time.Minute, IsCompleted: true},
	}
	for i := range sessions {
		require.NoError(t, db.Create(&sessions[i]).Error)
	}

	require.NoError(t, db.Create(&models.UserStats{
		UserID:        user.ID,
		CurrentLevel:  2,
		TotalPoints:   35,
		CurrentStreak: 4,
	}).Error)

	report, err := ProgressReport(db, user.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, 3, report.PeriodDays)
	assert.Equal(t, 2, report.TotalSessions)
	assert.Equal(t, 5*time.Minute, report.TotalTime)
	assert.Equal(t, 55.3, report.AverageWPM) // (50 + 60.5) / 2 rounded
	assert.Equal(t, 92.0, report.AverageAccuracy)
	assert.Equal(t, 60.5, report.BestWPM)
	assert.Equal(t, 94.0, report.BestAccuracy)

	assert.Equal(t, 2, report.CurrentLevel)
	assert.Equal(t, 35, report.TotalPoints)
	assert.Equal(t, 4, report.CurrentStreak)

	// Every day of the window appears, the last entry being today
	require.Len(t, report.DailyActivity, 3)
	today := report.DailyActivity[2]
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), today.Date)
	assert.Equal(t, 2, today.Sessions)
	assert.Equal(t, 55.3, today.AvgWPM)

	// Earlier days are zero-filled
	assert.Equal(t, 0, report.DailyActivity[0].Sessions)
	assert.Equal(t, 0.0, report.DailyActivity[0].AvgWPM)
}

func TestProgressReportWindowMatchesBreakdown(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "aligned")

	// One session just before the first listed day, one inside the window
	firstDay := truncateToDay(time.Now().UTC()).AddDate(0, 0, -2)
	outside := models.TypingSession{
		Model:          gorm.Model{CreatedAt: firstDay.Add(-time.Hour)},
		UserID:         user.ID,
		WordsPerMinute: 200,
		IsCompleted:    true,
	}
	require.NoError(t, db.Create(&outside).Error)
	require.NoError(t, db.Create(&models.TypingSession{UserID: user.ID, WordsPerMinute: 50, Accuracy: 90, IsCompleted: true}).Error)

	report, err := ProgressReport(db, user.ID, 3)
	require.NoError(t, err)

	// Totals only cover sessions that appear in the daily breakdown
	assert.Equal(t, 1, report.TotalSessions)
	assert.Equal(t, 50.0, report.BestWPM)

	listed := 0
	for _, day := range report.DailyActivity {
		listed += day.Sessions
	}
	assert.Equal(t, report.TotalSessions, listed)
}

func TestProgressReportEmpty(t *testing.T) {
	db := newTestDB(t)

	report, err := ProgressReport(db, 999, 7)
	require.NoError(t, err)

	assert.Equal(t, 0, report.TotalSessions)
	assert.Equal(t, 0.0, report.AverageWPM)
	assert.Equal(t, 1, report.CurrentLevel)
	assert.Len(t, report.DailyActivity, 7)
}
