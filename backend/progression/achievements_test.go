package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typingtutor/backend/models"
)

func intPtr(v int) *int { return &v }

func TestEvaluateAchievementsUnlock(t *testing.T) {
	db := newTestDB(t)

	achievement := models.Achievement{
		Name:             "Marathon",
		Description:      "Complete 10 sessions",
		AchievementType:  "consistency",
		RequiredSessions: intPtr(10),
		Points:           25,
		IsActive:         true,
	}
	require.NoError(t, db.Create(&achievement).Error)

	stats := &models.UserStats{UserID: 1, TotalSessions: 5}

	unlocked, err := EvaluateAchievements(db, stats, EarnContext{})
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	var record models.UserAchievement
	require.NoError(t, db.Where("user_id = ? AND achievement_id = ?", 1, achievement.ID).First(&record).Error)
	assert.Equal(t, 50, record.ProgressPercentage)
	assert.False(t, record.IsEarned)

	stats.TotalSessions = 10
	sessionID := uint(42)
	unlocked, err = EvaluateAchievements(db, stats, EarnContext{SessionID: &sessionID})
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "Marathon", unlocked[0].Name)
	assert.Equal(t, 25, stats.TotalPoints)
	assert.Equal(t, 1, stats.AchievementsEarned)

	require.NoError(t, db.Where("user_id = ? AND achievement_id = ?", 1, achievement.ID).First(&record).Error)
	assert.True(t, record.IsEarned)
	assert.Equal(t, 100, record.ProgressPercentage)
	assert.NotNil(t, record.EarnedAt)
	require.NotNil(t, record.EarnedInSessionID)
	assert.Equal(t, uint(42), *record.EarnedInSessionID)
}

func TestEvaluateAchievementsEarnedOnce(t *testing.T) {
	db := newTestDB(t)

	achievement := models.Achievement{
		Name:             "First Steps",
		Description:      "Complete a session",
		RequiredSessions: intPtr(1),
		Points:           10,
		IsActive:         true,
	}
	require.NoError(t, db.Create(&achievement).Error)

	stats := &models.UserStats{UserID: 1, TotalSessions: 1}

	unlocked, err := EvaluateAchievements(db, stats, EarnContext{})
	require.NoError(t, err)
	assert.Len(t, unlocked, 1)

	// A second pass must not award the points again
	unlocked, err = EvaluateAchievements(db, stats, EarnContext{})
	require.NoError(t, err)
	assert.Empty(t, unlocked)
	assert.Equal(t, 10, stats.TotalPoints)
	assert.Equal(t, 1, stats.AchievementsEarned)
}

func TestEvaluateAchievementsAllRequirementsMustHold(t *testing.T) {
	db := newTestDB(t)

	achievement := models.Achievement{
		Name:             "Fast and Precise",
		Description:      "60 WPM at 95% accuracy",
		RequiredWPM:      intPtr(60),
		RequiredAccuracy: intPtr(95),
		Points:           50,
		IsActive:         true,
	}
	require.NoError(t, db.Create(&achievement).Error)

	// Fast but sloppy: the progress is the weakest requirement
	stats := &models.UserStats{UserID: 1, BestWPM: 80, BestAccuracy: 76}

	unlocked, err := EvaluateAchievements(db, stats, EarnContext{})
	require.NoError(t, err)
	assert.Empty(t, unlocked)

	var record models.UserAchievement
	require.NoError(t, db.Where("user_id = ?", 1).First(&record).Error)
	assert.Equal(t, 80, record.ProgressPercentage)

	stats.BestAccuracy = 95
	unlocked, err = EvaluateAchievements(db, stats, EarnContext{})
	require.NoError(t, err)
	assert.Len(t, unlocked, 1)
}

func TestEvaluateAchievementsNoRequirements(t *testing.T) {
	db := newTestDB(t)

	achievement := models.Achievement{
		Name:        "Mystery",
		Description: "Granted manually",
		Points:      100,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&achievement).Error)

	stats := &models.UserStats{UserID: 1, TotalSessions: 500}

	unlocked, err := EvaluateAchievements(db, stats, EarnContext{})
	require.NoError(t, err)
	assert.Empty(t, unlocked)
	assert.Equal(t, 0, stats.TotalPoints)
}
