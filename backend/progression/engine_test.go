package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"typingtutor/backend/models"
)

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestEngineRecordSession(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db)

	user := createTestUser(t, db, "typist")

	text := models.TypingText{Title: "Warmup", Content: "the quick brown fox", IsActive: true}
	require.NoError(t, db.Create(&text).Error)

	achievement := models.Achievement{
		Name:             "First Session",
		Description:      "Complete your first session",
		RequiredSessions: intPtr(1),
		Points:           10,
		IsActive:         true,
	}
	require.NoError(t, db.Create(&achievement).Error)

	session := models.TypingSession{
		TypingTextID:    text.ID,
		WordsPerMinute:  50,
		Accuracy:        92,
		WordsTyped:      100,
		CharactersTyped: 480,
		ErrorsMade:      8,
		TimeTaken:       2 * time.Minute,
		IsCompleted:     true,
	}

	outcome, err := engine.RecordSession(user.ID, &session)
	require.NoError(t, err)
	assert.Empty(t, outcome.SideEffectErrors)

	assert.NotZero(t, session.ID)
	assert.Equal(t, user.ID, session.UserID)

	assert.Equal(t, 1, outcome.Stats.TotalSessions)
	assert.Equal(t, 50.0, outcome.Stats.BestWPM)
	assert.Equal(t, 1, outcome.StreakCount)
	assert.Equal(t, 20, outcome.ExperienceGained) // 10 base + 100 words / 10
	assert.Equal(t, 20, outcome.Stats.ExperiencePoints)
	assert.False(t, outcome.LevelUp)
	require.Len(t, outcome.Unlocked, 1)
	assert.Equal(t, "First Session", outcome.Unlocked[0].Name)
	assert.Equal(t, 10, outcome.Stats.TotalPoints)
	assert.NotNil(t, outcome.Stats.LastActivity)

	// The profile mirror is refreshed
	var profile models.UserProfile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, 50.0, profile.BestWPM)
	assert.Equal(t, "advanced", profile.CurrentLevel)

	// An analytics event is recorded
	var event models.AnalyticsEvent
	require.NoError(t, db.Where("user_id = ? AND event_type = ?", user.ID, "session_complete").First(&event).Error)
	assert.NotEmpty(t, event.SessionID)
	assert.Contains(t, event.Data, "wpm")
}

func TestEngineRecordVoiceSession(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db)

	user := createTestUser(t, db, "speaker")

	exercise := models.VoiceExercise{
		Title:               "Vowels",
		TextToSpeak:         "a e i o u",
		TargetWPM:           10,
		TargetAccuracy:      50,
		TargetPronunciation: 0.5,
		IsActive:            true,
	}
	require.NoError(t, db.Create(&exercise).Error)

	pronunciation := 0.9
	session := models.VoiceSession{
		ExerciseID:         &exercise.ID,
		Language:           "en-US",
		ConfidenceScore:    0.95,
		WordsSpoken:        20,
		WordsPerMinute:     15,
		Accuracy:           80,
		PronunciationScore: &pronunciation,
		Duration:           time.Minute,
	}

	outcome, err := engine.RecordVoiceSession(user.ID, &session)
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Stats.VoiceSessions)
	assert.Equal(t, 0.9, outcome.Stats.BestPronunciation)

	// Typing aggregates, streak and XP are untouched by voice sessions
	assert.Equal(t, 0, outcome.Stats.TotalSessions)
	assert.Equal(t, 0, outcome.Stats.ExperiencePoints)
	assert.Equal(t, 0, outcome.Stats.CurrentStreak)

	var progress models.VoiceProgress
	require.NoError(t, db.Where("user_id = ? AND exercise_id = ?", user.ID, exercise.ID).First(&progress).Error)
	assert.Equal(t, 1, progress.Attempts)
	assert.Equal(t, 15.0, progress.BestWPM)
	assert.True(t, progress.IsCompleted)
}

func TestEngineMarkLessonCompleted(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db)

	user := createTestUser(t, db, "learner")

	outcome, err := engine.MarkLessonCompleted(user.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Stats.LessonsCompleted)
}

func TestEngineMarkChallengeCompleted(t *testing.T) {
	db := newTestDB(t)
	engine := NewEngine(db)

	user := createTestUser(t, db, "challenger")

	outcome, err := engine.MarkChallengeCompleted(user.ID, 3, 75)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Stats.ChallengesCompleted)
	assert.Equal(t, 75, outcome.Stats.TotalPoints)
}
