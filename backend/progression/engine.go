package progression

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"typingtutor/backend/models"
)

// Engine applies completed practice sessions to all derived state:
// aggregates, streaks, experience, and achievements. The primary write
// (session + aggregates) happens in one transaction; secondary
// propagation (profile mirror, analytics events) is best-effort and
// reported through Outcome.SideEffectErrors instead of failing the
// request.
type Engine struct {
	DB *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{DB: db}
}

// Outcome describes everything a submission changed.
type Outcome struct {
	Stats            *models.UserStats    `json:"stats"`
	LevelUp          bool                 `json:"level_up"`
	NewLevel         int                  `json:"new_level"`
	StreakCount      int                  `json:"streak_count"`
	ExperienceGained int                  `json:"experience_gained"`
	Unlocked         []models.Achievement `json:"unlocked_achievements"`

	// SideEffectErrors collects failures of best-effort propagation.
	// The primary write has succeeded whenever an Outcome is returned.
	SideEffectErrors []error `json:"-"`
}

// sessionXP grants a small base amount plus a words-typed bonus.
func sessionXP(wordsTyped int) int {
	return 10 + wordsTyped/10
}

// RecordSession persists a completed typing session and folds it into
// the user's aggregates, streak, experience and achievements. The whole
// primary update runs in a single transaction so concurrent submissions
// cannot lose aggregate updates.
func (e *Engine) RecordSession(userID uint, session *models.TypingSession) (*Outcome, error) {
	if session == nil {
		return nil, errors.New("progression: nil session")
	}
	session.UserID = userID

	outcome := &Outcome{}

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("create session: %w", err)
		}

		stats, err := getOrCreateStats(tx, userID)
		if err != nil {
			return err
		}

		ApplySession(stats, Sample{
			WPM:             session.WordsPerMinute,
			Accuracy:        session.Accuracy,
			WordsTyped:      session.WordsTyped,
			CharactersTyped: session.CharactersTyped,
			ErrorsMade:      session.ErrorsMade,
			Duration:        session.TimeTaken,
		})

		now := time.Now()
		streak, err := AdvanceStreak(tx, stats, now, session.WordsTyped, session.TimeTaken)
		if err != nil {
			return fmt.Errorf("advance streak: %w", err)
		}

		gained := sessionXP(session.WordsTyped)
		levelUp := AddExperience(stats, gained)

		unlocked, err := EvaluateAchievements(tx, stats, EarnContext{SessionID: &session.ID})
		if err != nil {
			return fmt.Errorf("evaluate achievements: %w", err)
		}

		stats.LastActivity = &now
		if err := tx.Save(stats).Error; err != nil {
			return fmt.Errorf("save stats: %w", err)
		}

		outcome.Stats = stats
		outcome.LevelUp = levelUp
		outcome.NewLevel = stats.CurrentLevel
		outcome.StreakCount = streak.StreakCount
		outcome.ExperienceGained = gained
		outcome.Unlocked = unlocked
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Best-effort propagation; the session is already recorded.
	if err := e.mirrorProfile(userID, outcome.Stats); err != nil {
		outcome.SideEffectErrors = append(outcome.SideEffectErrors, fmt.Errorf("update profile: %w", err))
	}
	if err := e.trackEvent(userID, "session_complete", map[string]interface{}{
		"session_id": session.ID,
		"wpm":        session.WordsPerMinute,
		"accuracy":   session.Accuracy,
	}); err != nil {
		outcome.SideEffectErrors = append(outcome.SideEffectErrors, fmt.Errorf("track event: %w", err))
	}

	return outcome, nil
}

// RecordVoiceSession persists a voice session and updates the voice
// aggregates and, when an exercise is referenced, the per-exercise
// progress. Typing averages, streaks and XP are untouched.
func (e *Engine) RecordVoiceSession(userID uint, session *models.VoiceSession) (*Outcome, error) {
	if session == nil {
		return nil, errors.New("progression: nil voice session")
	}
	session.UserID = userID

	outcome := &Outcome{}

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("create voice session: %w", err)
		}

		stats, err := getOrCreateStats(tx, userID)
		if err != nil {
			return err
		}

		ApplyVoiceSession(stats, session.PronunciationScore)

		if session.ExerciseID != nil {
			if err := applyVoiceProgress(tx, userID, session); err != nil {
				return err
			}
		}

		unlocked, err := EvaluateAchievements(tx, stats, EarnContext{})
		if err != nil {
			return fmt.Errorf("evaluate achievements: %w", err)
		}

		now := time.Now()
		stats.LastActivity = &now
		if err := tx.Save(stats).Error; err != nil {
			return fmt.Errorf("save stats: %w", err)
		}

		outcome.Stats = stats
		outcome.NewLevel = stats.CurrentLevel
		outcome.StreakCount = stats.CurrentStreak
		outcome.Unlocked = unlocked
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := e.trackEvent(userID, "voice_session", map[string]interface{}{
		"session_id": session.ID,
		"wpm":        session.WordsPerMinute,
		"confidence": session.ConfidenceScore,
	}); err != nil {
		outcome.SideEffectErrors = append(outcome.SideEffectErrors, fmt.Errorf("track event: %w", err))
	}

	return outcome, nil
}

// MarkLessonCompleted bumps the lessons-completed counter and rechecks
// lesson achievements. Called when a lesson progress row first reaches
// the completed state.
func (e *Engine) MarkLessonCompleted(userID, lessonID uint) (*Outcome, error) {
	outcome := &Outcome{}

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		stats, err := getOrCreateStats(tx, userID)
		if err != nil {
			return err
		}

		stats.LessonsCompleted++

		unlocked, err := EvaluateAchievements(tx, stats, EarnContext{LessonID: &lessonID})
		if err != nil {
			return fmt.Errorf("evaluate achievements: %w", err)
		}

		if err := tx.Save(stats).Error; err != nil {
			return fmt.Errorf("save stats: %w", err)
		}

		outcome.Stats = stats
		outcome.NewLevel = stats.CurrentLevel
		outcome.Unlocked = unlocked
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := e.trackEvent(userID, "lesson_complete", map[string]interface{}{"lesson_id": lessonID}); err != nil {
		outcome.SideEffectErrors = append(outcome.SideEffectErrors, fmt.Errorf("track event: %w", err))
	}

	return outcome, nil
}

// MarkChallengeCompleted bumps the challenges-completed counter, awards
// the challenge's points and rechecks challenge achievements.
func (e *Engine) MarkChallengeCompleted(userID, challengeID uint, pointsReward int) (*Outcome, error) {
	outcome := &Outcome{}

	err := e.DB.Transaction(func(tx *gorm.DB) error {
		stats, err := getOrCreateStats(tx, userID)
		if err != nil {
			return err
		}

		stats.ChallengesCompleted++
		stats.TotalPoints += pointsReward

		unlocked, err := EvaluateAchievements(tx, stats, EarnContext{ChallengeID: &challengeID})
		if err != nil {
			return fmt.Errorf("evaluate achievements: %w", err)
		}

		if err := tx.Save(stats).Error; err != nil {
			return fmt.Errorf("save stats: %w", err)
		}

		outcome.Stats = stats
		outcome.NewLevel = stats.CurrentLevel
		outcome.Unlocked = unlocked
		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

func getOrCreateStats(tx *gorm.DB, userID uint) (*models.UserStats, error) {
	var stats models.UserStats
	if err := tx.Where(models.UserStats{UserID: userID}).
		Attrs(models.UserStats{CurrentLevel: 1}).
		FirstOrCreate(&stats).Error; err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}
	return &stats, nil
}

func applyVoiceProgress(tx *gorm.DB, userID uint, session *models.VoiceSession) error {
	var exercise models.VoiceExercise
	if err := tx.First(&exercise, *session.ExerciseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // dangling exercise reference is not an error
		}
		return fmt.Errorf("load exercise: %w", err)
	}

	var progress models.VoiceProgress
	if err := tx.Where(models.VoiceProgress{UserID: userID, ExerciseID: exercise.ID}).
		FirstOrCreate(&progress).Error; err != nil {
		return fmt.Errorf("load voice progress: %w", err)
	}

	pronunciation := 0.0
	if session.PronunciationScore != nil {
		pronunciation = *session.PronunciationScore
	}
	progress.Apply(&exercise, session.WordsPerMinute, session.Accuracy, pronunciation, session.Duration)

	if err := tx.Save(&progress).Error; err != nil {
		return fmt.Errorf("save voice progress: %w", err)
	}
	return nil
}

// mirrorProfile copies the headline aggregates onto the profile row the
// account pages read. Best-effort.
func (e *Engine) mirrorProfile(userID uint, stats *models.UserStats) error {
	var profile models.UserProfile
	if err := e.DB.Where(models.UserProfile{UserID: userID}).FirstOrCreate(&profile).Error; err != nil {
		return err
	}

	profile.TotalTypingTime = stats.TotalTypingTime
	profile.TotalWordsTyped = stats.TotalWordsTyped
	profile.AverageWPM = stats.AverageWPM
	profile.BestWPM = stats.BestWPM
	profile.AverageAccuracy = stats.AverageAccuracy
	profile.BestAccuracy = stats.BestAccuracy
	profile.LessonsCompleted = stats.LessonsCompleted
	profile.AchievementsCount = stats.AchievementsEarned
	profile.CurrentLevel = TypingLevel(stats.BestWPM, stats.BestAccuracy)

	return e.DB.Save(&profile).Error
}

func (e *Engine) trackEvent(userID uint, eventType string, data map[string]interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	event := models.AnalyticsEvent{
		UserID:    userID,
		EventType: eventType,
		Data:      string(payload),
		SessionID: uuid.NewString(),
	}
	return e.DB.Create(&event).Error
}
