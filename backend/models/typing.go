package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type TypingText struct {
	gorm.Model
	Title          string `gorm:"not null" json:"title"`
	Content        string `gorm:"type:text;not null" json:"content"`
	Difficulty     string `gorm:"default:beginner" json:"difficulty"` // beginner, intermediate, advanced, expert
	Category       string `gorm:"default:lesson" json:"category"`     // lesson, practice, quote, poem, news, story, technical, custom
	WordCount      int    `json:"word_count"`
	CharacterCount int    `json:"character_count"`
	EstimatedTime  int    `json:"estimated_time"` // minutes

	Author    string `json:"author"`
	Source    string `json:"source"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`
	IsPremium bool   `gorm:"default:false" json:"is_premium"`

	SchoolID    *uint `json:"school_id,omitempty"`
	CreatedByID uint  `json:"created_by_id"`
}

// BeforeSave derives word/character counts from the content, and an
// estimated time of 1 minute per 20 words when none was given.
func (t *TypingText) BeforeSave(tx *gorm.DB) error {
	t.WordCount = len(strings.Fields(t.Content))
	t.CharacterCount = len(t.Content)
	if t.EstimatedTime == 0 {
		t.EstimatedTime = t.WordCount / 20
		if t.EstimatedTime < 1 {
			t.EstimatedTime = 1
		}
	}
	return nil
}

type TypingSession struct {
	gorm.Model
	UserID       uint   `gorm:"index" json:"user_id"`
	TypingTextID uint   `json:"typing_text_id"`
	SessionType  string `gorm:"default:practice" json:"session_type"` // lesson, practice, test, challenge, voice

	// Performance metrics
	WordsPerMinute  float64       `json:"words_per_minute"`
	Accuracy        float64       `json:"accuracy"`
	WordsTyped      int           `json:"words_typed"`
	CharactersTyped int           `json:"characters_typed"`
	ErrorsMade      int           `json:"errors_made"`
	TimeTaken       time.Duration `json:"time_taken"`

	// Detailed metrics
	CorrectCharacters   int `json:"correct_characters"`
	IncorrectCharacters int `json:"incorrect_characters"`
	BackspacesUsed      int `gorm:"default:0" json:"backspaces_used"`

	// Session details
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	IsCompleted bool      `gorm:"default:true" json:"is_completed"`

	// Voice typing specific
	VoiceAccuracy      *float64 `json:"voice_accuracy,omitempty"`
	PronunciationScore *float64 `json:"pronunciation_score,omitempty"`
}

// ErrorRate returns the error percentage for the session.
func (s *TypingSession) ErrorRate() float64 {
	if s.CharactersTyped == 0 {
		return 0
	}
	return float64(s.ErrorsMade) / float64(s.CharactersTyped) * 100
}

// DurationMinutes returns the session duration in minutes.
func (s *TypingSession) DurationMinutes() float64 {
	return s.TimeTaken.Seconds() / 60
}

type TypingLesson struct {
	gorm.Model
	Title        string `gorm:"not null" json:"title"`
	Description  string `json:"description"`
	Difficulty   string `gorm:"uniqueIndex:idx_lesson_order" json:"difficulty"`
	SequenceNum  int    `gorm:"uniqueIndex:idx_lesson_order" json:"sequence_num"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`

	Instructions   string `json:"instructions"`
	FocusKeys      string `json:"focus_keys"` // e.g. "asdf", "jkl;"
	TargetWPM      int    `gorm:"default:20" json:"target_wpm"`
	TargetAccuracy int    `gorm:"default:90" json:"target_accuracy"`

	SchoolID    *uint `json:"school_id,omitempty"`
	CreatedByID uint  `json:"created_by_id"`
}

type UserLessonProgress struct {
	gorm.Model
	UserID   uint   `gorm:"uniqueIndex:idx_user_lesson" json:"user_id"`
	LessonID uint   `gorm:"uniqueIndex:idx_user_lesson" json:"lesson_id"`
	Status   string `gorm:"default:not_started" json:"status"` // not_started, in_progress, completed, mastered

	Attempts     int           `gorm:"default:0" json:"attempts"`
	BestWPM      float64       `gorm:"default:0" json:"best_wpm"`
	BestAccuracy float64       `gorm:"default:0" json:"best_accuracy"`
	TimeSpent    time.Duration `json:"time_spent"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type TypingChallenge struct {
	gorm.Model
	Title         string `gorm:"not null" json:"title"`
	Description   string `json:"description"`
	ChallengeType string `json:"challenge_type"` // speed, accuracy, endurance, custom

	DurationMinutes int  `json:"duration_minutes"`
	TargetWPM       *int `json:"target_wpm,omitempty"`
	TargetAccuracy  *int `json:"target_accuracy,omitempty"`

	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`

	PointsReward int `gorm:"default:0" json:"points_reward"`

	SchoolID    *uint `json:"school_id,omitempty"`
	CreatedByID uint  `json:"created_by_id"`
}

// IsOngoing reports whether the challenge is currently running.
func (c *TypingChallenge) IsOngoing() bool {
	now := time.Now()
	return c.IsActive && !now.Before(c.StartDate) && !now.After(c.EndDate)
}

type ChallengeParticipation struct {
	gorm.Model
	UserID      uint `gorm:"uniqueIndex:idx_user_challenge" json:"user_id"`
	ChallengeID uint `gorm:"uniqueIndex:idx_user_challenge" json:"challenge_id"`

	BestWPM       float64       `gorm:"default:0" json:"best_wpm"`
	BestAccuracy  float64       `gorm:"default:0" json:"best_accuracy"`
	TotalSessions int           `gorm:"default:0" json:"total_sessions"`
	TotalTime     time.Duration `json:"total_time"`

	IsCompleted bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Rank         *int `json:"rank,omitempty"`
	PointsEarned int  `gorm:"default:0" json:"points_earned"`
}
