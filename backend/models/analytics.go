package models

import (
	"time"

	"gorm.io/gorm"
)

type Achievement struct {
	gorm.Model
	Name            string `gorm:"not null;uniqueIndex" json:"name"`
	Description     string `gorm:"not null" json:"description"`
	AchievementType string `json:"achievement_type"`       // speed, accuracy, consistency, endurance, lesson, challenge, voice, special
	Rarity          string `gorm:"default:common" json:"rarity"` // common, uncommon, rare, epic, legendary

	// Requirements; nil means the requirement does not apply
	RequiredWPM           *int `json:"required_wpm,omitempty"`
	RequiredAccuracy      *int `json:"required_accuracy,omitempty"`
	RequiredSessions      *int `json:"required_sessions,omitempty"`
	RequiredLessons       *int `json:"required_lessons,omitempty"`
	RequiredChallenges    *int `json:"required_challenges,omitempty"`
	RequiredVoiceSessions *int `json:"required_voice_sessions,omitempty"`

	// Visual
	Icon   string `json:"icon"`
	Color  string `gorm:"default:#FFD700" json:"color"`
	Points int    `gorm:"default:10" json:"points"`

	IsActive    bool `gorm:"default:true" json:"is_active"`
	IsPremium   bool `gorm:"default:false" json:"is_premium"`
	SequenceNum int  `gorm:"default:1" json:"sequence_num"`
}

type UserAchievement struct {
	gorm.Model
	UserID        uint `gorm:"uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uint `gorm:"uniqueIndex:idx_user_achievement" json:"achievement_id"`

	Achievement Achievement `json:"achievement"`

	ProgressPercentage int        `gorm:"default:0" json:"progress_percentage"`
	IsEarned           bool       `gorm:"default:false" json:"is_earned"`
	EarnedAt           *time.Time `json:"earned_at,omitempty"`

	// Context the achievement was earned in
	EarnedInSessionID   *uint `json:"earned_in_session_id,omitempty"`
	EarnedInLessonID    *uint `json:"earned_in_lesson_id,omitempty"`
	EarnedInChallengeID *uint `json:"earned_in_challenge_id,omitempty"`
}

// UserStats is the per-user aggregate row. It is a forward-only
// accumulator: it is only ever folded forward by the progression
// engine, never recomputed from session history.
type UserStats struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex" json:"user_id"`

	// Typing statistics
	TotalSessions        int           `gorm:"default:0" json:"total_sessions"`
	TotalTypingTime      time.Duration `json:"total_typing_time"`
	TotalWordsTyped      int           `gorm:"default:0" json:"total_words_typed"`
	TotalCharactersTyped int           `gorm:"default:0" json:"total_characters_typed"`

	// Performance metrics
	AverageWPM      float64 `gorm:"default:0" json:"average_wpm"`
	BestWPM         float64 `gorm:"default:0" json:"best_wpm"`
	AverageAccuracy float64 `gorm:"default:0" json:"average_accuracy"`
	BestAccuracy    float64 `gorm:"default:0" json:"best_accuracy"`

	// Learning progress
	LessonsCompleted    int `gorm:"default:0" json:"lessons_completed"`
	ChallengesCompleted int `gorm:"default:0" json:"challenges_completed"`
	AchievementsEarned  int `gorm:"default:0" json:"achievements_earned"`
	CurrentStreak       int `gorm:"default:0" json:"current_streak"`
	LongestStreak       int `gorm:"default:0" json:"longest_streak"`

	// Voice typing stats
	VoiceSessions        int     `gorm:"default:0" json:"voice_sessions"`
	AveragePronunciation float64 `gorm:"default:0" json:"average_pronunciation"`
	BestPronunciation    float64 `gorm:"default:0" json:"best_pronunciation"`

	// Points and leveling; total_points (achievement rewards) and
	// experience_points (leveling) are independent counters.
	TotalPoints      int `gorm:"default:0" json:"total_points"`
	CurrentLevel     int `gorm:"default:1" json:"current_level"`
	ExperiencePoints int `gorm:"default:0" json:"experience_points"`

	LastActivity *time.Time `json:"last_activity,omitempty"`
}

// DailyStreak is one row per (user, calendar date) with practice
// activity. Missing dates simply have no row; streak breakage is
// detected lazily on the next session.
type DailyStreak struct {
	gorm.Model
	UserID uint      `gorm:"uniqueIndex:idx_user_date" json:"user_id"`
	Date   time.Time `gorm:"uniqueIndex:idx_user_date" json:"date"`

	SessionsCompleted int           `gorm:"default:0" json:"sessions_completed"`
	TotalTime         time.Duration `json:"total_time"`
	WordsTyped        int           `gorm:"default:0" json:"words_typed"`

	IsStreakDay bool `gorm:"default:true" json:"is_streak_day"`
	StreakCount int  `gorm:"default:0" json:"streak_count"`
}

type AnalyticsEvent struct {
	gorm.Model
	UserID    uint   `gorm:"index:idx_event_user_type" json:"user_id"`
	EventType string `gorm:"index:idx_event_user_type" json:"event_type"` // session_complete, lesson_complete, achievement_earned, voice_session, login, ...

	Data      string `gorm:"type:text" json:"data"` // raw JSON payload
	SessionID string `json:"session_id"`

	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	Referrer  string `json:"referrer"`
}
