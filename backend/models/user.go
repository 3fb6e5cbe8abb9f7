package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null" json:"username"`
	Email        string `gorm:"unique;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	UserType     string `gorm:"default:individual" json:"user_type"` // student, teacher, admin, individual
	Bio          string `gorm:"size:500" json:"bio"`

	IsPremium        bool       `gorm:"default:false" json:"is_premium"`
	PremiumExpiresAt *time.Time `json:"premium_expires_at,omitempty"`

	// Typing preferences
	PreferredTheme string `gorm:"default:default" json:"preferred_theme"`
	FontSize       int    `gorm:"default:16" json:"font_size"`
	ShowErrors     bool   `gorm:"default:true" json:"show_errors"`
	SoundEnabled   bool   `gorm:"default:true" json:"sound_enabled"`

	// School association
	SchoolID *uint `json:"school_id,omitempty"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsPremiumActive reports whether the premium subscription is still valid.
func (u *User) IsPremiumActive() bool {
	if !u.IsPremium {
		return false
	}
	if u.PremiumExpiresAt != nil && u.PremiumExpiresAt.Before(time.Now()) {
		return false
	}
	return true
}

type UserProfile struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex" json:"user_id"`

	// Typing statistics (mirror of UserStats, kept for the profile page)
	TotalTypingTime time.Duration `json:"total_typing_time"`
	TotalWordsTyped int           `gorm:"default:0" json:"total_words_typed"`
	AverageWPM      float64       `gorm:"default:0" json:"average_wpm"`
	BestWPM         float64       `gorm:"default:0" json:"best_wpm"`
	AverageAccuracy float64       `gorm:"default:0" json:"average_accuracy"`
	BestAccuracy    float64       `gorm:"default:0" json:"best_accuracy"`

	// Learning progress
	CurrentLevel      string `gorm:"default:beginner" json:"current_level"`
	LessonsCompleted  int    `gorm:"default:0" json:"lessons_completed"`
	AchievementsCount int    `gorm:"default:0" json:"achievements_count"`

	// Preferences
	DifficultyLevel     string `gorm:"default:medium" json:"difficulty_level"`
	PracticeGoalDaily   int    `gorm:"default:30" json:"practice_goal_daily"`   // minutes
	PracticeGoalWeekly  int    `gorm:"default:180" json:"practice_goal_weekly"` // minutes

	// Voice typing preferences
	VoiceTypingEnabled bool    `gorm:"default:false" json:"voice_typing_enabled"`
	PreferredLanguage  string  `gorm:"default:en-US" json:"preferred_language"`
	VoiceSpeed         float64 `gorm:"default:1.0" json:"voice_speed"`
}

type LoginHistory struct {
	gorm.Model
	UserID    uint      `json:"user_id"`
	LoginTime time.Time `json:"login_time"`
}
