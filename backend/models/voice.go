package models

import (
	"time"

	"gorm.io/gorm"
)

type VoiceExercise struct {
	gorm.Model
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	Difficulty  string `gorm:"default:beginner" json:"difficulty"`
	Language    string `gorm:"default:en-US" json:"language"`

	TextToSpeak        string `gorm:"type:text" json:"text_to_speak"`
	PronunciationHints string `json:"pronunciation_hints"`

	TargetWPM           int     `gorm:"default:20" json:"target_wpm"`
	TargetAccuracy      int     `gorm:"default:80" json:"target_accuracy"`
	TargetPronunciation float64 `gorm:"default:0.8" json:"target_pronunciation"`
	TimeLimitMinutes    int     `gorm:"default:5" json:"time_limit_minutes"`

	IsActive    bool  `gorm:"default:true" json:"is_active"`
	IsPremium   bool  `gorm:"default:true" json:"is_premium"`
	SequenceNum int   `gorm:"default:1" json:"sequence_num"`
	SchoolID    *uint `json:"school_id,omitempty"`
	CreatedByID uint  `json:"created_by_id"`
}

type VoiceSession struct {
	gorm.Model
	UserID     uint   `gorm:"index" json:"user_id"`
	ExerciseID *uint  `json:"exercise_id,omitempty"`
	Language   string `gorm:"default:en-US" json:"language"`

	// Voice input
	Transcript      string  `gorm:"type:text" json:"transcript"`
	ConfidenceScore float64 `json:"confidence_score"` // speech recognition confidence, 0-1

	// Performance metrics
	WordsSpoken        int      `json:"words_spoken"`
	WordsPerMinute     float64  `json:"words_per_minute"`
	Accuracy           float64  `json:"accuracy"`
	PronunciationScore *float64 `json:"pronunciation_score,omitempty"`

	// Session details
	Duration    time.Duration `json:"duration"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
}

// IsHighConfidence reports whether recognition confidence was high.
func (s *VoiceSession) IsHighConfidence() bool {
	return s.ConfidenceScore >= 0.8
}

// PronunciationRating maps the pronunciation score to a display rating.
func (s *VoiceSession) PronunciationRating() string {
	if s.PronunciationScore == nil {
		return "N/A"
	}
	switch score := *s.PronunciationScore; {
	case score >= 0.9:
		return "Excellent"
	case score >= 0.8:
		return "Good"
	case score >= 0.7:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

type VoiceProgress struct {
	gorm.Model
	UserID     uint `gorm:"uniqueIndex:idx_user_voice_exercise" json:"user_id"`
	ExerciseID uint `gorm:"uniqueIndex:idx_user_voice_exercise" json:"exercise_id"`

	Attempts          int           `gorm:"default:0" json:"attempts"`
	BestWPM           float64       `gorm:"default:0" json:"best_wpm"`
	BestAccuracy      float64       `gorm:"default:0" json:"best_accuracy"`
	BestPronunciation float64       `gorm:"default:0" json:"best_pronunciation"`
	TotalTime         time.Duration `json:"total_time"`

	IsCompleted  bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	MasteryLevel string     `gorm:"default:not_started" json:"mastery_level"`
}

// Apply records one attempt and marks the exercise completed once all
// exercise targets are met.
func (p *VoiceProgress) Apply(exercise *VoiceExercise, wpm, accuracy, pronunciation float64, duration time.Duration) {
	p.Attempts++
	p.TotalTime += duration

	if wpm > p.BestWPM {
		p.BestWPM = wpm
	}
	if accuracy > p.BestAccuracy {
		p.BestAccuracy = accuracy
	}
	if pronunciation > p.BestPronunciation {
		p.BestPronunciation = pronunciation
	}

	if wpm >= float64(exercise.TargetWPM) &&
		accuracy >= float64(exercise.TargetAccuracy) &&
		pronunciation >= exercise.TargetPronunciation {
		if !p.IsCompleted {
			now := time.Now()
			p.IsCompleted = true
			p.CompletedAt = &now
		}
		p.MasteryLevel = "mastered"
	}
}

type VoiceSettings struct {
	gorm.Model
	UserID uint `gorm:"uniqueIndex" json:"user_id"`

	PreferredLanguage string  `gorm:"default:en-US" json:"preferred_language"`
	VoiceSpeed        float64 `gorm:"default:1.0" json:"voice_speed"` // 0.5-2.0
	VoicePitch        float64 `gorm:"default:1.0" json:"voice_pitch"` // 0.5-2.0

	AutoPunctuation     bool    `gorm:"default:true" json:"auto_punctuation"`
	ProfanityFilter     bool    `gorm:"default:true" json:"profanity_filter"`
	ConfidenceThreshold float64 `gorm:"default:0.7" json:"confidence_threshold"`

	ShowConfidenceScores bool `gorm:"default:true" json:"show_confidence_scores"`
	AudioFeedback        bool `gorm:"default:true" json:"audio_feedback"`
	PracticeMode         bool `gorm:"default:true" json:"practice_mode"`
}
