package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"typingtutor/backend/models"
)

func TestApplySession(t *testing.T) {
	stats := &models.UserStats{}

	ApplySession(stats, Sample{
		WPM:             60,
		Accuracy:        90,
		WordsTyped:      100,
		CharactersTyped: 500,
		ErrorsMade:      5,
		Duration:        2 * time.Minute,
	})

	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 100, stats.TotalWordsTyped)
	assert.Equal(t, 500, stats.TotalCharactersTyped)
	assert.Equal(t, 2*time.Minute, stats.TotalTypingTime)
	// Running averages blend toward the new value
	assert.Equal(t, 30.0, stats.AverageWPM)
	assert.Equal(t, 45.0, stats.AverageAccuracy)
	assert.Equal(t, 60.0, stats.BestWPM)
	assert.Equal(t, 90.0, stats.BestAccuracy)

	ApplySession(stats, Sample{WPM: 80, Accuracy: 95, WordsTyped: 50})

	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 55.0, stats.AverageWPM)
	assert.Equal(t, 70.0, stats.AverageAccuracy)
	assert.Equal(t, 80.0, stats.BestWPM)
	assert.Equal(t, 95.0, stats.BestAccuracy)
}

func TestApplySessionBestsAreMonotone(t *testing.T) {
	stats := &models.UserStats{BestWPM: 90, BestAccuracy: 99}

	ApplySession(stats, Sample{WPM: 40, Accuracy: 80, WordsTyped: 10})

	assert.Equal(t, 90.0, stats.BestWPM)
	assert.Equal(t, 99.0, stats.BestAccuracy)
}

func TestApplySessionNoWordsSkipsAverages(t *testing.T) {
	stats := &models.UserStats{}

	ApplySession(stats, Sample{WPM: 60, Accuracy: 90, WordsTyped: 0})

	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 0.0, stats.AverageWPM)
	assert.Equal(t, 0.0, stats.AverageAccuracy)
}

func TestApplyVoiceSession(t *testing.T) {
	stats := &models.UserStats{}

	score := 0.8
	ApplyVoiceSession(stats, &score)

	assert.Equal(t, 1, stats.VoiceSessions)
	assert.Equal(t, 0.4, stats.AveragePronunciation)
	assert.Equal(t, 0.8, stats.BestPronunciation)

	// Typing aggregates stay untouched
	assert.Equal(t, 0, stats.TotalSessions)
	assert.Equal(t, 0.0, stats.AverageWPM)

	ApplyVoiceSession(stats, nil)
	assert.Equal(t, 2, stats.VoiceSessions)
	assert.Equal(t, 0.4, stats.AveragePronunciation)
}

func TestErrorRate(t *testing.T) {
	assert.Equal(t, 0.0, ErrorRate(5, 0))
	assert.Equal(t, 10.0, ErrorRate(10, 100))
	assert.Equal(t, 2.0, ErrorRate(5, 250))
}
