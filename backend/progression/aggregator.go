package progression

import (
	"time"

	"typingtutor/backend/models"
)

// Sample is the slice of a completed session the aggregator consumes.
type Sample struct {
	WPM             float64
	Accuracy        float64
	WordsTyped      int
	CharactersTyped int
	ErrorsMade      int
	Duration        time.Duration
}

// ApplySession folds one completed typing session into the user's
// running aggregates. The running averages use the historical
// (avg + new) / 2 blend; changing it to a true mean would alter the
// meaning of every stored value, so it is kept as-is.
func ApplySession(stats *models.UserStats, s Sample) {
	stats.TotalSessions++
	stats.TotalWordsTyped += s.WordsTyped
	stats.TotalCharactersTyped += s.CharactersTyped
	stats.TotalTypingTime += s.Duration

	if stats.TotalWordsTyped > 0 {
		stats.AverageWPM = (stats.AverageWPM + s.WPM) / 2
		stats.AverageAccuracy = (stats.AverageAccuracy + s.Accuracy) / 2
	}

	if s.WPM > stats.BestWPM {
		stats.BestWPM = s.WPM
	}
	if s.Accuracy > stats.BestAccuracy {
		stats.BestAccuracy = s.Accuracy
	}
}

// ApplyVoiceSession folds one voice session into the voice aggregates.
// Typing averages and bests are untouched.
func ApplyVoiceSession(stats *models.UserStats, pronunciation *float64) {
	stats.VoiceSessions++

	if pronunciation != nil {
		stats.AveragePronunciation = (stats.AveragePronunciation + *pronunciation) / 2
		if *pronunciation > stats.BestPronunciation {
			stats.BestPronunciation = *pronunciation
		}
	}
}

// ErrorRate returns the error percentage for a session, 0 when no
// characters were typed.
func ErrorRate(errorsMade, charactersTyped int) float64 {
	if charactersTyped == 0 {
		return 0
	}
	return float64(errorsMade) / float64(charactersTyped) * 100
}

// DurationMinutes converts a session duration to minutes.
func DurationMinutes(d time.Duration) float64 {
	return d.Seconds() / 60
}
