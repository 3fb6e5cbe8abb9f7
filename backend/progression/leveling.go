package progression

import "typingtutor/backend/models"

// CalculateLevel converts an experience point total into a level.
// Clearing level N costs N * 1000 XP, so 0 XP is level 1, 1000 XP is
// level 2 and 3000 XP is level 3.
func CalculateLevel(xp int) int {
	level := 1
	for xp >= level*1000 {
		xp -= level * 1000
		level++
	}
	return level
}

// AddExperience adds points to the running XP total, recomputes the
// level and reports whether a level-up occurred.
func AddExperience(stats *models.UserStats, points int) bool {
	stats.ExperiencePoints += points
	newLevel := CalculateLevel(stats.ExperiencePoints)

	if newLevel > stats.CurrentLevel {
		stats.CurrentLevel = newLevel
		return true
	}

	return false
}

// TypingLevel classifies best performance into a qualitative tier.
// This is independent of the numeric XP level and is always recomputed
// on demand.
func TypingLevel(bestWPM, bestAccuracy float64) string {
	switch {
	case bestWPM >= 60 && bestAccuracy >= 95:
		return "expert"
	case bestWPM >= 40 && bestAccuracy >= 90:
		return "advanced"
	case bestWPM >= 25 && bestAccuracy >= 85:
		return "intermediate"
	default:
		return "beginner"
	}
}
