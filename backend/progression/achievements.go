package progression

import (
	"time"

	"gorm.io/gorm"

	"typingtutor/backend/models"
)

// EarnContext references what triggered an unlock.
type EarnContext struct {
	SessionID   *uint
	LessonID    *uint
	ChallengeID *uint
}

// EvaluateAchievements checks every active achievement the user has not
// yet earned against the current aggregates. An achievement unlocks when
// all of its defined requirements are met; undefined requirements are
// vacuously satisfied. Earned achievements are never re-evaluated.
// Unlocking awards the achievement's points into stats.TotalPoints.
func EvaluateAchievements(db *gorm.DB, stats *models.UserStats, ctx EarnContext) ([]models.Achievement, error) {
	var catalog []models.Achievement
	if err := db.Where("is_active = ?", true).Order("rarity, sequence_num").Find(&catalog).Error; err != nil {
		return nil, err
	}

	var existing []models.UserAchievement
	if err := db.Where("user_id = ?", stats.UserID).Find(&existing).Error; err != nil {
		return nil, err
	}
	byAchievement := make(map[uint]*models.UserAchievement, len(existing))
	for i := range existing {
		byAchievement[existing[i].AchievementID] = &existing[i]
	}

	var unlocked []models.Achievement
	for _, achievement := range catalog {
		record := byAchievement[achievement.ID]
		if record != nil && record.IsEarned {
			continue
		}

		progress, satisfied := achievementProgress(&achievement, stats)

		if record == nil {
			record = &models.UserAchievement{
				UserID:        stats.UserID,
				AchievementID: achievement.ID,
			}
		}
		record.ProgressPercentage = progress

		if satisfied {
			now := time.Now()
			record.IsEarned = true
			record.EarnedAt = &now
			record.ProgressPercentage = 100
			record.EarnedInSessionID = ctx.SessionID
			record.EarnedInLessonID = ctx.LessonID
			record.EarnedInChallengeID = ctx.ChallengeID

			stats.TotalPoints += achievement.Points
			stats.AchievementsEarned++
			unlocked = append(unlocked, achievement)
		}

		if err := db.Save(record).Error; err != nil {
			return nil, err
		}
	}

	return unlocked, nil
}

// achievementProgress computes the progress percentage (minimum ratio
// across defined requirements, capped at 100) and whether every defined
// requirement is met.
func achievementProgress(a *models.Achievement, stats *models.UserStats) (int, bool) {
	type requirement struct {
		required *int
		current  float64
	}

	requirements := []requirement{
		{a.RequiredWPM, stats.BestWPM},
		{a.RequiredAccuracy, stats.BestAccuracy},
		{a.RequiredSessions, float64(stats.TotalSessions)},
		{a.RequiredLessons, float64(stats.LessonsCompleted)},
		{a.RequiredChallenges, float64(stats.ChallengesCompleted)},
		{a.RequiredVoiceSessions, float64(stats.VoiceSessions)},
	}

	progress := 100.0
	satisfied := true
	defined := false

	for _, r := range requirements {
		if r.required == nil {
			continue
		}
		defined = true

		if r.current < float64(*r.required) {
			satisfied = false
		}

		ratio := 100.0
		if *r.required > 0 {
			ratio = r.current / float64(*r.required) * 100
			if ratio > 100 {
				ratio = 100
			}
		}
		if ratio < progress {
			progress = ratio
		}
	}

	// An achievement with no requirements defined never auto-unlocks.
	if !defined {
		return 0, false
	}

	return int(progress), satisfied
}
