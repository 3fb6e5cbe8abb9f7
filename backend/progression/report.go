package progression

import (
	"math"
	"time"

	"gorm.io/gorm"

	"typingtutor/backend/models"
)

// LeaderboardQuery selects what to rank and how much of it.
type LeaderboardQuery struct {
	Metric   string // wpm, accuracy, sessions, points
	Limit    int
	SchoolID *uint // scope to a school when set
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	UserEmail     string  `json:"user_email"`
	UserName      string  `json:"user_name"`
	Score         float64 `json:"score"`
	TotalSessions int     `json:"total_sessions"`
}

const defaultLeaderboardLimit = 10

// Leaderboard ranks users by the requested metric. wpm and accuracy
// rank by the average over completed sessions; sessions and points rank
// by the aggregate row. Ties keep their natural query order.
func Leaderboard(db *gorm.DB, q LeaderboardQuery) ([]LeaderboardEntry, error) {
	if q.Limit <= 0 {
		q.Limit = defaultLeaderboardLimit
	}

	switch q.Metric {
	case "wpm":
		return sessionLeaderboard(db, "AVG(typing_sessions.words_per_minute)", q)
	case "accuracy":
		return sessionLeaderboard(db, "AVG(typing_sessions.accuracy)", q)
	case "sessions":
		return statsLeaderboard(db, "total_sessions", q)
	case "points":
		return statsLeaderboard(db, "total_points", q)
	default:
		return statsLeaderboard(db, "best_wpm", q)
	}
}

type leaderboardRow struct {
	Email         string
	FirstName     string
	LastName      string
	Score         float64
	TotalSessions int
}

func sessionLeaderboard(db *gorm.DB, aggregate string, q LeaderboardQuery) ([]LeaderboardEntry, error) {
	query := db.Table("typing_sessions").
		Select("users.email AS email, users.first_name AS first_name, users.last_name AS last_name, " +
			aggregate + " AS score, COUNT(typing_sessions.id) AS total_sessions").
		Joins("JOIN users ON users.id = typing_sessions.user_id").
		Where("typing_sessions.is_completed = ?", true).
		Where("typing_sessions.deleted_at IS NULL").
		Where("users.deleted_at IS NULL")

	if q.SchoolID != nil {
		query = query.Where("users.school_id = ?", *q.SchoolID)
	}

	var rows []leaderboardRow
	err := query.Group("users.id, users.email, users.first_name, users.last_name").
		Order("score DESC").
		Limit(q.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rankRows(rows, true), nil
}

func statsLeaderboard(db *gorm.DB, column string, q LeaderboardQuery) ([]LeaderboardEntry, error) {
	query := db.Table("user_stats").
		Select("users.email AS email, users.first_name AS first_name, users.last_name AS last_name, " +
			"user_stats." + column + " AS score, user_stats.total_sessions AS total_sessions").
		Joins("JOIN users ON users.id = user_stats.user_id").
		Where("user_stats.deleted_at IS NULL").
		Where("users.deleted_at IS NULL")

	if q.SchoolID != nil {
		query = query.Where("users.school_id = ?", *q.SchoolID)
	}

	var rows []leaderboardRow
	err := query.Order("score DESC").Limit(q.Limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rankRows(rows, false), nil
}

func rankRows(rows []leaderboardRow, roundScore bool) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		score := row.Score
		if roundScore {
			score = round1(score)
		}
		name := row.FirstName + " " + row.LastName
		entries = append(entries, LeaderboardEntry{
			Rank:          i + 1,
			UserEmail:     row.Email,
			UserName:      name,
			Score:         score,
			TotalSessions: row.TotalSessions,
		})
	}
	return entries
}

// DailyActivity is one day of the progress report window, zero-valued
// for days without sessions.
type DailyActivity struct {
	Date        string        `json:"date"`
	Sessions    int           `json:"sessions"`
	TotalTime   time.Duration `json:"total_time"`
	AvgWPM      float64       `json:"avg_wpm"`
	AvgAccuracy float64       `json:"avg_accuracy"`
}

// Report aggregates a user's sessions over a day-count window.
type Report struct {
	PeriodDays      int             `json:"period_days"`
	TotalSessions   int             `json:"total_sessions"`
	TotalTime       time.Duration   `json:"total_time"`
	AverageWPM      float64         `json:"average_wpm"`
	AverageAccuracy float64         `json:"average_accuracy"`
	BestWPM         float64         `json:"best_wpm"`
	BestAccuracy    float64         `json:"best_accuracy"`
	DailyActivity   []DailyActivity `json:"daily_activity"`
	CurrentLevel    int             `json:"current_level"`
	TotalPoints     int             `json:"total_points"`
	CurrentStreak   int             `json:"current_streak"`
}

// ProgressReport builds a per-day breakdown of the last `days` days,
// including zero-filled entries for days without sessions.
func ProgressReport(db *gorm.DB, userID uint, days int) (*Report, error) {
	if days <= 0 {
		days = 30
	}

	// The window covers `days` whole calendar days ending on today, so
	// the totals and the per-day breakdown describe the same sessions.
	end := time.Now().UTC()
	firstDay := truncateToDay(end).AddDate(0, 0, -(days - 1))

	var sessions []models.TypingSession
	err := db.Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, firstDay, end).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	report := &Report{PeriodDays: days}

	type dayBucket struct {
		sessions int
		time     time.Duration
		wpmSum   float64
		accSum   float64
	}
	buckets := make(map[string]*dayBucket)

	var wpmSum, accSum float64
	for _, s := range sessions {
		report.TotalSessions++
		report.TotalTime += s.TimeTaken
		wpmSum += s.WordsPerMinute
		accSum += s.Accuracy
		if s.WordsPerMinute > report.BestWPM {
			report.BestWPM = s.WordsPerMinute
		}
		if s.Accuracy > report.BestAccuracy {
			report.BestAccuracy = s.Accuracy
		}

		key := s.CreatedAt.UTC().Format("2006-01-02")
		bucket := buckets[key]
		if bucket == nil {
			bucket = &dayBucket{}
			buckets[key] = bucket
		}
		bucket.sessions++
		bucket.time += s.TimeTaken
		bucket.wpmSum += s.WordsPerMinute
		bucket.accSum += s.Accuracy
	}

	if report.TotalSessions > 0 {
		report.AverageWPM = round1(wpmSum / float64(report.TotalSessions))
		report.AverageAccuracy = round1(accSum / float64(report.TotalSessions))
	}
	report.BestWPM = round1(report.BestWPM)
	report.BestAccuracy = round1(report.BestAccuracy)

	report.DailyActivity = make([]DailyActivity, 0, days)
	for i := 0; i < days; i++ {
		date := firstDay.AddDate(0, 0, i)
		key := date.Format("2006-01-02")
		activity := DailyActivity{Date: key}
		if bucket := buckets[key]; bucket != nil {
			activity.Sessions = bucket.sessions
			activity.TotalTime = bucket.time
			activity.AvgWPM = round1(bucket.wpmSum / float64(bucket.sessions))
			activity.AvgAccuracy = round1(bucket.accSum / float64(bucket.sessions))
		}
		report.DailyActivity = append(report.DailyActivity, activity)
	}

	var stats models.UserStats
	if err := db.Where("user_id = ?", userID).First(&stats).Error; err == nil {
		report.CurrentLevel = stats.CurrentLevel
		report.TotalPoints = stats.TotalPoints
		report.CurrentStreak = stats.CurrentStreak
	} else {
		report.CurrentLevel = 1
	}

	return report, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
