package controllers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"typingtutor/backend/config"
	"typingtutor/backend/models"
	"typingtutor/backend/progression"
	"typingtutor/backend/utils"
)

type AnalyticsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAnalyticsController(db *gorm.DB, cfg *config.Config) *AnalyticsController {
	return &AnalyticsController{DB: db, Cfg: cfg}
}

// GetAchievements godoc
// @Summary List the achievement catalog
// @Description Lists active achievements, filterable by type and rarity
// @Tags analytics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /analytics/achievements [get]
func (an *AnalyticsController) GetAchievements(c *fiber.Ctx) error {
	query := an.DB.Where("is_active = ?", true)
	if achievementType := c.Query("type"); achievementType != "" {
		query = query.Where("achievement_type = ?", achievementType)
	}
	if rarity := c.Query("rarity"); rarity != "" {
		query = query.Where("rarity = ?", rarity)
	}

	var achievements []models.Achievement
	if err := query.Order("rarity, sequence_num").Find(&achievements).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch achievements")
	}

	return c.JSON(fiber.Map{"achievements": achievements})
}

// GetUserAchievements returns the user's achievement records, earned
// ones first.
func (an *AnalyticsController) GetUserAchievements(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var records []models.UserAchievement
	if err := an.DB.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("is_earned DESC, progress_percentage DESC").
		Find(&records).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch achievements")
	}

	earned := 0
	for _, r := range records {
		if r.IsEarned {
			earned++
		}
	}

	return c.JSON(fiber.Map{
		"achievements": records,
		"earned_count": earned,
		"total_count":  len(records),
	})
}

// GetUserStats godoc
// @Summary Get the user's aggregate statistics
// @Tags analytics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /analytics/stats [get]
func (an *AnalyticsController) GetUserStats(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var stats models.UserStats
	if err := an.DB.Where(models.UserStats{UserID: userID}).
		Attrs(models.UserStats{CurrentLevel: 1}).
		FirstOrCreate(&stats).Error; err != nil {
		return utils.InternalServerError(c, "Could not load stats")
	}

	return c.JSON(fiber.Map{
		"stats":        stats,
		"typing_level": progression.TypingLevel(stats.BestWPM, stats.BestAccuracy),
	})
}

// GetDashboard returns the analytics overview: aggregates, recent
// achievements, streak days and weekly session count.
func (an *AnalyticsController) GetDashboard(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var stats models.UserStats
	an.DB.Where(models.UserStats{UserID: userID}).
		Attrs(models.UserStats{CurrentLevel: 1}).
		FirstOrCreate(&stats)

	var recentAchievements []models.UserAchievement
	an.DB.Preload("Achievement").
		Where("user_id = ? AND is_earned = ?", userID, true).
		Order("earned_at DESC").Limit(5).
		Find(&recentAchievements)

	var recentStreaks []models.DailyStreak
	an.DB.Where("user_id = ?", userID).Order("date DESC").Limit(7).Find(&recentStreaks)

	weekAgo := time.Now().AddDate(0, 0, -7)
	var weeklySessions int64
	an.DB.Model(&models.TypingSession{}).
		Where("user_id = ? AND created_at >= ?", userID, weekAgo).
		Count(&weeklySessions)

	var recentEvents []models.AnalyticsEvent
	an.DB.Where("user_id = ?", userID).Order("created_at DESC").Limit(10).Find(&recentEvents)

	return c.JSON(fiber.Map{
		"stats":               stats,
		"typing_level":        progression.TypingLevel(stats.BestWPM, stats.BestAccuracy),
		"recent_achievements": recentAchievements,
		"recent_streaks":      recentStreaks,
		"weekly_sessions":     weeklySessions,
		"recent_events":       recentEvents,
	})
}

type TrackEventInput struct {
	EventType string                 `json:"event_type" validate:"required"`
	Data      map[string]interface{} `json:"data"`
	SessionID string                 `json:"session_id"`
}

// TrackEvent godoc
// @Summary Record a client analytics event
// @Tags analytics
// @Accept json
// @Produce json
// @Param event body TrackEventInput true "Event payload"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /analytics/events [post]
func (an *AnalyticsController) TrackEvent(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input TrackEventInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if details := utils.ValidateStruct(input); details != nil {
		return utils.ValidationError(c, details)
	}

	payload := "{}"
	if input.Data != nil {
		raw, err := json.Marshal(input.Data)
		if err != nil {
			return utils.BadRequest(c, "Invalid event data")
		}
		payload = string(raw)
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	event := models.AnalyticsEvent{
		UserID:    userID,
		EventType: input.EventType,
		Data:      payload,
		SessionID: sessionID,
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
		Referrer:  c.Get("Referer"),
	}
	if err := an.DB.Create(&event).Error; err != nil {
		return utils.InternalServerError(c, "Could not record event")
	}

	return utils.Created(c, "Event recorded", fiber.Map{"event_id": event.ID})
}

// GetLeaderboard godoc
// @Summary Get the leaderboard
// @Description Ranks users globally or within the caller's school
// @Tags analytics
// @Produce json
// @Param type query string false "global or school" default(global)
// @Param metric query string false "wpm, accuracy, sessions or points" default(wpm)
// @Param limit query int false "Number of entries" default(10)
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /analytics/leaderboard [get]
func (an *AnalyticsController) GetLeaderboard(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	query := progression.LeaderboardQuery{
		Metric: c.Query("metric", "wpm"),
		Limit:  c.QueryInt("limit", 10),
	}

	scope := c.Query("type", "global")
	if scope == "school" {
		var user models.User
		if err := an.DB.First(&user, userID).Error; err != nil {
			return utils.NotFound(c, "User not found")
		}
		if user.SchoolID == nil {
			return utils.BadRequest(c, "User is not associated with a school")
		}
		query.SchoolID = user.SchoolID
	}

	entries, err := progression.Leaderboard(an.DB, query)
	if err != nil {
		return utils.InternalServerError(c, "Could not build leaderboard")
	}

	return c.JSON(fiber.Map{
		"type":        scope,
		"metric":      query.Metric,
		"leaderboard": entries,
	})
}

// GetProgressReport godoc
// @Summary Get a per-day progress report
// @Tags analytics
// @Produce json
// @Param days query int false "Window size in days" default(30)
// @Success 200 {object} progression.Report
// @Security ApiKeyAuth
// @Router /analytics/report [get]
func (an *AnalyticsController) GetProgressReport(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	days := c.QueryInt("days", 30)
	report, err := progression.ProgressReport(an.DB, userID, days)
	if err != nil {
		return utils.InternalServerError(c, "Could not build report")
	}

	return c.JSON(report)
}
