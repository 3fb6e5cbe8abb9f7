package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"typingtutor/backend/config"
	"typingtutor/backend/models"
	"typingtutor/backend/progression"
	"typingtutor/backend/utils"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

// GetProfile godoc
// @Summary Get user profile
// @Tags user
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	var profile models.UserProfile
	uc.DB.Where(models.UserProfile{UserID: userID}).FirstOrCreate(&profile)

	return c.JSON(fiber.Map{
		"user":    user,
		"profile": profile,
	})
}

type UpdateProfileInput struct {
	FirstName          *string  `json:"first_name"`
	LastName           *string  `json:"last_name"`
	Bio                *string  `json:"bio"`
	PreferredTheme     *string  `json:"preferred_theme"`
	FontSize           *int     `json:"font_size" validate:"omitempty,gte=8,lte=40"`
	ShowErrors         *bool    `json:"show_errors"`
	SoundEnabled       *bool    `json:"sound_enabled"`
	DifficultyLevel    *string  `json:"difficulty_level"`
	PracticeGoalDaily  *int     `json:"practice_goal_daily" validate:"omitempty,gte=0"`
	PracticeGoalWeekly *int     `json:"practice_goal_weekly" validate:"omitempty,gte=0"`
	VoiceTypingEnabled *bool    `json:"voice_typing_enabled"`
	PreferredLanguage  *string  `json:"preferred_language"`
	VoiceSpeed         *float64 `json:"voice_speed" validate:"omitempty,gte=0.5,lte=2"`
}

// UpdateProfile godoc
// @Summary Update user profile and preferences
// @Tags user
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if details := utils.ValidateStruct(input); details != nil {
		return utils.ValidationError(c, details)
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.PreferredTheme != nil {
		user.PreferredTheme = *input.PreferredTheme
	}
	if input.FontSize != nil {
		user.FontSize = *input.FontSize
	}
	if input.ShowErrors != nil {
		user.ShowErrors = *input.ShowErrors
	}
	if input.SoundEnabled != nil {
		user.SoundEnabled = *input.SoundEnabled
	}
	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	var profile models.UserProfile
	uc.DB.Where(models.UserProfile{UserID: userID}).FirstOrCreate(&profile)
	if input.DifficultyLevel != nil {
		profile.DifficultyLevel = *input.DifficultyLevel
	}
	if input.PracticeGoalDaily != nil {
		profile.PracticeGoalDaily = *input.PracticeGoalDaily
	}
	if input.PracticeGoalWeekly != nil {
		profile.PracticeGoalWeekly = *input.PracticeGoalWeekly
	}
	if input.VoiceTypingEnabled != nil {
		profile.VoiceTypingEnabled = *input.VoiceTypingEnabled
	}
	if input.PreferredLanguage != nil {
		profile.PreferredLanguage = *input.PreferredLanguage
	}
	if input.VoiceSpeed != nil {
		profile.VoiceSpeed = *input.VoiceSpeed
	}
	if err := uc.DB.Save(&profile).Error; err != nil {
		return utils.InternalServerError(c, "Could not update profile")
	}

	return c.JSON(fiber.Map{
		"user":    user,
		"profile": profile,
	})
}

// GetAccountDashboard returns the headline stats for the account page.
func (uc *UserController) GetAccountDashboard(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var stats models.UserStats
	uc.DB.Where(models.UserStats{UserID: userID}).
		Attrs(models.UserStats{CurrentLevel: 1}).
		FirstOrCreate(&stats)

	return c.JSON(fiber.Map{
		"total_sessions":   stats.TotalSessions,
		"average_wpm":      stats.AverageWPM,
		"best_wpm":         stats.BestWPM,
		"average_accuracy": stats.AverageAccuracy,
		"best_accuracy":    stats.BestAccuracy,
		"current_level":    stats.CurrentLevel,
		"current_streak":   stats.CurrentStreak,
		"longest_streak":   stats.LongestStreak,
		"total_points":     stats.TotalPoints,
		"typing_level":     progression.TypingLevel(stats.BestWPM, stats.BestAccuracy),
	})
}
