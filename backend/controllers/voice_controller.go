package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"typingtutor/backend/config"
	"typingtutor/backend/models"
	"typingtutor/backend/progression"
	"typingtutor/backend/utils"
)

type VoiceController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Engine *progression.Engine
}

func NewVoiceController(db *gorm.DB, cfg *config.Config) *VoiceController {
	return &VoiceController{DB: db, Cfg: cfg, Engine: progression.NewEngine(db)}
}

// GetExercises godoc
// @Summary List voice typing exercises
// @Description Lists active exercises, filterable by difficulty and language
// @Tags voice
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /voice/exercises [get]
func (vc *VoiceController) GetExercises(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var user models.User
	if err := vc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	query := vc.DB.Where("is_active = ?", true)
	if difficulty := c.Query("difficulty"); difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}
	if language := c.Query("language"); language != "" {
		query = query.Where("language = ?", language)
	}
	if !user.IsPremiumActive() {
		query = query.Where("is_premium = ?", false)
	}

	var exercises []models.VoiceExercise
	if err := query.Order("difficulty, sequence_num").Find(&exercises).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch exercises")
	}

	return c.JSON(fiber.Map{"exercises": exercises})
}

type SubmitVoiceSessionInput struct {
	ExerciseID         *uint    `json:"exercise_id"`
	Language           string   `json:"language"`
	Transcript         string   `json:"transcript"`
	ConfidenceScore    float64  `json:"confidence_score" validate:"gte=0,lte=1"`
	WordsSpoken        int      `json:"words_spoken" validate:"gte=0"`
	WordsPerMinute     float64  `json:"words_per_minute" validate:"gte=0"`
	Accuracy           float64  `json:"accuracy" validate:"gte=0,lte=100"`
	PronunciationScore *float64 `json:"pronunciation_score" validate:"omitempty,gte=0,lte=1"`
	DurationSeconds    float64  `json:"duration_seconds" validate:"required,gt=0"`
}

// SubmitSession godoc
// @Summary Submit a completed voice typing session
// @Description Records the session and updates voice aggregates and exercise progress
// @Tags voice
// @Accept json
// @Produce json
// @Param session body SubmitVoiceSessionInput true "Completed voice session"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /voice/sessions [post]
func (vc *VoiceController) SubmitSession(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input SubmitVoiceSessionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if details := utils.ValidateStruct(input); details != nil {
		return utils.ValidationError(c, details)
	}

	language := input.Language
	if language == "" {
		language = "en-US"
	}

	duration := time.Duration(input.DurationSeconds * float64(time.Second))
	now := time.Now()
	session := models.VoiceSession{
		ExerciseID:         input.ExerciseID,
		Language:           language,
		Transcript:         input.Transcript,
		ConfidenceScore:    input.ConfidenceScore,
		WordsSpoken:        input.WordsSpoken,
		WordsPerMinute:     input.WordsPerMinute,
		Accuracy:           input.Accuracy,
		PronunciationScore: input.PronunciationScore,
		Duration:           duration,
		StartedAt:          now.Add(-duration),
		CompletedAt:        now,
	}

	outcome, err := vc.Engine.RecordVoiceSession(userID, &session)
	if err != nil {
		return utils.InternalServerError(c, "Could not record voice session")
	}

	for _, sideErr := range outcome.SideEffectErrors {
		LogSideEffect(c, sideErr)
	}

	return utils.Created(c, "Voice session submitted successfully", fiber.Map{
		"session":              session,
		"pronunciation_rating": session.PronunciationRating(),
		"outcome":              outcome,
	})
}

// GetProgress lists the user's per-exercise voice progress.
func (vc *VoiceController) GetProgress(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var progress []models.VoiceProgress
	if err := vc.DB.Where("user_id = ?", userID).Find(&progress).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch voice progress")
	}

	return c.JSON(fiber.Map{"progress": progress})
}

// GetDashboard returns recent voice sessions and voice aggregates.
func (vc *VoiceController) GetDashboard(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var recentSessions []models.VoiceSession
	vc.DB.Where("user_id = ?", userID).Order("created_at DESC").Limit(5).Find(&recentSessions)

	var progress []models.VoiceProgress
	vc.DB.Where("user_id = ?", userID).Limit(5).Find(&progress)

	voiceStats := fiber.Map{
		"voice_sessions":        0,
		"average_pronunciation": 0.0,
		"best_pronunciation":    0.0,
	}
	var stats models.UserStats
	if err := vc.DB.Where("user_id = ?", userID).First(&stats).Error; err == nil {
		voiceStats = fiber.Map{
			"voice_sessions":        stats.VoiceSessions,
			"average_pronunciation": stats.AveragePronunciation,
			"best_pronunciation":    stats.BestPronunciation,
		}
	}

	return c.JSON(fiber.Map{
		"recent_sessions": recentSessions,
		"progress":        progress,
		"voice_stats":     voiceStats,
	})
}

// GetSettings returns the user's voice settings, creating defaults on
// first access.
func (vc *VoiceController) GetSettings(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var settings models.VoiceSettings
	if err := vc.DB.Where(models.VoiceSettings{UserID: userID}).
		Attrs(models.VoiceSettings{
			PreferredLanguage:   "en-US",
			VoiceSpeed:          1.0,
			VoicePitch:          1.0,
			ConfidenceThreshold: 0.7,
		}).
		FirstOrCreate(&settings).Error; err != nil {
		return utils.InternalServerError(c, "Could not load settings")
	}

	return c.JSON(fiber.Map{"settings": settings})
}

type UpdateVoiceSettingsInput struct {
	PreferredLanguage    *string  `json:"preferred_language"`
	VoiceSpeed           *float64 `json:"voice_speed" validate:"omitempty,gte=0.5,lte=2"`
	VoicePitch           *float64 `json:"voice_pitch" validate:"omitempty,gte=0.5,lte=2"`
	AutoPunctuation      *bool    `json:"auto_punctuation"`
	ProfanityFilter      *bool    `json:"profanity_filter"`
	ConfidenceThreshold  *float64 `json:"confidence_threshold" validate:"omitempty,gte=0,lte=1"`
	ShowConfidenceScores *bool    `json:"show_confidence_scores"`
	AudioFeedback        *bool    `json:"audio_feedback"`
	PracticeMode         *bool    `json:"practice_mode"`
}

// UpdateSettings updates the user's voice settings.
func (vc *VoiceController) UpdateSettings(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input UpdateVoiceSettingsInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if details := utils.ValidateStruct(input); details != nil {
		return utils.ValidationError(c, details)
	}

	var settings models.VoiceSettings
	if err := vc.DB.Where(models.VoiceSettings{UserID: userID}).FirstOrCreate(&settings).Error; err != nil {
		return utils.InternalServerError(c, "Could not load settings")
	}

	if input.PreferredLanguage != nil {
		settings.PreferredLanguage = *input.PreferredLanguage
	}
	if input.VoiceSpeed != nil {
		settings.VoiceSpeed = *input.VoiceSpeed
	}
	if input.VoicePitch != nil {
		settings.VoicePitch = *input.VoicePitch
	}
	if input.AutoPunctuation != nil {
		settings.AutoPunctuation = *input.AutoPunctuation
	}
	if input.ProfanityFilter != nil {
		settings.ProfanityFilter = *input.ProfanityFilter
	}
	if input.ConfidenceThreshold != nil {
		settings.ConfidenceThreshold = *input.ConfidenceThreshold
	}
	if input.ShowConfidenceScores != nil {
		settings.ShowConfidenceScores = *input.ShowConfidenceScores
	}
	if input.AudioFeedback != nil {
		settings.AudioFeedback = *input.AudioFeedback
	}
	if input.PracticeMode != nil {
		settings.PracticeMode = *input.PracticeMode
	}

	if err := vc.DB.Save(&settings).Error; err != nil {
		return utils.InternalServerError(c, "Could not save settings")
	}

	return c.JSON(fiber.Map{"settings": settings})
}
