package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"typingtutor/backend/config"
	"typingtutor/backend/models"
	"typingtutor/backend/progression"
	"typingtutor/backend/utils"
)

type TypingController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Engine *progression.Engine
}

func NewTypingController(db *gorm.DB, cfg *config.Config) *TypingController {
	return &TypingController{DB: db, Cfg: cfg, Engine: progression.NewEngine(db)}
}

// GetTexts godoc
// @Summary List typing texts
// @Description Lists active texts, filterable by difficulty and category; premium texts require an active subscription
// @Tags typing
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /typing/texts [get]
func (tc *TypingController) GetTexts(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var user models.User
	if err := tc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	query := tc.DB.Where("is_active = ?", true)

	if difficulty := c.Query("difficulty"); difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	// School content is visible only to that school's members
	if user.SchoolID != nil {
		query = query.Where("school_id = ? OR school_id IS NULL", *user.SchoolID)
	} else {
		query = query.Where("school_id IS NULL")
	}

	if !user.IsPremiumActive() {
		query = query.Where("is_premium = ?", false)
	}

	var texts []models.TypingText
	if err := query.Order("difficulty, title").Find(&texts).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch texts")
	}

	return c.JSON(fiber.Map{"texts": texts})
}

func (tc *TypingController) GetTextDetails(c *fiber.Ctx) error {
	textID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid text ID")
	}

	var text models.TypingText
	if err := tc.DB.Where("is_active = ?", true).First(&text, textID).Error; err != nil {
		return utils.NotFound(c, "Text not found")
	}

	return c.JSON(fiber.Map{"text": text})
}

// GetSessions lists the user's sessions, newest first.
func (tc *TypingController) GetSessions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	query := tc.DB.Where("user_id = ?", userID)
	if sessionType := c.Query("session_type"); sessionType != "" {
		query = query.Where("session_type = ?", sessionType)
	}

	var sessions []models.TypingSession
	if err := query.Order("created_at DESC").Limit(50).Find(&sessions).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch sessions")
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}

type SubmitSessionInput struct {
	TypingTextID     uint    `json:"typing_text_id" validate:"required"`
	SessionType      string  `json:"session_type" validate:"omitempty,oneof=lesson practice test challenge voice"`
	WordsPerMinute   float64 `json:"words_per_minute" validate:"gte=0"`
	Accuracy         float64 `json:"accuracy" validate:"gte=0,lte=100"`
	WordsTyped       int     `json:"words_typed" validate:"gte=0"`
	CharactersTyped  int     `json:"characters_typed" validate:"gte=0"`
	ErrorsMade       int     `json:"errors_made" validate:"gte=0"`
	CorrectChars     int     `json:"correct_characters" validate:"gte=0"`
	IncorrectChars   int     `json:"incorrect_characters" validate:"gte=0"`
	BackspacesUsed   int     `json:"backspaces_used" validate:"gte=0"`
	TimeTakenSeconds float64 `json:"time_taken_seconds" validate:"required,gt=0"`
}

// SubmitSession godoc
// @Summary Submit a completed typing session
// @Description Records the session and updates aggregates, streak, experience and achievements
// @Tags typing
// @Accept json
// @Produce json
// @Param session body SubmitSessionInput true "Completed session"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /typing/sessions [post]
func (tc *TypingController) SubmitSession(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input SubmitSessionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if details := utils.ValidateStruct(input); details != nil {
		return utils.ValidationError(c, details)
	}

	var text models.TypingText
	if err := tc.DB.First(&text, input.TypingTextID).Error; err != nil {
		return utils.NotFound(c, "Typing text not found")
	}

	sessionType := input.SessionType
	if sessionType == "" {
		sessionType = "practice"
	}

	timeTaken := time.Duration(input.TimeTakenSeconds * float64(time.Second))
	now := time.Now()
	session := models.TypingSession{
		TypingTextID:        text.ID,
		SessionType:         sessionType,
		WordsPerMinute:      input.WordsPerMinute,
		Accuracy:            input.Accuracy,
		WordsTyped:          input.WordsTyped,
		CharactersTyped:     input.CharactersTyped,
		ErrorsMade:          input.ErrorsMade,
		TimeTaken:           timeTaken,
		CorrectCharacters:   input.CorrectChars,
		IncorrectCharacters: input.IncorrectChars,
		BackspacesUsed:      input.BackspacesUsed,
		StartedAt:           now.Add(-timeTaken),
		CompletedAt:         now,
		IsCompleted:         true,
	}

	outcome, err := tc.Engine.RecordSession(userID, &session)
	if err != nil {
		return utils.InternalServerError(c, "Could not record session")
	}

	// Secondary propagation failures do not fail the submission
	for _, sideErr := range outcome.SideEffectErrors {
		LogSideEffect(c, sideErr)
	}

	return utils.Created(c, "Session submitted successfully", fiber.Map{
		"session":    session,
		"error_rate": session.ErrorRate(),
		"outcome":    outcome,
	})
}

// GetTypingDashboard godoc
// @Summary Typing dashboard
// @Description Recent sessions plus headline stats
// @Tags typing
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /typing/dashboard [get]
func (tc *TypingController) GetTypingDashboard(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var recentSessions []models.TypingSession
	tc.DB.Where("user_id = ?", userID).Order("created_at DESC").Limit(5).Find(&recentSessions)

	var stats models.UserStats
	err := tc.DB.Where("user_id = ?", userID).First(&stats).Error
	if err != nil {
		stats = models.UserStats{CurrentLevel: 1}
	}

	return c.JSON(fiber.Map{
		"recent_sessions": recentSessions,
		"stats": fiber.Map{
			"total_sessions":   stats.TotalSessions,
			"average_wpm":      stats.AverageWPM,
			"best_wpm":         stats.BestWPM,
			"average_accuracy": stats.AverageAccuracy,
			"current_level":    stats.CurrentLevel,
			"current_streak":   stats.CurrentStreak,
		},
	})
}

// GetLessons lists active lessons in order.
func (tc *TypingController) GetLessons(c *fiber.Ctx) error {
	query := tc.DB.Where("is_active = ?", true)
	if difficulty := c.Query("difficulty"); difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var lessons []models.TypingLesson
	if err := query.Order("difficulty, sequence_num").Find(&lessons).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch lessons")
	}

	return c.JSON(fiber.Map{"lessons": lessons})
}

// GetLessonProgress returns the user's progress rows.
func (tc *TypingController) GetLessonProgress(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var progress []models.UserLessonProgress
	if err := tc.DB.Where("user_id = ?", userID).Find(&progress).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch lesson progress")
	}

	return c.JSON(fiber.Map{"progress": progress})
}

type UpdateLessonProgressInput struct {
	Status           string  `json:"status" validate:"required,oneof=not_started in_progress completed mastered"`
	WPM              float64 `json:"wpm" validate:"gte=0"`
	Accuracy         float64 `json:"accuracy" validate:"gte=0,lte=100"`
	TimeSpentSeconds float64 `json:"time_spent_seconds" validate:"gte=0"`
}

// UpdateLessonProgress records a lesson attempt; the first transition
// into completed/mastered bumps the aggregate lesson counter and
// rechecks achievements.
func (tc *TypingController) UpdateLessonProgress(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	lessonID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var input UpdateLessonProgressInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if details := utils.ValidateStruct(input); details != nil {
		return utils.ValidationError(c, details)
	}

	var lesson models.TypingLesson
	if err := tc.DB.First(&lesson, lessonID).Error; err != nil {
		return utils.NotFound(c, "Lesson not found")
	}

	var progress models.UserLessonProgress
	err = tc.DB.Where("user_id = ? AND lesson_id = ?", userID, lesson.ID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := time.Now()
		progress = models.UserLessonProgress{
			UserID:    userID,
			LessonID:  lesson.ID,
			StartedAt: &now,
		}
	} else if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	wasCompleted := progress.Status == "completed" || progress.Status == "mastered"

	progress.Attempts++
	progress.TimeSpent += time.Duration(input.TimeSpentSeconds * float64(time.Second))
	if input.WPM > progress.BestWPM {
		progress.BestWPM = input.WPM
	}
	if input.Accuracy > progress.BestAccuracy {
		progress.BestAccuracy = input.Accuracy
	}
	progress.Status = input.Status

	nowCompleted := progress.Status == "completed" || progress.Status == "mastered"
	if nowCompleted && progress.CompletedAt == nil {
		now := time.Now()
		progress.CompletedAt = &now
	}

	if err := tc.DB.Save(&progress).Error; err != nil {
		return utils.InternalServerError(c, "Could not save progress")
	}

	var outcome *progression.Outcome
	if nowCompleted && !wasCompleted {
		outcome, err = tc.Engine.MarkLessonCompleted(userID, lesson.ID)
		if err != nil {
			LogSideEffect(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"progress": progress,
		"outcome":  outcome,
	})
}

// GetChallenges lists active challenges, current first.
func (tc *TypingController) GetChallenges(c *fiber.Ctx) error {
	var challenges []models.TypingChallenge
	if err := tc.DB.Where("is_active = ?", true).Order("start_date DESC").Find(&challenges).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch challenges")
	}

	return c.JSON(fiber.Map{"challenges": challenges})
}

// JoinChallenge creates the participation row for an ongoing challenge.
func (tc *TypingController) JoinChallenge(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	challengeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid challenge ID")
	}

	var challenge models.TypingChallenge
	if err := tc.DB.First(&challenge, challengeID).Error; err != nil {
		return utils.NotFound(c, "Challenge not found")
	}
	if !challenge.IsOngoing() {
		return utils.BadRequest(c, "Challenge is not currently running")
	}

	var participation models.ChallengeParticipation
	err = tc.DB.Where(models.ChallengeParticipation{UserID: userID, ChallengeID: challenge.ID}).
		FirstOrCreate(&participation).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not join challenge")
	}

	return utils.Created(c, "Joined challenge", fiber.Map{"participation": participation})
}

type ChallengeResultInput struct {
	WPM              float64 `json:"wpm" validate:"gte=0"`
	Accuracy         float64 `json:"accuracy" validate:"gte=0,lte=100"`
	TimeSpentSeconds float64 `json:"time_spent_seconds" validate:"gte=0"`
}

// SubmitChallengeResult folds one attempt into the participation row;
// meeting the challenge targets for the first time completes it.
func (tc *TypingController) SubmitChallengeResult(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	challengeID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid challenge ID")
	}

	var input ChallengeResultInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if details := utils.ValidateStruct(input); details != nil {
		return utils.ValidationError(c, details)
	}

	var challenge models.TypingChallenge
	if err := tc.DB.First(&challenge, challengeID).Error; err != nil {
		return utils.NotFound(c, "Challenge not found")
	}

	var participation models.ChallengeParticipation
	if err := tc.DB.Where("user_id = ? AND challenge_id = ?", userID, challenge.ID).First(&participation).Error; err != nil {
		return utils.BadRequest(c, "Join the challenge first")
	}

	participation.TotalSessions++
	participation.TotalTime += time.Duration(input.TimeSpentSeconds * float64(time.Second))
	if input.WPM > participation.BestWPM {
		participation.BestWPM = input.WPM
	}
	if input.Accuracy > participation.BestAccuracy {
		participation.BestAccuracy = input.Accuracy
	}

	meetsTargets := true
	if challenge.TargetWPM != nil && participation.BestWPM < float64(*challenge.TargetWPM) {
		meetsTargets = false
	}
	if challenge.TargetAccuracy != nil && participation.BestAccuracy < float64(*challenge.TargetAccuracy) {
		meetsTargets = false
	}

	// The completed transition is one-way; later qualifying results must
	// not count the challenge again.
	var outcome *progression.Outcome
	if meetsTargets && !participation.IsCompleted {
		now := time.Now()
		participation.IsCompleted = true
		participation.CompletedAt = &now
		participation.PointsEarned = challenge.PointsReward
		outcome, err = tc.Engine.MarkChallengeCompleted(userID, challenge.ID, challenge.PointsReward)
		if err != nil {
			LogSideEffect(c, err)
		}
	}

	if err := tc.DB.Save(&participation).Error; err != nil {
		return utils.InternalServerError(c, "Could not save participation")
	}

	return c.JSON(fiber.Map{
		"participation": participation,
		"outcome":       outcome,
	})
}
