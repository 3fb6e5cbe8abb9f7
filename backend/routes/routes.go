package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"typingtutor/backend/config"
	"typingtutor/backend/controllers"
	"typingtutor/backend/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	staffMiddleware := middleware.RequireRole(db, cfg, "teacher", "admin")

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)
	app.Get("/api/user/dashboard", authMiddleware, userController.GetAccountDashboard)

	// Typing routes
	typingController := controllers.NewTypingController(db, cfg)
	typing := app.Group("/api/typing", authMiddleware)
	typing.Get("/texts", typingController.GetTexts)
	typing.Get("/texts/:id", typingController.GetTextDetails)
	typing.Get("/sessions", typingController.GetSessions)
	typing.Post("/sessions", typingController.SubmitSession)
	typing.Get("/dashboard", typingController.GetTypingDashboard)
	typing.Get("/lessons", typingController.GetLessons)
	typing.Get("/lessons/progress", typingController.GetLessonProgress)
	typing.Post("/lessons/:id/progress", typingController.UpdateLessonProgress)
	typing.Get("/challenges", typingController.GetChallenges)
	typing.Post("/challenges/:id/join", typingController.JoinChallenge)
	typing.Post("/challenges/:id/result", typingController.SubmitChallengeResult)

	// Voice typing routes
	voiceController := controllers.NewVoiceController(db, cfg)
	voice := app.Group("/api/voice", authMiddleware)
	voice.Get("/exercises", voiceController.GetExercises)
	voice.Post("/sessions", voiceController.SubmitSession)
	voice.Get("/progress", voiceController.GetProgress)
	voice.Get("/dashboard", voiceController.GetDashboard)
	voice.Get("/settings", voiceController.GetSettings)
	voice.Put("/settings", voiceController.UpdateSettings)

	// Analytics routes
	analyticsController := controllers.NewAnalyticsController(db, cfg)
	analytics := app.Group("/api/analytics", authMiddleware)
	analytics.Get("/achievements", analyticsController.GetAchievements)
	analytics.Get("/achievements/mine", analyticsController.GetUserAchievements)
	analytics.Get("/stats", analyticsController.GetUserStats)
	analytics.Get("/dashboard", analyticsController.GetDashboard)
	analytics.Post("/events", analyticsController.TrackEvent)
	analytics.Get("/leaderboard", analyticsController.GetLeaderboard)
	analytics.Get("/report", analyticsController.GetProgressReport)

	// School routes
	schoolController := controllers.NewSchoolController(db, cfg)
	schools := app.Group("/api/schools", authMiddleware)
	schools.Get("/", schoolController.GetSchools)
	schools.Get("/:id", schoolController.GetSchoolDetails)
	schools.Post("/", schoolController.CreateSchool)
	schools.Post("/join", schoolController.JoinSchool)
	schools.Post("/classes", staffMiddleware, schoolController.CreateClass)
	schools.Get("/classes/:id/roster", staffMiddleware, schoolController.GetClassRoster)
}
