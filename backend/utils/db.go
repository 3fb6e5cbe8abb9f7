package utils

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"typingtutor/backend/config"
	"typingtutor/backend/models"
)

// InitDB opens the database selected by DB_DRIVER and runs migrations.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates/updates all tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.LoginHistory{},
		&models.School{},
		&models.SchoolClass{},
		&models.SchoolMembership{},
		&models.TypingText{},
		&models.TypingSession{},
		&models.TypingLesson{},
		&models.UserLessonProgress{},
		&models.TypingChallenge{},
		&models.ChallengeParticipation{},
		&models.VoiceExercise{},
		&models.VoiceSession{},
		&models.VoiceProgress{},
		&models.VoiceSettings{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.UserStats{},
		&models.DailyStreak{},
		&models.AnalyticsEvent{},
	)
}
