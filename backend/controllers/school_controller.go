package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"typingtutor/backend/config"
	"typingtutor/backend/models"
	"typingtutor/backend/utils"
)

type SchoolController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewSchoolController(db *gorm.DB, cfg *config.Config) *SchoolController {
	return &SchoolController{DB: db, Cfg: cfg}
}

// GetSchools godoc
// @Summary List active schools
// @Tags school
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /schools [get]
func (sc *SchoolController) GetSchools(c *fiber.Ctx) error {
	query := sc.DB.Where("is_active = ?", true)
	if schoolType := c.Query("school_type"); schoolType != "" {
		query = query.Where("school_type = ?", schoolType)
	}
	if city := c.Query("city"); city != "" {
		query = query.Where("city = ?", city)
	}

	var schools []models.School
	if err := query.Order("name").Find(&schools).Error; err != nil {
		return utils.InternalServerError(c, "Failed to fetch schools")
	}

	return c.JSON(fiber.Map{"schools": schools})
}

// GetSchoolDetails returns one school with its classes and member count.
func (sc *SchoolController) GetSchoolDetails(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid school ID")
	}

	var school models.School
	if err := sc.DB.First(&school, id).Error; err != nil {
		return utils.NotFound(c, "School not found")
	}

	var classes []models.SchoolClass
	sc.DB.Where("school_id = ? AND is_active = ?", school.ID, true).Find(&classes)

	var memberCount int64
	sc.DB.Model(&models.SchoolMembership{}).
		Where("school_id = ? AND is_active = ?", school.ID, true).
		Count(&memberCount)

	return c.JSON(fiber.Map{
		"school":              school,
		"classes":             classes,
		"member_count":        memberCount,
		"subscription_active": school.IsSubscriptionActive(),
	})
}

type CreateSchoolInput struct {
	Name        string `json:"name" validate:"required,min=2"`
	SchoolType  string `json:"school_type" validate:"omitempty,oneof=elementary middle high college vocational other"`
	Description string `json:"description"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	City        string `json:"city"`
	State       string `json:"state"`
	Country     string `json:"country"`
}

// CreateSchool godoc
// @Summary Register a new school
// @Description Creates a school with the caller as admin
// @Tags school
// @Accept json
// @Produce json
// @Param school body CreateSchoolInput true "School data"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /schools [post]
func (sc *SchoolController) CreateSchool(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input CreateSchoolInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if details := utils.ValidateStruct(input); details != nil {
		return utils.ValidationError(c, details)
	}

	school := models.School{
		Name:        input.Name,
		SchoolType:  input.SchoolType,
		Description: input.Description,
		Email:       input.Email,
		Phone:       input.Phone,
		Website:     input.Website,
		City:        input.City,
		State:       input.State,
		Country:     input.Country,
		AdminID:     userID,
	}
	if school.SchoolType == "" {
		school.SchoolType = "other"
	}

	if err := sc.DB.Create(&school).Error; err != nil {
		return utils.InternalServerError(c, "Could not create school")
	}

	// The creator is an admin member of the school they register.
	sc.DB.Create(&models.SchoolMembership{
		UserID:     userID,
		SchoolID:   school.ID,
		Role:       "admin",
		IsActive:   true,
		IsVerified: true,
	})

	return utils.Created(c, "School created successfully", fiber.Map{"school": school})
}

type JoinSchoolInput struct {
	SchoolID      uint   `json:"school_id" validate:"required"`
	SchoolClassID *uint  `json:"school_class_id"`
	Role          string `json:"role" validate:"omitempty,oneof=student teacher"`
}

// JoinSchool godoc
// @Summary Join a school
// @Description Creates a membership and links the account to the school
// @Tags school
// @Accept json
// @Produce json
// @Param membership body JoinSchoolInput true "Membership request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /schools/join [post]
func (sc *SchoolController) JoinSchool(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input JoinSchoolInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if details := utils.ValidateStruct(input); details != nil {
		return utils.ValidationError(c, details)
	}

	var school models.School
	if err := sc.DB.First(&school, input.SchoolID).Error; err != nil {
		return utils.NotFound(c, "School not found")
	}
	if !school.IsSubscriptionActive() {
		return utils.BadRequest(c, "School subscription is not active")
	}

	role := input.Role
	if role == "" {
		role = "student"
	}

	var membership models.SchoolMembership
	err := sc.DB.Where(models.SchoolMembership{UserID: userID, SchoolID: school.ID}).
		Attrs(models.SchoolMembership{
			SchoolClassID: input.SchoolClassID,
			Role:          role,
			IsActive:      true,
		}).
		FirstOrCreate(&membership).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not join school")
	}

	// Scope the user to the school so leaderboards can filter on it.
	if err := sc.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("school_id", school.ID).Error; err != nil {
		return utils.InternalServerError(c, "Could not link user to school")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"membership": membership})
}

type CreateClassInput struct {
	SchoolID    uint   `json:"school_id" validate:"required"`
	Name        string `json:"name" validate:"required,min=1"`
	GradeLevel  string `json:"grade_level"`
	Description string `json:"description"`
	MaxStudents int    `json:"max_students" validate:"omitempty,gte=1"`
}

// CreateClass creates a class within a school. Teacher or admin only.
func (sc *SchoolController) CreateClass(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input CreateClassInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if details := utils.ValidateStruct(input); details != nil {
		return utils.ValidationError(c, details)
	}

	var school models.School
	if err := sc.DB.First(&school, input.SchoolID).Error; err != nil {
		return utils.NotFound(c, "School not found")
	}

	class := models.SchoolClass{
		SchoolID:    school.ID,
		Name:        input.Name,
		GradeLevel:  input.GradeLevel,
		Description: input.Description,
		MaxStudents: input.MaxStudents,
		IsActive:    true,
		TeacherID:   userID,
	}
	if class.MaxStudents == 0 {
		class.MaxStudents = 30
	}

	if err := sc.DB.Create(&class).Error; err != nil {
		return utils.InternalServerError(c, "Could not create class")
	}

	return utils.Created(c, "Class created successfully", fiber.Map{"class": class})
}

type classStudent struct {
	UserID        uint    `json:"user_id"`
	Username      string  `json:"username"`
	FullName      string  `json:"full_name"`
	AverageWPM    float64 `json:"average_wpm"`
	BestWPM       float64 `json:"best_wpm"`
	BestAccuracy  float64 `json:"best_accuracy"`
	TotalSessions int     `json:"total_sessions"`
	CurrentStreak int     `json:"current_streak"`
}

// GetClassRoster returns the students of a class with their headline
// stats. Teacher or admin only.
func (sc *SchoolController) GetClassRoster(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return utils.BadRequest(c, "Invalid class ID")
	}

	var class models.SchoolClass
	if err := sc.DB.First(&class, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Class not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var memberships []models.SchoolMembership
	if err := sc.DB.Where("school_class_id = ? AND role = ? AND is_active = ?", class.ID, "student", true).
		Find(&memberships).Error; err != nil {
		return utils.InternalServerError(c, "Could not fetch roster")
	}

	students := make([]classStudent, 0, len(memberships))
	for _, m := range memberships {
		var user models.User
		if err := sc.DB.First(&user, m.UserID).Error; err != nil {
			continue
		}

		entry := classStudent{
			UserID:   user.ID,
			Username: user.Username,
			FullName: user.FullName(),
		}
		var stats models.UserStats
		if err := sc.DB.Where("user_id = ?", user.ID).First(&stats).Error; err == nil {
			entry.AverageWPM = stats.AverageWPM
			entry.BestWPM = stats.BestWPM
			entry.BestAccuracy = stats.BestAccuracy
			entry.TotalSessions = stats.TotalSessions
			entry.CurrentStreak = stats.CurrentStreak
		}
		students = append(students, entry)
	}

	return c.JSON(fiber.Map{
		"class":    class,
		"students": students,
	})
}
