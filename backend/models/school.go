package models

import (
	"time"

	"gorm.io/gorm"
)

type School struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	SchoolType  string `gorm:"default:other" json:"school_type"` // elementary, middle, high, college, vocational, other
	Description string `json:"description"`

	// Contact information
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`

	// Subscription
	IsActive            bool       `gorm:"default:true" json:"is_active"`
	SubscriptionPlan    string     `gorm:"default:basic" json:"subscription_plan"`
	SubscriptionExpires *time.Time `json:"subscription_expires,omitempty"`
	MaxStudents         int        `gorm:"default:100" json:"max_students"`
	MaxTeachers         int        `gorm:"default:10" json:"max_teachers"`

	AdminID uint `json:"admin_id"`
}

// IsSubscriptionActive reports whether the school subscription is valid.
func (s *School) IsSubscriptionActive() bool {
	if !s.IsActive {
		return false
	}
	if s.SubscriptionExpires != nil && s.SubscriptionExpires.Before(time.Now()) {
		return false
	}
	return true
}

type SchoolClass struct {
	gorm.Model
	SchoolID    uint   `gorm:"index" json:"school_id"`
	Name        string `gorm:"not null" json:"name"`
	GradeLevel  string `json:"grade_level"`
	Description string `json:"description"`
	MaxStudents int    `gorm:"default:30" json:"max_students"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
	TeacherID   uint   `json:"teacher_id"`
}

type SchoolMembership struct {
	gorm.Model
	UserID        uint   `gorm:"uniqueIndex:idx_user_school" json:"user_id"`
	SchoolID      uint   `gorm:"uniqueIndex:idx_user_school" json:"school_id"`
	SchoolClassID *uint  `json:"school_class_id,omitempty"`
	Role          string `json:"role"` // student, teacher, admin
	IsActive      bool   `gorm:"default:true" json:"is_active"`
	IsVerified    bool   `gorm:"default:false" json:"is_verified"`
}
