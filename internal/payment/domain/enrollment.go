package domain

import (
	"time"
)

// Enrollment 수강 권한
type Enrollment struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID     string    `gorm:"column:user_id;type:char(36);not null;uniqueIndex:ux_enrollments_user_course,priority:1" json:"user_id"`
	CourseID   string    `gorm:"column:course_id;type:char(36);not null;uniqueIndex:ux_enrollments_user_course,priority:2" json:"course_id"`
	EnrolledAt time.Time `gorm:"column:enrolled_at;not null" json:"enrolled_at"`
}

// TableName GORM 테이블명
func (Enrollment) TableName() string {
	return "enrollments"
}
