package repository

import (
	"context"

	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
	"gorm.io/gorm"
)

// CourseRepository 강의 카탈로그 조회
type CourseRepository interface {
	// FindByIDs 삭제되지 않은 강의만 반환
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Course, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository 생성자
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Course, error) {
	var courses []*domain.Course
	if len(ids) == 0 {
		return courses, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&courses).Error
	return courses, err
}
