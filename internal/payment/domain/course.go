package domain

import (
	"time"

	"gorm.io/gorm"
)

// Course 강의 (카탈로그 조회 전용)
type Course struct {
	ID            string         `gorm:"type:char(36);primaryKey" json:"id"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	Price         int64          `gorm:"not null" json:"price"`
	DiscountPrice *int64         `gorm:"column:discount_price" json:"discount_price,omitempty"`
	InstructorID  string         `gorm:"column:instructor_id;type:char(36)" json:"instructor_id,omitempty"`
	CreatedAt     time.Time      `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

// TableName GORM 테이블명
func (Course) TableName() string {
	return "courses"
}

// SalePrice 현재 판매가 (할인가 우선)
func (c *Course) SalePrice() int64 {
	if c.DiscountPrice != nil {
		return *c.DiscountPrice
	}
	return c.Price
}
