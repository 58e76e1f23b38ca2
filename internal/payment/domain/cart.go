package domain

import (
	"time"
)

// CartItem 장바구니 아이템
type CartItem struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:char(36);not null;uniqueIndex:ux_cart_items_user_course,priority:1" json:"user_id"`
	CourseID  string    `gorm:"column:course_id;type:char(36);not null;uniqueIndex:ux_cart_items_user_course,priority:2" json:"course_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName GORM 테이블명
func (CartItem) TableName() string {
	return "cart_items"
}
