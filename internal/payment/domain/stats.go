package domain

import (
	"time"
)

// StatDateLayout 통계 날짜 포맷
const StatDateLayout = "2006-01-02"

// DailyPaymentStats 일별 결제 통계 (날짜당 1행, 재계산 시 덮어씀)
type DailyPaymentStats struct {
	ID            uint64    `gorm:"primaryKey" json:"-"`
	StatDate      string    `gorm:"column:stat_date;size:10;not null;uniqueIndex:ux_daily_payment_stats_date" json:"date"`
	TotalPayments int64     `gorm:"column:total_payments;not null" json:"total_payments"`
	TotalAmount   int64     `gorm:"column:total_amount;not null" json:"total_amount"`
	CreatedAt     time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName GORM 테이블명
func (DailyPaymentStats) TableName() string {
	return "daily_payment_stats"
}

// StatsResult 배치 실행 결과
type StatsResult struct {
	Date          string `json:"date"`
	TotalPayments int64  `json:"total_payments"`
	TotalAmount   int64  `json:"total_amount"`
}

// StatsListRequest 통계 목록 조회 요청
type StatsListRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}
