package repository

import (
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
)

// Models 결제 모듈이 사용하는 테이블 목록 (마이그레이션 순서)
func Models() []interface{} {
	return []interface{}{
		&domain.Course{},
		&domain.CartItem{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.Payment{},
		&domain.Enrollment{},
		&domain.DailyPaymentStats{},
		&domain.WebhookEvent{},
	}
}
