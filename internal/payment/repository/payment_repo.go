package repository

import (
	"context"
	"time"

	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentRepository 결제 저장소 인터페이스
type PaymentRepository interface {
	FindByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// ApplyGatewayState 게이트웨이 상태를 결제/주문에 반영 (행 잠금 트랜잭션)
	ApplyGatewayState(ctx context.Context, paymentID string, state *GatewayState) (*domain.Payment, error)
}

// GatewayState 게이트웨이에서 재조회한 결제 상태
type GatewayState struct {
	Status      domain.PaymentStatus
	PaidAt      *time.Time
	CancelledAt *time.Time
	Raw         []byte
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 생성자
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// FindByPaymentID 게이트웨이 결제 ID로 조회
func (r *paymentRepository) FindByPaymentID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&payment).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &payment, nil
}

// ApplyGatewayState 결제 상태 갱신. 로컬 결제가 없으면 ErrNotFound.
func (r *paymentRepository) ApplyGatewayState(ctx context.Context, paymentID string, state *GatewayState) (*domain.Payment, error) {
	var payment domain.Payment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("payment_id = ?", paymentID).
			First(&payment).Error; err != nil {
			return notFound(err)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":     state.Status,
			"updated_at": now,
		}
		if state.PaidAt != nil {
			updates["paid_at"] = state.PaidAt.UTC()
		}
		switch {
		case state.CancelledAt != nil:
			updates["cancelled_at"] = state.CancelledAt.UTC()
		case payment.CancelledAt == nil && state.Status.IsCancelled():
			// 게이트웨이가 취소 시각을 주지 않으면 반영 시각으로 기록
			updates["cancelled_at"] = now.UTC()
		}
		if raw := rawJSON(state.Raw); raw != nil {
			updates["portone_data"] = raw
		}

		if err := tx.Model(&domain.Payment{}).Where("id = ?", payment.ID).UpdateColumns(updates).Error; err != nil {
			return err
		}

		if err := tx.Model(&domain.Order{}).Where("id = ?", payment.OrderID).UpdateColumns(map[string]interface{}{
			"status":     state.Status.OrderStatus(),
			"updated_at": now,
		}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", payment.ID).First(&payment).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
