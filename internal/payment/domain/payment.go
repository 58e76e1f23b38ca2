package domain

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentStatus 결제 상태 (게이트웨이 상태값과 동일)
type PaymentStatus string

const (
	PaymentStatusReady                PaymentStatus = "READY"
	PaymentStatusPending              PaymentStatus = "PENDING"
	PaymentStatusVirtualAccountIssued PaymentStatus = "VIRTUAL_ACCOUNT_ISSUED"
	PaymentStatusPaid                 PaymentStatus = "PAID"
	PaymentStatusFailed               PaymentStatus = "FAILED"
	PaymentStatusPartialCancelled     PaymentStatus = "PARTIAL_CANCELLED"
	PaymentStatusCancelled            PaymentStatus = "CANCELLED"
)

// IsCancelled 전체/부분 취소 여부
func (s PaymentStatus) IsCancelled() bool {
	return s == PaymentStatusCancelled || s == PaymentStatusPartialCancelled
}

// OrderStatus 결제 상태에 대응하는 주문 상태
func (s PaymentStatus) OrderStatus() OrderStatus {
	switch s {
	case PaymentStatusPaid:
		return OrderStatusPaid
	case PaymentStatusFailed:
		return OrderStatusFailed
	case PaymentStatusCancelled:
		return OrderStatusCancelled
	case PaymentStatusPartialCancelled:
		return OrderStatusPartialCancelled
	default:
		return OrderStatusPending
	}
}

// Payment 로컬 결제 레코드. PaymentID(게이트웨이 결제 ID)가 멱등키.
type Payment struct {
	ID            string        `gorm:"type:char(36);primaryKey" json:"id"`
	PaymentID     string        `gorm:"column:payment_id;size:128;not null;uniqueIndex:ux_payments_payment_id" json:"payment_id"`
	OrderID       string        `gorm:"column:order_id;type:char(36);not null;uniqueIndex:ux_payments_order_id" json:"order_id"`
	Amount        int64         `gorm:"not null" json:"amount"`
	Currency      string        `gorm:"size:8;not null;default:'KRW'" json:"currency"`
	PaymentMethod string        `gorm:"column:payment_method;size:64" json:"payment_method,omitempty"`
	PGProvider    string        `gorm:"column:pg_provider;size:64" json:"pg_provider,omitempty"`
	Status        PaymentStatus `gorm:"size:32;not null;index:ix_payments_status_paid_at,priority:1" json:"status"`

	PaidAt      *time.Time `gorm:"column:paid_at;index:ix_payments_status_paid_at,priority:2" json:"paid_at,omitempty"`
	CancelledAt *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`

	// 게이트웨이 응답 원본 (감사/재처리용)
	PortoneData datatypes.JSON `gorm:"column:portone_data;type:json" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName GORM 테이블명
func (Payment) TableName() string {
	return "payments"
}

// PaymentResponse 결제 응답 DTO
type PaymentResponse struct {
	PaymentID     string     `json:"payment_id"`
	OrderID       string     `json:"order_id"`
	Amount        int64      `json:"amount"`
	Currency      string     `json:"currency"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	PGProvider    string     `json:"pg_provider,omitempty"`
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
}

// ToResponse Payment를 PaymentResponse로 변환
func (p *Payment) ToResponse() *PaymentResponse {
	return &PaymentResponse{
		PaymentID:     p.PaymentID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentMethod: p.PaymentMethod,
		PGProvider:    p.PGProvider,
		Status:        string(p.Status),
		PaidAt:        p.PaidAt,
		CancelledAt:   p.CancelledAt,
	}
}

// VerifyPaymentRequest 결제 검증 요청 DTO
type VerifyPaymentRequest struct {
	PaymentID string `json:"paymentId" binding:"required,max=128"`
}

// VerifyPaymentResponse 결제 검증 응답 DTO
type VerifyPaymentResponse struct {
	Success          bool   `json:"success"`
	OrderID          string `json:"orderId,omitempty"`
	AlreadyProcessed bool   `json:"alreadyProcessed,omitempty"`
}
