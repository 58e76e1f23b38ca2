package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
)

// Client 결제 게이트웨이 조회 인터페이스
type Client interface {
	// GetPayment 게이트웨이가 보관 중인 결제 상태 조회
	GetPayment(ctx context.Context, paymentID string) (*PaymentIntent, error)
}

// WebhookVerifier 웹훅 서명 검증 + 본문 파싱
type WebhookVerifier interface {
	Verify(body []byte, headers http.Header) (*WebhookEvent, error)
}

// PaymentIntent 게이트웨이 측 결제 상태 (매 요청마다 새로 조회)
type PaymentIntent struct {
	PaymentID   string
	Status      domain.PaymentStatus
	Amount      int64
	Currency    string
	Method      string
	PGProvider  string
	CustomData  string
	PaidAt      *time.Time
	CancelledAt *time.Time

	// 원본 응답
	Raw []byte
}

// WebhookEvent 검증된 웹훅 이벤트
type WebhookEvent struct {
	WebhookID     string
	Type          string
	PaymentID     string
	TransactionID string
	StoreID       string
	Timestamp     time.Time
	Raw           []byte
}

// Gateway 에러 정의
var (
	ErrPaymentNotFound  = errors.New("payment not found at gateway")
	ErrUpstream         = errors.New("gateway request failed")
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrInvalidWebhook   = errors.New("invalid webhook payload")
)
