package domain

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookOutcome 웹훅 처리 결과
type WebhookOutcome string

const (
	WebhookOutcomeApplied        WebhookOutcome = "applied"
	WebhookOutcomeNoLocalPayment WebhookOutcome = "no_local_payment"
	WebhookOutcomeIgnored        WebhookOutcome = "ignored"
	WebhookOutcomeFailed         WebhookOutcome = "failed"
)

// WebhookEvent 웹훅 수신 기록 (감사용, 중복 수신도 매번 재조정한다)
type WebhookEvent struct {
	ID          uint64         `gorm:"primaryKey" json:"id"`
	WebhookID   string         `gorm:"column:webhook_id;size:128;not null;uniqueIndex:ux_payment_webhook_events_webhook_id" json:"webhook_id"`
	EventType   string         `gorm:"column:event_type;size:64" json:"event_type"`
	PaymentID   string         `gorm:"column:payment_id;size:128;index" json:"payment_id,omitempty"`
	Outcome     WebhookOutcome `gorm:"size:32;not null" json:"outcome"`
	Deliveries  int            `gorm:"not null;default:1" json:"deliveries"`
	Error       string         `gorm:"size:255" json:"error,omitempty"`
	Payload     datatypes.JSON `gorm:"type:json" json:"-"`
	ReceivedAt  time.Time      `gorm:"column:received_at;not null" json:"received_at"`
	ProcessedAt *time.Time     `gorm:"column:processed_at" json:"processed_at,omitempty"`
}

// TableName GORM 테이블명
func (WebhookEvent) TableName() string {
	return "payment_webhook_events"
}
