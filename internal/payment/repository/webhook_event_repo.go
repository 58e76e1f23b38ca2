package repository

import (
	"context"
	"time"

	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WebhookEventRepository 웹훅 수신 기록
type WebhookEventRepository interface {
	// Record webhook_id 기준 upsert. 재수신이면 deliveries 증가 후 결과 갱신.
	Record(ctx context.Context, event *domain.WebhookEvent) error
	FindByWebhookID(ctx context.Context, webhookID string) (*domain.WebhookEvent, error)
}

type webhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository 생성자
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) Record(ctx context.Context, event *domain.WebhookEvent) error {
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now()
	}
	if event.Deliveries == 0 {
		event.Deliveries = 1
	}
	event.Payload = rawJSON(event.Payload)

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "webhook_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"deliveries":   gorm.Expr("deliveries + 1"),
			"event_type":   event.EventType,
			"payment_id":   event.PaymentID,
			"outcome":      event.Outcome,
			"error":        event.Error,
			"processed_at": event.ProcessedAt,
		}),
	}).Create(event).Error
}

func (r *webhookEventRepository) FindByWebhookID(ctx context.Context, webhookID string) (*domain.WebhookEvent, error) {
	var event domain.WebhookEvent
	if err := r.db.WithContext(ctx).Where("webhook_id = ?", webhookID).First(&event).Error; err != nil {
		return nil, notFound(err)
	}
	return &event, nil
}
