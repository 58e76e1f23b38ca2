package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/gateway"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/repository"
	"github.com/lecturemarket/lecturemarket-backend/pkg/logger"
	"github.com/rs/zerolog"
)

// WebhookService 게이트웨이 웹훅 재조정
type WebhookService interface {
	// HandleWebhook 서명 검증 후 게이트웨이를 다시 조회해 로컬 결제/주문 상태를 맞춘다.
	// 로컬 결제가 아직 없으면 아무것도 하지 않고 성공.
	HandleWebhook(ctx context.Context, body []byte, headers http.Header) (*WebhookResult, error)
}

// WebhookResult 웹훅 처리 결과
type WebhookResult struct {
	Outcome   domain.WebhookOutcome
	PaymentID string
	Status    domain.PaymentStatus
}

type webhookService struct {
	verifier       gateway.WebhookVerifier
	gateway        gateway.Client
	paymentRepo    repository.PaymentRepository
	eventRepo      repository.WebhookEventRepository
	gatewayTimeout time.Duration
	log            zerolog.Logger
}

// NewWebhookService 생성자
func NewWebhookService(
	verifier gateway.WebhookVerifier,
	gw gateway.Client,
	paymentRepo repository.PaymentRepository,
	eventRepo repository.WebhookEventRepository,
	gatewayTimeout time.Duration,
) WebhookService {
	return &webhookService{
		verifier:       verifier,
		gateway:        gw,
		paymentRepo:    paymentRepo,
		eventRepo:      eventRepo,
		gatewayTimeout: gatewayTimeout,
		log:            logger.Component("payment.webhook"),
	}
}

func (s *webhookService) HandleWebhook(ctx context.Context, body []byte, headers http.Header) (*WebhookResult, error) {
	base := logger.WithRequestID(ctx, s.log)

	event, err := s.verifier.Verify(body, headers)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			webhooksTotal.WithLabelValues("invalid_signature").Inc()
			base.Error().Err(err).Str("webhook_id", headers.Get("webhook-id")).Msg("webhook signature rejected")
			return nil, ErrInvalidSignature
		}
		// 서명은 맞지만 본문을 해석할 수 없음
		webhooksTotal.WithLabelValues(string(domain.WebhookOutcomeIgnored)).Inc()
		base.Warn().Err(err).Str("webhook_id", headers.Get("webhook-id")).Msg("unreadable webhook payload ignored")
		return &WebhookResult{Outcome: domain.WebhookOutcomeIgnored}, nil
	}

	log := base.With().
		Str("webhook_id", event.WebhookID).
		Str("event_type", event.Type).
		Str("payment_id", event.PaymentID).
		Logger()

	result, err := s.reconcile(ctx, event, log)

	record := &domain.WebhookEvent{
		WebhookID: event.WebhookID,
		EventType: event.Type,
		PaymentID: event.PaymentID,
		Payload:   event.Raw,
	}
	if err != nil {
		record.Outcome = domain.WebhookOutcomeFailed
		record.Error = truncate(err.Error(), 255)
		webhooksTotal.WithLabelValues(string(domain.WebhookOutcomeFailed)).Inc()
	} else {
		now := time.Now()
		record.Outcome = result.Outcome
		record.ProcessedAt = &now
		webhooksTotal.WithLabelValues(string(result.Outcome)).Inc()
	}
	if recErr := s.eventRepo.Record(ctx, record); recErr != nil {
		log.Warn().Err(recErr).Msg("failed to record webhook event")
	}

	return result, err
}

func (s *webhookService) reconcile(ctx context.Context, event *gateway.WebhookEvent, log zerolog.Logger) (*WebhookResult, error) {
	if event.PaymentID == "" {
		log.Info().Msg("webhook without payment id ignored")
		return &WebhookResult{Outcome: domain.WebhookOutcomeIgnored}, nil
	}

	// 웹훅 본문의 상태는 믿지 않고 게이트웨이를 다시 조회
	gwCtx := ctx
	if s.gatewayTimeout > 0 {
		var cancel context.CancelFunc
		gwCtx, cancel = context.WithTimeout(ctx, s.gatewayTimeout)
		defer cancel()
	}
	intent, err := s.gateway.GetPayment(gwCtx, event.PaymentID)
	if err != nil {
		if errors.Is(err, gateway.ErrPaymentNotFound) {
			log.Info().Msg("payment unknown to gateway, nothing to reconcile")
			return &WebhookResult{Outcome: domain.WebhookOutcomeIgnored, PaymentID: event.PaymentID}, nil
		}
		log.Warn().Err(err).Msg("gateway lookup failed during webhook")
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}

	payment, err := s.paymentRepo.ApplyGatewayState(ctx, event.PaymentID, &repository.GatewayState{
		Status:      intent.Status,
		PaidAt:      intent.PaidAt,
		CancelledAt: intent.CancelledAt,
		Raw:         intent.Raw,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// 검증 API가 아직 확정하지 않았거나 버려진 결제. 게이트웨이 재전송 때 다시 맞춘다.
			log.Info().Str("status", string(intent.Status)).Msg("no local payment for webhook")
			return &WebhookResult{
				Outcome:   domain.WebhookOutcomeNoLocalPayment,
				PaymentID: event.PaymentID,
				Status:    intent.Status,
			}, nil
		}
		log.Error().Err(err).Msg("payment status update failed")
		return nil, fmt.Errorf("%w: %v", ErrReconcileFailed, err)
	}

	log.Info().
		Str("order_id", payment.OrderID).
		Str("status", string(payment.Status)).
		Msg("payment reconciled")
	return &WebhookResult{
		Outcome:   domain.WebhookOutcomeApplied,
		PaymentID: event.PaymentID,
		Status:    payment.Status,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
