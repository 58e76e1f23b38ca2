package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/gateway"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/repository"
	"github.com/lecturemarket/lecturemarket-backend/pkg/logger"
	"github.com/rs/zerolog"
)

// PaymentService 결제 검증 + 주문 조회
type PaymentService interface {
	// VerifyPayment 게이트웨이 결제를 검증하고 주문을 확정한다.
	// 이미 확정된 결제면 AlreadyProcessed=true 로 성공 응답.
	VerifyPayment(ctx context.Context, userID, paymentID string) (*domain.VerifyPaymentResponse, error)

	GetOrder(ctx context.Context, userID, orderID string) (*domain.OrderResponse, error)
	GetPayment(ctx context.Context, userID, paymentID string) (*domain.PaymentResponse, error)
}

type paymentService struct {
	gateway        gateway.Client
	courseRepo     repository.CourseRepository
	paymentRepo    repository.PaymentRepository
	orderRepo      repository.OrderRepository
	settlementRepo repository.SettlementRepository
	gatewayTimeout time.Duration
	log            zerolog.Logger
}

// NewPaymentService 생성자
func NewPaymentService(
	gw gateway.Client,
	courseRepo repository.CourseRepository,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	settlementRepo repository.SettlementRepository,
	gatewayTimeout time.Duration,
) PaymentService {
	return &paymentService{
		gateway:        gw,
		courseRepo:     courseRepo,
		paymentRepo:    paymentRepo,
		orderRepo:      orderRepo,
		settlementRepo: settlementRepo,
		gatewayTimeout: gatewayTimeout,
		log:            logger.Component("payment"),
	}
}

// VerifyPayment 결제 검증
func (s *paymentService) VerifyPayment(ctx context.Context, userID, paymentID string) (*domain.VerifyPaymentResponse, error) {
	resp, err := s.verify(ctx, userID, paymentID)
	verificationsTotal.WithLabelValues(verificationResult(resp, err)).Inc()
	return resp, err
}

func (s *paymentService) verify(ctx context.Context, userID, paymentID string) (*domain.VerifyPaymentResponse, error) {
	log := logger.WithRequestID(ctx, s.log).With().Str("payment_id", paymentID).Str("user_id", userID).Logger()

	// 1. 게이트웨이 결제 조회
	intent, err := s.fetchIntent(ctx, paymentID)
	if errors.Is(err, gateway.ErrPaymentNotFound) {
		log.Info().Msg("payment unknown to gateway")
		return nil, ErrPaymentNotCompleted
	}
	if err != nil {
		log.Warn().Err(err).Msg("gateway lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}

	// 2. 결제 완료 여부
	if intent.Status != domain.PaymentStatusPaid {
		log.Info().Str("status", string(intent.Status)).Msg("payment not completed")
		return nil, ErrPaymentNotCompleted
	}

	// 3. 주문 컨텍스트
	customData, err := domain.ParseCustomData(intent.CustomData)
	if err != nil {
		log.Warn().Msg("payment has no order context")
		return nil, ErrMissingOrderContext
	}

	// 4. 강의 조회 (현재 카탈로그 기준)
	courseIDs := customData.CourseIDs()
	courses, err := s.courseRepo.FindByIDs(ctx, courseIDs)
	if err != nil {
		log.Error().Err(err).Msg("course lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrSettlementFailed, err)
	}
	if len(courses) != len(courseIDs) {
		log.Warn().Strs("course_ids", courseIDs).Int("resolved", len(courses)).Msg("unknown course in payment")
		return nil, ErrUnknownCourse
	}

	// 5. 금액 검증
	var expected int64
	for _, course := range courses {
		expected += course.SalePrice()
	}
	if expected != intent.Amount {
		log.Warn().
			Bool("fraud_signal", true).
			Int64("expected_amount", expected).
			Int64("paid_amount", intent.Amount).
			Msg("payment amount mismatch")
		return nil, ErrAmountMismatch
	}

	// 6. 이미 처리된 결제
	if existing, err := s.paymentRepo.FindByPaymentID(ctx, paymentID); err == nil {
		return s.alreadyProcessed(ctx, userID, existing), nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Error().Err(err).Msg("payment lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrSettlementFailed, err)
	}

	// 7. 주문 확정
	order, err := s.settlementRepo.Settle(ctx, &repository.SettlementInput{
		UserID:        userID,
		PaymentID:     paymentID,
		Courses:       courses,
		Customer:      customData.CustomerInfo,
		Amount:        intent.Amount,
		Currency:      currencyOrDefault(intent.Currency),
		PaymentMethod: intent.Method,
		PGProvider:    intent.PGProvider,
		PaidAt:        intent.PaidAt,
		Raw:           intent.Raw,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// 동시 요청이 먼저 확정함
			existing, findErr := s.paymentRepo.FindByPaymentID(ctx, paymentID)
			if findErr == nil {
				return s.alreadyProcessed(ctx, userID, existing), nil
			}
			err = findErr
		}
		log.Error().Err(err).Int64("expected_amount", expected).Msg("settlement failed")
		return nil, fmt.Errorf("%w: %v", ErrSettlementFailed, err)
	}

	log.Info().Str("order_id", order.ID).Int64("paid_amount", intent.Amount).Msg("payment settled")
	return &domain.VerifyPaymentResponse{Success: true, OrderID: order.ID}, nil
}

func (s *paymentService) fetchIntent(ctx context.Context, paymentID string) (*gateway.PaymentIntent, error) {
	if s.gatewayTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.gatewayTimeout)
		defer cancel()
	}
	return s.gateway.GetPayment(ctx, paymentID)
}

// alreadyProcessed 주문 소유자에게만 주문 ID를 돌려준다
func (s *paymentService) alreadyProcessed(ctx context.Context, userID string, payment *domain.Payment) *domain.VerifyPaymentResponse {
	resp := &domain.VerifyPaymentResponse{Success: true, AlreadyProcessed: true}
	order, err := s.orderRepo.FindByIDWithItems(ctx, payment.OrderID)
	if err == nil && order.UserID == userID {
		resp.OrderID = order.ID
	}
	return resp
}

// GetOrder 주문 상세 (본인 주문만)
func (s *paymentService) GetOrder(ctx context.Context, userID, orderID string) (*domain.OrderResponse, error) {
	order, err := s.orderRepo.FindByIDWithItems(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	return order.ToResponse(), nil
}

// GetPayment 결제 상태 (본인 결제만)
func (s *paymentService) GetPayment(ctx context.Context, userID, paymentID string) (*domain.PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	order, err := s.orderRepo.FindByIDWithItems(ctx, payment.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	return payment.ToResponse(), nil
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return "KRW"
	}
	return currency
}

func verificationResult(resp *domain.VerifyPaymentResponse, err error) string {
	switch {
	case err == nil && resp != nil && resp.AlreadyProcessed:
		return "already_processed"
	case err == nil:
		return "settled"
	case errors.Is(err, ErrGatewayUnreachable):
		return "gateway_unreachable"
	case errors.Is(err, ErrPaymentNotCompleted):
		return "not_completed"
	case errors.Is(err, ErrMissingOrderContext):
		return "missing_order_context"
	case errors.Is(err, ErrUnknownCourse):
		return "unknown_course"
	case errors.Is(err, ErrAmountMismatch):
		return "amount_mismatch"
	default:
		return "settlement_failed"
	}
}
