package payment

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/lecturemarket/lecturemarket-backend/internal/config"
	"github.com/lecturemarket/lecturemarket-backend/internal/middleware"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/gateway"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/handler"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/repository"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/service"
	"github.com/lecturemarket/lecturemarket-backend/internal/scheduler"
	"github.com/lecturemarket/lecturemarket-backend/pkg/jwt"
)

// StatsTaskName 일일 결제 통계 스케줄 작업명
const StatsTaskName = "daily-payment-stats"

// Module 결제 모듈 (서비스 + 핸들러)
type Module struct {
	Payments service.PaymentService
	Webhooks service.WebhookService
	Stats    service.StatsService

	cfg *config.Config
}

// NewModule 저장소/게이트웨이/서비스 조립
func NewModule(db *gorm.DB, cfg *config.Config) *Module {
	gw := gateway.NewPortOneClient(&gateway.PortOneConfig{
		APIBaseURL: cfg.PortOne.APIBaseURL,
		APISecret:  cfg.PortOne.APISecret,
		StoreID:    cfg.PortOne.StoreID,
		Timeout:    cfg.PortOne.Timeout,
	})
	return NewModuleWithGateway(db, cfg, gw)
}

// NewModuleWithGateway 게이트웨이 구현을 직접 지정
func NewModuleWithGateway(db *gorm.DB, cfg *config.Config, gw gateway.Client) *Module {
	paymentRepo := repository.NewPaymentRepository(db)
	verifier := gateway.NewSignatureVerifier(cfg.PortOne.WebhookSecret, cfg.PortOne.WebhookTolerance)

	return &Module{
		Payments: service.NewPaymentService(
			gw,
			repository.NewCourseRepository(db),
			paymentRepo,
			repository.NewOrderRepository(db),
			repository.NewSettlementRepository(db),
			cfg.PortOne.Timeout,
		),
		Webhooks: service.NewWebhookService(
			verifier,
			gw,
			paymentRepo,
			repository.NewWebhookEventRepository(db),
			cfg.PortOne.Timeout,
		),
		Stats: service.NewStatsService(repository.NewStatsRepository(db), cfg.Location()),
		cfg:   cfg,
	}
}

// RegisterScheduler 일일 통계 작업 등록. 관리자 API/CLI와 같은 함수를 호출한다.
func (m *Module) RegisterScheduler(s *scheduler.Scheduler) {
	if !m.cfg.Batch.Enabled {
		return
	}
	s.Register("payment", StatsTaskName,
		scheduler.DailyAt(m.cfg.Batch.Hour, m.cfg.Batch.Minute, m.cfg.Location()),
		func(ctx context.Context) error {
			_, err := m.Stats.ComputeStats(ctx, "", service.TriggerSchedule)
			return err
		},
	)
}

// RegisterRoutes 라우트 등록. redisClient가 nil이면 rate limit 비활성.
func (m *Module) RegisterRoutes(r gin.IRouter, jwtManager *jwt.Manager, redisClient *redis.Client, tasks handler.TaskLister) {
	paymentHandler := handler.NewPaymentHandler(m.Payments, m.Webhooks)
	batchHandler := handler.NewBatchHandler(m.Stats, tasks)

	payments := r.Group("/payments")
	payments.POST("/webhook",
		middleware.RateLimit(redisClient, middleware.WebhookRateLimitConfig()),
		paymentHandler.HandleWebhook,
	)

	authed := payments.Group("", middleware.JWTAuth(jwtManager))
	authed.POST("/verify",
		middleware.RateLimit(redisClient, middleware.VerifyRateLimitConfig()),
		paymentHandler.VerifyPayment,
	)
	authed.GET("/orders/:id", paymentHandler.GetOrder)
	authed.GET("/:paymentId", paymentHandler.GetPayment)

	admin := r.Group("/admin/batch", middleware.JWTAuth(jwtManager), middleware.RequireAdmin())
	admin.POST("/payment-stats", batchHandler.RunPaymentStats)
	admin.GET("/payment-stats", batchHandler.ListPaymentStats)
	admin.GET("/tasks", batchHandler.ListTasks)
}
