package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/gateway"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 메모리 DB는 커넥션마다 별개이므로 하나만 쓴다
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(repository.Models()...))
	return db
}

// stubGateway 결제 ID별 고정 응답을 돌려주는 게이트웨이
type stubGateway struct {
	mu      sync.Mutex
	intents map[string]*gateway.PaymentIntent
	err     error
	block   bool
	calls   int
}

func newStubGateway() *stubGateway {
	return &stubGateway{intents: make(map[string]*gateway.PaymentIntent)}
}

func (g *stubGateway) put(intent *gateway.PaymentIntent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[intent.PaymentID] = intent
}

func (g *stubGateway) GetPayment(ctx context.Context, paymentID string) (*gateway.PaymentIntent, error) {
	g.mu.Lock()
	g.calls++
	block, err := g.block, g.err
	intent, ok := g.intents[paymentID]
	g.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %v", gateway.ErrUpstream, ctx.Err())
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, gateway.ErrPaymentNotFound
	}
	copied := *intent
	return &copied, nil
}

func (g *stubGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func int64Ptr(v int64) *int64 { return &v }

func paidIntent(paymentID string, amount int64, customData string) *gateway.PaymentIntent {
	paidAt := time.Date(2026, 1, 15, 3, 0, 0, 0, time.UTC)
	return &gateway.PaymentIntent{
		PaymentID:  paymentID,
		Status:     domain.PaymentStatusPaid,
		Amount:     amount,
		Currency:   "KRW",
		Method:     "PaymentMethodCard",
		PGProvider: "TOSSPAYMENTS",
		CustomData: customData,
		PaidAt:     &paidAt,
		Raw:        []byte(fmt.Sprintf(`{"id":%q,"status":"PAID"}`, paymentID)),
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
