package service

import (
	"context"
	"testing"
	"time"

	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newStatsFixture(t *testing.T) (*gorm.DB, *statsService) {
	t.Helper()
	db := setupTestDB(t)
	loc, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	svc := NewStatsService(repository.NewStatsRepository(db), loc).(*statsService)
	return db, svc
}

func seedPayment(t *testing.T, db *gorm.DB, id string, amount int64, status domain.PaymentStatus, paidAt time.Time) {
	t.Helper()
	at := paidAt.UTC()
	require.NoError(t, db.Create(&domain.Payment{
		ID: "p-" + id, PaymentID: id, OrderID: "o-" + id,
		Amount: amount, Currency: "KRW", Status: status, PaidAt: &at,
	}).Error)
}

func TestStatsService_ComputeStats(t *testing.T) {
	db, svc := newStatsFixture(t)
	kst := svc.loc
	ctx := context.Background()

	// 2026-01-14 (KST) 결제
	seedPayment(t, db, "g1", 10000, domain.PaymentStatusPaid, time.Date(2026, 1, 14, 0, 0, 0, 0, kst))
	seedPayment(t, db, "g2", 20000, domain.PaymentStatusPaid, time.Date(2026, 1, 14, 23, 59, 59, 0, kst))
	// 창 밖
	seedPayment(t, db, "g3", 40000, domain.PaymentStatusPaid, time.Date(2026, 1, 15, 0, 0, 0, 0, kst))
	seedPayment(t, db, "g4", 80000, domain.PaymentStatusPaid, time.Date(2026, 1, 13, 23, 59, 59, 0, kst))
	// PAID 아님
	seedPayment(t, db, "g5", 160000, domain.PaymentStatusCancelled, time.Date(2026, 1, 14, 12, 0, 0, 0, kst))

	result, err := svc.ComputeStats(ctx, "2026-01-15", TriggerAdmin)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-14", result.Date)
	assert.Equal(t, int64(2), result.TotalPayments)
	assert.Equal(t, int64(30000), result.TotalAmount)

	t.Run("같은 날짜 재실행은 덮어쓰기", func(t *testing.T) {
		again, err := svc.ComputeStats(ctx, "2026-01-15", TriggerCLI)
		require.NoError(t, err)
		assert.Equal(t, result, again)

		var rows []domain.DailyPaymentStats
		require.NoError(t, db.Find(&rows).Error)
		require.Len(t, rows, 1)
		assert.Equal(t, int64(2), rows[0].TotalPayments)
		assert.Equal(t, int64(30000), rows[0].TotalAmount)
	})

	t.Run("늦게 들어온 결제 반영", func(t *testing.T) {
		seedPayment(t, db, "g6", 5000, domain.PaymentStatusPaid, time.Date(2026, 1, 14, 9, 0, 0, 0, kst))
		again, err := svc.ComputeStats(ctx, "2026-01-15", TriggerSchedule)
		require.NoError(t, err)
		assert.Equal(t, int64(3), again.TotalPayments)
		assert.Equal(t, int64(35000), again.TotalAmount)
		assert.Equal(t, int64(1), countRows(t, db, &domain.DailyPaymentStats{}))
	})
}

func TestStatsService_DefaultsToYesterday(t *testing.T) {
	_, svc := newStatsFixture(t)
	// KST 기준 2026-03-01 00:30 == UTC 2026-02-28 15:30
	svc.now = func() time.Time { return time.Date(2026, 2, 28, 15, 30, 0, 0, time.UTC) }

	result, err := svc.ComputeStats(context.Background(), "", TriggerSchedule)
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", result.Date)
	assert.Zero(t, result.TotalPayments)
}

func TestStatsService_InvalidDate(t *testing.T) {
	_, svc := newStatsFixture(t)
	ctx := context.Background()

	_, err := svc.ComputeStats(ctx, "2026/01/15", TriggerAdmin)
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = svc.Backfill(ctx, "2026-01-10", "2026-01-01", TriggerCLI)
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = svc.ListStats(ctx, "yesterday", "")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestStatsService_Backfill(t *testing.T) {
	db, svc := newStatsFixture(t)
	kst := svc.loc
	ctx := context.Background()

	seedPayment(t, db, "g1", 1000, domain.PaymentStatusPaid, time.Date(2026, 1, 1, 10, 0, 0, 0, kst))
	seedPayment(t, db, "g2", 2000, domain.PaymentStatusPaid, time.Date(2026, 1, 3, 10, 0, 0, 0, kst))

	results, err := svc.Backfill(ctx, "2026-01-01", "2026-01-03", TriggerCLI)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "2026-01-01", results[0].Date)
	assert.Equal(t, int64(1000), results[0].TotalAmount)
	assert.Zero(t, results[1].TotalPayments)
	assert.Equal(t, int64(2000), results[2].TotalAmount)

	list, err := svc.ListStats(ctx, "2026-01-02", "2026-01-03")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2026-01-02", list[0].StatDate)
}
