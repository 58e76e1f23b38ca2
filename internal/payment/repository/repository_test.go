package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
	"github.com/stretchr/testify/assert"
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
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

func int64Ptr(v int64) *int64 { return &v }

func seedCourses(t *testing.T, db *gorm.DB) []*domain.Course {
	t.Helper()
	courses := []*domain.Course{
		{ID: "course-a", Title: "Go 입문", Price: 30000, DiscountPrice: int64Ptr(20000)},
		{ID: "course-b", Title: "GORM 실전", Price: 30000},
	}
	require.NoError(t, db.Create(&courses).Error)
	return courses
}

func settleInput(courses []*domain.Course) *SettlementInput {
	paidAt := time.Date(2026, 1, 15, 3, 0, 0, 0, time.UTC)
	return &SettlementInput{
		UserID:        "user-0001-abcdef",
		PaymentID:     "pay-1",
		Courses:       courses,
		Customer:      domain.CustomerInfo{Name: "홍길동", Email: "hong@example.com", Phone: "010-0000-0000"},
		Amount:        50000,
		Currency:      "KRW",
		PaymentMethod: "PaymentMethodCard",
		PGProvider:    "TOSSPAYMENTS",
		PaidAt:        &paidAt,
		Raw:           []byte(`{"status":"PAID"}`),
	}
}

func TestSettlementRepository_Settle(t *testing.T) {
	ctx := context.Background()

	t.Run("성공 - 주문/결제/아이템/수강권/장바구니", func(t *testing.T) {
		db := setupTestDB(t)
		courses := seedCourses(t, db)
		require.NoError(t, db.Create(&[]domain.CartItem{
			{ID: "cart-1", UserID: "user-0001-abcdef", CourseID: "course-a"},
			{ID: "cart-2", UserID: "user-0001-abcdef", CourseID: "course-b"},
			{ID: "cart-3", UserID: "user-0001-abcdef", CourseID: "course-c"},
			{ID: "cart-4", UserID: "other-user", CourseID: "course-a"},
		}).Error)

		order, err := NewSettlementRepository(db).Settle(ctx, settleInput(courses))
		require.NoError(t, err)

		assert.Equal(t, int64(60000), order.TotalAmount)
		assert.Equal(t, int64(50000), order.FinalAmount)
		assert.Equal(t, int64(10000), order.DiscountAmount)
		assert.Equal(t, domain.OrderStatusPaid, order.Status)
		assert.Regexp(t, `^ORD-\d{17}-user-000$`, order.OrderNumber)

		var items []domain.OrderItem
		require.NoError(t, db.Where("order_id = ?", order.ID).Order("course_id").Find(&items).Error)
		require.Len(t, items, 2)
		assert.Equal(t, int64(30000), items[0].OriginalPrice)
		assert.Equal(t, int64(20000), *items[0].DiscountPrice)
		assert.Equal(t, int64(20000), items[0].FinalPrice)
		assert.Nil(t, items[1].DiscountPrice)
		assert.Equal(t, int64(30000), items[1].FinalPrice)

		payment, err := NewPaymentRepository(db).FindByPaymentID(ctx, "pay-1")
		require.NoError(t, err)
		assert.Equal(t, order.ID, payment.OrderID)
		assert.Equal(t, domain.PaymentStatusPaid, payment.Status)
		assert.JSONEq(t, `{"status":"PAID"}`, string(payment.PortoneData))

		var enrollments int64
		db.Model(&domain.Enrollment{}).Where("user_id = ?", "user-0001-abcdef").Count(&enrollments)
		assert.Equal(t, int64(2), enrollments)

		var cart []domain.CartItem
		require.NoError(t, db.Order("id").Find(&cart).Error)
		require.Len(t, cart, 2)
		assert.Equal(t, "cart-3", cart[0].ID)
		assert.Equal(t, "cart-4", cart[1].ID)
	})

	t.Run("같은 결제 ID 재시도는 ErrDuplicate, 추가 기록 없음", func(t *testing.T) {
		db := setupTestDB(t)
		courses := seedCourses(t, db)
		repo := NewSettlementRepository(db)

		_, err := repo.Settle(ctx, settleInput(courses))
		require.NoError(t, err)
		_, err = repo.Settle(ctx, settleInput(courses))
		assert.ErrorIs(t, err, ErrDuplicate)

		var orders, items int64
		db.Model(&domain.Order{}).Count(&orders)
		db.Model(&domain.OrderItem{}).Count(&items)
		assert.Equal(t, int64(1), orders)
		assert.Equal(t, int64(2), items)
	})

	t.Run("이미 수강 중인 강의는 그대로 두고 성공", func(t *testing.T) {
		db := setupTestDB(t)
		courses := seedCourses(t, db)
		require.NoError(t, db.Create(&domain.Enrollment{
			ID: "enr-old", UserID: "user-0001-abcdef", CourseID: "course-a", EnrolledAt: time.Now(),
		}).Error)

		_, err := NewSettlementRepository(db).Settle(ctx, settleInput(courses))
		require.NoError(t, err)

		var enrollments []domain.Enrollment
		require.NoError(t, db.Order("course_id").Find(&enrollments).Error)
		require.Len(t, enrollments, 2)
		assert.Equal(t, "enr-old", enrollments[0].ID)
	})

	t.Run("중간 단계 실패 시 전부 롤백", func(t *testing.T) {
		db := setupTestDB(t)
		courses := seedCourses(t, db)
		require.NoError(t, db.Create(&domain.CartItem{ID: "cart-1", UserID: "user-0001-abcdef", CourseID: "course-a"}).Error)

		boom := errors.New("order items insert failed")
		require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_order_items", func(tx *gorm.DB) {
			if tx.Statement.Table == "order_items" {
				_ = tx.AddError(boom)
			}
		}))

		_, err := NewSettlementRepository(db).Settle(ctx, settleInput(courses))
		require.ErrorIs(t, err, boom)

		for _, model := range []interface{}{&domain.Order{}, &domain.Payment{}, &domain.OrderItem{}, &domain.Enrollment{}} {
			var n int64
			db.Model(model).Count(&n)
			assert.Zero(t, n)
		}
		var cart int64
		db.Model(&domain.CartItem{}).Count(&cart)
		assert.Equal(t, int64(1), cart)
	})
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 89*int(time.Millisecond), time.UTC)
	assert.Equal(t, "ORD-20260304050607089-abcdefgh", GenerateOrderNumber(now, "abcdefghijkl"))
	assert.Equal(t, "ORD-20260304050607089-abc", GenerateOrderNumber(now, "abc"))
}

func TestCourseRepository_FindByIDs(t *testing.T) {
	db := setupTestDB(t)
	seedCourses(t, db)
	require.NoError(t, db.Create(&domain.Course{ID: "course-del", Title: "삭제됨", Price: 1000}).Error)
	require.NoError(t, db.Delete(&domain.Course{ID: "course-del"}).Error)

	courses, err := NewCourseRepository(db).FindByIDs(context.Background(), []string{"course-a", "course-del", "nope"})
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "course-a", courses[0].ID)

	empty, err := NewCourseRepository(db).FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPaymentRepository_ApplyGatewayState(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	courses := seedCourses(t, db)
	order, err := NewSettlementRepository(db).Settle(ctx, settleInput(courses))
	require.NoError(t, err)
	repo := NewPaymentRepository(db)

	t.Run("취소 반영 - 결제/주문 상태", func(t *testing.T) {
		cancelledAt := time.Date(2026, 1, 16, 1, 0, 0, 0, time.UTC)
		payment, err := repo.ApplyGatewayState(ctx, "pay-1", &GatewayState{
			Status:      domain.PaymentStatusCancelled,
			CancelledAt: &cancelledAt,
			Raw:         []byte(`{"status":"CANCELLED"}`),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusCancelled, payment.Status)
		require.NotNil(t, payment.CancelledAt)
		assert.True(t, cancelledAt.Equal(*payment.CancelledAt))
		require.NotNil(t, payment.PaidAt)

		got, err := NewOrderRepository(db).FindByIDWithItems(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCancelled, got.Status)
		assert.Len(t, got.Items, 2)
		require.NotNil(t, got.Payment)
		assert.Equal(t, "pay-1", got.Payment.PaymentID)
	})

	t.Run("로컬 결제 없음", func(t *testing.T) {
		_, err := repo.ApplyGatewayState(ctx, "unknown", &GatewayState{Status: domain.PaymentStatusPaid})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPaymentRepository_ApplyGatewayState_CancelWithoutTimestamp(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	courses := seedCourses(t, db)
	_, err := NewSettlementRepository(db).Settle(ctx, settleInput(courses))
	require.NoError(t, err)
	repo := NewPaymentRepository(db)

	before := time.Now().Add(-time.Second)
	payment, err := repo.ApplyGatewayState(ctx, "pay-1", &GatewayState{Status: domain.PaymentStatusPartialCancelled})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPartialCancelled, payment.Status)
	require.NotNil(t, payment.CancelledAt)
	assert.WithinDuration(t, time.Now(), *payment.CancelledAt, time.Minute)
	assert.False(t, payment.CancelledAt.Before(before))
	first := *payment.CancelledAt

	// 이후 전체 취소 웹훅도 시각이 없으면 처음 기록을 유지
	payment, err = repo.ApplyGatewayState(ctx, "pay-1", &GatewayState{Status: domain.PaymentStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCancelled, payment.Status)
	require.NotNil(t, payment.CancelledAt)
	assert.True(t, first.Equal(*payment.CancelledAt))
}

func TestOrderRepository_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := NewOrderRepository(db).FindByIDWithItems(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatsRepository(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewStatsRepository(db)

	from := time.Date(2026, 1, 14, 15, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	at := func(ts time.Time) *time.Time { v := ts.UTC(); return &v }

	payments := []domain.Payment{
		{ID: "p1", PaymentID: "g1", OrderID: "o1", Amount: 10000, Currency: "KRW", Status: domain.PaymentStatusPaid, PaidAt: at(from)},
		{ID: "p2", PaymentID: "g2", OrderID: "o2", Amount: 20000, Currency: "KRW", Status: domain.PaymentStatusPaid, PaidAt: at(to.Add(-time.Second))},
		{ID: "p3", PaymentID: "g3", OrderID: "o3", Amount: 40000, Currency: "KRW", Status: domain.PaymentStatusPaid, PaidAt: at(to)},
		{ID: "p4", PaymentID: "g4", OrderID: "o4", Amount: 80000, Currency: "KRW", Status: domain.PaymentStatusCancelled, PaidAt: at(from.Add(time.Hour))},
		{ID: "p5", PaymentID: "g5", OrderID: "o5", Amount: 160000, Currency: "KRW", Status: domain.PaymentStatusPaid, PaidAt: at(from.Add(-time.Second))},
	}
	require.NoError(t, db.Create(&payments).Error)

	count, amount, err := repo.AggregatePaid(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, int64(30000), amount)

	require.NoError(t, repo.Upsert(ctx, &domain.DailyPaymentStats{StatDate: "2026-01-15", TotalPayments: 1, TotalAmount: 1}))
	require.NoError(t, repo.Upsert(ctx, &domain.DailyPaymentStats{StatDate: "2026-01-15", TotalPayments: count, TotalAmount: amount}))
	require.NoError(t, repo.Upsert(ctx, &domain.DailyPaymentStats{StatDate: "2026-01-16", TotalPayments: 0, TotalAmount: 0}))

	stats, err := repo.FindByDate(ctx, "2026-01-15")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalPayments)
	assert.Equal(t, int64(30000), stats.TotalAmount)

	var rows int64
	db.Model(&domain.DailyPaymentStats{}).Count(&rows)
	assert.Equal(t, int64(2), rows)

	list, err := repo.List(ctx, "2026-01-16", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2026-01-16", list[0].StatDate)

	_, err = repo.FindByDate(ctx, "2025-12-31")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWebhookEventRepository_Record(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewWebhookEventRepository(db)

	require.NoError(t, repo.Record(ctx, &domain.WebhookEvent{
		WebhookID: "msg_1", EventType: "Transaction.Paid", PaymentID: "pay-1",
		Outcome: domain.WebhookOutcomeNoLocalPayment, Payload: []byte(`{"a":1}`),
	}))
	now := time.Now()
	require.NoError(t, repo.Record(ctx, &domain.WebhookEvent{
		WebhookID: "msg_1", EventType: "Transaction.Paid", PaymentID: "pay-1",
		Outcome: domain.WebhookOutcomeApplied, ProcessedAt: &now, Payload: []byte("not json"),
	}))

	event, err := repo.FindByWebhookID(ctx, "msg_1")
	require.NoError(t, err)
	assert.Equal(t, 2, event.Deliveries)
	assert.Equal(t, domain.WebhookOutcomeApplied, event.Outcome)
	assert.NotNil(t, event.ProcessedAt)
	assert.JSONEq(t, `{"a":1}`, string(event.Payload))
}
