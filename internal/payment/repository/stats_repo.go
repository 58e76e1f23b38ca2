package repository

import (
	"context"
	"time"

	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatsRepository 일별 결제 통계 저장소
type StatsRepository interface {
	// AggregatePaid [from, to) 구간 PAID 결제 건수/금액 합계
	AggregatePaid(ctx context.Context, from, to time.Time) (count int64, amount int64, err error)
	// Upsert 날짜 기준 덮어쓰기
	Upsert(ctx context.Context, stats *domain.DailyPaymentStats) error
	FindByDate(ctx context.Context, date string) (*domain.DailyPaymentStats, error)
	// List 날짜 범위 조회 (빈 값이면 제한 없음)
	List(ctx context.Context, from, to string) ([]*domain.DailyPaymentStats, error)
}

type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 생성자
func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) AggregatePaid(ctx context.Context, from, to time.Time) (int64, int64, error) {
	var result struct {
		Cnt   int64
		Total int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Payment{}).
		Select("COUNT(*) AS cnt, COALESCE(SUM(amount), 0) AS total").
		Where("status = ? AND paid_at >= ? AND paid_at < ?", domain.PaymentStatusPaid, from.UTC(), to.UTC()).
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	return result.Cnt, result.Total, nil
}

func (r *statsRepository) Upsert(ctx context.Context, stats *domain.DailyPaymentStats) error {
	now := time.Now()
	stats.CreatedAt = now
	stats.UpdatedAt = now
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stat_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_payments", "total_amount", "updated_at"}),
	}).Create(stats).Error
}

func (r *statsRepository) FindByDate(ctx context.Context, date string) (*domain.DailyPaymentStats, error) {
	var stats domain.DailyPaymentStats
	if err := r.db.WithContext(ctx).Where("stat_date = ?", date).First(&stats).Error; err != nil {
		return nil, notFound(err)
	}
	return &stats, nil
}

func (r *statsRepository) List(ctx context.Context, from, to string) ([]*domain.DailyPaymentStats, error) {
	query := r.db.WithContext(ctx).Model(&domain.DailyPaymentStats{})
	if from != "" {
		query = query.Where("stat_date >= ?", from)
	}
	if to != "" {
		query = query.Where("stat_date <= ?", to)
	}

	var list []*domain.DailyPaymentStats
	err := query.Order("stat_date ASC").Find(&list).Error
	return list, err
}
