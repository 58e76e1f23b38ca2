package service

import (
	"context"
	"time"

	"github.com/lecturemarket/lecturemarket-backend/internal/payment/domain"
	"github.com/lecturemarket/lecturemarket-backend/internal/payment/repository"
	"github.com/lecturemarket/lecturemarket-backend/pkg/logger"
	"github.com/rs/zerolog"
)

// Trigger 배치 실행 주체
type Trigger string

const (
	TriggerSchedule Trigger = "schedule"
	TriggerAdmin    Trigger = "admin"
	TriggerCLI      Trigger = "cli"
)

// maxBackfillDays 한 번에 재계산할 수 있는 최대 일수
const maxBackfillDays = 366

// StatsService 일별 결제 통계
type StatsService interface {
	// ComputeStats targetDate 기준 전날 통계를 계산해 저장. 빈 값이면 오늘 기준.
	ComputeStats(ctx context.Context, targetDate string, trigger Trigger) (*domain.StatsResult, error)
	// Backfill from~to (통계 날짜, 양끝 포함) 를 하루씩 재계산
	Backfill(ctx context.Context, from, to string, trigger Trigger) ([]*domain.StatsResult, error)
	ListStats(ctx context.Context, from, to string) ([]*domain.DailyPaymentStats, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
	loc       *time.Location
	now       func() time.Time
	log       zerolog.Logger
}

// NewStatsService 생성자
func NewStatsService(statsRepo repository.StatsRepository, loc *time.Location) StatsService {
	if loc == nil {
		loc = time.Local
	}
	return &statsService{
		statsRepo: statsRepo,
		loc:       loc,
		now:       time.Now,
		log:       logger.Component("payment.stats"),
	}
}

func (s *statsService) ComputeStats(ctx context.Context, targetDate string, trigger Trigger) (*domain.StatsResult, error) {
	target := s.now().In(s.loc)
	if targetDate != "" {
		parsed, err := time.ParseInLocation(domain.StatDateLayout, targetDate, s.loc)
		if err != nil {
			return nil, ErrInvalidDate
		}
		target = parsed
	}

	end := midnight(target)
	start := end.AddDate(0, 0, -1)
	return s.computeWindow(ctx, start, end, trigger)
}

func (s *statsService) Backfill(ctx context.Context, from, to string, trigger Trigger) ([]*domain.StatsResult, error) {
	start, err := time.ParseInLocation(domain.StatDateLayout, from, s.loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	end, err := time.ParseInLocation(domain.StatDateLayout, to, s.loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if end.Before(start) || end.Sub(start) > maxBackfillDays*24*time.Hour {
		return nil, ErrInvalidDate
	}

	var results []*domain.StatsResult
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := s.computeWindow(ctx, day, day.AddDate(0, 0, 1), trigger)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *statsService) computeWindow(ctx context.Context, start, end time.Time, trigger Trigger) (*domain.StatsResult, error) {
	date := start.Format(domain.StatDateLayout)
	log := s.log.With().Str("date", date).Str("trigger", string(trigger)).Logger()

	count, amount, err := s.statsRepo.AggregatePaid(ctx, start, end)
	if err != nil {
		statsRunsTotal.WithLabelValues("error", string(trigger)).Inc()
		log.Error().Err(err).Msg("payment stats aggregation failed")
		return nil, err
	}

	if err := s.statsRepo.Upsert(ctx, &domain.DailyPaymentStats{
		StatDate:      date,
		TotalPayments: count,
		TotalAmount:   amount,
	}); err != nil {
		statsRunsTotal.WithLabelValues("error", string(trigger)).Inc()
		log.Error().Err(err).Msg("payment stats upsert failed")
		return nil, err
	}

	statsRunsTotal.WithLabelValues("ok", string(trigger)).Inc()
	log.Info().Int64("total_payments", count).Int64("total_amount", amount).Msg("payment stats computed")
	return &domain.StatsResult{Date: date, TotalPayments: count, TotalAmount: amount}, nil
}

func (s *statsService) ListStats(ctx context.Context, from, to string) ([]*domain.DailyPaymentStats, error) {
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(domain.StatDateLayout, d); err != nil {
			return nil, ErrInvalidDate
		}
	}
	return s.statsRepo.List(ctx, from, to)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
