package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultTickInterval = 30 * time.Second
	defaultLockTTL      = 10 * time.Minute
)

// Task 등록된 작업
type Task struct {
	Name      string
	Group     string
	Schedule  Schedule
	Handler   func(ctx context.Context) error
	LastRun   time.Time
	NextRun   time.Time
	RunCount  int64
	Skipped   int64
	LastError error
}

// Scheduler in-process 작업 스케줄러
type Scheduler struct {
	tasks        []*Task
	mu           sync.RWMutex
	log          zerolog.Logger
	locker       Locker
	lockTTL      time.Duration
	tickInterval time.Duration
	now          func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option 스케줄러 옵션
type Option func(*Scheduler)

// WithLocker 분산 락 사용 (여러 인스턴스 배포 시)
func WithLocker(locker Locker, ttl time.Duration) Option {
	return func(s *Scheduler) {
		s.locker = locker
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithTickInterval 스케줄 확인 주기
func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.tickInterval = d
		}
	}
}

// New 스케줄러 생성
func New(log zerolog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		tasks:        make([]*Task, 0),
		log:          log,
		lockTTL:      defaultLockTTL,
		tickInterval: defaultTickInterval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register 작업 등록
func (s *Scheduler) Register(group, name string, schedule Schedule, handler func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, &Task{
		Name:     name,
		Group:    group,
		Schedule: schedule,
		Handler:  handler,
		NextRun:  schedule.Next(s.now()),
	})

	s.log.Info().Str("group", group).Str("task", name).Str("schedule", schedule.String()).Msg("scheduled task registered")
}

// Start 백그라운드 실행. ctx가 끝나거나 Stop 호출 시 종료.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.tickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx, s.now())
			}
		}
	}()
	s.log.Info().Dur("tick", s.tickInterval).Msg("scheduler started")
}

// Stop 진행 중인 작업이 끝날 때까지 대기
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.log.Info().Msg("scheduler stopped")
}

// tick 실행 시각이 된 작업 실행
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	s.mu.RLock()
	due := make([]*Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		if !now.Before(task.NextRun) {
			due = append(due, task)
		}
	}
	s.mu.RUnlock()

	for _, task := range due {
		s.run(ctx, task, now)
	}
}

func (s *Scheduler) run(ctx context.Context, task *Task, now time.Time) {
	s.mu.RLock()
	slot := task.NextRun
	s.mu.RUnlock()

	log := s.log.With().Str("group", task.Group).Str("task", task.Name).Logger()

	acquired := true
	if s.locker != nil {
		key := fmt.Sprintf("%s:%s:%d", task.Group, task.Name, slot.Unix())
		ok, err := s.locker.TryLock(ctx, key, s.lockTTL)
		if err != nil {
			// 락 저장소 장애 시에도 작업은 실행 (작업 자체가 멱등)
			log.Warn().Err(err).Msg("scheduler lock unavailable, running anyway")
		} else {
			acquired = ok
		}
	}

	var runErr error
	if acquired {
		log.Info().Msg("running scheduled task")
		runErr = task.Handler(ctx)
		if runErr != nil {
			log.Error().Err(runErr).Msg("scheduled task failed")
		}
	} else {
		log.Info().Msg("scheduled task already claimed by another instance")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	task.NextRun = task.Schedule.Next(now)
	if !acquired {
		task.Skipped++
		return
	}
	task.LastRun = now
	task.LastError = runErr
	task.RunCount++
}

// GetTasks 등록된 작업 목록 (모니터링용)
func (s *Scheduler) GetTasks() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]TaskInfo, 0, len(s.tasks))
	for _, t := range s.tasks {
		info := TaskInfo{
			Name:     t.Name,
			Group:    t.Group,
			Schedule: t.Schedule.String(),
			NextRun:  t.NextRun,
			RunCount: t.RunCount,
			Skipped:  t.Skipped,
		}
		if !t.LastRun.IsZero() {
			lastRun := t.LastRun
			info.LastRun = &lastRun
		}
		if t.LastError != nil {
			errMsg := t.LastError.Error()
			info.LastError = &errMsg
		}
		result = append(result, info)
	}
	return result
}

// TaskInfo 작업 정보 (JSON 응답용)
type TaskInfo struct {
	Name      string     `json:"name"`
	Group     string     `json:"group"`
	Schedule  string     `json:"schedule"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   time.Time  `json:"next_run"`
	RunCount  int64      `json:"run_count"`
	Skipped   int64      `json:"skipped"`
	LastError *string    `json:"last_error,omitempty"`
}
