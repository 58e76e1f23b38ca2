package scheduler

import (
	"fmt"
	"time"
)

// Schedule 다음 실행 시각 계산
type Schedule interface {
	Next(after time.Time) time.Time
	String() string
}

// DailyAt 매일 loc 기준 hour:minute
func DailyAt(hour, minute int, loc *time.Location) Schedule {
	if loc == nil {
		loc = time.Local
	}
	return dailySchedule{hour: hour, minute: minute, loc: loc}
}

type dailySchedule struct {
	hour, minute int
	loc          *time.Location
}

func (s dailySchedule) Next(after time.Time) time.Time {
	t := after.In(s.loc)
	next := time.Date(t.Year(), t.Month(), t.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(t) {
		next = time.Date(t.Year(), t.Month(), t.Day()+1, s.hour, s.minute, 0, 0, s.loc)
	}
	return next
}

func (s dailySchedule) String() string {
	return fmt.Sprintf("daily %02d:%02d %s", s.hour, s.minute, s.loc)
}
