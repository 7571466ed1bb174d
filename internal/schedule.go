package internal

import "time"

// Scheduler holds at most one pending tick. Rescheduling discards the
// pending timer and arms a new one, so ticks never overlap.
type Scheduler struct {
	timer    *time.Timer
	interval time.Duration
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Reschedule(d time.Duration) {
	s.Stop()
	s.interval = d
	s.timer = time.NewTimer(d)
}

func (s *Scheduler) Stop() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// C fires once when the pending tick is due. It is nil when nothing is
// scheduled, which blocks forever in a select.
func (s *Scheduler) C() <-chan time.Time {
	if s.timer == nil {
		return nil
	}
	return s.timer.C
}

func (s *Scheduler) Interval() time.Duration {
	return s.interval
}
