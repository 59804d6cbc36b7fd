package tidepool

import "time"

// TimerID identifies a timer registered on a Scheduler. The zero value is
// never issued.
type TimerID uint64

type timer struct {
	id       TimerID
	due      time.Duration
	interval time.Duration // 0 for one-shot timers
	fn       func()
}

// Scheduler runs delayed and repeating callbacks against a virtual clock.
// It never spawns goroutines: the clock moves only when Advance is called,
// normally once per frame from the update loop, and callbacks run inside
// that call.
type Scheduler struct {
	now    time.Duration
	nextID TimerID
	timers []*timer
}

// NewScheduler creates a scheduler with its clock at zero.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns the scheduler's current virtual time. Inside a callback this
// is the time the timer was due.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After schedules fn to run once, d from now.
func (s *Scheduler) After(d time.Duration, fn func()) TimerID {
	return s.add(d, 0, fn)
}

// Every schedules fn to run every d, first at now+d. d must be positive.
func (s *Scheduler) Every(d time.Duration, fn func()) TimerID {
	if d <= 0 {
		panic("tidepool: Scheduler.Every with non-positive interval")
	}
	return s.add(d, d, fn)
}

func (s *Scheduler) add(d, interval time.Duration, fn func()) TimerID {
	if fn == nil {
		panic("tidepool: nil timer callback")
	}
	if d < 0 {
		d = 0
	}
	s.nextID++
	s.timers = append(s.timers, &timer{id: s.nextID, due: s.now + d, interval: interval, fn: fn})
	return s.nextID
}

// Cancel stops the timer. It reports whether the timer was still pending.
// Cancelling from inside a callback, including the timer's own, is allowed.
func (s *Scheduler) Cancel(id TimerID) bool {
	for i, t := range s.timers {
		if t.id == id {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Pending returns the number of scheduled timers.
func (s *Scheduler) Pending() int {
	return len(s.timers)
}

// Advance moves the clock forward by dt, running every timer that falls due
// in order of due time (ties in registration order). Timers added by
// callbacks run within the same call if they fall due before its end.
func (s *Scheduler) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	target := s.now + dt
	for {
		idx := -1
		for i, t := range s.timers {
			if t.due > target {
				continue
			}
			if idx < 0 || t.due < s.timers[idx].due ||
				(t.due == s.timers[idx].due && t.id < s.timers[idx].id) {
				idx = i
			}
		}
		if idx < 0 {
			break
		}
		t := s.timers[idx]
		s.now = t.due
		if t.interval > 0 {
			t.due += t.interval
		} else {
			s.timers = append(s.timers[:idx], s.timers[idx+1:]...)
		}
		t.fn()
	}
	s.now = target
}
