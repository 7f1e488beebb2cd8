package httpmux

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Scheduler runs named single-shot callbacks. Scheduling a name that is
// already armed replaces the earlier callback; Cancel disarms it. The
// transport uses a single slot for all idle evictions.
type Scheduler interface {
	ScheduleOnce(name string, delay time.Duration, fn func())
	Cancel(name string)
}

// clockScheduler is the default Scheduler, backed by a clock.Clock so
// tests can drive it with a mock.
type clockScheduler struct {
	clk clock.Clock

	mu     sync.Mutex
	timers map[string]*clock.Timer
}

func newClockScheduler(clk clock.Clock) *clockScheduler {
	return &clockScheduler{clk: clk, timers: make(map[string]*clock.Timer)}
}

func (s *clockScheduler) ScheduleOnce(name string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[name]; ok {
		t.Stop()
	}
	s.timers[name] = s.clk.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, name)
		s.mu.Unlock()
		fn()
	})
}

func (s *clockScheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[name]; ok {
		t.Stop()
		delete(s.timers, name)
	}
}
