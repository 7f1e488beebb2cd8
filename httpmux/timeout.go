package httpmux

import (
	"sort"
	"time"

	"dqx0.com/go/transports/internal/obs"
)

// timeoutAction names the single timer slot shared by all evictions.
const timeoutAction = "httpmux-idle-timeout"

// insertTimeout places c into the deadline-ordered queue.
func (t *Transport) insertTimeout(c *Conn) {
	i := sort.Search(len(t.timeouts), func(i int) bool {
		return t.timeouts[i].deadline.After(c.deadline)
	})
	t.timeouts = append(t.timeouts, nil)
	copy(t.timeouts[i+1:], t.timeouts[i:])
	t.timeouts[i] = c
}

// removeTimeout removes c by identity. Deadlines can coincide, so value
// comparison would be wrong here.
func (t *Transport) removeTimeout(c *Conn) {
	for i, e := range t.timeouts {
		if e == c {
			t.timeouts = append(t.timeouts[:i], t.timeouts[i+1:]...)
			return
		}
	}
}

// startTimer arms the shared timer for the queue head. Callers must
// ensure the queue is non-empty.
func (t *Transport) startTimer(now time.Time) {
	head := t.timeouts[0]
	t.nextTimeout = head.deadline
	t.Scheduler.ScheduleOnce(timeoutAction, head.deadline.Sub(now), t.onTimeout)
}

// onTimeout evicts every connection whose deadline has passed. Several
// entries can expire in one firing: deadlines may coincide, and a timer
// can fire late. Afterwards the timer is re-armed for the new head, or
// stays idle when the queue drained.
func (t *Transport) onTimeout() {
	now := t.Clock.Now()
	t.nextTimeout = time.Time{}

	for len(t.timeouts) > 0 {
		head := t.timeouts[0]
		if head.deadline.After(now) {
			t.startTimer(now)
			return
		}
		t.metricCounter("httpmux_conn_evicted_total", 1)
		t.drop(head, "idle timeout")
	}
	t.logf(obs.Debug, "eviction queue drained, timer idle")
}
