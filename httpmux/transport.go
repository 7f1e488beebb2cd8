package httpmux

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"

	"dqx0.com/go/transports/httpmux/internal/http1"
	"dqx0.com/go/transports/internal/obs"
)

// DefaultIdleTimeout is how long a pooled connection may sit without
// completing a connect before it is evicted.
const DefaultIdleTimeout = 60 * time.Second

// Conn is one pooled destination entry. Its identity is the lowercased
// host:port key; the backend socket behind it may be torn down and
// re-established without the entry changing.
type Conn struct {
	host string
	port int
	key  string

	sock      Socket
	connected bool
	deadline  time.Time
	buf       []byte
}

// Destination returns the normalized host:port key.
func (c *Conn) Destination() string { return c.key }

// Host returns the lowercased host.
func (c *Conn) Host() string { return c.host }

// Port returns the destination port.
func (c *Conn) Port() int { return c.port }

// Connected reports whether the backend signalled a successful connect
// and the socket is still live.
func (c *Conn) Connected() bool { return c.connected && c.sock != nil }

// consume discards n bytes from the front of the accumulation buffer,
// shifting any pipelined tail down in place.
func (c *Conn) consume(n int) {
	if n <= 0 {
		return
	}
	if n >= len(c.buf) {
		c.buf = c.buf[:0]
		return
	}
	m := copy(c.buf, c.buf[n:])
	c.buf = c.buf[:m]
}

// Transport multiplexes HTTP/1.1 requests over pooled keep-alive
// connections, one entry per destination. It is the explicit owner of
// what the original design kept in process-wide state: the destination
// mapping and the idle-eviction queue.
//
// Transport is not safe for concurrent use; all methods, backend events
// and timer callbacks must run on one goroutine (see EventLoop).
type Transport struct {
	Backend   Backend
	Queue     RequestQueue
	Scheduler Scheduler   // nil: clock-backed default
	Clock     clock.Clock // nil: wall clock

	IdleTimeout time.Duration // zero: DefaultIdleTimeout
	// MaxBufferBytes, when positive, drops a connection whose buffer
	// grows past the limit without yielding a complete message. Zero
	// keeps the historical unbounded behavior.
	MaxBufferBytes int

	Logger obs.Logger
	Meter  obs.Meter

	conns       map[string]*Conn
	timeouts    []*Conn   // ascending deadline
	nextTimeout time.Time // zero while the eviction timer is idle
	once        sync.Once
}

func (t *Transport) init() {
	t.once.Do(func() {
		t.conns = make(map[string]*Conn)
		if t.Clock == nil {
			t.Clock = clock.New()
		}
		if t.Scheduler == nil {
			t.Scheduler = newClockScheduler(t.Clock)
		}
		if t.IdleTimeout <= 0 {
			t.IdleTimeout = DefaultIdleTimeout
		}
	})
}

func destinationKey(host string, port int) string {
	return strings.ToLower(host) + ":" + strconv.Itoa(port)
}

// GetOrCreate returns the pooled entry for (host, port), creating or
// re-establishing it as needed. Host matching is case-insensitive. The
// caller only ever observes a fully registered entry: a live socket for
// reuse, or a fresh connect already issued to the backend.
//
// It is safe to call from within a Dispatch callback; the server-close
// path relies on that to reconnect transparently.
func (t *Transport) GetOrCreate(host string, port int) *Conn {
	t.init()
	key := destinationKey(host, port)

	c := t.conns[key]
	if c != nil {
		if c.sock == nil {
			// Socket was torn down earlier; pull the entry out of the
			// eviction queue before re-establishing.
			t.logf(obs.Info, "re-establishing %s", key)
			t.removeTimeout(c)
		}
	} else {
		c = &Conn{host: strings.ToLower(host), port: port, key: key}
		t.conns[key] = c
		t.logf(obs.Info, "new connection %s", key)
	}

	if c.sock == nil {
		now := t.Clock.Now()
		c.connected = false
		c.sock = t.Backend.Connect(ConnectSetup{
			TLS:  true, // this transport only supports secure connections
			Host: c.host,
			Port: c.port,
			Handler: func(ev Event) {
				t.Dispatch(c, ev)
			},
		})
		c.deadline = now.Add(t.IdleTimeout)
		t.insertTimeout(c)
		if t.nextTimeout.IsZero() {
			t.startTimer(now)
		}
		t.metricCounter("httpmux_conn_dial_total", 1)
	} else {
		t.metricCounter("httpmux_conn_reuse_total", 1)
	}
	return c
}

// Dispatch is the single entry point for backend events. Events for an
// entry that is no longer pooled are ignored; they can trail in from a
// socket whose connection was already dropped.
func (t *Transport) Dispatch(c *Conn, ev Event) {
	if t.conns[c.key] != c {
		return
	}
	switch ev.Kind {
	case EventConnected:
		t.onConnected(c)
	case EventData:
		t.onData(c, ev.Data)
	case EventError:
		t.onError(c, ev.Err)
	}
}

func (t *Transport) onConnected(c *Conn) {
	t.logf(obs.Info, "connected %s", c.key)
	c.connected = true
	t.Queue.Next(c)
}

func (t *Transport) onData(c *Conn, data []byte) {
	c.buf = append(c.buf, data...)

	for {
		res := http1.Parse(c.buf)
		switch res.Outcome {
		case http1.Incomplete:
			c.consume(res.Consumed)
			t.checkBufferCap(c)
			return
		case http1.Malformed:
			// Unparseable header block. Policy is to wait for more
			// bytes; a peer that never recovers is reaped by the idle
			// timeout.
			t.logf(obs.Warn, "unparseable response from %s (%d bytes buffered)", c.key, len(c.buf))
			t.checkBufferCap(c)
			return
		}

		c.consume(res.Consumed)
		resp := &Response{
			Proto:      res.Resp.Proto,
			StatusCode: res.Resp.StatusCode,
			Reason:     res.Resp.Reason,
			Header:     Header(res.Resp.Header),
			Body:       res.Resp.Body,
		}
		t.metricCounter("httpmux_responses_total", 1)
		t.Queue.Response(c, resp)
		next := t.Queue.Pending(c)

		if strings.EqualFold(resp.Header.Get("Connection"), "close") {
			t.logf(obs.Info, "server requested close %s", c.key)
			if c.sock != nil {
				_ = c.sock.Disconnect()
				c.sock = nil
			}
			c.connected = false
			if next {
				// Requests are still queued: reconnect the same entry
				// right away. This re-enters GetOrCreate on our own
				// stack frame.
				t.GetOrCreate(c.host, c.port)
			}
		} else if next {
			t.Queue.Next(c)
		}
	}
}

func (t *Transport) onError(c *Conn, err error) {
	reason := "unknown transport error"
	if err != nil {
		reason = err.Error()
	}
	t.drop(c, reason)
}

func (t *Transport) checkBufferCap(c *Conn) {
	if t.MaxBufferBytes > 0 && len(c.buf) > t.MaxBufferBytes {
		t.drop(c, ErrBufferLimit.Error())
	}
}

// drop removes the entry from the pool and cascades full teardown.
func (t *Transport) drop(c *Conn, reason string) {
	t.logf(obs.Warn, "dropping connection %s: %s", c.key, reason)
	delete(t.conns, c.key)
	t.destroy(c)
	t.metricCounter("httpmux_conn_dropped_total", 1)
}

// destroy tears down an entry that has already been unmapped: closes
// the socket if still live, removes the eviction deadline, releases the
// buffer and notifies the request queue.
func (t *Transport) destroy(c *Conn) error {
	var err error
	if c.sock != nil {
		err = c.sock.Disconnect()
		c.sock = nil
	}
	c.connected = false
	t.removeTimeout(c)
	c.buf = nil
	t.Queue.Shutdown(c)
	return err
}

// Send serializes one request onto c: header block, a blank line, then
// the body (which may be nil). The whole message goes to the backend in
// a single write; request bodies are never chunk-encoded.
func (t *Transport) Send(c *Conn, header string, body []byte) error {
	if c.sock == nil || !c.connected {
		return ErrNotConnected
	}
	msg := make([]byte, 0, len(header)+2+len(body))
	msg = append(msg, header...)
	msg = append(msg, '\r', '\n')
	msg = append(msg, body...)
	t.metricCounter("httpmux_requests_total", 1)
	return c.sock.Write(msg)
}

// Shutdown cancels the eviction timer and tears down every pooled
// connection. Disconnect failures are collected rather than aborting
// the teardown.
func (t *Transport) Shutdown() error {
	if t.conns == nil {
		return nil
	}
	t.Scheduler.Cancel(timeoutAction)
	t.nextTimeout = time.Time{}

	var errs error
	for key, c := range t.conns {
		t.logf(obs.Info, "destroying connection %s", key)
		delete(t.conns, key)
		errs = multierr.Append(errs, t.destroy(c))
	}
	t.timeouts = nil
	return errs
}

func (t *Transport) logf(level obs.Level, format string, args ...interface{}) {
	lg := t.Logger
	if lg == nil {
		lg = obs.NopLogger{}
	}
	lg.Logf(level, format, args...)
}

func (t *Transport) metricCounter(name string, value float64, labels ...obs.Label) {
	m := t.Meter
	if m == nil {
		m = obs.NopMeter{}
	}
	m.Counter(name, value, labels...)
}
