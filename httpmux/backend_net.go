package httpmux

import (
	"crypto/tls"
	"io"
	"net"
	"strconv"
	"sync"
	"time"
)

// NetBackend dials real TCP/TLS sockets. Connect returns immediately;
// the dial runs in the background and its outcome arrives as an event.
// When Loop is set, all events are marshaled onto it so the Transport's
// single-goroutine discipline holds even though each socket has its own
// reader goroutine.
type NetBackend struct {
	DialTimeout time.Duration
	TLSConfig   *tls.Config
	Loop        *EventLoop
}

func (b *NetBackend) Connect(setup ConnectSetup) Socket {
	s := &netSocket{}
	s.deliver = func(ev Event) {
		run := func() {
			if s.isClosed() {
				return
			}
			setup.Handler(ev)
		}
		if b.Loop != nil {
			b.Loop.Do(run)
		} else {
			run()
		}
	}
	go s.dial(b, setup)
	return s
}

type netSocket struct {
	deliver func(Event)

	mu     sync.Mutex
	conn   net.Conn
	closed bool
}

func (s *netSocket) dial(b *NetBackend, setup ConnectSetup) {
	addr := net.JoinHostPort(setup.Host, strconv.Itoa(setup.Port))
	d := net.Dialer{Timeout: b.DialTimeout}

	var conn net.Conn
	var err error
	if setup.TLS {
		cfg := b.TLSConfig
		if cfg == nil {
			cfg = &tls.Config{}
		}
		// Ensure SNI and ALPN
		if cfg.ServerName == "" {
			cfg = cfg.Clone()
			cfg.ServerName = setup.Host
		}
		if len(cfg.NextProtos) == 0 {
			cfg = cfg.Clone()
			cfg.NextProtos = []string{"http/1.1"}
		}
		td := tls.Dialer{NetDialer: &d, Config: cfg}
		conn, err = td.Dial("tcp", addr)
	} else {
		conn, err = d.Dial("tcp", addr)
	}
	if err != nil {
		s.deliver(Event{Kind: EventError, Err: err})
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conn = conn
	s.mu.Unlock()

	s.deliver(Event{Kind: EventConnected})
	s.readLoop(conn)
}

func (s *netSocket) readLoop(conn net.Conn) {
	buf := make([]byte, 16<<10)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			// Handlers run asynchronously; hand each event its own copy.
			data := make([]byte, n)
			copy(data, buf[:n])
			s.deliver(Event{Kind: EventData, Data: data})
		}
		if err != nil {
			if err == io.EOF {
				err = ErrRemoteClosed
			}
			s.deliver(Event{Kind: EventError, Err: err})
			return
		}
	}
}

func (s *netSocket) Write(p []byte) error {
	s.mu.Lock()
	conn, closed := s.conn, s.closed
	s.mu.Unlock()
	if closed || conn == nil {
		return ErrSocketClosed
	}
	_, err := conn.Write(p)
	return err
}

// Disconnect closes the socket and suppresses any events still in
// flight from its reader goroutine.
func (s *netSocket) Disconnect() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (s *netSocket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
