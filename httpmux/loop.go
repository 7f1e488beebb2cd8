package httpmux

import "sync"

// EventLoop serializes transport work onto one goroutine. Backends and
// timer callbacks submit closures with Do; the loop runs each to
// completion in arrival order, which is what lets the Transport itself
// stay lock-free.
type EventLoop struct {
	fns  chan func()
	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func NewEventLoop() *EventLoop {
	l := &EventLoop{
		fns:  make(chan func(), 64),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

// Do submits fn for execution on the loop goroutine. It reports false
// when the loop has been closed and fn will never run.
func (l *EventLoop) Do(fn func()) bool {
	select {
	case <-l.quit:
		return false
	case l.fns <- fn:
		return true
	}
}

// Close stops the loop and waits for the current callback to finish.
// Pending submissions are discarded.
func (l *EventLoop) Close() {
	l.once.Do(func() { close(l.quit) })
	<-l.done
}

func (l *EventLoop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.quit:
			return
		case fn := <-l.fns:
			fn()
		}
	}
}
