package main

import (
	"errors"

	"dqx0.com/go/transports/httpmux"
)

var errAbandoned = errors.New("connection shut down before a response arrived")

type pendingRequest struct {
	header string
	body   []byte
	sent   bool
	done   func(*httpmux.Response, error)
}

// fifoQueue is a minimal RequestQueue: per-connection FIFO, one request
// in flight at a time. All methods run on the transport's event loop,
// so no locking is needed.
type fifoQueue struct {
	t    *httpmux.Transport
	reqs map[*httpmux.Conn][]*pendingRequest
}

func newFifoQueue() *fifoQueue {
	return &fifoQueue{reqs: make(map[*httpmux.Conn][]*pendingRequest)}
}

func (q *fifoQueue) enqueue(c *httpmux.Conn, header string, body []byte, done func(*httpmux.Response, error)) {
	q.reqs[c] = append(q.reqs[c], &pendingRequest{header: header, body: body, done: done})
}

func (q *fifoQueue) Next(c *httpmux.Conn) {
	list := q.reqs[c]
	if len(list) == 0 || list[0].sent {
		return
	}
	head := list[0]
	if err := q.t.Send(c, head.header, head.body); err != nil {
		q.reqs[c] = list[1:]
		head.done(nil, err)
		return
	}
	head.sent = true
}

func (q *fifoQueue) Response(c *httpmux.Conn, resp *httpmux.Response) {
	list := q.reqs[c]
	if len(list) == 0 {
		return
	}
	q.reqs[c] = list[1:]
	list[0].done(resp, nil)
}

func (q *fifoQueue) Pending(c *httpmux.Conn) bool {
	return len(q.reqs[c]) > 0
}

func (q *fifoQueue) Shutdown(c *httpmux.Conn) {
	for _, r := range q.reqs[c] {
		r.done(nil, errAbandoned)
	}
	delete(q.reqs, c)
}
