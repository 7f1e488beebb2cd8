package httpmux_test

import (
	"fmt"

	"dqx0.com/go/transports/httpmux"
)

// ExampleHeader shows basic header operations.
func ExampleHeader() {
	h := httpmux.Header{}
	h.Add("X-Foo", "a")
	h.Add("X-Foo", "b")
	h.Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Println(h.Get("x-foo"))  // canonical lookup
	fmt.Println(len(h["X-Foo"])) // two values
	h.Del("X-Foo")
	fmt.Println(h.Get("X-Foo"))
	// Output:
	// a
	// 2
	//
}

// scriptedBackend hands out inert sockets and lets the example inject
// events by hand, standing in for a real networking layer.
type scriptedBackend struct {
	setup httpmux.ConnectSetup
	sock  *scriptedSocket
}

type scriptedSocket struct{ sent []string }

func (s *scriptedSocket) Write(p []byte) error { s.sent = append(s.sent, string(p)); return nil }
func (s *scriptedSocket) Disconnect() error    { return nil }

func (b *scriptedBackend) Connect(setup httpmux.ConnectSetup) httpmux.Socket {
	b.setup = setup
	b.sock = &scriptedSocket{}
	return b.sock
}

func (b *scriptedBackend) deliver(ev httpmux.Event) { b.setup.Handler(ev) }

// singleRequest is a one-shot request queue.
type singleRequest struct {
	t      *httpmux.Transport
	header string
	sent   bool

	status int
	body   []byte
}

func (q *singleRequest) Next(c *httpmux.Conn) {
	if !q.sent {
		q.sent = true
		_ = q.t.Send(c, q.header, nil)
	}
}

func (q *singleRequest) Response(c *httpmux.Conn, resp *httpmux.Response) {
	q.status = resp.StatusCode
	q.body = resp.Body
}

func (q *singleRequest) Pending(c *httpmux.Conn) bool { return false }
func (q *singleRequest) Shutdown(c *httpmux.Conn)     {}

// ExampleTransport walks one request/response cycle over a scripted
// backend: connect, send, frame the response, deliver it to the queue.
func ExampleTransport() {
	backend := &scriptedBackend{}
	queue := &singleRequest{header: "GET / HTTP/1.1\r\nHost: example.com\r\n"}
	t := &httpmux.Transport{Backend: backend, Queue: queue}
	queue.t = t

	c := t.GetOrCreate("EXAMPLE.com", 443)
	backend.deliver(httpmux.Event{Kind: httpmux.EventConnected})
	backend.deliver(httpmux.Event{
		Kind: httpmux.EventData,
		Data: []byte("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok"),
	})

	fmt.Println(c.Destination())
	fmt.Println(queue.status, string(queue.body))
	_ = t.Shutdown()
	// Output:
	// example.com:443
	// 200 ok
}
