// Package httpmux is an HTTP/1.1 client transport multiplexer: it keeps
// one persistent keep-alive connection per destination (host:port),
// serializes outbound requests on it, frames responses (including
// chunked transfer-encoding) out of a growing byte buffer, and evicts
// connections that stay idle past a deadline.
//
// The package is deliberately not a generic HTTP client. What to send
// and when is owned by an external RequestQueue; raw sockets are owned
// by a Backend; httpmux owns the cycle in between.
//
// All Transport methods must run on a single goroutine. Backend events
// and timer callbacks are delivered as discrete, run-to-completion
// steps; nothing blocks, and "waiting for more bytes" is expressed by
// the framer reporting an incomplete message. An EventLoop is provided
// to serialize real socket callbacks onto that one goroutine.
//
// Quick start:
//
//	loop := httpmux.NewEventLoop()
//	t := &httpmux.Transport{
//	    Backend: &httpmux.NetBackend{Loop: loop},
//	    Queue:   queue, // your RequestQueue implementation
//	}
//	loop.Do(func() { t.GetOrCreate("example.com", 443) })
package httpmux
