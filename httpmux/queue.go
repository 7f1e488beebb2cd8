package httpmux

// RequestQueue is the external collaborator that owns what to send and
// when. The transport only pulls: it asks for the next request when a
// connection becomes usable, hands over each framed response, checks
// whether more work is queued, and announces teardown.
//
// All calls happen on the transport's event goroutine, possibly from
// within a Dispatch or timer callback already on the stack.
type RequestQueue interface {
    // Next asks the queue to send its next pending request on c,
    // typically via Transport.Send.
    Next(c *Conn)
    // Response delivers one framed response.
    Response(c *Conn, resp *Response)
    // Pending reports whether more requests are queued for c.
    Pending(c *Conn) bool
    // Shutdown tells the queue that c is gone; queued requests on it
    // are the queue's to abandon or re-route.
    Shutdown(c *Conn)
}
