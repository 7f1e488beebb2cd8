package httpmux

// EventKind discriminates backend notifications for one socket.
type EventKind int

const (
    // EventConnected reports that the socket finished connecting and is
    // ready for writes.
    EventConnected EventKind = iota
    // EventData carries freshly read bytes. The slice is owned by the
    // receiver; backends must not reuse it.
    EventData
    // EventError reports a fatal transport failure, including the remote
    // end closing the socket.
    EventError
)

// Event is a single backend notification. Exactly one of Data and Err
// is meaningful, depending on Kind.
type Event struct {
    Kind EventKind
    Data []byte
    Err  error
}

// Socket is a live backend connection handle.
type Socket interface {
    Write(p []byte) error
    Disconnect() error
}

// ConnectSetup describes one connect request. Handler receives all
// events for the resulting socket and must be invoked on the transport's
// event goroutine.
type ConnectSetup struct {
    TLS     bool
    Host    string
    Port    int
    Handler func(Event)
}

// Backend dials sockets on behalf of the transport. Connect must not
// block: the returned handle becomes usable once an EventConnected
// arrives, and dial failures surface as an EventError.
type Backend interface {
    Connect(setup ConnectSetup) Socket
}
