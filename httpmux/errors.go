package httpmux

import "errors"

var (
    ErrNotConnected = errors.New("httpmux: connection not established")
    ErrSocketClosed = errors.New("httpmux: socket closed")
    ErrBufferLimit  = errors.New("httpmux: response buffer limit exceeded")
    ErrRemoteClosed = errors.New("httpmux: connection closed by server")
)
