package httpmux

// Response is one fully framed HTTP/1.1 response as delivered to the
// RequestQueue. Body is already decoded: for chunked transfer-encoding
// it is the concatenation of all chunk payloads.
type Response struct {
    Proto      string
    StatusCode int
    Reason     string
    Header     Header
    Body       []byte
}
