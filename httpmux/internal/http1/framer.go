package http1

import (
    "bytes"
    "strconv"
    "strings"
)

// Outcome classifies one framing attempt over an accumulated buffer.
type Outcome int

const (
    // Incomplete means no full message is present yet; retry once more
    // bytes have arrived.
    Incomplete Outcome = iota
    // Complete means a full message was framed.
    Complete
    // Malformed means the header block cannot be parsed. The buffer is
    // left untouched so the same bytes can be re-examined later.
    Malformed
)

// ParsedResponse is a fully framed HTTP/1.1 response.
type ParsedResponse struct {
    Proto      string
    StatusCode int
    Reason     string
    Header     map[string][]string
    Body       []byte
}

// Result of a Parse call. Consumed is the number of bytes from the front
// of the input that the caller may discard: the whole message on Complete,
// leading CR/LF padding on Incomplete, always 0 on Malformed.
type Result struct {
    Outcome  Outcome
    Resp     *ParsedResponse
    Consumed int
}

// Parse attempts to frame one complete response out of buf. It never
// mutates buf; calling it again with the same bytes yields the same
// result, so partial input can simply be retried after the next read.
func Parse(buf []byte) Result {
    // Keep-alive servers may send blank lines between messages; they are
    // safe to discard even when the message itself is not complete yet.
    skip := 0
    for skip < len(buf) && (buf[skip] == '\r' || buf[skip] == '\n') {
        skip++
    }
    b := buf[skip:]

    end := bytes.Index(b, []byte("\r\n\r\n"))
    if end < 0 {
        return Result{Outcome: Incomplete, Consumed: skip}
    }

    resp, ok := parseHeaderBlock(b[:end])
    if !ok {
        return Result{Outcome: Malformed}
    }

    rest := b[end+4:]

    if hasChunkedTE(resp.Header) {
        body, n, done := decodeChunked(rest)
        if !done {
            return Result{Outcome: Incomplete, Consumed: skip}
        }
        resp.Body = body
        return Result{Outcome: Complete, Resp: resp, Consumed: skip + end + 4 + n}
    }

    if v := getHeader(resp.Header, "Content-Length"); v != "" {
        n, err := strconv.Atoi(strings.TrimSpace(v))
        if err != nil || n < 0 {
            return Result{Outcome: Malformed}
        }
        if len(rest) < n {
            return Result{Outcome: Incomplete, Consumed: skip}
        }
        resp.Body = append([]byte(nil), rest[:n]...)
        return Result{Outcome: Complete, Resp: resp, Consumed: skip + end + 4 + n}
    }

    // No framing declared: the message ends with its header block.
    resp.Body = []byte{}
    return Result{Outcome: Complete, Resp: resp, Consumed: skip + end + 4}
}

// parseHeaderBlock parses the status line and header lines. block holds
// everything up to, but not including, the blank-line terminator.
func parseHeaderBlock(block []byte) (*ParsedResponse, bool) {
    lines := strings.Split(string(block), "\r\n")
    if len(lines) == 0 {
        return nil, false
    }
    parts := strings.SplitN(lines[0], " ", 3)
    if len(parts) < 2 || !strings.HasPrefix(parts[0], "HTTP/1.") {
        return nil, false
    }
    code, err := strconv.Atoi(parts[1])
    if err != nil {
        return nil, false
    }
    resp := &ParsedResponse{
        Proto:      parts[0],
        StatusCode: code,
        Header:     make(map[string][]string),
    }
    if len(parts) == 3 {
        resp.Reason = parts[2]
    }
    for _, line := range lines[1:] {
        i := strings.IndexByte(line, ':')
        if i <= 0 {
            return nil, false
        }
        k := strings.TrimSpace(line[:i])
        v := strings.TrimSpace(line[i+1:])
        addHeader(resp.Header, k, v)
    }
    return resp, true
}

func addHeader(h map[string][]string, k, v string) {
    hk := canonicalHeaderKey(k)
    h[hk] = append(h[hk], v)
}

func getHeader(h map[string][]string, k string) string {
    hk := canonicalHeaderKey(k)
    if vv, ok := h[hk]; ok && len(vv) > 0 {
        return vv[0]
    }
    return ""
}

func hasChunkedTE(h map[string][]string) bool {
    hk := canonicalHeaderKey("Transfer-Encoding")
    if vv, ok := h[hk]; ok {
        for _, v := range vv {
            if strings.Contains(strings.ToLower(v), "chunked") {
                return true
            }
        }
    }
    return false
}

// Very small canonicalizer to avoid importing textproto here.
func canonicalHeaderKey(s string) string {
    b := []byte(strings.ToLower(s))
    upper := true
    for i, c := range b {
        if c >= 'a' && c <= 'z' {
            if upper {
                b[i] = byte(c - 'a' + 'A')
            }
            upper = false
            continue
        }
        upper = c == '-'
    }
    return string(b)
}
