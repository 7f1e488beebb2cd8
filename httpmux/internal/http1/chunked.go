package http1

import "bytes"

var crlf = []byte("\r\n")

// maxChunkHexDigits bounds the chunk-size line; 7 hex digits already
// allows 256MB chunks, far beyond anything a sane peer sends.
const maxChunkHexDigits = 7

// decodeChunked scans a chunked transfer-encoded body at the front of
// buf. It returns the concatenated chunk payloads and the number of
// bytes consumed through the zero-size terminator chunk's trailing
// CRLF. done is false while the buffer does not yet hold the complete
// body; that includes chunk-size lines that cannot be parsed at all,
// since more data may legitimately still arrive.
func decodeChunked(buf []byte) (body []byte, consumed int, done bool) {
    pos := 0
    for pos < len(buf) {
        size, width := scanHex(buf[pos:])
        if width == 0 {
            return nil, 0, false
        }
        // Locate the end of the size line; skipping ahead to CRLF
        // implicitly ignores any chunk extensions.
        nl := bytes.Index(buf[pos+width:], crlf)
        if nl < 0 {
            return nil, 0, false
        }
        data := pos + width + nl + 2

        // Chunk payload plus its trailing CRLF must be fully present.
        if len(buf)-data < size+2 {
            return nil, 0, false
        }

        if size == 0 {
            return body, data + 2, true
        }

        body = append(body, buf[data:data+size]...)
        pos = data + size + 2
    }
    return nil, 0, false
}

// scanHex parses a hex number at the front of buf, stopping at the
// first non-hex byte. width is 0 when no hex digit is present or the
// number is implausibly long.
func scanHex(buf []byte) (value, width int) {
    for width < len(buf) {
        c := buf[width]
        var d int
        switch {
        case c >= '0' && c <= '9':
            d = int(c - '0')
        case c >= 'a' && c <= 'f':
            d = int(c-'a') + 10
        case c >= 'A' && c <= 'F':
            d = int(c-'A') + 10
        default:
            return value, width
        }
        if width >= maxChunkHexDigits {
            return 0, 0
        }
        value = value<<4 | d
        width++
    }
    return value, width
}
