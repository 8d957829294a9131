package http1

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/wesleyorama2/sockhttp/internal/header"
)

// Synthetic response header names added by the parser
const (
	HeaderHTTPVersion = "Http-Version"
	HeaderStatusMsg   = "Status-Msg"
)

var (
	statusLinePattern = regexp.MustCompile(`^HTTP/(\d(?:\.\d)?)[ \t]+((\d{3})(?:[ \t]+([^\r\n]*))?)`)
	headerEnd         = []byte("\r\n\r\n")
)

// Message is a parsed HTTP response
type Message struct {
	// Proto is the version from the status line, e.g. "1.1"
	Proto string
	// StatusCode is 0 when no status line was found
	StatusCode int
	// Status is the code plus reason phrase, e.g. "404 Not Found"
	Status string
	Reason string
	Header *header.Header
	Body   []byte
	// RawHeader holds every header block found, interim ones included
	RawHeader string
}

// Parse splits a raw response into status, header fields and body.
//
// Leading header blocks (interim 1xx responses, proxy tunnel replies,
// redirects captured by some engines) are all stripped and the last one
// wins. Input without a status line ending in a blank CRLF line is
// returned whole as the body.
func Parse(raw []byte) *Message {
	msg := &Message{Header: header.New()}

	rest := raw
	var last []byte
	var blocks []string
	for {
		block, after, terminated, ok := nextBlock(rest)
		if !ok || !terminated {
			break
		}
		blocks = append(blocks, string(block))
		last = block
		rest = after
	}

	if last == nil {
		msg.Body = raw
		return msg
	}

	msg.RawHeader = strings.Join(blocks, "")
	lines := strings.Split(strings.TrimRight(string(last), "\r\n"), "\r\n")

	m := statusLinePattern.FindStringSubmatch(lines[0])
	msg.Proto = m[1]
	msg.Status = strings.TrimSpace(m[2])
	msg.StatusCode, _ = strconv.Atoi(m[3])
	msg.Reason = strings.TrimSpace(m[4])

	msg.Header.Set(HeaderHTTPVersion, msg.Proto)
	msg.Header.Set(HeaderStatusMsg, msg.Status)

	for _, line := range lines[1:] {
		i := strings.IndexByte(line, ':')
		if i <= 0 {
			continue
		}
		// Last duplicate wins
		msg.Header.Set(line[:i], strings.TrimSpace(line[i+1:]))
	}

	msg.Body = rest
	if isChunked(msg.Header) {
		if decoded, _, err := decodeChunked(rest); err == nil {
			msg.Body = decoded
		}
	}
	return msg
}

// nextBlock cuts one header block off the front of b. terminated is false
// when the block runs to the end of input without a blank line.
func nextBlock(b []byte) (block, rest []byte, terminated, ok bool) {
	if !bytes.HasPrefix(b, []byte("HTTP/")) {
		return nil, b, false, false
	}
	eol := bytes.IndexByte(b, '\n')
	first := b
	if eol >= 0 {
		first = b[:eol]
	}
	if !statusLinePattern.Match(first) {
		return nil, b, false, false
	}

	// A status line with no fields is followed directly by the blank line
	if i := bytes.Index(b, headerEnd); i >= 0 {
		return b[:i+len(headerEnd)], b[i+len(headerEnd):], true, true
	}
	return b, nil, false, true
}

func isChunked(h *header.Header) bool {
	return strings.Contains(strings.ToLower(h.Get("Transfer-Encoding")), "chunked")
}

// Complete inspects a partially read response and reports whether it is
// fully framed. keepAlive reports whether the connection may carry another
// request afterwards. Responses framed only by connection close are never
// complete before EOF.
func Complete(raw []byte, head bool) (done, keepAlive bool) {
	rest := raw
	for {
		block, after, terminated, ok := nextBlock(rest)
		if !ok || !terminated {
			return false, false
		}
		msg := Parse(block)
		code := msg.StatusCode
		rest = after

		// Interim responses are followed by the real one
		if code >= 100 && code < 200 && code != 101 {
			continue
		}

		keepAlive = persistent(msg)
		if head || code == 204 || code == 304 || code == 101 {
			return true, keepAlive
		}
		if isChunked(msg.Header) {
			_, n, err := decodeChunked(rest)
			if err != nil {
				return false, false
			}
			return true, keepAlive && n == len(rest)
		}
		if cl := msg.Header.Get("Content-Length"); cl != "" {
			n, err := strconv.Atoi(strings.TrimSpace(cl))
			if err != nil || n < 0 {
				return false, false
			}
			return len(rest) >= n, keepAlive && len(rest) == n
		}
		return false, false
	}
}

func persistent(msg *Message) bool {
	conn := strings.ToLower(msg.Header.Get("Connection"))
	if msg.Proto == "1.0" {
		return strings.Contains(conn, "keep-alive")
	}
	return !strings.Contains(conn, "close")
}
