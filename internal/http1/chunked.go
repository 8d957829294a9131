package http1

import (
	"bytes"
	"errors"
	"strconv"
)

var (
	errChunkFormat     = errors.New("http1: invalid chunk format")
	errChunkIncomplete = errors.New("http1: incomplete chunked body")
)

// decodeChunked decodes a complete chunked body. It returns the payload and
// the number of input bytes consumed, including trailers.
func decodeChunked(b []byte) ([]byte, int, error) {
	var out bytes.Buffer
	pos := 0
	for {
		line, next, ok := cutLine(b, pos)
		if !ok {
			return nil, 0, errChunkIncomplete
		}
		// Strip chunk extensions: "<hex>;<ext>"
		if i := bytes.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			return nil, 0, errChunkFormat
		}
		size, err := strconv.ParseInt(string(line), 16, 64)
		if err != nil || size < 0 {
			return nil, 0, errChunkFormat
		}
		pos = next

		if size == 0 {
			// Trailer section ends with an empty line
			for {
				trailer, after, ok := cutLine(b, pos)
				if !ok {
					return nil, 0, errChunkIncomplete
				}
				pos = after
				if len(trailer) == 0 {
					return out.Bytes(), pos, nil
				}
			}
		}

		if size > int64(len(b)-pos-2) {
			return nil, 0, errChunkIncomplete
		}
		end := pos + int(size)
		out.Write(b[pos:end])
		if b[end] != '\r' || b[end+1] != '\n' {
			return nil, 0, errChunkFormat
		}
		pos = end + 2
	}
}

// cutLine returns the line starting at pos without its terminator and the
// offset just past the terminator.
func cutLine(b []byte, pos int) ([]byte, int, bool) {
	if pos > len(b) {
		return nil, 0, false
	}
	i := bytes.IndexByte(b[pos:], '\n')
	if i < 0 {
		return nil, 0, false
	}
	return bytes.TrimRight(b[pos:pos+i], "\r"), pos + i + 1, true
}
