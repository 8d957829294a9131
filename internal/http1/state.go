package http1

import "github.com/wesleyorama2/sockhttp/internal/header"

// State holds one raw response and its lazily parsed form. Parse is
// idempotent: once parsed the raw buffer is released and further calls
// are no-ops until SetRaw is called again.
type State struct {
	raw    []byte
	parsed bool

	// StatusCode is 0 until a response was parsed or preset
	StatusCode int
	Message    *Message
}

// SetRaw stores a raw response to be parsed
func (s *State) SetRaw(raw []byte) {
	s.raw = raw
	s.parsed = false
}

// Preset records a status code known from elsewhere, e.g. an engine that
// already decoded the status line. Parse will not overwrite it.
func (s *State) Preset(code int) {
	s.StatusCode = code
}

// Parse parses the stored raw response once
func (s *State) Parse() {
	if s.parsed {
		return
	}
	msg := Parse(s.raw)
	if s.StatusCode == 0 {
		s.StatusCode = msg.StatusCode
	}
	s.Message = msg
	s.raw = nil
	s.parsed = true
}

// Parsed reports whether the raw buffer has been consumed
func (s *State) Parsed() bool {
	return s.parsed
}

// Header returns the parsed header fields, or nil before parsing
func (s *State) Header() *header.Header {
	if s.Message == nil {
		return nil
	}
	return s.Message.Header
}

// Body returns the parsed body, or nil before parsing
func (s *State) Body() []byte {
	if s.Message == nil {
		return nil
	}
	return s.Message.Body
}

// Reset clears all response state
func (s *State) Reset() {
	*s = State{}
}
