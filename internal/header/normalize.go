package header

// Layers are the header sources of one request, lowest precedence first
type Layers struct {
	// Client holds headers configured on the client instance
	Client *Header
	// Options holds headers from the merged request options
	Options *Header
	// Call holds headers passed explicitly to the request call
	Call *Header
	// Cookies is serialized into a Cookie header when non-empty
	Cookies *Cookies
	// NoOverride makes earlier layers win over later ones
	NoOverride bool
}

// Normalize merges the layers into the final request header. A Cookie
// header supplied by any layer is kept over the cookie set. Host is
// synthesized from host when absent and written first; Connection
// defaults to close.
func Normalize(l Layers, host string) *Header {
	merged := New()
	override := !l.NoOverride
	for _, layer := range []*Header{l.Client, l.Options, l.Call} {
		merged.Merge(layer, override)
	}

	out := New()
	if host != "" && !merged.Has("Host") {
		out.Set("Host", host)
	}
	out.Merge(merged, true)

	if cookie := l.Cookies.String(); cookie != "" {
		out.Add("Cookie", cookie)
	}
	out.Add("Connection", "close")
	return out
}
