// Package http is the public API of sockhttp: an HTTP/1.1 client that
// writes requests byte by byte to a socket and parses the raw reply.
//
// Basic Usage:
//
//	client := http.NewClient(
//	    http.WithBaseURL("http://httpbin.org"),
//	    http.WithTimeout(5*time.Second),
//	    http.WithRetry(2),
//	)
//	defer client.Close()
//
//	resp, err := client.Post(ctx, "/post", map[string]string{"var1": "some content"}, nil)
//	if err != nil {
//	    log.Fatal(err) // transport failure; 4xx and 5xx are not errors
//	}
//	fmt.Println(resp.Status, resp.GetBodyAsString())
//
// Data passed to GET, DELETE, HEAD, OPTIONS and TRACE is appended to the
// query string; POST, PUT and PATCH send it as a form body, or as JSON when
// the Content-Type says so (see Client.ByJSON).
//
// Headers are merged from three layers, client headers first, then option
// headers, then per-call headers, later layers overriding earlier ones.
//
// Drivers:
//
// Requests go through a transport driver chosen by name:
//
//   - socket: one connection per request, read until the server closes it
//   - stream: keeps idle connections for reuse when WithPersistent is set
//   - nethttp: hands the request to net/http, for environments without sockets
//
// Use DefaultRegistry to list what is available, or WithDriver to plug in
// your own.
//
// Errors:
//
// Failed calls return an *Error. KindOf classifies it; ConnectError is
// retried for every method, other retryable kinds only for idempotent ones.
//
//	if http.KindOf(err) == http.TimeoutError { ... }
//
// Thread Safety:
//
// Calls on one Client are serialized because headers, cookies and the
// last response are per-client state. Use one Client per goroutine for
// parallel requests.
package http
