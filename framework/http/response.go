package http

import (
	"fmt"
	"io"
)

// ── Response ─────────────────────────────────────────────────────────────────

// Response writes plain-text bodies. It wraps a connection for the line
// listener and an http.ResponseWriter for the net/http adapter.
type Response struct {
	w io.Writer
}

// NewResponse wraps w.
func NewResponse(w io.Writer) *Response {
	return &Response{w: w}
}

// Text writes body verbatim.
//
//	res.Text("Hello")
func (res *Response) Text(body string) error {
	_, err := io.WriteString(res.w, body)
	return err
}

// NotFound writes the not-found line naming the requested path.
//
//	404 Not Found (path = /missing ).
func (res *Response) NotFound(path string) error {
	_, err := fmt.Fprintf(res.w, "404 Not Found (path = %s ).\n", path)
	return err
}

// ServerError writes the handler-failure line.
//
//	500 Internal Server Error (path = /hello ): boom.
func (res *Response) ServerError(path string, cause error) error {
	_, err := fmt.Fprintf(res.w, "500 Internal Server Error (path = %s ): %v.\n", path, cause)
	return err
}

// BadRequest writes the malformed-request line.
func (res *Response) BadRequest() error {
	_, err := io.WriteString(res.w, "400 Bad Request.\n")
	return err
}
