package http

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedRequest is returned when the request line has no target.
var ErrMalformedRequest = errors.New("malformed request line")

// Request is the parsed request line. Nothing beyond the first line is
// read.
type Request struct {
	Method string
	Path   string
	Proto  string
}

// ParseRequestLine splits line on whitespace and returns the first token
// (the verb, informational only) and the second (the path).
//
//	ParseRequestLine("GET /hello HTTP/1.1") // "GET", "/hello", nil
func ParseRequestLine(line string) (method, target string, err error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedRequest, strings.TrimSpace(line))
	}
	return fields[0], fields[1], nil
}

// ReadRequest reads up to the first line terminator and parses it. A final
// line without terminator is accepted.
func ReadRequest(r *bufio.Reader) (*Request, error) {
	line, err := r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return nil, fmt.Errorf("read request line: %w", err)
	}

	method, target, err := ParseRequestLine(line)
	if err != nil {
		return nil, err
	}
	req := &Request{Method: method, Path: target}
	if fields := strings.Fields(line); len(fields) > 2 {
		req.Proto = fields[2]
	}
	return req, nil
}
