package http_test

import (
	"errors"
	"strings"
	"testing"

	gohttp "github.com/hatimiti/easyframework/framework/http"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newResponse(t *testing.T) (*gohttp.Response, *strings.Builder) {
	t.Helper()
	var b strings.Builder
	return gohttp.NewResponse(&b), &b
}

// ── Bodies ────────────────────────────────────────────────────────────────────

func TestResponse_Bodies(t *testing.T) {
	tests := []struct {
		name  string
		write func(*gohttp.Response) error
		want  string
	}{
		{"Text", func(r *gohttp.Response) error { return r.Text("Hello") }, "Hello"},
		{"Text keeps newlines", func(r *gohttp.Response) error { return r.Text("a\nb\n") }, "a\nb\n"},
		{"NotFound", func(r *gohttp.Response) error { return r.NotFound("/bye") }, "404 Not Found (path = /bye ).\n"},
		{"ServerError", func(r *gohttp.Response) error { return r.ServerError("/x", errors.New("boom")) }, "500 Internal Server Error (path = /x ): boom.\n"},
		{"BadRequest", func(r *gohttp.Response) error { return r.BadRequest() }, "400 Bad Request.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, b := newResponse(t)
			if err := tt.write(res); err != nil {
				t.Fatalf("write: %v", err)
			}
			if b.String() != tt.want {
				t.Errorf("got %q want %q", b.String(), tt.want)
			}
		})
	}
}
