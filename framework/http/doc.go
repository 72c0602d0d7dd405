// Package http provides the line-protocol listener and its plain-text
// responses.
//
// # Wire format
//
// Only the first request line is read. It is split on whitespace and the
// second token is the path; the verb and protocol are informational:
//
//	GET /hello HTTP/1.1
//
// The response is a plain-text body with no status line and no headers,
// after which the connection is closed. It is not HTTP/1.1.
//
// # Server
//
//	srv := gohttp.NewServer(":8080", router)
//	go func() { <-ctx.Done(); srv.Close() }()
//	err := srv.Serve()   // returns nil once Close unblocks accept
//
//	// or: handle exactly one connection
//	err := srv.ServeOne()
//
// One connection is served at a time. A slow client blocks everyone else;
// there are no timeouts. Close is idempotent.
//
// # Response
//
//	res := gohttp.NewResponse(conn)
//
//	res.Text("Hello")               // verbatim handler output
//	res.NotFound("/bye")            // 404 Not Found (path = /bye ).
//	res.ServerError("/hello", err)  // 500 Internal Server Error (path = /hello ): <err>.
//	res.BadRequest()                // 400 Bad Request.
//
// A handler that returns an error or panics produces the 500 body; the
// accept loop keeps running.
package http
