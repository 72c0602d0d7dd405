// Package interceptor implements the transaction aspect as an explicit
// decorator.
//
// A method is transactional when its type embeds Transactional or when the
// type lists the method in TransactionalMethods. Wrap returns a function
// with the same signature as the wrapped one, so the router can put it
// between a route and the handler instance without either side noticing.
//
//	ic := interceptor.New(interceptor.WithObserver(func(ev interceptor.Event) {
//	    metrics.Count(ev.Signal.String())
//	}))
//	save := interceptor.Wrap(ic, orders, "Save", orders.Save) // func() (string, error)
//
// Signal order per call is total: [start, commit] on success and
// [start, rollback, commit] on failure. The trailing commit on the failure
// path comes from the finalizer and is observable by callers; it is kept
// as-is.
package interceptor
