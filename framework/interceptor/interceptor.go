package interceptor

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"
)

// ── Signals ───────────────────────────────────────────────────────────────────

// Signal is one step of the transaction protocol.
type Signal int

const (
	SignalStart Signal = iota + 1
	SignalCommit
	SignalRollback
)

func (s Signal) String() string {
	switch s {
	case SignalStart:
		return "start"
	case SignalCommit:
		return "commit"
	case SignalRollback:
		return "rollback"
	default:
		return fmt.Sprintf("Signal(%d)", int(s))
	}
}

// Event is delivered to observers for every signal.
type Event struct {
	Signal Signal
	Target string // concrete type of the intercepted instance
	Method string
}

// Observer receives events synchronously, in emission order.
type Observer func(Event)

// ── Markers ───────────────────────────────────────────────────────────────────

// TransactionalType is implemented by types whose every method is
// transactional. Embed Transactional to satisfy it.
type TransactionalType interface {
	transactional()
}

// Transactional is the type-level marker.
//
//	type OrderService struct {
//	    interceptor.Transactional
//	}
type Transactional struct{}

func (Transactional) transactional() {}

// TransactionalMethods is implemented by types that mark individual methods.
//
//	func (c *SampleController) TransactionalMethods() []string { return []string{"Home"} }
type TransactionalMethods interface {
	TransactionalMethods() []string
}

// ── Interceptor ───────────────────────────────────────────────────────────────

// Interceptor wraps method invocations with start/commit/rollback signals.
// It knows nothing about the container or the router.
type Interceptor struct {
	observers []Observer
	logger    *slog.Logger
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithObserver adds an observer. Observers run after the log record, in
// the order they were added.
func WithObserver(o Observer) Option {
	return func(ic *Interceptor) {
		if o != nil {
			ic.observers = append(ic.observers, o)
		}
	}
}

// WithLogger sets the logger that records every signal.
func WithLogger(l *slog.Logger) Option {
	return func(ic *Interceptor) {
		if l != nil {
			ic.logger = l
		}
	}
}

// New creates an Interceptor.
func New(opts ...Option) *Interceptor {
	ic := &Interceptor{logger: slog.Default()}
	for _, opt := range opts {
		opt(ic)
	}
	return ic
}

// Marked reports whether method on target carries the transactional marker,
// either on the type or on the method itself.
func (ic *Interceptor) Marked(target any, method string) bool {
	if target == nil {
		return false
	}
	if _, ok := target.(TransactionalType); ok {
		return true
	}
	if m, ok := target.(TransactionalMethods); ok {
		return slices.Contains(m.TransactionalMethods(), method)
	}
	return false
}

// Wrap decorates fn, the bound method named method of target. Unmarked
// methods get fn back unchanged.
//
// For marked methods the call emits start, then:
//   - on success: commit, and the result is returned
//   - on error: rollback, commit, and the original error is returned with
//     the zero result
//   - on panic: rollback, commit, and the original value is re-panicked
//
// The commit after a rollback comes from the unconditional finalizer and is
// visible to observers.
func Wrap[T any](ic *Interceptor, target any, method string, fn func() (T, error)) func() (T, error) {
	if ic == nil || !ic.Marked(target, method) {
		return fn
	}
	return func() (T, error) {
		var out T
		err := ic.around(target, method, func() error {
			var callErr error
			out, callErr = fn()
			return callErr
		})
		if err != nil {
			var zero T
			return zero, err
		}
		return out, nil
	}
}

// Invoke runs fn as method of target under the same protocol as Wrap. A nil
// Interceptor just calls fn.
func (ic *Interceptor) Invoke(target any, method string, fn func() error) error {
	if ic == nil || !ic.Marked(target, method) {
		return fn()
	}
	return ic.around(target, method, fn)
}

func (ic *Interceptor) around(target any, method string, fn func() error) (err error) {
	ev := Event{Target: typeName(target), Method: method}

	ic.emit(ev, SignalStart)
	defer ic.emit(ev, SignalCommit)
	defer func() {
		if p := recover(); p != nil {
			ic.emit(ev, SignalRollback)
			panic(p)
		}
	}()

	if err = fn(); err != nil {
		ic.emit(ev, SignalRollback)
		return err
	}
	return nil
}

func (ic *Interceptor) emit(ev Event, s Signal) {
	ev.Signal = s
	switch s {
	case SignalStart:
		ic.logger.Info("Starts transaction.", "target", ev.Target, "method", ev.Method)
	case SignalCommit:
		ic.logger.Info("Commit transaction.", "target", ev.Target, "method", ev.Method)
	case SignalRollback:
		ic.logger.Warn("Rollback transaction.", "target", ev.Target, "method", ev.Method)
	}
	for _, o := range ic.observers {
		o(ev)
	}
}

func typeName(v any) string {
	return reflect.TypeOf(v).String()
}
