package container

import "reflect"

// ── Registration ──────────────────────────────────────────────────────────────

// Registration is one entry of a registration table: a no-argument
// constructor plus the markers that decide how the result is published.
type Registration struct {
	// Name is used in logs and errors. Defaults to the concrete type.
	Name string

	// New builds the singleton. A nil New is a startup error.
	New func() (any, error)

	// Handler marks the component as exposing request mappings.
	Handler bool

	// As lists interface capabilities the instance is also published under.
	As []reflect.Type
}

func (r Registration) label() string {
	if r.Name != "" {
		return r.Name
	}
	return "<unnamed registration>"
}

// RegistrationOption adjusts a Registration built by Component or Controller.
type RegistrationOption func(*Registration)

// As publishes the component under interface I as well.
//
//	container.Component(NewSampleService, container.As[Greeter]())
func As[I any]() RegistrationOption {
	return func(r *Registration) {
		r.As = append(r.As, TypeOf[I]())
	}
}

// Named overrides the display name of the registration.
func Named(name string) RegistrationOption {
	return func(r *Registration) { r.Name = name }
}

// Component registers a plain component built by ctor.
func Component[T any](ctor func() T, opts ...RegistrationOption) Registration {
	var newFn func() (any, error)
	if ctor != nil {
		newFn = func() (any, error) { return ctor(), nil }
	}
	return build[T](newFn, false, opts)
}

// ComponentE is Component for constructors that can fail.
func ComponentE[T any](ctor func() (T, error), opts ...RegistrationOption) Registration {
	var newFn func() (any, error)
	if ctor != nil {
		newFn = func() (any, error) { return ctor() }
	}
	return build[T](newFn, false, opts)
}

// Controller registers a handler component. It is registered exactly like
// Component and additionally offered to the router.
func Controller[T any](ctor func() T, opts ...RegistrationOption) Registration {
	var newFn func() (any, error)
	if ctor != nil {
		newFn = func() (any, error) { return ctor(), nil }
	}
	return build[T](newFn, true, opts)
}

// Value registers a pre-built instance.
//
//	container.Value(cfg) // *config.Config
func Value[T any](v T, opts ...RegistrationOption) Registration {
	return build[T](func() (any, error) { return v, nil }, false, opts)
}

func build[T any](newFn func() (any, error), handler bool, opts []RegistrationOption) Registration {
	r := Registration{
		Name:    TypeOf[T]().String(),
		New:     newFn,
		Handler: handler,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
