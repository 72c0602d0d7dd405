package container

import "errors"

var (
	// ErrNoConstructor is returned when a registration carries no constructor.
	ErrNoConstructor = errors.New("no constructor")

	// ErrConstruction is returned when a constructor fails, panics, or
	// produces a nil instance.
	ErrConstruction = errors.New("construction failed")

	// ErrNotImplemented is returned when a component is registered As an
	// interface its instance does not implement.
	ErrNotImplemented = errors.New("capability not implemented")

	// ErrDuplicateComponent is returned when two registrations produce
	// instances of the same concrete type.
	ErrDuplicateComponent = errors.New("duplicate component")

	// ErrEnumeration is returned when a namespace fails to list its
	// registrations.
	ErrEnumeration = errors.New("namespace enumeration failed")

	// ErrNotFound is returned by Resolve when no singleton is registered
	// under the requested capability.
	ErrNotFound = errors.New("component not found")

	// ErrUnsettable is returned when an injection point is an unexported
	// field.
	ErrUnsettable = errors.New("injection point not settable")

	// ErrUnresolved is returned in strict mode when an injection point has
	// no matching singleton.
	ErrUnresolved = errors.New("unresolved injection point")

	// ErrAlreadyInjected is returned when Inject runs a second time.
	ErrAlreadyInjected = errors.New("dependencies already injected")
)
