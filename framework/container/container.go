package container

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
)

// ── Container ─────────────────────────────────────────────────────────────────

// component is one registered singleton and the capability types it was
// published under.
type component struct {
	name         string
	handler      bool
	instance     any
	typ          reflect.Type
	capabilities []reflect.Type
}

// Container is the singleton registry.
//
// Every registered component is constructed exactly once and published under
// each capability type it satisfies:
//   - its own concrete type
//   - its direct supertype (the first embedded struct it carries)
//   - every interface declared with As
//
// When two components share a capability type the last one registered wins.
// That is the collision policy, not an error.
type Container struct {
	mu sync.RWMutex

	// capability type → singleton instance
	instances map[reflect.Type]any

	// concrete type → component (one per type)
	byType map[reflect.Type]*component

	// registration order
	components []*component

	// namespaces already walked by Scan
	scanned map[*Namespace]bool

	strict   bool
	injected bool
	logger   *slog.Logger
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for registration and injection records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStrictInjection makes an unresolved injection point a fatal error
// instead of leaving the slot at its zero value.
func WithStrictInjection(strict bool) Option {
	return func(c *Container) { c.strict = strict }
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		instances: make(map[reflect.Type]any),
		byType:    make(map[reflect.Type]*component),
		scanned:   make(map[*Namespace]bool),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register constructs the registration's singleton and publishes it under
// all of its capability types. Any failure is returned unretried; callers
// treat it as fatal. The constructor runs without holding the container
// lock, so it may call Lookup.
//
//	err := c.Register(container.Component(NewMailer, container.As[Sender]()))
func (c *Container) Register(r Registration) error {
	instance, err := construct(r)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.publish(r, instance)
}

// Instance registers a pre-built value under its own type, its supertype
// and every interface in as.
//
//	err := c.Instance(cfg)
//	err := c.Instance(mailer, container.TypeOf[Sender]())
func (c *Container) Instance(v any, as ...reflect.Type) error {
	return c.Register(Registration{
		Name: fmt.Sprintf("%T", v),
		New:  func() (any, error) { return v, nil },
		As:   as,
	})
}

// construct runs the constructor, turning a panic into an error.
func construct(r Registration) (any, error) {
	if r.New == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoConstructor, r.label())
	}
	instance, err := call(r.New)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConstruction, r.label(), err)
	}
	if isNil(instance) {
		return nil, fmt.Errorf("%w: %s: constructor returned nil", ErrConstruction, r.label())
	}
	return instance, nil
}

func call(newFn func() (any, error)) (instance any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("constructor panicked: %v", p)
		}
	}()
	return newFn()
}

// publish records instance under its capabilities (must hold mu.Lock).
func (c *Container) publish(r Registration, instance any) error {
	typ := reflect.TypeOf(instance)
	if prev, dup := c.byType[typ]; dup {
		return fmt.Errorf("%w: %s (already registered by %s)", ErrDuplicateComponent, typ, prev.name)
	}

	caps := []reflect.Type{typ}
	if base := supertype(typ); base != nil {
		caps = append(caps, base)
	}
	for _, iface := range r.As {
		if iface == nil || iface.Kind() != reflect.Interface || !typ.Implements(iface) {
			return fmt.Errorf("%w: %s does not implement %v", ErrNotImplemented, typ, iface)
		}
		// The empty interface is the universal base; nothing is published under it.
		if iface.NumMethod() == 0 {
			continue
		}
		caps = append(caps, iface)
	}

	name := r.Name
	if name == "" {
		name = typ.String()
	}
	comp := &component{
		name:         name,
		handler:      r.Handler,
		instance:     instance,
		typ:          typ,
		capabilities: caps,
	}
	c.byType[typ] = comp
	c.components = append(c.components, comp)
	for _, t := range caps {
		c.instances[t] = instance
	}

	c.logger.Debug("Registered component",
		"component", name, "handler", r.Handler, "capabilities", typeNames(caps))
	return nil
}

// ── Lookup ────────────────────────────────────────────────────────────────────

// Lookup returns the singleton published under capability type t.
func (c *Container) Lookup(t reflect.Type) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	inst, ok := c.instances[t]
	return inst, ok
}

// Bound reports whether any singleton is published under t.
func (c *Container) Bound(t reflect.Type) bool {
	_, ok := c.Lookup(t)
	return ok
}

// Components returns every singleton in registration order.
func (c *Container) Components() []any {
	return c.collect(func(*component) bool { return true })
}

// Handlers returns the singletons registered as handlers, in registration
// order.
func (c *Container) Handlers() []any {
	return c.collect(func(comp *component) bool { return comp.handler })
}

func (c *Container) collect(keep func(*component) bool) []any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]any, 0, len(c.components))
	for _, comp := range c.components {
		if keep(comp) {
			out = append(out, comp.instance)
		}
	}
	return out
}

// Capability describes one entry of the capability map.
type Capability struct {
	Type      string `yaml:"type"`
	Component string `yaml:"component"`
	Handler   bool   `yaml:"handler"`
}

// Capabilities returns the capability map sorted by type name (for
// debugging and console listings).
func (c *Container) Capabilities() []Capability {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Capability, 0, len(c.instances))
	for t, inst := range c.instances {
		comp := c.byType[reflect.TypeOf(inst)]
		out = append(out, Capability{Type: t.String(), Component: comp.name, Handler: comp.handler})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// ── Generics helper ───────────────────────────────────────────────────────────

// TypeOf returns the reflect.Type of T, including interface types.
//
//	c.Lookup(container.TypeOf[Greeter]())
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Resolve looks up the singleton published under T and type-asserts it.
//
//	svc, err := container.Resolve[*SampleService](c)
func Resolve[T any](c *Container) (T, error) {
	var zero T
	t := TypeOf[T]()
	inst, ok := c.Lookup(t)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, t)
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, fmt.Errorf("container: %s resolved to %T", t, inst)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics when the capability is missing.
func MustResolve[T any](c *Container) T {
	typed, err := Resolve[T](c)
	if err != nil {
		panic(err)
	}
	return typed
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// supertype returns the type of the first embedded struct field carrying
// state, or nil. Zero-size embedded structs are markers, not supertypes.
func supertype(t reflect.Type) reflect.Type {
	s := t
	if s.Kind() == reflect.Ptr {
		s = s.Elem()
	}
	if s.Kind() != reflect.Struct {
		return nil
	}
	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		if !f.Anonymous {
			continue
		}
		base := f.Type
		if base.Kind() == reflect.Ptr {
			base = base.Elem()
		}
		if base.Kind() == reflect.Struct && base.Size() > 0 {
			return f.Type
		}
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}

func typeNames(ts []reflect.Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}
