// Package container provides the singleton registry and the injector.
//
// # Overview
//
// Components are declared in explicit registration tables (Namespace)
// rather than discovered by scanning: Go has no runtime package
// introspection, so the embedding application lists its constructors.
// Each constructor runs exactly once and its result is published under every
// capability type it satisfies.
//
// # Container Lifecycle
//
//  1. Create:  c := container.New()
//  2. Scan:    c.Scan(hello.Namespace)    -> every singleton now exists
//  3. Inject:  c.Inject()                 -> every `inject` field now set
//  4. Route:   routing.Build(c, ...)      -> handlers become routes
//
// After step 3 the kernel only publishes the built router; lookups are safe
// from any goroutine.
//
// # Registrations
//
//	// Plain component, also published under the Greeter interface
//	container.Component(func() *SampleService { return &SampleService{} },
//	    container.As[Greeter]())
//
//	// Constructor that can fail
//	container.ComponentE(repository.Open)
//
//	// Handler component (offered to the router)
//	container.Controller(func() *SampleController { return &SampleController{} })
//
//	// Pre-built value
//	container.Value(cfg)
//
// # Capabilities
//
// A singleton is reachable under its own concrete type, under its direct
// supertype and under each interface named with As. The direct supertype
// is the first embedded struct that carries fields; zero-size embedded
// structs (markers such as interceptor.Transactional) are skipped.
//
// Two components sharing a capability type collide: the one registered last
// wins. Two registrations of the same concrete type are rejected.
//
// # Injection
//
//	type SampleController struct {
//	    Service Greeter `inject:""`
//	}
//
// Fields are resolved by their exact declared type. A lookup that finds
// nothing, or finds a singleton that is not assignable to the field, leaves
// the field at its zero value. WithStrictInjection turns those misses into a
// startup error; fields tagged `inject:"optional"` are exempt.
//
// # Failures
//
// Every Scan, Register and Inject error is meant to be fatal: the kernel
// aborts startup before the listener binds. Errors wrap the package
// sentinels (ErrConstruction, ErrEnumeration, ...) for errors.Is checks.
package container
