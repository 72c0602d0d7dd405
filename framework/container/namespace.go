package container

import "fmt"

// ── Namespace ─────────────────────────────────────────────────────────────────

// Namespace is an explicit registration table standing in for a package to
// scan. Applications hand the root namespace to Scan; children model
// sub-packages.
//
//	var Namespace = &container.Namespace{
//	    Name: "hello",
//	    Components: []container.Registration{
//	        container.Component(NewSampleService, container.As[Greeter]()),
//	        container.Controller(NewSampleController),
//	    },
//	}
type Namespace struct {
	Name string

	// Components are the static registrations of this namespace.
	Components []Registration

	// Load lists additional registrations at scan time. An error aborts
	// the scan before any of its registrations are made. Load may read the
	// container; components from earlier scans are visible.
	Load func() ([]Registration, error)

	// Children are walked after this namespace's own registrations. No
	// traversal order between siblings is promised to callers.
	Children []*Namespace
}

// Scan walks root and its children, registering every component found.
// A namespace reachable more than once is walked once, so each registration
// is found exactly once. Load funcs and constructors run without holding
// the container lock.
func (c *Container) Scan(root *Namespace) error {
	found, err := c.enumerate(root, nil)
	if err != nil {
		return err
	}
	for _, f := range found {
		if err := c.Register(f.reg); err != nil {
			return fmt.Errorf("namespace %s: %w", f.namespace, err)
		}
	}
	c.logger.Info("Registered components", "namespace", root.label(), "count", len(found))
	return nil
}

// discovered is one registration and the namespace it came from.
type discovered struct {
	namespace string
	reg       Registration
}

// enumerate appends the registrations of ns and then of its children.
func (c *Container) enumerate(ns *Namespace, out []discovered) ([]discovered, error) {
	if ns == nil {
		return out, nil
	}
	c.mu.Lock()
	seen := c.scanned[ns]
	c.scanned[ns] = true
	c.mu.Unlock()
	if seen {
		return out, nil
	}

	for _, r := range ns.Components {
		out = append(out, discovered{ns.label(), r})
	}
	if ns.Load != nil {
		loaded, err := ns.Load()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrEnumeration, ns.label(), err)
		}
		for _, r := range loaded {
			out = append(out, discovered{ns.label(), r})
		}
	}

	var err error
	for _, child := range ns.Children {
		if out, err = c.enumerate(child, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (ns *Namespace) label() string {
	if ns == nil || ns.Name == "" {
		return "<root>"
	}
	return ns.Name
}
