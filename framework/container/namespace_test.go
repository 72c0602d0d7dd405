package container_test

import (
	"errors"
	"testing"
	"time"

	"github.com/hatimiti/easyframework/framework/container"
)

// ── Scan ──────────────────────────────────────────────────────────────────────

func TestScan_FindsEveryRegistrationExactlyOnce(t *testing.T) {
	calls := 0
	shared := &container.Namespace{
		Name: "shared",
		Components: []container.Registration{
			container.Component(func() *repository {
				calls++
				return &repository{}
			}),
		},
	}
	root := &container.Namespace{
		Name: "root",
		Components: []container.Registration{
			container.Controller(func() *englishGreeter { return &englishGreeter{} }, container.As[Greeter]()),
		},
		Load: func() ([]container.Registration, error) {
			return []container.Registration{
				container.Component(func() *service { return &service{} }),
			}, nil
		},
		// shared is reachable twice
		Children: []*container.Namespace{shared, {Name: "nested", Children: []*container.Namespace{shared}}},
	}

	c := container.New(quiet())
	if err := c.Scan(root); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if calls != 1 {
		t.Errorf("shared constructor ran %d times, want 1", calls)
	}
	if n := len(c.Components()); n != 3 {
		t.Errorf("Components: got %d want 3", n)
	}
	if n := len(c.Handlers()); n != 1 {
		t.Errorf("Handlers: got %d want 1", n)
	}
	if !c.Bound(container.TypeOf[*service]()) {
		t.Error("loaded registration missing")
	}
}

func TestScan_EnumerationFailureIsFatal(t *testing.T) {
	cause := errors.New("read dir: permission denied")
	root := &container.Namespace{
		Name: "broken",
		Load: func() ([]container.Registration, error) { return nil, cause },
	}

	err := container.New(quiet()).Scan(root)
	if !errors.Is(err, container.ErrEnumeration) {
		t.Fatalf("got %v, want ErrEnumeration", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("cause not wrapped: %v", err)
	}
}

func TestScan_ConstructionFailureAbortsScan(t *testing.T) {
	later := false
	root := &container.Namespace{
		Name: "app",
		Components: []container.Registration{
			container.Component(func() *service { panic("no database") }),
		},
		Children: []*container.Namespace{{
			Name: "child",
			Components: []container.Registration{
				container.Component(func() *repository {
					later = true
					return &repository{}
				}),
			},
		}},
	}

	err := container.New(quiet()).Scan(root)
	if !errors.Is(err, container.ErrConstruction) {
		t.Fatalf("got %v, want ErrConstruction", err)
	}
	if later {
		t.Error("scan continued after a fatal construction failure")
	}
}

func TestScan_LoadAndConstructorsMayReadTheContainer(t *testing.T) {
	c := container.New(quiet())
	mustRegister(t, c, container.Component(func() *repository { return &repository{} }))

	var loadSaw, ctorSaw bool
	root := &container.Namespace{
		Name: "reader",
		Load: func() ([]container.Registration, error) {
			loadSaw = c.Bound(container.TypeOf[*repository]())
			return []container.Registration{
				container.Component(func() *service {
					_, ctorSaw = c.Lookup(container.TypeOf[*repository]())
					return &service{}
				}),
			}, nil
		},
	}

	done := make(chan error, 1)
	go func() { done <- c.Scan(root) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Scan deadlocked on a container read")
	}

	if !loadSaw {
		t.Error("Load did not see the earlier registration")
	}
	if !ctorSaw {
		t.Error("constructor did not see the earlier registration")
	}
}
