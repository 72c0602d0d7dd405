package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatimiti/easyframework/framework/app"
	"github.com/hatimiti/easyframework/framework/config"
	"github.com/hatimiti/easyframework/framework/container"
	"github.com/hatimiti/easyframework/framework/interceptor"
	"github.com/hatimiti/easyframework/framework/logging"
	"github.com/hatimiti/easyframework/routing"
)

// ── stub application ──────────────────────────────────────────────────────────

type greeter interface{ Greet() string }

type greeting struct{}

func (greeting) Greet() string { return "Hello" }

type greetController struct {
	Greeter greeter `inject:""`
}

func (c *greetController) RequestMappings() []routing.Mapping {
	return []routing.Mapping{{Path: "/hello", Method: "Home"}}
}

func (c *greetController) TransactionalMethods() []string { return []string{"Home"} }

func (c *greetController) Home() string { return c.Greeter.Greet() }

func greetNamespace() *container.Namespace {
	return &container.Namespace{
		Name: "greet",
		Components: []container.Registration{
			container.Component(func() *greeting { return &greeting{} }, container.As[greeter]()),
			container.Controller(func() *greetController { return &greetController{} }),
		},
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "Test", Env: "testing", Host: "127.0.0.1", Port: "0"},
	}
}

func boot(t *testing.T, root *container.Namespace, opts ...app.Option) (*app.Application, net.Addr) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	opts = append([]app.Option{app.WithLogger(logging.Discard()), app.WithListener(ln)}, opts...)
	a := app.New(testConfig(), opts...)
	require.NoError(t, a.Boot(root))
	t.Cleanup(func() { _ = a.Close() })
	return a, ln.Addr()
}

func get(t *testing.T, addr net.Addr, path string) string {
	t.Helper()
	conn, err := net.Dial("tcp", addr.String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = io.WriteString(conn, "GET "+path+" HTTP/1.1\r\n")
	require.NoError(t, err)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	body, err := io.ReadAll(conn)
	require.NoError(t, err)
	return string(body)
}

// ── End to end ────────────────────────────────────────────────────────────────

func TestRun_ServesUntilCancelled(t *testing.T) {
	var mu sync.Mutex
	var signals []string
	a, addr := boot(t, greetNamespace(), app.WithObserver(func(ev interceptor.Event) {
		mu.Lock()
		defer mu.Unlock()
		signals = append(signals, ev.Signal.String())
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	assert.Equal(t, "Hello", get(t, addr, "/hello"))
	assert.Equal(t, "404 Not Found (path = /bye ).\n", get(t, addr, "/bye"))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"start", "commit"}, signals)
}

func TestRunOnce_ServesOneConnection(t *testing.T) {
	a, addr := boot(t, greetNamespace())

	done := make(chan error, 1)
	go func() { done <- a.RunOnce(context.Background()) }()

	assert.Equal(t, "Hello", get(t, addr, "/hello"))
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunOnce did not return")
	}
	require.NoError(t, a.Close())
}

func TestBoot_PublishesFrameworkServicesAndRouter(t *testing.T) {
	a, _ := boot(t, greetNamespace())

	cfg, err := container.Resolve[*config.Config](a.Container)
	require.NoError(t, err)
	assert.Same(t, a.Config, cfg)

	router, err := container.Resolve[*routing.Router](a.Container)
	require.NoError(t, err)
	assert.Same(t, a.Router, router)

	ctrl := container.MustResolve[*greetController](a.Container)
	assert.NotNil(t, ctrl.Greeter, "controller dependency must be injected")
}

// ── Fatal startup ─────────────────────────────────────────────────────────────

func TestBoot_FatalErrors(t *testing.T) {
	type unresolved struct {
		Missing greeter `inject:""`
	}

	tests := []struct {
		name   string
		strict bool
		root   *container.Namespace
		want   error
	}{
		{
			name: "construction failure",
			root: &container.Namespace{Components: []container.Registration{
				container.ComponentE(func() (*greeting, error) { return nil, errors.New("db down") }),
			}},
			want: container.ErrConstruction,
		},
		{
			name: "enumeration failure",
			root: &container.Namespace{Load: func() ([]container.Registration, error) {
				return nil, errors.New("unreadable")
			}},
			want: container.ErrEnumeration,
		},
		{
			name:   "strict unresolved dependency",
			strict: true,
			root: &container.Namespace{Components: []container.Registration{
				container.Component(func() *unresolved { return &unresolved{} }),
			}},
			want: container.ErrUnresolved,
		},
		{
			name: "bad mapping",
			root: &container.Namespace{Components: []container.Registration{
				container.Controller(func() *badController { return &badController{} }),
			}},
			want: routing.ErrBadMapping,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Container.StrictInjection = tt.strict
			a := app.New(cfg, app.WithLogger(logging.Discard()))

			err := a.Boot(tt.root)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, a.Server, "no listener may be prepared after a failed boot")
			assert.ErrorIs(t, a.Run(context.Background()), app.ErrNotBooted)
		})
	}
}

type badController struct{}

func (badController) RequestMappings() []routing.Mapping {
	return []routing.Mapping{{Path: "/x", Method: "Missing"}}
}

func TestBoot_Twice(t *testing.T) {
	a, _ := boot(t, greetNamespace())
	assert.ErrorIs(t, a.Boot(greetNamespace()), app.ErrAlreadyBooted)
}

func TestClose_BeforeBoot(t *testing.T) {
	a := app.New(testConfig(), app.WithLogger(logging.Discard()))
	assert.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}

func TestRun_CloseBeforeServeReturnsNil(t *testing.T) {
	a, _ := boot(t, greetNamespace())
	require.NoError(t, a.Close())
	assert.NoError(t, a.Run(context.Background()))
}

func waitRun(t *testing.T, done <-chan error, what string) {
	t.Helper()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("%s did not return", what)
	}
}

// ── net/http mode ─────────────────────────────────────────────────────────────

func TestRunHTTP_ServesRoutesUntilClose(t *testing.T) {
	a, addr := boot(t, greetNamespace())

	done := make(chan error, 1)
	go func() { done <- a.RunHTTP(context.Background()) }()

	res, err := http.Get("http://" + addr.String() + "/hello")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Hello", string(body))

	require.NoError(t, a.Close())
	waitRun(t, done, "RunHTTP after Close")

	_, err = net.DialTimeout("tcp", addr.String(), time.Second)
	assert.Error(t, err, "socket must be released after Close")
}

func TestRunHTTP_OwnListenerStopsOnClose(t *testing.T) {
	a := app.New(testConfig(), app.WithLogger(logging.Discard()))
	require.NoError(t, a.Boot(greetNamespace()))

	done := make(chan error, 1)
	go func() { done <- a.RunHTTP(context.Background()) }()

	require.NoError(t, a.Close())
	waitRun(t, done, "RunHTTP after Close")
}

func TestRunHTTP_StopsOnCancel(t *testing.T) {
	a, _ := boot(t, greetNamespace())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.RunHTTP(ctx) }()

	cancel()
	waitRun(t, done, "RunHTTP after cancel")
}

func TestRunHTTP_NotBooted(t *testing.T) {
	a := app.New(testConfig(), app.WithLogger(logging.Discard()))
	assert.ErrorIs(t, a.RunHTTP(context.Background()), app.ErrNotBooted)
}

// ── Environment ───────────────────────────────────────────────────────────────

func TestDebugForcesDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.App.Debug = true
	cfg.Log.Level = "error"

	a := app.New(cfg, app.WithLogOutput(&buf))
	assert.True(t, a.IsDebug())
	assert.Equal(t, "testing", a.Environment())
	require.NoError(t, a.Boot(greetNamespace()))

	out := buf.String()
	assert.Contains(t, out, "msg=Booting")
	assert.Contains(t, out, "env=testing")
	assert.Contains(t, out, "msg=\"Registered component\"", "debug records must be written")
}

func TestLogLevelAppliesWithoutDebug(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.Log.Level = "warn"

	a := app.New(cfg, app.WithLogOutput(&buf))
	require.NoError(t, a.Boot(greetNamespace()))
	assert.Empty(t, buf.String())
}
