package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/hatimiti/easyframework/framework/config"
	"github.com/hatimiti/easyframework/framework/container"
	gohttp "github.com/hatimiti/easyframework/framework/http"
	"github.com/hatimiti/easyframework/framework/interceptor"
	"github.com/hatimiti/easyframework/framework/logging"
	"github.com/hatimiti/easyframework/framework/providers"
	"github.com/hatimiti/easyframework/routing"
)

const shutdownTimeout = 5 * time.Second

var (
	ErrAlreadyBooted = errors.New("application already booted")
	ErrNotBooted     = errors.New("application not booted")
)

// Application is the top-level kernel. It owns the container, the
// interceptor, the router and the listener, and drives startup in a fixed
// order: scan, inject, collect routes, listen.
//
//	application := app.New(config.Load())
//	if err := application.Boot(hello.Namespace); err != nil {
//	    return err
//	}
//	return application.Run(ctx)
type Application struct {
	Config      *config.Config
	Container   *container.Container
	Interceptor *interceptor.Interceptor
	Router      *routing.Router
	Server      *gohttp.Server

	logger    *slog.Logger
	logOut    io.Writer
	listener  net.Listener
	observers []interceptor.Observer
	booted    bool

	mu         sync.Mutex
	httpServer *http.Server
	closed     bool
	closeOnce  sync.Once
	closeErr   error
}

// Option configures an Application.
type Option func(*Application)

// WithLogger replaces the logger built from cfg.Log.
func WithLogger(l *slog.Logger) Option {
	return func(a *Application) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithLogOutput sets where the logger built from cfg.Log writes. Defaults
// to os.Stderr; ignored with WithLogger.
func WithLogOutput(w io.Writer) Option {
	return func(a *Application) { a.logOut = w }
}

// WithListener serves on an already bound listener instead of cfg.Addr().
func WithListener(ln net.Listener) Option {
	return func(a *Application) { a.listener = ln }
}

// WithObserver adds an interceptor observer next to the logging one.
func WithObserver(o interceptor.Observer) Option {
	return func(a *Application) { a.observers = append(a.observers, o) }
}

// New creates an application for cfg. Nothing is constructed until Boot.
func New(cfg *config.Config, opts ...Option) *Application {
	a := &Application{Config: cfg, logOut: os.Stderr}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		level := cfg.Log.Level
		if a.IsDebug() {
			level = "debug"
		}
		a.logger = logging.New(level, cfg.Log.Format, a.logOut).With("app", cfg.App.Name)
	}

	icOpts := []interceptor.Option{interceptor.WithLogger(a.logger)}
	for _, o := range a.observers {
		icOpts = append(icOpts, interceptor.WithObserver(o))
	}
	a.Interceptor = interceptor.New(icOpts...)
	a.Container = container.New(
		container.WithLogger(a.logger),
		container.WithStrictInjection(cfg.Container.StrictInjection),
	)
	return a
}

// Boot registers the framework namespace and root, injects every singleton,
// collects routes and prepares the listener. Any error leaves the
// application unservable; callers must abort.
func (a *Application) Boot(root *container.Namespace) error {
	if a.booted {
		return ErrAlreadyBooted
	}
	a.booted = true
	a.logger.Info("Booting", "env", a.Environment(), "debug", a.IsDebug(),
		"strict_injection", a.Config.Container.StrictInjection)

	if err := a.Container.Scan(providers.Framework(a.Config, a.logger, a.Interceptor)); err != nil {
		return fmt.Errorf("boot: %w", err)
	}
	if err := a.Container.Scan(root); err != nil {
		return fmt.Errorf("boot: scan: %w", err)
	}
	if err := a.Container.Inject(); err != nil {
		return fmt.Errorf("boot: inject: %w", err)
	}

	router, err := routing.Build(a.Container,
		routing.WithInterceptor(a.Interceptor),
		routing.WithLogger(a.logger),
	)
	if err != nil {
		return fmt.Errorf("boot: routes: %w", err)
	}
	if err := a.Container.Scan(providers.Routing(router)); err != nil {
		return fmt.Errorf("boot: %w", err)
	}
	a.Router = router

	serverOpts := []gohttp.ServerOption{gohttp.WithLogger(a.logger)}
	if a.listener != nil {
		serverOpts = append(serverOpts, gohttp.WithListener(a.listener))
	}
	a.Server = gohttp.NewServer(a.Config.Addr(), router, serverOpts...)
	return nil
}

// Run listens and serves connections one at a time until ctx is cancelled
// or Close is called.
func (a *Application) Run(ctx context.Context) error {
	return a.serve(ctx, a.Server.Serve)
}

// RunOnce listens, serves exactly one connection and closes the listener.
func (a *Application) RunOnce(ctx context.Context) error {
	defer a.Close()
	return a.serve(ctx, a.Server.ServeOne)
}

func (a *Application) serve(ctx context.Context, loop func() error) error {
	if a.Server == nil {
		return ErrNotBooted
	}
	if err := a.Server.Listen(); err != nil {
		if errors.Is(err, gohttp.ErrServerClosed) {
			return nil
		}
		return err
	}
	a.logger.Info("Serving", "mode", "line", "routes", a.Router.Len())

	stop := context.AfterFunc(ctx, func() { _ = a.Close() })
	defer stop()

	err := loop()
	if errors.Is(err, gohttp.ErrServerClosed) {
		return nil
	}
	return err
}

// RunHTTP serves the router through net/http instead of the line listener,
// until ctx is cancelled or Close is called.
func (a *Application) RunHTTP(ctx context.Context) error {
	if a.Router == nil {
		return ErrNotBooted
	}

	ln := a.listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", a.Config.Addr()); err != nil {
			return fmt.Errorf("http: listen %s: %w", a.Config.Addr(), err)
		}
	}
	srv := &http.Server{
		Handler:  a.Router.Handler(),
		ErrorLog: slog.NewLogLogger(a.logger.Handler(), slog.LevelError),
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		_ = ln.Close()
		return nil
	}
	a.httpServer = srv
	a.mu.Unlock()

	a.logger.Info("Listening", "addr", ln.Addr().String(), "mode", "http", "routes", a.Router.Len())

	stop := context.AfterFunc(ctx, func() { _ = a.Close() })
	defer stop()

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops whichever server is running. Safe to call more than once and
// from any goroutine.
func (a *Application) Close() error {
	if a.Server == nil {
		return nil
	}
	a.closeOnce.Do(func() {
		a.mu.Lock()
		a.closed = true
		hs := a.httpServer
		a.mu.Unlock()

		a.logger.Info("Shutting down")
		var errs []error
		if hs != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			errs = append(errs, hs.Shutdown(ctx))
			cancel()
		}
		if err := a.Server.Close(); !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
		a.closeErr = errors.Join(errs...)
	})
	return a.closeErr
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config.App.Env }

// IsDebug reports APP_DEBUG. A debug application logs at debug level
// whatever LOG_LEVEL says.
func (a *Application) IsDebug() bool { return a.Config.App.Debug }

// Run boots root with cfg and serves until ctx is cancelled.
func Run(ctx context.Context, root *container.Namespace, cfg *config.Config, opts ...Option) error {
	a := New(cfg, opts...)
	if err := a.Boot(root); err != nil {
		return err
	}
	return a.Run(ctx)
}
