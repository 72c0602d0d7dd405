package routing

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	gohttp "github.com/hatimiti/easyframework/framework/http"
	"github.com/hatimiti/easyframework/framework/interceptor"
)

// ErrBadMapping is returned when a request mapping names a method that does
// not exist or has the wrong signature.
var ErrBadMapping = errors.New("bad request mapping")

// ── Mapping markers ───────────────────────────────────────────────────────────

// Mapping binds a request path to a method of the controller by name. The
// method takes no arguments and returns string or (string, error).
type Mapping struct {
	Path   string
	Method string
}

// Controller is implemented by handler components that expose routes.
//
//	func (c *SampleController) RequestMappings() []routing.Mapping {
//	    return []routing.Mapping{{Path: "/hello", Method: "Home"}}
//	}
type Controller interface {
	RequestMappings() []Mapping
}

// HandlerSource lists handler singletons; *container.Container satisfies it.
type HandlerSource interface {
	Handlers() []any
}

// ── Route ─────────────────────────────────────────────────────────────────────

// Route is one immutable table entry.
type Route struct {
	Path          string
	Instance      any
	Method        string
	Transactional bool

	action func() (string, error)
}

// Invoke calls the bound method (through the interceptor when marked).
func (r *Route) Invoke() (string, error) {
	return r.action()
}

// Controller returns the concrete type name of the owning instance.
func (r *Route) Controller() string {
	return reflect.TypeOf(r.Instance).String()
}

// ── Router ────────────────────────────────────────────────────────────────────

// Router is the path → route table. Matching is exact-string only.
// It is filled once at startup; afterwards Lookup is safe for concurrent
// readers.
type Router struct {
	routes      map[string]*Route
	interceptor *interceptor.Interceptor
	logger      *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithInterceptor wraps every bound method with ic.
func WithInterceptor(ic *interceptor.Interceptor) Option {
	return func(r *Router) { r.interceptor = ic }
}

// WithLogger sets the logger used for route registration records.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates an empty Router.
func New(opts ...Option) *Router {
	r := &Router{
		routes: make(map[string]*Route),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build creates a Router holding the routes of every handler in src.
// Handlers that are not a Controller contribute nothing.
func Build(src HandlerSource, opts ...Option) (*Router, error) {
	r := New(opts...)
	for _, h := range src.Handlers() {
		if err := r.Mount(h); err != nil {
			return nil, err
		}
	}
	r.logger.Info("Registered routes", "count", len(r.routes))
	return r, nil
}

// Mount adds every mapping of controller.
func (r *Router) Mount(controller any) error {
	c, ok := controller.(Controller)
	if !ok {
		return nil
	}
	for _, m := range c.RequestMappings() {
		if err := r.Add(m.Path, controller, m.Method); err != nil {
			return err
		}
	}
	return nil
}

// Add binds path to the named method of instance. A path that is already
// bound is silently replaced.
func (r *Router) Add(path string, instance any, method string) error {
	action, err := bind(instance, method)
	if err != nil {
		return fmt.Errorf("%w: %s %T.%s: %w", ErrBadMapping, path, instance, method, err)
	}

	route := &Route{
		Path:          path,
		Instance:      instance,
		Method:        method,
		Transactional: r.interceptor != nil && r.interceptor.Marked(instance, method),
		action:        interceptor.Wrap(r.interceptor, instance, method, action),
	}

	if prev, exists := r.routes[path]; exists {
		r.logger.Warn("Route replaced",
			"path", path, "previous", prev.Controller()+"."+prev.Method)
	}
	r.routes[path] = route
	r.logger.Info("Registered route",
		"path", path, "controller", route.Controller(), "method", method,
		"transactional", route.Transactional)
	return nil
}

// bind resolves the method by name and adapts it to func() (string, error).
func bind(instance any, method string) (func() (string, error), error) {
	if instance == nil {
		return nil, errors.New("nil instance")
	}
	m := reflect.ValueOf(instance).MethodByName(method)
	if !m.IsValid() {
		return nil, errors.New("no such exported method")
	}
	switch fn := m.Interface().(type) {
	case func() (string, error):
		return fn, nil
	case func() string:
		return func() (string, error) { return fn(), nil }, nil
	default:
		return nil, fmt.Errorf("signature %s, want func() string or func() (string, error)", m.Type())
	}
}

// Lookup returns the route bound to exactly path.
func (r *Router) Lookup(path string) (*Route, bool) {
	route, ok := r.routes[path]
	return route, ok
}

// Dispatch implements gohttp.Dispatcher.
func (r *Router) Dispatch(path string) (gohttp.Endpoint, bool) {
	route, ok := r.routes[path]
	if !ok {
		return nil, false
	}
	return route, true
}

// Routes returns every route sorted by path.
func (r *Router) Routes() []*Route {
	out := make([]*Route, 0, len(r.routes))
	for _, route := range r.routes {
		out = append(out, route)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Len returns the number of routes.
func (r *Router) Len() int { return len(r.routes) }

// ── net/http adapter ──────────────────────────────────────────────────────────

// Handler exposes the table over net/http. Each route is mounted at its
// exact path for every verb; anything else falls through to the not-found
// handler, which still resolves paths chi cannot express as a pattern.
// Bodies are the same plain text the line listener writes.
func (r *Router) Handler() http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Recoverer)

	for _, route := range r.Routes() {
		if !mountable(route.Path) {
			continue
		}
		mux.HandleFunc(route.Path, r.serveRoute(route))
	}
	mux.NotFound(r.serveFallback)
	mux.MethodNotAllowed(r.serveFallback)
	return mux
}

// mountable reports whether chi would match path literally.
func mountable(path string) bool {
	return strings.HasPrefix(path, "/") && !strings.ContainsAny(path, "{}*")
}

func (r *Router) serveRoute(route *Route) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		r.writeHTTP(w, req, route)
	}
}

func (r *Router) serveFallback(w http.ResponseWriter, req *http.Request) {
	route, _ := r.Lookup(req.URL.Path)
	r.writeHTTP(w, req, route)
}

// writeHTTP invokes route, or writes the not-found body when route is nil.
func (r *Router) writeHTTP(w http.ResponseWriter, req *http.Request, route *Route) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	res := gohttp.NewResponse(w)
	path := req.URL.Path
	logger := r.logger.With("method", req.Method, "path", path, "remote", req.RemoteAddr)

	if route == nil {
		logger.Info("Route not found")
		w.WriteHeader(http.StatusNotFound)
		_ = res.NotFound(path)
		return
	}
	body, err := route.Invoke()
	if err != nil {
		logger.Error("Handler failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = res.ServerError(path, err)
		return
	}
	logger.Info("Request served", "bytes", len(body))
	_ = res.Text(body)
}
