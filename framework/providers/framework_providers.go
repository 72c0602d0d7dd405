package providers

import (
	"log/slog"

	"github.com/hatimiti/easyframework/framework/config"
	"github.com/hatimiti/easyframework/framework/container"
	"github.com/hatimiti/easyframework/framework/interceptor"
	"github.com/hatimiti/easyframework/routing"
)

// ── Framework ─────────────────────────────────────────────────────────────────

// Framework is the namespace of framework services every application gets.
// It is scanned before the application namespace, so application components
// can inject any of these.
//
// Bound capabilities:
//   - *config.Config
//   - *slog.Logger
//   - *interceptor.Interceptor
//
// Example:
//
//	type Mailer struct {
//	    Config *config.Config `inject:""`
//	    Logger *slog.Logger   `inject:"optional"`
//	}
func Framework(cfg *config.Config, logger *slog.Logger, ic *interceptor.Interceptor) *container.Namespace {
	return &container.Namespace{
		Name: "framework",
		Components: []container.Registration{
			container.Value(cfg, container.Named("config")),
			container.Value(logger, container.Named("logger")),
			container.Value(ic, container.Named("interceptor")),
		},
	}
}

// ── Routing ───────────────────────────────────────────────────────────────────

// Routing publishes the built router once route collection has finished.
// It is scanned after injection, so the router itself is never an injection
// point during startup.
//
// Bound capabilities:
//   - *routing.Router
func Routing(r *routing.Router) *container.Namespace {
	return &container.Namespace{
		Name: "routing",
		Components: []container.Registration{
			container.Value(r, container.Named("router")),
		},
	}
}
