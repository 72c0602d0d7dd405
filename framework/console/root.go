// Package console is the process entry point: a cobra command tree that
// boots an application namespace and serves or inspects it.
package console

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hatimiti/easyframework/framework/app"
	"github.com/hatimiti/easyframework/framework/config"
	"github.com/hatimiti/easyframework/framework/container"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	envFiles  []string
	logLevel  string
	logFormat string
}

// NewCommand builds the command tree for the application rooted at root.
func NewCommand(root *container.Namespace) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "easyframework",
		Short: "Minimal IoC container and line-protocol HTTP server",
		Long: `easyframework registers the components of an application namespace,
injects their dependencies, collects request mappings from controllers
and serves them.

Examples:
  easyframework serve              # serve until SIGINT/SIGTERM
  easyframework serve --once       # serve a single connection
  easyframework routes -o yaml     # list the route table
  easyframework components         # list the capability map`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load (default: .env)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: text or json (overrides LOG_FORMAT)")

	cmd.AddCommand(
		newServeCommand(root, opts),
		newRoutesCommand(root, opts),
		newComponentsCommand(root, opts),
	)
	return cmd
}

// Execute runs the command tree with os.Args.
func Execute(root *container.Namespace) error {
	return NewCommand(root).ExecuteContext(context.Background())
}

// loadConfig reads the environment and applies flag overrides.
func (o *options) loadConfig() *config.Config {
	cfg := config.Load(o.envFiles...)
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	return cfg
}

// boot builds and boots an application whose logs go to logOut.
func boot(root *container.Namespace, cfg *config.Config, logOut io.Writer, extra ...app.Option) (*app.Application, error) {
	if logOut == nil {
		logOut = os.Stderr
	}
	opts := append([]app.Option{app.WithLogOutput(logOut)}, extra...)
	a := app.New(cfg, opts...)
	if err := a.Boot(root); err != nil {
		return nil, fmt.Errorf("startup failed: %w", err)
	}
	return a, nil
}
