package console

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hatimiti/easyframework/framework/container"
)

func newServeCommand(root *container.Namespace, opts *options) *cobra.Command {
	var (
		port    string
		once    bool
		strict  bool
		useHTTP bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Boot the application and serve requests",
		Long: `Boots the application and accepts connections one at a time.
Each connection sends a single request line ("GET /hello HTTP/1.1") and
receives the plain-text result of the mapped method.

SIGINT or SIGTERM closes the listener and the command returns.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.loadConfig()
			if cmd.Flags().Changed("port") {
				cfg.App.Port = port
			}
			if cmd.Flags().Changed("strict") {
				cfg.Container.StrictInjection = strict
			}

			a, err := boot(root, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			switch {
			case useHTTP:
				return a.RunHTTP(ctx)
			case once:
				return a.RunOnce(ctx)
			default:
				return a.Run(ctx)
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides APP_PORT)")
	cmd.Flags().BoolVar(&once, "once", false, "serve a single connection and exit")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail startup on unresolved injection points (overrides INJECT_STRICT)")
	cmd.Flags().BoolVar(&useHTTP, "http", false, "serve through net/http instead of the line listener")
	cmd.MarkFlagsMutuallyExclusive("once", "http")
	return cmd
}
