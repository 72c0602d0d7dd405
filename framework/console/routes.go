package console

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hatimiti/easyframework/framework/container"
	"github.com/hatimiti/easyframework/routing"
)

// routeView is the listing shape of one route.
type routeView struct {
	Path          string `yaml:"path"`
	Controller    string `yaml:"controller"`
	Method        string `yaml:"method"`
	Transactional bool   `yaml:"transactional"`
}

func newRoutesCommand(root *container.Namespace, opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := boot(root, opts.loadConfig(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return writeRoutes(cmd.OutOrStdout(), a.Router.Routes(), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or yaml")
	return cmd
}

func writeRoutes(w io.Writer, routes []*routing.Route, output string) error {
	views := make([]routeView, 0, len(routes))
	for _, r := range routes {
		views = append(views, routeView{
			Path:          r.Path,
			Controller:    r.Controller(),
			Method:        r.Method,
			Transactional: r.Transactional,
		})
	}

	switch output {
	case "yaml":
		return writeYAML(w, views)
	case "table", "":
		t := newTable(w)
		t.AppendHeader(table.Row{"Path", "Controller", "Method", "Transactional"})
		for _, v := range views {
			t.AppendRow(table.Row{v.Path, v.Controller, v.Method, strconv.FormatBool(v.Transactional)})
		}
		t.AppendFooter(table.Row{"", "", "Total", len(views)})
		t.Render()
		return nil
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

// ── shared output helpers ─────────────────────────────────────────────────────

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
