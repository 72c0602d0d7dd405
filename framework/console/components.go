package console

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/hatimiti/easyframework/framework/container"
)

func newComponentsCommand(root *container.Namespace, opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "components",
		Short: "List every capability type and the singleton published under it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := boot(root, opts.loadConfig(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return writeCapabilities(cmd.OutOrStdout(), a.Container.Capabilities(), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or yaml")
	return cmd
}

func writeCapabilities(w io.Writer, caps []container.Capability, output string) error {
	switch output {
	case "yaml":
		return writeYAML(w, caps)
	case "table", "":
		t := newTable(w)
		t.AppendHeader(table.Row{"Capability", "Component", "Handler"})
		for _, c := range caps {
			t.AppendRow(table.Row{c.Type, c.Component, strconv.FormatBool(c.Handler)})
		}
		t.Render()
		return nil
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}
