package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/sockhttp/internal/http"
	"github.com/wesleyorama2/sockhttp/internal/output"
)

func newDriversCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List transport drivers and whether they work here",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			noColor, _ := cmd.Flags().GetBool("no-color")
			noColor = noColor || !output.ColorEnabled(cmd.OutOrStdout())

			registry := http.DefaultRegistry()
			for _, name := range registry.Names() {
				p, _ := registry.Get(name)
				if p.Available() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", output.SuccessIcon(noColor), name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s (unavailable)\n", output.ErrorIcon(noColor), name)
				}
			}
			return nil
		},
	}
}
