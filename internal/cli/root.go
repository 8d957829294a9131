package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Methods with a subcommand of their own. Any other method goes through
// "request METHOD URL".
var verbs = []string{"get", "post", "put", "patch", "delete", "head", "options", "trace"}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "sockhttp",
		Short:   "Send raw HTTP/1.1 requests over sockets",
		Version: version,
		Long: `sockhttp builds HTTP/1.1 requests byte by byte and sends them over
plain or TLS sockets, optionally through an HTTP proxy. It shows exactly
what went over the wire and can repeat, time, and validate requests.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	flags := &requestFlags{}
	flags.bind(root.PersistentFlags())

	for _, verb := range verbs {
		root.AddCommand(newVerbCmd(verb, flags))
	}
	root.AddCommand(newRequestCmd(flags))
	root.AddCommand(newDriversCmd())

	return root
}

// Execute runs the CLI. Interrupts cancel the request in flight.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}
