package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at build time:
//
//	go build -ldflags "-X edaproxy/cmd.version=1.2.0"
var version = "dev"

// newVersionCmd prints the wrapper version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the edaproxy version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", wrapperName, version)
		},
	}
}
