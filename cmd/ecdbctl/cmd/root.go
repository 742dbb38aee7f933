package cmd

import (
	"github.com/spf13/cobra"
)

// Root builds the ecdbctl command tree.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "ecdbctl",
		Short: "Inspect and validate ecdb level files",
	}
	root.AddCommand(inspectCmd())
	root.AddCommand(verifyCmd())
	return root
}
