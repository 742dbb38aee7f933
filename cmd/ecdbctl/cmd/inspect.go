package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/TheBitDrifter/ecdb/level"
	"github.com/spf13/cobra"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print a level file's component, group, and string-table summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			lvl, err := readLevel(args[0])
			if err != nil {
				return err
			}
			printSummary(c.OutOrStdout(), lvl)
			return nil
		},
	}
}

func readLevel(path string) (*level.Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ecdbctl: %w", err)
	}
	return level.Decode(data)
}

func printSummary(w io.Writer, lvl *level.Level) {
	fmt.Fprintf(w, "components: %d\n", len(lvl.Components))
	for i, c := range lvl.Components {
		fmt.Fprintf(w, "  [%d] %s (size=%d, fields=%d)\n", i, c.Name, c.TypeSize, len(c.Fields))
	}
	total := 0
	for _, g := range lvl.Groups {
		total += g.NumRows
	}
	fmt.Fprintf(w, "groups: %d (total rows: %d)\n", len(lvl.Groups), total)
	for i, g := range lvl.Groups {
		fmt.Fprintf(w, "  [%d] components=%v rows=%d\n", i, g.ComponentIndices, g.NumRows)
	}
	fmt.Fprintf(w, "strings: %d\n", len(lvl.Strings))
}
