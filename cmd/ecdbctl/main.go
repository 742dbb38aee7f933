// Command ecdbctl inspects and validates ecdb level files (spec.md §6).
package main

import (
	"fmt"
	"os"

	"github.com/TheBitDrifter/ecdb/cmd/ecdbctl/cmd"
)

func main() {
	if err := cmd.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
