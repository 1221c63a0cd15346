package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/dataio/internal/core"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the active export and import formats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := core.DefaultRegistry()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "export: %s\n", strings.Join(r.ExporterNames(), ", "))
		fmt.Fprintf(out, "import: %s\n", strings.Join(r.ImporterNames(), ", "))
		return nil
	},
}
