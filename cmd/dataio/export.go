package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export RECORD_TYPE",
	Short: "Export every record of a type to a new file",
	Long: `Export writes one header row with the catalog's field names and one row
per record, then prints the path of the new file.

Example:
  dataio export note
  dataio export note --format csv`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "excel", "output format (see `dataio formats`)")
}

func runExport(cmd *cobra.Command, args []string) error {
	path, err := newModel(args[0]).ExportData(commandContext(cmd), exportFormat)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
