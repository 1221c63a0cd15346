package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/dataio/internal/formats"
)

var importFormat string

var importCmd = &cobra.Command{
	Use:   "import RECORD_TYPE FILE",
	Short: "Create one record per data row of a file",
	Long: `Import reads the first sheet (or the whole CSV file), takes the first row
as the header and creates one record per following row. The identity field
and read-only fields are never written.

The format is guessed from the file extension unless --format is given.

Example:
  dataio import note notes.xlsx
  dataio import note export.txt --format csv`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "input format (default: from the file extension)")
}

func runImport(cmd *cobra.Command, args []string) error {
	recordType, file := args[0], args[1]

	format := importFormat
	if format == "" {
		format = formats.ForPath(file)
	}

	n, err := newModel(recordType).ImportData(commandContext(cmd), file, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %d %s records\n", n, recordType)
	return nil
}
