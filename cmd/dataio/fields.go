package main

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/dataio/internal/core"
)

var fieldsReadOnly []string

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Show or set the field catalog of a record type",
}

var fieldsListCmd = &cobra.Command{
	Use:   "list RECORD_TYPE",
	Short: "List the fields of a record type in column order",
	Args:  cobra.ExactArgs(1),
	RunE:  runFieldsList,
}

var fieldsSetCmd = &cobra.Command{
	Use:   "set RECORD_TYPE FIELD...",
	Short: "Replace the fields of a record type in the store's catalog",
	Long: `Set stores the given fields in column order, replacing the current
entries in the dataio_fields table.

Example:
  dataio fields set note id name number --read-only id`,
	Args: cobra.MinimumNArgs(2),
	RunE: runFieldsSet,
}

func init() {
	fieldsSetCmd.Flags().StringSliceVar(&fieldsReadOnly, "read-only", nil, "fields that are exported but never imported")

	fieldsCmd.AddCommand(fieldsListCmd)
	fieldsCmd.AddCommand(fieldsSetCmd)
}

func runFieldsList(cmd *cobra.Command, args []string) error {
	fields, err := newModel(args[0]).Fields(commandContext(cmd))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tNAME\tIMPORTED")
	for _, f := range fields {
		fmt.Fprintf(w, "%d\t%s\t%v\n", f.Order, f.Name, f.Writable())
	}
	return w.Flush()
}

func runFieldsSet(cmd *cobra.Command, args []string) error {
	recordType := args[0]
	fields := fieldSpecs(args[1:], fieldsReadOnly)

	if err := backend.SetFields(commandContext(cmd), recordType, fields); err != nil {
		return fmt.Errorf("set fields of %s: %w", recordType, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "stored %d fields for %s\n", len(fields), recordType)
	return nil
}

// fieldSpecs numbers names in argument order.
func fieldSpecs(names, readOnly []string) []core.FieldSpec {
	fields := make([]core.FieldSpec, len(names))
	for i, name := range names {
		fields[i] = core.FieldSpec{
			Name:     name,
			Order:    i,
			ReadOnly: slices.Contains(readOnly, name),
		}
	}
	return fields
}
