package load

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecoview/ecoview-go/internal/conf"
	"github.com/ecoview/ecoview-go/internal/datastore"
)

// Command creates the load command for importing analyses from a file.
func Command(settings *conf.Settings, store *datastore.Store) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "load [file]",
		Short: "Import analyses from a JSON or CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}

			if format == "" {
				format = guessFormat(args[0])
			}

			count, err := store.ImportData(payload, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d analyses\n", count)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Import format: json or csv (inferred from extension when empty)")

	return cmd
}

func guessFormat(path string) string {
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return datastore.FormatCSV
	}
	return datastore.FormatJSON
}
