package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ecoview/ecoview-go/internal/conf"
	"github.com/ecoview/ecoview-go/internal/datastore"
)

// Command creates the export command for writing stored analyses to a file.
func Command(settings *conf.Settings, store *datastore.Store) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored analyses to a file",
		Long:  `Export all stored analyses as JSON or CSV. Writes to stdout when no output file is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = settings.Export.Format
			}

			payload, err := store.ExportData(format)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return nil
			}

			// Export.Path is the default output directory; relative file
			// names land there.
			if !filepath.IsAbs(output) && settings.Export.Path != "" {
				output = filepath.Join(settings.Export.Path, output)
			}

			if err := os.WriteFile(output, payload, 0o644); err != nil {
				return fmt.Errorf("failed to write export file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format: json or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, relative names land in the export directory (stdout when empty)")

	return cmd
}
