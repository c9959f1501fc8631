package purge

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ecoview/ecoview-go/internal/conf"
	"github.com/ecoview/ecoview-go/internal/datastore"
)

// Command creates the purge command for deleting all stored analyses.
func Command(settings *conf.Settings, store *datastore.Store) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all stored analyses",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete all analyses without --yes")
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all analyses deleted")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deletion of all analyses")

	return cmd
}
