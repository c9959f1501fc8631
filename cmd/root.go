package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ecoview/ecoview-go/cmd/export"
	"github.com/ecoview/ecoview-go/cmd/history"
	"github.com/ecoview/ecoview-go/cmd/load"
	"github.com/ecoview/ecoview-go/cmd/purge"
	"github.com/ecoview/ecoview-go/cmd/record"
	"github.com/ecoview/ecoview-go/cmd/stats"
	"github.com/ecoview/ecoview-go/internal/conf"
	"github.com/ecoview/ecoview-go/internal/datastore"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings, store *datastore.Store) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ecoview",
		Short: "EcoView analysis history CLI",
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		record.Command(settings, store),
		history.Command(settings, store),
		stats.Command(settings, store),
		export.Command(settings, store),
		load.Command(settings, store),
		purge.Command(settings, store),
	}

	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if settings.Debug {
			datastore.SetLogLevel(slog.LevelDebug)
		}
		// The store handle exists since process start; opening it here means
		// flag overrides have already been applied to the settings.
		return store.Initialize()
	}

	return rootCmd
}

// setupFlags configures the global flags for the root command.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", settings.Debug, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Output.SQLite.Path, "database", settings.Output.SQLite.Path, "Path to the SQLite database file")
	rootCmd.PersistentFlags().StringVar(&settings.Output.Bolt.Path, "fallback", settings.Output.Bolt.Path, "Path to the fallback store file")
}
