package main

import (
	"fmt"
	"os"

	"github.com/ecoview/ecoview-go/cmd"
	"github.com/ecoview/ecoview-go/internal/conf"
	"github.com/ecoview/ecoview-go/internal/datastore"
	"github.com/ecoview/ecoview-go/internal/logging"
)

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		return 1
	}

	if settings.Main.Log.Enabled {
		if err := datastore.InitializeLogger(settings.Main.Log.Path); err != nil {
			logging.Warn("file logging unavailable, store logs go to stderr", "error", err)
		}
		defer func() {
			_ = datastore.CloseLogger()
		}()
	}

	store := datastore.NewStore(settings)
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("failed to close store", "error", err)
		}
	}()

	rootCmd := cmd.RootCommand(settings, store)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
