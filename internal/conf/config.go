// Package conf loads and holds the application settings. Configuration is
// read from a YAML file through viper, with defaults applied for anything
// the file does not set.
package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/ecoview/ecoview-go/internal/errors"
)

// Settings contains all application settings
type Settings struct {
	Debug bool // true to enable debug logging

	Main struct {
		Name string // name of this node, can be used to identify the source of analyses
		Log  LogConfig
	}

	Output OutputSettings
	Export ExportSettings
}

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled bool
	Path    string
}

// OutputSettings selects and configures the store backends
type OutputSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
	Bolt   BoltSettings
}

// SQLiteSettings contains settings for the SQLite primary store
type SQLiteSettings struct {
	Enabled bool
	Path    string
}

// MySQLSettings contains settings for the MySQL primary store
type MySQLSettings struct {
	Enabled  bool
	Username string
	Password string
	Host     string
	Port     string
	Database string
}

// BoltSettings contains settings for the Bolt fallback store
type BoltSettings struct {
	Path string
}

// ExportSettings contains defaults for data export
type ExportSettings struct {
	Format string // "json" or "csv"
	Path   string // default output directory
}

// Load reads the configuration into a new Settings struct.
func Load() (*Settings, error) {
	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Component("configuration").
			Category(errors.CategoryConfiguration).
			Build()
	}

	return settings, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	// A missing config file is fine, defaults apply
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// GetDefaultConfigPaths returns the directories searched for the config file,
// in priority order: working directory first, then the user config directory.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}

	configDir, err := os.UserConfigDir()
	if err != nil {
		// No home directory resolvable, working directory only
		return paths, nil //nolint:nilerr // degraded path list is intentional
	}

	return append(paths, filepath.Join(configDir, "ecoview")), nil
}
