package conf

import (
	"github.com/spf13/viper"
)

// setDefaultConfig sets the default configuration values to viper.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "EcoView")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/ecoview.log")

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "ecoview.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "ecoview")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
	viper.SetDefault("output.mysql.database", "ecoview")

	viper.SetDefault("output.bolt.path", "ecoview-fallback.db")

	viper.SetDefault("export.format", "json")
	viper.SetDefault("export.path", ".")
}
