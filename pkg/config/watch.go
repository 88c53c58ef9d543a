package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/gatewatch/gatewatch/internal/logger"
)

// WatchLogLevel watches the configuration file and applies log level changes
// without a restart. Only the logging level is live; everything else needs a
// restart to take effect.
//
// Parameters:
//   - configPath: Path to config file (empty string uses the default server location)
//
// The watcher runs on a viper-managed goroutine for the life of the process.
func WatchLogLevel(configPath string) {
	if configPath == "" {
		if !DefaultConfigExists() {
			// Nothing to watch
			return
		}
		configPath = GetDefaultConfigPath()
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		logger.Warn("Config watch disabled", "error", err)
		return
	}

	current := v.GetString("logging.level")

	v.OnConfigChange(func(_ fsnotify.Event) {
		// Editors replace files; viper re-reads before calling us
		level := v.GetString("logging.level")
		if level == "" || level == current {
			return
		}
		current = level
		logger.SetLevel(level)
		logger.Info("Log level changed", "level", level)
	})
	v.WatchConfig()
}
