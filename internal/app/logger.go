package app

import (
	"strings"

	"github.com/charlesng35/soiree/pkg/logger"
)

// ConfigureLogging initialises the global logger with the provided level,
// defaulting to info. format "console" selects the development encoder.
func ConfigureLogging(level, format string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	var opts []logger.Option
	if strings.EqualFold(strings.TrimSpace(format), "console") {
		opts = append(opts, logger.WithConsole())
	}
	return logger.Init(level, opts...)
}
