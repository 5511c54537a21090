package logger

import "github.com/hashicorp/go-hclog"

const appName = "hophacks"

// New returns the application logger. An unknown or empty level falls back to INFO.
func New(level string) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:  appName,
		Level: lvl,
	})
}
