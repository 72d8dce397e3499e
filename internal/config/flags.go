package config

import "github.com/spf13/pflag"

const (
	FlagConfig      = "config"
	FlagStorage     = "storage"
	FlagLogLevel    = "log-level"
	FlagLogFile     = "log-file"
	FlagLogFormat   = "log-format"
	FlagTheme       = "theme"
	FlagDecimals    = "decimals"
	FlagDemo        = "demo"
	FlagMetricsAddr = "metrics-addr"
)

// RegisterFlags adds the global flags. Defaults come from DefaultConfig so
// that only flags the user actually set override the config file.
func RegisterFlags(flags *pflag.FlagSet) {
	defaults := DefaultConfig()
	flags.String(FlagConfig, "", "Path to the config file")
	flags.String(FlagStorage, "", "Path to the recent archives store")
	flags.String(FlagLogLevel, defaults.LogLevel, "Log level (debug, info, warn, error)")
	flags.String(FlagLogFile, "", "Write logs to this file")
	flags.String(FlagLogFormat, defaults.LogFormat, "Log format (json, console)")
	flags.String(FlagTheme, defaults.Theme, "Color theme (dark, light)")
	flags.Int(FlagDecimals, defaults.Decimals, "Decimal places for sizes")
	flags.Bool(FlagDemo, false, "Use built-in demo archives instead of the filesystem")
	flags.String(FlagMetricsAddr, "", "Serve Prometheus metrics on this address")
}

// ApplyFlags overlays every flag the user changed onto base.
func ApplyFlags(flags *pflag.FlagSet, base Config) Config {
	if value, err := flags.GetString(FlagStorage); err == nil && flags.Changed(FlagStorage) {
		base.StoragePath = value
	}
	if value, err := flags.GetString(FlagLogLevel); err == nil && flags.Changed(FlagLogLevel) {
		base.LogLevel = value
	}
	if value, err := flags.GetString(FlagLogFile); err == nil && flags.Changed(FlagLogFile) {
		base.LogFile = value
	}
	if value, err := flags.GetString(FlagLogFormat); err == nil && flags.Changed(FlagLogFormat) {
		base.LogFormat = value
	}
	if value, err := flags.GetString(FlagTheme); err == nil && flags.Changed(FlagTheme) {
		base.Theme = NormalizeTheme(value, base.Theme)
	}
	if value, err := flags.GetInt(FlagDecimals); err == nil && flags.Changed(FlagDecimals) {
		base.Decimals = ClampDecimals(value)
	}
	if value, err := flags.GetBool(FlagDemo); err == nil && flags.Changed(FlagDemo) {
		base.Demo = value
	}
	if value, err := flags.GetString(FlagMetricsAddr); err == nil && flags.Changed(FlagMetricsAddr) {
		base.MetricsAddr = value
	}
	return base
}

func ConfigFile(flags *pflag.FlagSet) string {
	value, err := flags.GetString(FlagConfig)
	if err != nil {
		return ""
	}
	return value
}
