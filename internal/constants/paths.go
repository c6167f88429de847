package constants

// Log file rotation settings for the global CLI log.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.scout/logs/scout.log
	CLILogFileName = "scout.log"

	// LogMaxSizeMB is the size at which the CLI log is rotated.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files kept.
	LogMaxBackups = 3

	// LogMaxAgeDays is how long rotated log files are kept.
	LogMaxAgeDays = 28

	// LogCompress enables gzip compression of rotated logs.
	LogCompress = true
)

// Configuration file names.
const (
	// ConfigFileName is the name of both the global and project config files.
	ConfigFileName = "config.yaml"

	// EnvPrefix is the prefix for environment variable overrides (SCOUT_SERVER_ADDR, ...).
	EnvPrefix = "SCOUT"
)
