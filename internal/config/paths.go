package config

import (
	"os"
	"path/filepath"

	"github.com/mrz1836/scout/internal/constants"
	"github.com/mrz1836/scout/internal/errors"
)

// HomeEnvVar relocates every per-user scout file: global config, snapshots,
// history and logs.
const HomeEnvVar = "SCOUT_HOME"

// HomeDir returns $SCOUT_HOME, or ~/.scout when it is unset.
func HomeDir() (string, error) {
	if dir := os.Getenv(HomeEnvVar); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.ScoutHome), nil
}

// GlobalConfigPath returns <home>/config.yaml.
func GlobalConfigPath() (string, error) {
	return underHome(constants.ConfigFileName)
}

// ProjectConfigPath returns .scout/config.yaml, relative to the working directory.
func ProjectConfigPath() string {
	return filepath.Join(constants.ScoutHome, constants.ConfigFileName)
}

// StateDir is the file backend's directory when storage.dir is empty.
func StateDir() (string, error) {
	return underHome(constants.StateDir)
}

// HistoryPath is the archive database when history.path is empty.
func HistoryPath() (string, error) {
	return underHome(constants.HistoryDBFileName)
}

// LogFilePath is the rotating CLI log file.
func LogFilePath() (string, error) {
	return underHome(filepath.Join(constants.LogsDir, constants.CLILogFileName))
}

func underHome(rel string) (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, rel), nil
}
