// Package storage persists game sessions, self-play samples and aggregate
// statistics in BadgerDB.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "chesszero"

// GetDataDir returns the platform-specific data directory for the application.
// - macOS: ~/Library/Application Support/chesszero/
// - Linux: ~/.local/share/chesszero/
// - Windows: %APPDATA%/chesszero/
func GetDataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		// macOS: ~/Library/Application Support/
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		// Windows: %APPDATA%
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		// Linux and other Unix-like: ~/.local/share/
		// Check XDG_DATA_HOME first
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	dataDir := filepath.Join(baseDir, appName)

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	return dataDir, nil
}

// GetModelDir returns the directory for storing network weight files.
func GetModelDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}

	modelDir := filepath.Join(dataDir, "models")
	if err := os.MkdirAll(modelDir, 0755); err != nil {
		return "", err
	}

	return modelDir, nil
}

// DefaultModelFile is where the binaries look for weights when no path is
// given.
func DefaultModelFile() (string, error) {
	dir, err := GetModelDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "latest.bin"), nil
}

// GetDatabaseDir returns the directory for storing the BadgerDB database.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}

	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", err
	}

	return dbDir, nil
}
