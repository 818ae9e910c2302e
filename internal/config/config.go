package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	AppName = "doidoi"

	// EnvPrefix is the prefix viper uses for environment overrides (DOIDOI_API_URL, ...)
	EnvPrefix = "DOIDOI"
)

// Default configuration values
var Defaults = struct {
	APIURL       string
	MQTTTopic    string
	MQTTClientID string
}{
	APIURL:       "http://localhost:3000/api",
	MQTTTopic:    "doidoi/devices/created",
	MQTTClientID: "", // generated per run when empty
}

// GetConfigDir returns the configuration directory path based on OS
func GetConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		// macOS: ~/Library/Application Support/doidoi
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", AppName)
	case "windows":
		// Windows: %APPDATA%\doidoi
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, AppName)
	default:
		// Linux and others: ~/.config/doidoi (XDG Base Directory)
		xdgConfig := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfig == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			xdgConfig = filepath.Join(home, ".config")
		}
		configDir = filepath.Join(xdgConfig, AppName)
	}

	return configDir, nil
}

// GetCredentialsPath returns the path to the credentials file
func GetCredentialsPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "credentials.json"), nil
}
