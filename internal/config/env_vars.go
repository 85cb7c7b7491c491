package config

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

const (
	apiURLEnvVar   = "API_URL"
	appNameVar     = "APP_NAME"
	folderEnvVar   = "DATA_FOLDER"
	logLevelEnvVar = "LOG_LEVEL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetAPIURL returns the backend base URL without a trailing slash.
func (EnvVars) GetAPIURL() string {
	url := GetEnv(apiURLEnvVar, "http://localhost:5000")
	for len(url) > 0 && url[len(url)-1] == '/' {
		url = url[:len(url)-1]
	}
	return url
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Community")
}

// GetDataFolder returns where the session file lives. Defaults to ~/.community,
// falling back to ./data when the home directory can't be resolved.
func (EnvVars) GetDataFolder() string {
	if folder := os.Getenv(folderEnvVar); folder != "" {
		expanded, err := homedir.Expand(folder)
		if err != nil {
			return folder
		}
		return expanded
	}
	home, err := homedir.Dir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".community")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelEnvVar, "info")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
