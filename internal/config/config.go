package config

import "time"

type Config interface {
	EnvConfig
	SessionConfig
	StoreConfig
}

type EnvConfig interface {
	GetAPIURL() string
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetEnv() string
}

type StoreConfig interface {
	GetStoreType() string
	GetStorePassphrase() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisNamespace() string
}

type SessionConfig interface {
	GetRequestTimeout() time.Duration
	GetPreloadTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Session
	Store
}

func New() Config {
	return mainConfig{}
}
