package config

import "time"

type Session struct{}

var _ SessionConfig = Session{}

// GetRequestTimeout bounds every call to the backend. Zero disables the bound.
func (Session) GetRequestTimeout() time.Duration {
	return durationEnv("REQUEST_TIMEOUT", 30*time.Second)
}

// GetPreloadTimeout bounds the background feed/activities/events preload.
func (Session) GetPreloadTimeout() time.Duration {
	return durationEnv("PRELOAD_TIMEOUT", time.Minute)
}

func durationEnv(envVar string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(GetEnv(envVar, ""))
	if err != nil {
		return defaultValue
	}
	return d
}
