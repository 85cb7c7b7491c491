package config

const (
	StoreTypeFile  = "file"
	StoreTypeRedis = "redis"
)

type Store struct{}

var _ StoreConfig = Store{}

// GetStoreType selects the session store backend: "file" (default) or "redis".
func (Store) GetStoreType() string {
	return GetEnv("STORE", StoreTypeFile)
}

// GetStorePassphrase seals the session file at rest when set.
func (Store) GetStorePassphrase() string {
	return GetEnv("STORE_PASSPHRASE", "")
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Store) GetRedisNamespace() string {
	return GetEnv("REDIS_NAMESPACE", "community")
}
