package storage

import "context"

// Persisted keys. All values are strings; the JSON-valued keys hold serialised
// documents that readers must parse.
const (
	KeyAuthToken      = "authToken"
	KeyRefreshToken   = "refreshToken"
	KeyUser           = "user" // JSON
	KeyCommunityID    = "communityId"
	KeyUserActivities = "userActivities" // JSON
	KeyUserEvents     = "userEvents"     // JSON
	KeyUserPosts      = "userPosts"      // JSON
)

var (
	// SessionKeys hold the authentication state.
	SessionKeys = []string{KeyAuthToken, KeyRefreshToken, KeyUser, KeyCommunityID}

	// CacheKeys hold the best-effort preload snapshots.
	CacheKeys = []string{KeyUserActivities, KeyUserEvents, KeyUserPosts}

	// AllKeys is every key the client writes.
	AllKeys = append(append([]string{}, SessionKeys...), CacheKeys...)
)

// Store is a flat string key/value namespace that survives process restarts.
type Store interface {
	// Get returns the value and whether the key was present
	Get(ctx context.Context, key string) (string, bool, error)

	// Set creates or replaces a value
	Set(ctx context.Context, key, value string) error

	// Delete removes keys; missing keys are not an error
	Delete(ctx context.Context, keys ...string) error
}
