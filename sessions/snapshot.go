package sessions

import (
	"slices"

	"github.com/jrsteele09/community-client/api"
	"github.com/jrsteele09/community-client/users"
)

// Snapshot is a read-only copy of the session handed to consumers. Mutating it
// has no effect on the Manager.
type Snapshot struct {
	Status      Status
	AccessToken string
	CommunityID string
	User        *users.User
	Posts       []api.Post
	Activities  []api.Activity
	Events      []api.Event

	// Generation changes whenever the (communityId, accessToken) pair does.
	Generation uint64
}

// LoggedIn reports whether the snapshot holds an access token, expired or not.
func (s Snapshot) LoggedIn() bool {
	return s.AccessToken != ""
}

// snapshotLocked copies the manager state. Caller holds m.mu.
func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Status:      m.status,
		AccessToken: m.accessToken,
		CommunityID: m.communityID,
		User:        m.user.Clone(),
		Posts:       slices.Clone(m.posts),
		Activities:  slices.Clone(m.activities),
		Events:      slices.Clone(m.events),
		Generation:  m.generation,
	}
}
