package sessions

// Status is where a session sits in its lifecycle.
type Status int

const (
	// StatusLoggedOut holds no tokens. It is the initial state on first run.
	StatusLoggedOut Status = iota
	// StatusRestoring is transient while persisted values are read back.
	StatusRestoring
	// StatusValid holds a token that was not expired when last checked.
	StatusValid
	// StatusExpired holds a token whose exp claim has passed.
	StatusExpired
	// StatusRefreshing has a refresh exchange outstanding.
	StatusRefreshing
	// StatusInvalid is reached when refresh fails; the session is cleared
	// straight after and settles in StatusLoggedOut.
	StatusInvalid
)

var statusNames = map[Status]string{
	StatusLoggedOut:  "logged_out",
	StatusRestoring:  "restoring",
	StatusValid:      "valid",
	StatusExpired:    "expired",
	StatusRefreshing: "refreshing",
	StatusInvalid:    "invalid",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// HasToken reports whether a session in this status holds an access token.
func (s Status) HasToken() bool {
	return s == StatusValid || s == StatusExpired || s == StatusRefreshing
}
