package services

import "github.com/saherflow/flowportal/internal/client/models"

// State is the lifecycle position of a SessionStore.
type State int

const (
	// StateInitializing is the state of a fresh store until Initialize
	// finishes restoring (or failing to restore) the stored session.
	StateInitializing State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of the session at one point in time.
type Snapshot struct {
	State   State
	User    *models.User
	Token   string
	Loading bool
}

// IsAuthenticated reports whether the snapshot holds a complete session.
func (s Snapshot) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

// Email returns the signed-in email or "".
func (s Snapshot) Email() string {
	if s.User == nil {
		return ""
	}
	return s.User.Email
}
