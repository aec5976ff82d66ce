package session

import (
	"github.com/vedran77/chatty/internal/client/gateway"
	"github.com/vedran77/chatty/internal/domain"
)

// AuthState says why the store does or does not hold a user.
type AuthState int

const (
	// StateUnknown means no session check has settled yet.
	StateUnknown AuthState = iota
	StateAuthenticated
	// StateUnauthenticated covers "checked, no session" and rejected
	// credentials.
	StateUnauthenticated
	StateLoggedOut
	// StateSessionExpired means the server rejected the session check because
	// the credential expired. Other rejections leave the store unauthenticated.
	StateSessionExpired
)

func (s AuthState) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateLoggedOut:
		return "logged out"
	case StateSessionExpired:
		return "session expired"
	default:
		return "invalid"
	}
}

// Flags report which kinds of call are in flight.
type Flags struct {
	Checking        bool
	SigningUp       bool
	LoggingIn       bool
	LoggingOut      bool
	UpdatingProfile bool
}

// Snapshot is a copy of the store's state; mutating it has no effect on
// the store.
type Snapshot struct {
	User      *domain.User
	State     AuthState
	Flags     Flags
	LastError *gateway.Error
}

// Result is what every store action returns. Err is set on failure.
// Superseded means a newer call of the same kind was started before this
// one settled, so its outcome was dropped.
type Result struct {
	Success    bool
	Err        *gateway.Error
	Superseded bool
}

type SignupInput struct {
	FullName string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// ProfileUpdate is the set of profile fields to change, keyed by their
// wire names.
type ProfileUpdate map[string]any

// WithProfilePicture sets the avatar, given as a data URI.
func (p ProfileUpdate) WithProfilePicture(dataURI string) ProfileUpdate {
	if p == nil {
		p = ProfileUpdate{}
	}
	p["profilePicture"] = dataURI
	return p
}

// category indexes the per-kind counters.
type category int

const (
	catCheck category = iota
	catSignup
	catLogin
	catLogout
	catUpdateProfile
	numCategories
)
