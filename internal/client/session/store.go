// Package session holds the client's view of who is logged in.
//
// Every action raises its in-flight flag, calls the gateway without holding
// the lock, and applies the outcome when it settles. Failures never escape
// as errors; callers get a Result and can read LastError from a Snapshot.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vedran77/chatty/internal/apierr"
	"github.com/vedran77/chatty/internal/client/gateway"
	"github.com/vedran77/chatty/internal/domain"
	"github.com/vedran77/chatty/internal/logging"
)

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

type Store struct {
	gw       gateway.Gateway
	notifier Notifier
	log      logging.Logger

	mu      sync.Mutex
	user    *domain.User
	state   AuthState
	lastErr *gateway.Error

	// initialCheck keeps Checking raised from construction until the first
	// session check settles.
	initialCheck bool
	inFlight     [numCategories]int
	seq          [numCategories]uint64

	subs   []subscriber
	nextID int
}

func NewStore(gw gateway.Gateway, opts ...Option) *Store {
	s := &Store{
		gw:           gw,
		notifier:     nopNotifier{},
		log:          logging.Nop(),
		state:        StateUnknown,
		initialCheck: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckSession asks the server whether the ambient credential is still
// valid. Success is true only when the server returned a user.
func (s *Store) CheckSession(ctx context.Context) Result {
	token := s.begin(catCheck)

	var user *domain.User
	gwErr := guard(func() (err error) {
		user, err = s.gw.CheckSession(ctx)
		return err
	})

	return s.settle(catCheck, token, gwErr, func() {
		s.initialCheck = false
		switch {
		case gwErr != nil:
			s.user = nil
			if errors.Is(gwErr, gateway.ErrAuth) && gwErr.Message == apierr.MsgSessionExpired {
				s.state = StateSessionExpired
			} else {
				s.state = StateUnauthenticated
			}
		case user != nil:
			s.user = user
			s.state = StateAuthenticated
		default:
			s.user = nil
			s.state = StateUnauthenticated
		}
	}, func() {
		if gwErr != nil {
			s.log.Warn(ctx, "session check failed", "error", gwErr)
		}
	}, user != nil)
}

func (s *Store) Signup(ctx context.Context, in SignupInput) Result {
	token := s.begin(catSignup)

	var user *domain.User
	gwErr := guard(func() (err error) {
		user, err = s.gw.Signup(ctx, gateway.SignupRequest{
			FullName: in.FullName,
			Email:    in.Email,
			Password: in.Password,
		})
		return err
	})
	gwErr = requireUser(user, gwErr)

	return s.settle(catSignup, token, gwErr, func() {
		if gwErr != nil {
			s.user = nil
			s.state = StateUnauthenticated
			return
		}
		s.user = user
		s.state = StateAuthenticated
	}, func() {
		if gwErr != nil {
			s.log.Warn(ctx, "signup failed", "error", gwErr)
			s.notifier.Error(MsgSignupFailed)
			return
		}
		s.notifier.Success(MsgSignupOK)
	}, true)
}

// Login reports a generic message on failure whatever the cause, so the
// UI does not reveal which part of the credentials was wrong.
func (s *Store) Login(ctx context.Context, in LoginInput) Result {
	token := s.begin(catLogin)

	var user *domain.User
	gwErr := guard(func() (err error) {
		user, err = s.gw.Login(ctx, gateway.LoginRequest{
			Email:    in.Email,
			Password: in.Password,
		})
		return err
	})
	gwErr = requireUser(user, gwErr)

	return s.settle(catLogin, token, gwErr, func() {
		if gwErr != nil {
			s.user = nil
			s.state = StateUnauthenticated
			return
		}
		s.user = user
		s.state = StateAuthenticated
	}, func() {
		if gwErr != nil {
			s.log.Warn(ctx, "login failed", "error", gwErr)
			s.notifier.Error(MsgLoginFailed)
			return
		}
		s.notifier.Success(MsgLoginOK)
	}, true)
}

// Logout leaves the user in place when the server call fails.
func (s *Store) Logout(ctx context.Context) Result {
	token := s.begin(catLogout)

	gwErr := guard(func() error {
		return s.gw.Logout(ctx)
	})

	return s.settle(catLogout, token, gwErr, func() {
		if gwErr != nil {
			return
		}
		s.user = nil
		s.state = StateLoggedOut
	}, func() {
		if gwErr != nil {
			s.log.Warn(ctx, "logout failed", "error", gwErr)
			s.notifier.Error(MsgLogoutFailed)
			return
		}
		s.notifier.Success(MsgLogoutOK)
	}, true)
}

// UpdateProfile replaces the user with the server's record on success and
// leaves it untouched on failure.
func (s *Store) UpdateProfile(ctx context.Context, update ProfileUpdate) Result {
	token := s.begin(catUpdateProfile)

	fields := make(map[string]any, len(update))
	for k, v := range update {
		fields[k] = v
	}
	var user *domain.User
	gwErr := guard(func() (err error) {
		user, err = s.gw.UpdateProfile(ctx, fields)
		return err
	})
	gwErr = requireUser(user, gwErr)

	return s.settle(catUpdateProfile, token, gwErr, func() {
		if gwErr != nil {
			return
		}
		s.user = user
		s.state = StateAuthenticated
	}, func() {
		if gwErr != nil {
			s.log.Warn(ctx, "profile update failed", "error", gwErr)
			s.notifier.Error(MsgProfileFailed)
			return
		}
		s.notifier.Success(MsgProfileOK)
	}, true)
}

// guard runs a gateway call and normalizes its failure. A panicking gateway
// is reported as an error so the action still settles and its flag drops.
func guard(call func() error) (gwErr *gateway.Error) {
	defer func() {
		if r := recover(); r != nil {
			gwErr = gateway.AsError(fmt.Errorf("gateway panic: %v", r))
		}
	}()
	return gateway.AsError(call())
}

// requireUser turns a success without a user into an error, so a user is
// present whenever the state says authenticated.
func requireUser(user *domain.User, gwErr *gateway.Error) *gateway.Error {
	if gwErr == nil && user == nil {
		return &gateway.Error{Type: apierr.TypeInternal, Message: "response has no user"}
	}
	return gwErr
}

// begin raises the category's flag and hands out a sequence token.
func (s *Store) begin(cat category) uint64 {
	s.mu.Lock()
	s.inFlight[cat]++
	s.seq[cat]++
	token := s.seq[cat]
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return token
}

// settle lowers the flag and, unless a newer call of the same category was
// started meanwhile, applies the outcome, records the error and runs the
// side effects. okOnSuccess is the Success value when gwErr is nil.
func (s *Store) settle(cat category, token uint64, gwErr *gateway.Error, apply func(), effects func(), okOnSuccess bool) Result {
	s.mu.Lock()
	s.inFlight[cat]--
	if token != s.seq[cat] {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.publish(snap)
		return Result{Superseded: true, Err: gwErr}
	}

	apply()
	s.lastErr = gwErr
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	effects()

	if gwErr != nil {
		return Result{Err: gwErr}
	}
	return Result{Success: okOnSuccess}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		State: s.state,
		Flags: Flags{
			Checking:        s.initialCheck || s.inFlight[catCheck] > 0,
			SigningUp:       s.inFlight[catSignup] > 0,
			LoggingIn:       s.inFlight[catLogin] > 0,
			LoggingOut:      s.inFlight[catLogout] > 0,
			UpdatingProfile: s.inFlight[catUpdateProfile] > 0,
		},
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	if s.lastErr != nil {
		e := *s.lastErr
		snap.LastError = &e
	}
	return snap
}

// User returns a copy of the authenticated user, or nil.
func (s *Store) User() *domain.User {
	return s.Snapshot().User
}

func (s *Store) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

// Subscribe registers fn to receive a snapshot after every change. The
// returned function removes it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// publish calls subscribers in registration order, without the lock.
func (s *Store) publish(snap Snapshot) {
	s.mu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}
