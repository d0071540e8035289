// Package services contains application services for the flowportal client.
// This file defines the session store: the single source of truth for who is
// signed in, backed by the gateway and the durable token slot.
package services

import (
	"context"
	"sync"

	"github.com/saherflow/flowportal/internal/client/client"
	"github.com/saherflow/flowportal/internal/client/models"
	"github.com/saherflow/flowportal/internal/client/storage"
	"github.com/saherflow/flowportal/internal/logging"
)

const (
	MsgSuperseded   = "request superseded by a newer session operation"
	MsgSaveFailed   = "Could not save your session. Please try again."
	MsgLoginFailed  = "Login failed"
	MsgLoggedOut    = "You have been logged out."
	MsgLogoutNoSave = "You have been logged out, but the saved session could not be removed."
	MsgRestored     = "Session restored"
	MsgNoSession    = "No saved session"
	MsgStorageRead  = "Could not read the saved session."
)

// SessionStore owns the authenticated session.
//
// Contract:
//   - Initialize: restore a stored session, validating it with the backend.
//   - Login: authenticate, persist the token, then commit the session.
//   - Signup, ForgotPassword, ResendVerification: pass-through calls that
//     never change the session.
//   - Logout: clear memory and storage, then revoke the token remotely.
//
// Initialize and Logout take a new generation when they start; Login takes
// one only when it commits. A network response is only committed if no newer
// generation was taken while it was in flight; otherwise it is discarded and
// the caller gets MsgSuperseded. A failed Login therefore never supersedes
// anything. User and token are always set and cleared together.
//
// SessionStore is safe for concurrent use.
type SessionStore struct {
	client client.Client
	tokens storage.TokenStore
	log    logging.Logger

	mu         sync.Mutex
	state      State
	user       *models.User
	token      string
	loading    bool
	generation uint64

	subs   map[uint64]chan Snapshot
	nextID uint64
}

// NewSessionStore constructs a store in StateInitializing. A nil logger
// discards output. Pass a storage.MemoryTokenStore for a session that must
// not outlive the process.
func NewSessionStore(c client.Client, tokens storage.TokenStore, log logging.Logger) *SessionStore {
	if log == nil {
		log = logging.Discard()
	}
	return &SessionStore{
		client:  c,
		tokens:  tokens,
		log:     log.With("component", "session"),
		state:   StateInitializing,
		loading: true,
		subs:    make(map[uint64]chan Snapshot),
	}
}

// Initialize restores the stored session, if any. An invalid or unreachable
// session is not an error: the stored token is purged and the store ends up
// Unauthenticated. Loading is false when Initialize returns.
func (s *SessionStore) Initialize(ctx context.Context) models.Result {
	gen := s.beginLocked(func() {
		s.loading = true
		s.state = StateInitializing
	})

	token, err := s.tokens.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "failed to read stored session", "error", err)
		return s.finishInit(ctx, gen, nil, "", false, models.Result{Success: false, Message: MsgStorageRead})
	}
	if token == "" {
		return s.finishInit(ctx, gen, nil, "", false, models.Result{Success: true, Message: MsgNoSession})
	}

	env := s.client.CurrentUser(ctx, token)
	if !env.HasData() {
		s.log.Info(ctx, "stored session rejected", "message", env.Message)
		return s.finishInit(ctx, gen, nil, "", true, models.Result{Success: true, Message: MsgNoSession})
	}

	user := env.Data.User
	return s.finishInit(ctx, gen, &user, token, false, models.Result{Success: true, Message: MsgRestored})
}

func (s *SessionStore) finishInit(ctx context.Context, gen uint64, user *models.User, token string, purge bool, res models.Result) models.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		// A newer Initialize still owns the loading flag.
		if s.state != StateInitializing {
			s.loading = false
		}
		s.log.Debug(ctx, "discarding stale initialization", "generation", gen, "current", s.generation)
		s.notifyLocked()
		return models.Result{Success: false, Message: MsgSuperseded}
	}

	s.loading = false

	if purge {
		if err := s.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn(ctx, "failed to clear rejected session", "error", err)
		}
	}

	if user != nil && token != "" {
		s.setLocked(ctx, StateAuthenticated, user, token)
	} else {
		s.setLocked(ctx, StateUnauthenticated, nil, "")
	}
	return res
}

// Login authenticates with the backend. On success the token is persisted
// before the session is committed; if persisting fails the session is not
// committed and the freshly issued token is revoked.
//
// A failed login leaves the current state untouched. remember is only
// forwarded to the backend.
func (s *SessionStore) Login(ctx context.Context, email, password string, remember bool) models.Result {
	gen := s.currentGeneration()

	env := s.client.Login(ctx, models.LoginRequest{Email: email, Password: password, RememberMe: remember})
	if !env.HasData() || env.Data.Token == "" {
		res := models.ResultFrom(env)
		res.Success = false
		if res.Message == "" {
			res.Message = MsgLoginFailed
		}
		return res
	}

	token := env.Data.Token
	user := env.Data.User

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.log.Info(ctx, "discarding stale login", "generation", gen)
		return models.Result{Success: false, Message: MsgSuperseded}
	}
	if err := s.tokens.Save(context.WithoutCancel(ctx), token); err != nil {
		s.mu.Unlock()
		s.log.Error(ctx, "failed to persist session", "error", err)
		s.revoke(ctx, token)
		return models.Result{Success: false, Message: MsgSaveFailed}
	}
	s.generation++
	s.setLocked(ctx, StateAuthenticated, &user, token)
	s.mu.Unlock()

	return models.ResultFrom(env)
}

// Signup registers a new account. The confirmation and terms fields of the
// form are not sent. The session is not changed.
func (s *SessionStore) Signup(ctx context.Context, form models.SignupForm) models.Result {
	return models.ResultFrom(s.client.Signup(ctx, form.Request()))
}

// ForgotPassword requests a password-reset email.
func (s *SessionStore) ForgotPassword(ctx context.Context, email string) models.Result {
	return models.ResultFrom(s.client.ForgotPassword(ctx, email))
}

// ResendVerification requests a new verification email.
func (s *SessionStore) ResendVerification(ctx context.Context, email string) models.Result {
	return models.ResultFrom(s.client.ResendVerification(ctx, email))
}

// Logout ends the session. Memory and storage are cleared first, so the
// store is Unauthenticated when Logout returns regardless of the remote
// outcome. Any in-flight Initialize or Login is superseded.
func (s *SessionStore) Logout(ctx context.Context) models.Result {
	var (
		token    string
		clearErr error
	)
	s.beginLocked(func() {
		token = s.token
		clearErr = s.tokens.Clear(context.WithoutCancel(ctx))
		s.loading = false
		s.setLocked(ctx, StateUnauthenticated, nil, "")
	})

	if token != "" {
		s.revoke(ctx, token)
	}

	if clearErr != nil {
		s.log.Error(ctx, "failed to clear stored session", "error", clearErr)
		return models.Result{Success: false, Message: MsgLogoutNoSave}
	}
	return models.Result{Success: true, Message: MsgLoggedOut}
}

// revoke asks the backend to invalidate token. The outcome is only logged.
func (s *SessionStore) revoke(ctx context.Context, token string) {
	env := s.client.Logout(ctx, token)
	if !env.Success {
		s.log.Warn(ctx, "remote logout failed", "message", env.Message)
	}
}

// User returns a copy of the signed-in user, or nil.
func (s *SessionStore) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone()
}

func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *SessionStore) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Loading reports whether session restoration is still in progress.
func (s *SessionStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *SessionStore) IsAuthenticated() bool {
	return s.Snapshot().IsAuthenticated()
}

func (s *SessionStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that receives the newest snapshot after every
// change. A slow reader only ever sees the latest value. The returned func
// unsubscribes and closes the channel; calling it twice is safe.
func (s *SessionStore) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// beginLocked starts a new generation and runs fn under the lock.
func (s *SessionStore) beginLocked(fn func()) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	fn()
	s.notifyLocked()
	return s.generation
}

func (s *SessionStore) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *SessionStore) setLocked(ctx context.Context, state State, user *models.User, token string) {
	prev := s.state
	s.state = state
	s.user = user
	s.token = token
	if prev != state {
		s.log.Info(ctx, "session state changed", "from", prev.String(), "to", state.String())
	}
	s.notifyLocked()
}

func (s *SessionStore) snapshotLocked() Snapshot {
	return Snapshot{
		State:   s.state,
		User:    s.user.Clone(),
		Token:   s.token,
		Loading: s.loading,
	}
}

// notifyLocked replaces any pending value on each subscriber channel with the
// current snapshot. Sends happen only under mu, so they never block.
func (s *SessionStore) notifyLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}
