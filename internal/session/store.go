// Package session owns the answer to "who is logged in". A Store is the
// single authoritative state machine for one browsing session; it
// reconciles with the persisted credential blob in exactly one place
// (InitializeAuth) and is the only component that mutates session state.
package session

import (
	"net/http"
	"sync"

	"github.com/invisibox/invisibox-web/internal/credentials"
)

// State is a point-in-time snapshot of the session.
type State struct {
	User          *credentials.Profile
	Authenticated bool
	Loading       bool
	ShowWelcome   bool
}

// Store holds session state for one browsing session. It starts in the
// loading state and stays there until InitializeAuth has reconciled with
// the credential blob. Authenticated is true if and only if User is
// non-nil; the two are always set together under the same lock.
type Store struct {
	creds *credentials.Store

	mu    sync.Mutex
	state State
	token string

	initMu   sync.Mutex
	initDone bool
}

// NewStore creates a Store in the pre-initialization state.
func NewStore(creds *credentials.Store) *Store {
	return &Store{
		creds: creds,
		state: State{Loading: true},
	}
}

// Snapshot returns a copy of the current state. The profile pointer refers
// to a copy, so callers cannot mutate the store through it.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state
	if s.state.User != nil {
		user := *s.state.User
		state.User = &user
	}
	return state
}

// Token returns the bearer token for the current session, or "" when
// unauthenticated.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetUser persists the credential blob, then flips the session to
// authenticated in a single mutation. Called exactly once per successful
// login or signup response.
func (s *Store) SetUser(w http.ResponseWriter, profile credentials.Profile, token string) error {
	if err := s.creds.Save(w, token, profile); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user := profile
	s.state.User = &user
	s.state.Authenticated = true
	s.token = token
	return nil
}

// Logout purges the persisted blob and then resets in-memory state. The
// purge always completes before this method returns, so a redirect issued
// by the caller can never be evaluated against a stale authenticated
// session. The explicit logout action and the 401 handler both land here
// and converge on identical state.
func (s *Store) Logout(w http.ResponseWriter) {
	s.creds.Purge(w)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.User = nil
	s.state.Authenticated = false
	s.state.ShowWelcome = false
	s.token = ""
}

// InitializeAuth reconciles in-memory state with the persisted blob. It
// runs the reconcile at most once per store: concurrent callers block
// until the first finishes and then observe the post-initialization state;
// no caller ever sees a partial one. A missing, partial or unreadable blob
// resets the session and purges whatever half-state remained.
func (s *Store) InitializeAuth(w http.ResponseWriter, r *http.Request) {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.initDone {
		return
	}

	token, profile, err := s.creds.Load(r)

	s.mu.Lock()
	if err != nil {
		s.creds.Purge(w)
		s.state.User = nil
		s.state.Authenticated = false
		s.token = ""
	} else {
		user := profile
		s.state.User = &user
		s.state.Authenticated = true
		s.token = token
	}
	s.state.Loading = false
	s.mu.Unlock()

	s.initDone = true
}

// SetShowWelcome toggles the one-shot welcome flag. It lives only in
// memory: a fresh store always starts with it false, whatever the
// authentication state.
func (s *Store) SetShowWelcome(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ShowWelcome = show
}
