// Package credentials persists the authenticated user's bearer token and
// profile across page reloads as two separately encrypted browser cookies.
package credentials

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/invisibox/invisibox-web/pkg/cookie"
)

const (
	// TokenCookie holds the opaque bearer token issued by the backend.
	TokenCookie = "auth_token"
	// ProfileCookie holds the JSON-serialized user profile.
	ProfileCookie = "user_data"

	// ttlDays is the fixed credential lifetime.
	ttlDays = 7
)

// ErrNoCredentials is returned when the credential blob is absent,
// partial, corrupt, or fails decryption. All of these are equivalent to
// "not logged in"; none are surfaced to the user.
var ErrNoCredentials = errors.New("credentials.not_found")

// Profile is the user identity issued by the backend on login or signup.
// It is immutable for the lifetime of a session and replaced wholesale on
// re-login.
type Profile struct {
	Email          string `json:"email"`
	InvisiboxEmail string `json:"invisiboxEmail"`
	CompanyName    string `json:"companyName"`
}

// Store reads and writes the credential blob through an encrypted cookie
// manager. It never holds state itself; the cookies are the storage.
type Store struct {
	cookies *cookie.Manager
}

func NewStore(cookies *cookie.Manager) *Store {
	return &Store{cookies: cookies}
}

// Save writes both credential entries with the fixed 7-day expiry.
// Cookie writes are best-effort; a browser that drops them simply comes
// back unauthenticated.
func (s *Store) Save(w http.ResponseWriter, token string, profile Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	if err := s.cookies.SetEncrypted(w, TokenCookie, token, cookie.WithTTLDays(ttlDays)); err != nil {
		return err
	}
	return s.cookies.SetEncrypted(w, ProfileCookie, string(data), cookie.WithTTLDays(ttlDays))
}

// Load returns the persisted token and profile. It is all-or-nothing: if
// either entry is missing or unreadable the whole blob is reported absent,
// so callers can treat a half-written state as "no session".
func (s *Store) Load(r *http.Request) (string, Profile, error) {
	token, err := s.cookies.GetEncrypted(r, TokenCookie)
	if err != nil || token == "" {
		return "", Profile{}, ErrNoCredentials
	}

	raw, err := s.cookies.GetEncrypted(r, ProfileCookie)
	if err != nil {
		return "", Profile{}, ErrNoCredentials
	}

	var profile Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return "", Profile{}, ErrNoCredentials
	}

	return token, profile, nil
}

// Purge expires both entries immediately.
func (s *Store) Purge(w http.ResponseWriter) {
	s.cookies.Delete(w, TokenCookie)
	s.cookies.Delete(w, ProfileCookie)
}
