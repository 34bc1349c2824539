package web_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invisibox/invisibox-web/internal/backend"
	"github.com/invisibox/invisibox-web/internal/credentials"
	"github.com/invisibox/invisibox-web/internal/session"
	"github.com/invisibox/invisibox-web/internal/web"
	"github.com/invisibox/invisibox-web/pkg/broadcast"
	"github.com/invisibox/invisibox-web/pkg/cookie"
)

const testSecret = "this-is-a-very-long-secret-key-32-chars-long"

const authJSON = `{"email":"a@b.com","invisiboxEmail":"emp123@invisibox.email","companyName":"Acme","token":"tok1"}`

type app struct {
	router  http.Handler
	cookies []*http.Cookie
}

// newApp wires the full stack against a fake invisibox backend.
func newApp(t *testing.T, backendHandler http.HandlerFunc) *app {
	t.Helper()

	srv := httptest.NewServer(backendHandler)
	t.Cleanup(srv.Close)

	bus := broadcast.New[backend.Invalidation](4)
	t.Cleanup(func() { _ = bus.Close() })

	cookies, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	creds := credentials.NewStore(cookies)
	sessions := session.NewManager(creds, nil)
	client := backend.New(backend.Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, nil, bus)
	handlers := web.NewHandlers(client, sessions, cookies, nil)

	return &app{router: web.Router(handlers, sessions, nil)}
}

// do performs a request carrying the app's cookie jar and folds any
// Set-Cookie headers from the response back into it.
func (a *app) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	for _, c := range a.cookies {
		if c.MaxAge >= 0 {
			r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
		}
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, r)

	res := w.Result()
	defer res.Body.Close()
	for _, c := range res.Cookies() {
		a.setCookie(c)
	}
	return w
}

func (a *app) setCookie(c *http.Cookie) {
	for i, existing := range a.cookies {
		if existing.Name == c.Name {
			a.cookies[i] = c
			return
		}
	}
	a.cookies = append(a.cookies, c)
}

func (a *app) hasCookie(name string) bool {
	for _, c := range a.cookies {
		if c.Name == name && c.MaxAge >= 0 && c.Value != "" {
			return true
		}
	}
	return false
}

func TestLoginEstablishesSession(t *testing.T) {
	t.Parallel()

	a := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(authJSON))
		case "/dashboard":
			assert.Equal(t, "Bearer tok1", r.Header.Get("Authorization"))
			w.Write([]byte(`{"totalSubscribers":5}`))
		default:
			t.Errorf("unexpected backend call: %s", r.URL.Path)
		}
	})

	w := a.do(t, http.MethodPost, "/auth/login", `{"email":"a@b.com","password":"pw"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "emp123@invisibox.email")

	assert.True(t, a.hasCookie(credentials.TokenCookie))
	assert.True(t, a.hasCookie(credentials.ProfileCookie))

	// The persisted session authorizes a guarded route on the next request.
	w = a.do(t, http.MethodGet, "/dashboard", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalSubscribers":5`)
}

func TestGuardRedirectsWithoutSession(t *testing.T) {
	t.Parallel()

	a := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("backend must not be called, got %s", r.URL.Path)
	})

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/dashboard"},
		{http.MethodGet, "/subscribers"},
		{http.MethodGet, "/messages"},
		{http.MethodPost, "/polls"},
		{http.MethodPost, "/auth/logout"},
	} {
		w := a.do(t, route.method, route.path, "")
		assert.Equal(t, http.StatusSeeOther, w.Code, "%s %s", route.method, route.path)
		assert.Equal(t, "/", w.Header().Get("Location"))
	}
}

func TestBackendUnauthorizedPurgesSessionAndRedirects(t *testing.T) {
	t.Parallel()

	a := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(authJSON))
		default:
			// Token revoked server-side: every authenticated call fails.
			w.WriteHeader(http.StatusUnauthorized)
		}
	})

	a.do(t, http.MethodPost, "/auth/login", `{"email":"a@b.com","password":"pw"}`)
	require.True(t, a.hasCookie(credentials.TokenCookie))

	w := a.do(t, http.MethodGet, "/messages", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	// Both credential cookies are gone; the next guarded request redirects
	// without ever reaching the backend.
	assert.False(t, a.hasCookie(credentials.TokenCookie))
	assert.False(t, a.hasCookie(credentials.ProfileCookie))
}

func TestSignupWelcomeModalIsOneShot(t *testing.T) {
	t.Parallel()

	a := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/signup":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(authJSON))
		case "/dashboard":
			w.Write([]byte(`{"totalSubscribers":0}`))
		case "/employees/send-anonymous-message":
			w.WriteHeader(http.StatusOK)
		}
	})

	w := a.do(t, http.MethodPost, "/auth/signup", `{"email":"a@b.com","password":"pw","companyName":"Acme"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	// First dashboard load after signup shows the welcome modal.
	w = a.do(t, http.MethodGet, "/dashboard", "")
	assert.Contains(t, w.Body.String(), `"showWelcomeModal":true`)

	// An unrelated mutation must not re-arm it.
	a.do(t, http.MethodPost, "/employees/send-anonymous-message",
		`{"invisiboxEmail":"emp123@invisibox.email","subject":"hi","body":"there"}`)

	w = a.do(t, http.MethodGet, "/dashboard", "")
	assert.Contains(t, w.Body.String(), `"showWelcomeModal":false`)
}

func TestLogoutPurgesAndRedirects(t *testing.T) {
	t.Parallel()

	var sawLogout bool
	a := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(authJSON))
		case "/auth/logout":
			sawLogout = true
			assert.Equal(t, "Bearer tok1", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusOK)
		}
	})

	a.do(t, http.MethodPost, "/auth/login", `{"email":"a@b.com","password":"pw"}`)

	w := a.do(t, http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.True(t, sawLogout)
	assert.False(t, a.hasCookie(credentials.TokenCookie))
	assert.False(t, a.hasCookie(credentials.ProfileCookie))
}

func TestValidationErrorSurfacesVerbatim(t *testing.T) {
	t.Parallel()

	a := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"this email is already subscribed"}`))
	})

	w := a.do(t, http.MethodPost, "/employees/subscribe", `{"invisiboxEmail":"emp123@invisibox.email"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "this email is already subscribed")
}

func TestBackendDownIsGenericFailure(t *testing.T) {
	t.Parallel()

	// A backend that is down: connection refused on every call.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	cookies, err := cookie.New([]string{testSecret})
	require.NoError(t, err)
	creds := credentials.NewStore(cookies)
	sessions := session.NewManager(creds, nil)
	client := backend.New(backend.Config{BaseURL: srv.URL, Timeout: time.Second}, nil, nil)
	a := &app{router: web.Router(web.NewHandlers(client, sessions, cookies, nil), sessions, nil)}

	w := a.do(t, http.MethodPost, "/employees/subscribe", `{"invisiboxEmail":"emp123@invisibox.email"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "something went wrong")
}

func TestLandingReportsSessionState(t *testing.T) {
	t.Parallel()

	a := newApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(authJSON))
	})

	w := a.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	a.do(t, http.MethodPost, "/auth/login", `{"email":"a@b.com","password":"pw"}`)

	w = a.do(t, http.MethodGet, "/", "")
	assert.Contains(t, w.Body.String(), `"authenticated":true`)
	assert.Contains(t, w.Body.String(), `"companyName":"Acme"`)
}
