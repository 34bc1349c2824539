package backend_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invisibox/invisibox-web/internal/backend"
	"github.com/invisibox/invisibox-web/pkg/broadcast"
)

func newClient(t *testing.T, handler http.HandlerFunc) (*backend.Client, *broadcast.Broadcaster[backend.Invalidation]) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	bus := broadcast.New[backend.Invalidation](4)
	t.Cleanup(func() { _ = bus.Close() })

	return backend.New(backend.Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, nil, bus), bus
}

func TestClient_AttachesBearerToken(t *testing.T) {
	t.Parallel()

	var gotAuth string
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalSubscribers":3}`))
	})

	stats, err := client.Dashboard(context.Background(), "tok1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok1", gotAuth)
	assert.Equal(t, 3, stats.TotalSubscribers)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	t.Parallel()

	var hadAuth bool
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.Write([]byte(`{"valid":true}`))
	})

	res, err := client.VerifyInvisiboxEmail(context.Background(), backend.VerifyInvisiboxEmailRequest{
		InvisiboxEmail: "emp123@invisibox.email",
	})
	require.NoError(t, err)
	assert.False(t, hadAuth)
	assert.True(t, res.Valid)
}

func TestClient_LoginDecodesAuthResponse(t *testing.T) {
	t.Parallel()

	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"email":"a@b.com"`)

		w.Write([]byte(`{"email":"a@b.com","invisiboxEmail":"emp123@invisibox.email","companyName":"Acme","token":"tok1"}`))
	})

	res, err := client.Login(context.Background(), backend.LoginRequest{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "tok1", res.Token)
	assert.Equal(t, "Acme", res.Profile().CompanyName)
	assert.Equal(t, "emp123@invisibox.email", res.Profile().InvisiboxEmail)
}

func TestClient_UnauthorizedPublishesInvalidation(t *testing.T) {
	t.Parallel()

	client, bus := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	ctx := context.Background()
	sub := bus.Subscribe(ctx)

	_, err := client.Messages(ctx, "stale-token")
	require.ErrorIs(t, err, backend.ErrUnauthorized)

	select {
	case msg := <-sub.Receive(ctx):
		assert.Equal(t, "/messages", msg.Data.Path)
	case <-time.After(time.Second):
		t.Fatal("no invalidation event published")
	}
}

func TestClient_ValidationErrorSurfacesVerbatim(t *testing.T) {
	t.Parallel()

	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invisibox email is not registered"}`))
	})

	err := client.Subscribe(context.Background(), backend.SubscribeRequest{InvisiboxEmail: "nope@invisibox.email"})
	require.Error(t, err)

	var apiErr *backend.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "invisibox email is not registered", apiErr.Message)
}

func TestClient_NetworkErrorPropagates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := backend.New(backend.Config{BaseURL: srv.URL, Timeout: time.Second}, nil, nil)
	err := client.SendAnonymousMessage(context.Background(), backend.SendAnonymousMessageRequest{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, backend.ErrUnauthorized)
}

func TestClient_SubscriberModeration(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	var paths []string
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	ctx := context.Background()
	require.NoError(t, client.WarnSubscriber(ctx, "tok1", id))
	require.NoError(t, client.BanSubscriber(ctx, "tok1", id))
	require.NoError(t, client.DeletePoll(ctx, "tok1", id))

	assert.Equal(t, []string{
		"POST /subscribers/" + id.String() + "/warn",
		"POST /subscribers/" + id.String() + "/ban",
		"DELETE /polls/" + id.String(),
	}, paths)
}

func TestClient_SharePollResultMultipart(t *testing.T) {
	t.Parallel()

	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Q3 results", r.FormValue("title"))
		assert.Equal(t, "Remote fridays?", r.FormValue("question"))

		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "chart.png", header.Filename)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "png-bytes", string(data))

		assert.Equal(t, "Bearer tok1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	})

	err := client.SharePollResult(context.Background(), "tok1", "Q3 results", "Remote fridays?", "chart.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
}
