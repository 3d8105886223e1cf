// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package identity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/ManuGH/jobjump/internal/cache"
	"github.com/ManuGH/jobjump/internal/domain"
)

type fakeIdP struct {
	mu        sync.Mutex
	metadata  map[string]any
	lastForm  url.Values
	patchAuth string
}

func (f *fakeIdP) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.mu.Lock()
		f.lastForm = r.PostForm
		f.mu.Unlock()
		if user, pass, ok := r.BasicAuth(); !ok || user != "client" || pass != "secret" {
			http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
			return
		}
		if r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"invalid_grant"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"at-123","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("GET /oauth/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-123" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"sub": "user_1", "email": "ada@example.com", "given_name": "Ada"})
	})
	mux.HandleFunc("GET /v1/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk_test" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(f.user(r.PathValue("id")))
	})
	mux.HandleFunc("PATCH /v1/users/{id}/metadata", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Unsafe map[string]any `json:"unsafe_metadata"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		defer f.mu.Unlock()
		f.patchAuth = r.Header.Get("Authorization")
		for k, v := range body.Unsafe {
			f.metadata[k] = v
		}
		_ = json.NewEncoder(w).Encode(f.user(r.PathValue("id")))
	})
	return mux
}

func (f *fakeIdP) user(id string) map[string]any {
	return map[string]any{
		"id":              id,
		"first_name":      "Ada",
		"last_name":       "Lovelace",
		"image_url":       "https://img.example/ada.png",
		"unsafe_metadata": f.metadata,
		"email_addresses": []map[string]string{{"email_address": "ada@example.com"}},
	}
}

func newTestProvider(t *testing.T) (*Provider, *fakeIdP) {
	t.Helper()
	idp := &fakeIdP{metadata: map[string]any{}}
	srv := httptest.NewServer(idp.handler(t))
	t.Cleanup(srv.Close)

	p, err := NewProvider(Config{
		Issuer:       srv.URL,
		ClientID:     "client",
		ClientSecret: "secret",
		SecretKey:    "sk_test",
		RedirectURL:  "http://localhost:8080/auth/callback",
	}, srv.Client())
	require.NoError(t, err)
	return p, idp
}

func TestAuthCodeURLCarriesStateAndPKCE(t *testing.T) {
	p, _ := newTestProvider(t)
	raw := p.AuthCodeURL("state-1", oauth2.GenerateVerifier())

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/oauth/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "client", q.Get("client_id"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Equal(t, "openid profile email", q.Get("scope"))
}

func TestExchangeAndFetchUser(t *testing.T) {
	p, idp := newTestProvider(t)
	ctx := context.Background()
	verifier := oauth2.GenerateVerifier()

	tok, err := p.Exchange(ctx, "good-code", verifier)
	require.NoError(t, err)
	assert.Equal(t, "at-123", tok.AccessToken)
	assert.Equal(t, verifier, idp.lastForm.Get("code_verifier"))

	user, err := p.FetchUser(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "user_1", user.ID)
	assert.Equal(t, "Ada Lovelace", user.FullName())
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, domain.RoleNone, user.Role())
}

func TestExchangeRejectsBadCode(t *testing.T) {
	p, _ := newTestProvider(t)
	_, err := p.Exchange(context.Background(), "bad-code", oauth2.GenerateVerifier())
	assert.ErrorIs(t, err, ErrExchange)
}

func TestSetRoleUpdatesMetadata(t *testing.T) {
	p, idp := newTestProvider(t)

	user, err := p.SetRole(context.Background(), "user_1", domain.RoleRecruiter)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleRecruiter, user.Role())
	assert.Equal(t, "Bearer sk_test", idp.patchAuth)

	_, err = p.SetRole(context.Background(), "user_1", domain.RoleNone)
	assert.ErrorIs(t, err, ErrMetadata)
}

func TestNewProviderValidates(t *testing.T) {
	_, err := NewProvider(Config{Issuer: "not a url", ClientID: "c"}, nil)
	assert.Error(t, err)
	_, err = NewProvider(Config{Issuer: "https://id.example"}, nil)
	assert.Error(t, err)
}

func TestSessionStoreLifecycle(t *testing.T) {
	mem := cache.NewMemoryCache(time.Minute)
	defer func() { _ = mem.Close() }()
	store := NewSessionStore(mem, time.Hour)
	ctx := context.Background()

	user := domain.User{ID: "user_1", FirstName: "Ada"}
	sess, err := store.Create(ctx, user, "at-123")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, domain.Caller{UserID: "user_1", Token: "at-123"}, sess.Caller())

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.User.FirstName)

	user.Metadata = map[string]any{"role": "candidate"}
	updated, err := store.UpdateUser(ctx, sess.ID, user)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCandidate, updated.User.Role())
	assert.True(t, updated.ExpiresAt.Equal(sess.ExpiresAt))

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = store.Get(ctx, "")
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionStoreExpiry(t *testing.T) {
	mem := cache.NewMemoryCache(time.Minute)
	defer func() { _ = mem.Close() }()
	store := NewSessionStore(mem, time.Hour)
	now := time.Now()
	store.now = func() time.Time { return now }

	sess, err := store.Create(context.Background(), domain.User{ID: "u"}, "")
	require.NoError(t, err)

	store.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = store.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrNoSession)
}
