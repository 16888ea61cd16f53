package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	var seen struct {
		Email        string                 `json:"email"`
		Password     string                 `json:"password"`
		EmailConfirm bool                   `json:"email_confirm"`
		UserMetadata map[string]interface{} `json:"user_metadata"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/v1/admin/users", r.URL.Path)
		require.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		require.Equal(t, "service-key", r.Header.Get("apikey"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&seen))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "uuid-1"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "service-key", time.Second)
	id, err := c.CreateUser(context.Background(), "tg_555@telegram.local", "one-time", map[string]interface{}{"telegram_id": 555})
	require.NoError(t, err)
	assert.Equal(t, "uuid-1", id)
	assert.Equal(t, "tg_555@telegram.local", seen.Email)
	assert.True(t, seen.EmailConfirm)
}

func TestCreateUserRejectedNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "service-key", time.Second)
	_, err := c.CreateUser(context.Background(), "tg_555@telegram.local", "one-time", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must not be retried")
}

func TestSignInWithPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/token", r.URL.Path)
		require.Equal(t, "password", r.URL.Query().Get("grant_type"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token":  "at",
			"refresh_token": "rt",
			"token_type":    "bearer",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "service-key", time.Second)
	session, err := c.SignInWithPassword(context.Background(), "tg_555@telegram.local", "one-time")
	require.NoError(t, err)
	assert.Equal(t, "at", session.AccessToken)
	assert.Equal(t, "rt", session.RefreshToken)
	assert.Equal(t, int64(3600), session.ExpiresIn)
}

func TestSignInIncompleteSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "at"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "service-key", time.Second)
	_, err := c.SignInWithPassword(context.Background(), "tg_555@telegram.local", "one-time")
	assert.Error(t, err)
}

func TestSetPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/auth/v1/admin/users/uuid-1", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "service-key", time.Second)
	assert.NoError(t, c.SetPassword(context.Background(), "uuid-1", "rotated"))
}
