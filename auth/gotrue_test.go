package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipecapture"
)

const (
	testAnonKey = "anon-key"
	testUserID  = "6f1c3a52-8d4e-4b0a-9c7e-2a1f5d9b8e10"
)

func newGoTrueServer(t *testing.T, handler http.HandlerFunc) *GoTrue {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGoTrue(GoTrueOpts{BaseURL: srv.URL + "/", AnonKey: testAnonKey})
	require.NoError(t, err)
	return g
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewGoTrueValidation(t *testing.T) {
	_, err := NewGoTrue(GoTrueOpts{AnonKey: "k"})
	assert.Error(t, err)
	_, err = NewGoTrue(GoTrueOpts{BaseURL: "http://localhost"})
	assert.Error(t, err)
}

func TestGoTrueSignInAndSignOut(t *testing.T) {
	var loggedOut bool
	g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, testAnonKey, r.Header.Get("apikey"))

		switch r.URL.Path {
		case "/auth/v1/token":
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "arta@example.com", body["email"])
			assert.Equal(t, "sekret123", body["password"])

			writeJSON(w, http.StatusOK, map[string]any{
				"access_token":  "user-token",
				"token_type":    "bearer",
				"expires_in":    3600,
				"refresh_token": "refresh",
				"user": map[string]any{
					"id":            testUserID,
					"email":         "arta@example.com",
					"user_metadata": map[string]string{"first_name": "Arta", "last_name": "Krasniqi"},
				},
			})
		case "/auth/v1/logout":
			assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
			loggedOut = true
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	user, err := g.SignIn(ctx, " arta@example.com", "sekret123")
	require.NoError(t, err)
	assert.Equal(t, testUserID, user.ID)
	assert.Equal(t, "Arta", user.Profile.FirstName)
	assert.Equal(t, "Krasniqi", user.Profile.LastName)

	current := g.CurrentUser(ctx)
	require.NotNil(t, current)
	assert.Equal(t, "arta@example.com", current.Email)

	require.NoError(t, g.SignOut(ctx))
	assert.True(t, loggedOut)
	assert.Nil(t, g.CurrentUser(ctx))

	// Signing out without a session does not reach the server.
	loggedOut = false
	require.NoError(t, g.SignOut(ctx))
	assert.False(t, loggedOut)
}

func TestGoTrueSignUpSendsProfile(t *testing.T) {
	g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/signup", r.URL.Path)

		var body struct {
			Email    string                `json:"email"`
			Password string                `json:"password"`
			Data     recipecapture.Profile `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ben@example.com", body.Email)
		assert.Equal(t, "Ben", body.Data.FirstName)
		assert.Equal(t, "Hoxha", body.Data.LastName)

		writeJSON(w, http.StatusOK, map[string]any{"id": testUserID, "email": body.Email})
	})

	err := g.SignUp(context.Background(), "ben@example.com", "sekret123", recipecapture.Profile{FirstName: "Ben", LastName: "Hoxha"})
	require.NoError(t, err)
	assert.Nil(t, g.CurrentUser(context.Background()))
}

type countingDoer struct {
	calls atomic.Int32
	inner *http.Client
}

func (d *countingDoer) Do(req *http.Request) (*http.Response, error) {
	d.calls.Add(1)
	return d.inner.Do(req)
}

func TestGoTrueUsesInjectedHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": testUserID, "email": "ben@example.com"})
	}))
	t.Cleanup(srv.Close)

	doer := &countingDoer{inner: srv.Client()}
	g, err := NewGoTrue(GoTrueOpts{BaseURL: srv.URL, AnonKey: testAnonKey, HTTPClient: doer})
	require.NoError(t, err)

	require.NoError(t, g.SignUp(context.Background(), "ben@example.com", "sekret123", recipecapture.Profile{}))
	assert.Equal(t, int32(1), doer.calls.Load())
}

func TestGoTrueErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		call    func(g *GoTrue) error
		want    error
		message string
	}{
		{
			name:    "invalid grant",
			status:  http.StatusBadRequest,
			body:    map[string]string{"error": "invalid_grant", "error_description": "Invalid login credentials"},
			call:    func(g *GoTrue) error { _, err := g.SignIn(context.Background(), "a@b.c", "x"); return err },
			want:    ErrInvalidCredentials,
			message: "Invalid login credentials",
		},
		{
			name:    "user exists",
			status:  http.StatusUnprocessableEntity,
			body:    map[string]any{"code": 422, "error_code": "user_already_exists", "msg": "User already registered"},
			call:    func(g *GoTrue) error { return g.SignUp(context.Background(), "a@b.c", "sekret123", recipecapture.Profile{}) },
			want:    ErrUserExists,
			message: "User already registered",
		},
		{
			name:    "weak password",
			status:  http.StatusUnprocessableEntity,
			body:    map[string]any{"code": 422, "error_code": "weak_password", "msg": "Password should be at least 6 characters."},
			call:    func(g *GoTrue) error { return g.SignUp(context.Background(), "a@b.c", "1", recipecapture.Profile{}) },
			want:    ErrWeakPassword,
			message: "Password should be at least 6 characters.",
		},
		{
			name:    "server error without body",
			status:  http.StatusInternalServerError,
			call:    func(g *GoTrue) error { _, err := g.SignIn(context.Background(), "a@b.c", "x"); return err },
			want:    ErrBackend,
			message: "500 Internal Server Error",
		},
		{
			name:   "token missing",
			status: http.StatusOK,
			body:   map[string]any{"token_type": "bearer"},
			call:   func(g *GoTrue) error { _, err := g.SignIn(context.Background(), "a@b.c", "x"); return err },
			want:   ErrBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.body == nil {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, tt.body)
			})

			err := tt.call(g)
			require.ErrorIs(t, err, tt.want)

			var ae *AuthError
			require.True(t, errors.As(err, &ae))
			if tt.message != "" {
				assert.Equal(t, tt.message, ae.Message)
			}
			assert.Nil(t, g.CurrentUser(context.Background()))
		})
	}
}

func TestClientError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    error
		message string
	}{
		{
			name:    "email invalid",
			err:     errors.New(`response status code 400: {"code":400,"error_code":"validation_failed","msg":"Unable to validate email address: invalid format"}`),
			want:    ErrInvalidEmail,
			message: "Unable to validate email address: invalid format",
		},
		{
			name:    "status without body",
			err:     errors.New("response status code 503"),
			want:    ErrBackend,
			message: "503 Service Unavailable",
		},
		{
			name: "transport failure",
			err:  errors.New("dial tcp: connection refused"),
			want: ErrBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := clientError("sign_up", tt.err)
			require.ErrorIs(t, err, tt.want)

			var ae *AuthError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, "sign_up", ae.Op)
			assert.Equal(t, tt.message, ae.Message)
		})
	}
}

func TestGoTrueCancelledContext(t *testing.T) {
	var hits atomic.Int32
	g := newGoTrueServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.SignIn(ctx, "a@b.c", "x")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), hits.Load())
}
