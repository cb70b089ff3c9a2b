package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"recipecapture"
)

func TestMemorySignUpAndSignIn(t *testing.T) {
	m := NewMemory(bcrypt.MinCost)
	ctx := context.Background()
	profile := recipecapture.Profile{FirstName: "Arta", LastName: "Krasniqi"}

	require.NoError(t, m.SignUp(ctx, " Arta@Example.com ", "sekret123", profile))
	assert.Nil(t, m.CurrentUser(ctx), "sign-up does not sign in")

	user, err := m.SignIn(ctx, "arta@example.com", "sekret123")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "arta@example.com", user.Email)
	assert.Equal(t, "Arta Krasniqi", user.Profile.DisplayName())

	current := m.CurrentUser(ctx)
	require.NotNil(t, current)
	assert.Equal(t, user.ID, current.ID)

	require.NoError(t, m.SignOut(ctx))
	assert.Nil(t, m.CurrentUser(ctx))
}

func TestMemoryErrors(t *testing.T) {
	m := NewMemory(bcrypt.MinCost)
	ctx := context.Background()
	require.NoError(t, m.SignUp(ctx, "ben@example.com", "sekret123", recipecapture.Profile{}))

	tests := []struct {
		name    string
		run     func() error
		want    error
		message string
	}{
		{
			name:    "wrong password",
			run:     func() error { _, err := m.SignIn(ctx, "ben@example.com", "nope"); return err },
			want:    ErrInvalidCredentials,
			message: "Invalid login credentials",
		},
		{
			name:    "unknown user",
			run:     func() error { _, err := m.SignIn(ctx, "ghost@example.com", "sekret123"); return err },
			want:    ErrInvalidCredentials,
			message: "Invalid login credentials",
		},
		{
			name:    "duplicate sign-up",
			run:     func() error { return m.SignUp(ctx, "BEN@example.com", "another1", recipecapture.Profile{}) },
			want:    ErrUserExists,
			message: "User already registered",
		},
		{
			name:    "short password",
			run:     func() error { return m.SignUp(ctx, "new@example.com", "123", recipecapture.Profile{}) },
			want:    ErrWeakPassword,
			message: "Password should be at least 6 characters.",
		},
		{
			name: "bad email",
			run:  func() error { return m.SignUp(ctx, "not-an-email", "sekret123", recipecapture.Profile{}) },
			want: ErrInvalidEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.ErrorIs(t, err, tt.want)

			var ae *AuthError
			require.True(t, errors.As(err, &ae))
			if tt.message != "" {
				assert.Equal(t, tt.message, ae.Error())
			}
		})
	}
	assert.Nil(t, m.CurrentUser(ctx))
}

func TestAuthErrorFallbackText(t *testing.T) {
	err := &AuthError{Op: "sign_in", Err: ErrBackend}
	assert.Equal(t, "sign_in: auth backend error", err.Error())
	assert.Equal(t, "sign_out failed", (&AuthError{Op: "sign_out"}).Error())
}
