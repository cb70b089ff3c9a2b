package auth

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"recipecapture"
)

const minPasswordLen = 6

type memoryAccount struct {
	user recipecapture.User
	hash []byte
}

// Memory is an in-process provider for tests and offline runs. Accounts are confirmed on sign-up
// and live until the process exits.
type Memory struct {
	cost int

	mu       sync.Mutex
	accounts map[string]memoryAccount
	current  *recipecapture.User
}

var _ recipecapture.AuthProvider = (*Memory)(nil)

// NewMemory returns an empty provider hashing passwords with bcrypt at cost. A cost outside
// bcrypt's range uses the default.
func NewMemory(cost int) *Memory {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Memory{cost: cost, accounts: make(map[string]memoryAccount)}
}

func (m *Memory) SignUp(ctx context.Context, email, password string, profile recipecapture.Profile) error {
	key := normalizeEmail(email)
	if !strings.Contains(key, "@") {
		return authErr("sign_up", "Unable to validate email address: invalid format", ErrInvalidEmail)
	}
	if len(password) < minPasswordLen {
		return authErr("sign_up", "Password should be at least 6 characters.", ErrWeakPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return authErr("sign_up", "", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[key]; ok {
		return authErr("sign_up", "User already registered", ErrUserExists)
	}
	m.accounts[key] = memoryAccount{
		user: recipecapture.User{ID: uuid.NewString(), Email: key, Profile: profile},
		hash: hash,
	}

	slog.Info("AUTH: Account created", "email", key)
	return nil
}

func (m *Memory) SignIn(ctx context.Context, email, password string) (*recipecapture.User, error) {
	key := normalizeEmail(email)

	m.mu.Lock()
	defer m.mu.Unlock()

	acct, ok := m.accounts[key]
	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) != nil {
		return nil, authErr("sign_in", "Invalid login credentials", ErrInvalidCredentials)
	}

	user := acct.user
	m.current = &user
	out := user
	return &out, nil
}

func (m *Memory) SignOut(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = nil
	return nil
}

func (m *Memory) CurrentUser(ctx context.Context) *recipecapture.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	out := *m.current
	return &out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
