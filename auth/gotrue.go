package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"recipecapture"
)

// gotrueClient is the part of the gotrue-go client the provider uses.
type gotrueClient interface {
	SignInWithEmailPassword(email, password string) (*types.TokenResponse, error)
	Signup(req types.SignupRequest) (*types.SignupResponse, error)
	Logout() error
	WithToken(token string) gotrue.Client
}

// GoTrue is a client for a Supabase (GoTrue) auth endpoint. The session is kept in memory only.
type GoTrue struct {
	client gotrueClient

	mu      sync.Mutex
	session *types.Session
}

type GoTrueOpts struct {
	BaseURL    string
	AnonKey    string
	HTTPClient recipecapture.HTTPClient
}

var _ recipecapture.AuthProvider = (*GoTrue)(nil)

func NewGoTrue(opts GoTrueOpts) (*GoTrue, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("auth base url is required")
	}
	if opts.AnonKey == "" {
		return nil, fmt.Errorf("auth anon key is required")
	}

	client := gotrue.New("", opts.AnonKey).
		WithCustomGoTrueURL(strings.TrimRight(opts.BaseURL, "/") + "/auth/v1")
	if opts.HTTPClient != nil {
		client = client.WithClient(stdClient(opts.HTTPClient))
	}
	return &GoTrue{client: client}, nil
}

// stdClient adapts an HTTPClient to the *http.Client value gotrue-go expects.
func stdClient(doer recipecapture.HTTPClient) http.Client {
	if c, ok := doer.(*http.Client); ok {
		return *c
	}
	return http.Client{Transport: doerTransport{doer}}
}

type doerTransport struct {
	doer recipecapture.HTTPClient
}

func (t doerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.doer.Do(req)
}

// The gotrue-go calls take no context; a cancelled ctx only stops a call before it starts.
func (g *GoTrue) SignIn(ctx context.Context, email, password string) (*recipecapture.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, authErr("sign_in", "", err)
	}

	resp, err := g.client.SignInWithEmailPassword(strings.TrimSpace(email), password)
	if err != nil {
		return nil, clientError("sign_in", err)
	}
	if resp.AccessToken == "" {
		return nil, authErr("sign_in", "", fmt.Errorf("%w: no access token in response", ErrBackend))
	}

	sess := resp.Session
	g.mu.Lock()
	g.session = &sess
	g.mu.Unlock()

	user := toUser(sess.User)
	slog.Info("AUTH: Signed in", "user", user.ID)
	return &user, nil
}

func (g *GoTrue) SignUp(ctx context.Context, email, password string, profile recipecapture.Profile) error {
	if err := ctx.Err(); err != nil {
		return authErr("sign_up", "", err)
	}

	data := map[string]any{}
	if profile.FirstName != "" {
		data["first_name"] = profile.FirstName
	}
	if profile.LastName != "" {
		data["last_name"] = profile.LastName
	}

	_, err := g.client.Signup(types.SignupRequest{
		Email:    strings.TrimSpace(email),
		Password: password,
		Data:     data,
	})
	if err != nil {
		return clientError("sign_up", err)
	}
	slog.Info("AUTH: Sign-up accepted, waiting for email confirmation")
	return nil
}

// SignOut revokes the session on the server and forgets it locally. The local session is dropped
// even if the server call fails.
func (g *GoTrue) SignOut(ctx context.Context) error {
	g.mu.Lock()
	sess := g.session
	g.session = nil
	g.mu.Unlock()

	if sess == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return authErr("sign_out", "", err)
	}
	if err := g.client.WithToken(sess.AccessToken).Logout(); err != nil {
		return clientError("sign_out", err)
	}
	return nil
}

func (g *GoTrue) CurrentUser(ctx context.Context) *recipecapture.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return nil
	}
	user := toUser(g.session.User)
	return &user
}

func toUser(u types.User) recipecapture.User {
	meta := func(key string) string {
		s, _ := u.UserMetadata[key].(string)
		return s
	}
	return recipecapture.User{
		ID:    u.ID.String(),
		Email: u.Email,
		Profile: recipecapture.Profile{
			FirstName: meta("first_name"),
			LastName:  meta("last_name"),
		},
	}
}

// goTrueError covers both error shapes the server uses: OAuth style on /token and msg style elsewhere.
type goTrueError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e goTrueError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// gotrue-go reports non-2xx responses as "response status code <n>: <body>".
var statusPattern = regexp.MustCompile(`(?s)response status code (\d+)(?::\s?(.*))?$`)

// clientError maps a gotrue-go error onto an AuthError with one of the package sentinels.
func clientError(op string, err error) error {
	m := statusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		slog.Error("AUTH: Request failed", "op", op, "error", err)
		return authErr(op, "", fmt.Errorf("%w: %w", ErrBackend, err))
	}

	code, _ := strconv.Atoi(m[1])
	body := strings.TrimSpace(m[2])

	var ge goTrueError
	_ = json.Unmarshal([]byte(body), &ge)

	msg := ge.text()
	if msg == "" {
		msg = fmt.Sprintf("%d %s", code, http.StatusText(code))
	}

	var cause error
	switch {
	case ge.Error == "invalid_grant", ge.ErrorCode == "invalid_credentials":
		cause = ErrInvalidCredentials
	case ge.ErrorCode == "user_already_exists", strings.Contains(msg, "already registered"):
		cause = ErrUserExists
	case ge.ErrorCode == "weak_password":
		cause = ErrWeakPassword
	case ge.ErrorCode == "validation_failed", ge.ErrorCode == "email_address_invalid":
		cause = ErrInvalidEmail
	default:
		cause = fmt.Errorf("%w: status %d", ErrBackend, code)
	}
	if errors.Is(cause, ErrBackend) {
		slog.Error("AUTH: Backend rejected request", "op", op, "status", code, "body", body)
	}
	return authErr(op, msg, cause)
}
