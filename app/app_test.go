package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"recipecapture"
	"recipecapture/alert"
	"recipecapture/auth"
	"recipecapture/camera"
	"recipecapture/capture/storage"
	"recipecapture/coordinator"
	"recipecapture/naming"
)

func testConfig() Config {
	return Config{
		App:     recipecapture.AppConfig{DefaultPhotoTitle: "Recetë nga kamera"},
		Camera:  recipecapture.CameraConfig{Permission: "grant", Supported: true},
		Storage: recipecapture.StorageConfig{Backend: "memory"},
		Auth:    recipecapture.AuthConfig{Backend: "memory"},
		Naming:  recipecapture.NamingConfig{Backend: "static"},
	}
}

func newTestSession(t *testing.T, platform *camera.Scripted) *Session {
	t.Helper()
	s, err := Build(context.Background(), testConfig(), Deps{
		Platform: platform,
		Auth:     auth.NewMemory(bcrypt.MinCost),
	})
	require.NoError(t, err)
	return s
}

func TestSignUpThenLogin(t *testing.T) {
	s := newTestSession(t, camera.NewScripted(camera.DecisionGranted))
	ctx := context.Background()

	s.Navigate(ScreenSignUp)
	form := s.SignUp()
	form.FirstName, form.LastName, form.Email, form.Password = "Arta", "Krasniqi", "arta@example.com", "sekret123"
	require.NoError(t, s.SubmitSignUp(ctx))

	assert.Equal(t, ScreenLogin, s.Screen())
	assert.Equal(t, "arta@example.com", s.Login().Email)
	assert.Nil(t, s.Home(ctx).User)

	s.Login().Password = "sekret123"
	require.NoError(t, s.SubmitLogin(ctx))
	assert.Equal(t, ScreenHome, s.Screen())

	home := s.Home(ctx)
	require.NotNil(t, home.User)
	assert.Equal(t, "Arta Krasniqi", home.User.Profile.DisplayName())

	last, ok := s.Alerts.Last()
	require.True(t, ok)
	assert.Equal(t, "Logged in successfully!", last.Body)
}

func TestFailedLoginStaysOnForm(t *testing.T) {
	s := newTestSession(t, camera.NewScripted(camera.DecisionGranted))
	ctx := context.Background()
	s.Navigate(ScreenLogin)

	s.Login().Email = "nobody@example.com"
	s.Login().Password = "sekret123"
	require.ErrorIs(t, s.SubmitLogin(ctx), auth.ErrInvalidCredentials)
	assert.Equal(t, ScreenLogin, s.Screen())

	s.Login().Password = ""
	require.ErrorIs(t, s.SubmitLogin(ctx), coordinator.ErrValidation)
	assert.Equal(t, ScreenLogin, s.Screen())
}

func TestHomeReflectsEntryWorkflow(t *testing.T) {
	platform := camera.NewScripted(camera.DecisionGranted)
	s := newTestSession(t, platform)
	ctx := context.Background()

	require.NoError(t, s.Entry().AddManually(ctx))
	require.NoError(t, s.Entry().SetDraftTitle(ctx, "Tavë kosi"))
	require.NoError(t, s.Entry().SubmitManual(ctx))
	require.NoError(t, s.Entry().UseCamera(ctx))
	require.NoError(t, s.Entry().TakePhoto(ctx))

	home := s.Home(ctx)
	assert.Equal(t, coordinator.Normal, home.Mode)
	require.Len(t, home.Recipes, 2)
	assert.Equal(t, "Tavë kosi", home.Recipes[0].Title)
	assert.Equal(t, "Recetë nga kamera", home.Recipes[1].Title)
	assert.True(t, home.Recipes[1].HasImage())
	assert.Equal(t, 2, s.Recipes.Len())
}

func TestSignOutClosesCamera(t *testing.T) {
	platform := camera.NewScripted(camera.DecisionGranted)
	s := newTestSession(t, platform)
	ctx := context.Background()

	require.NoError(t, s.Entry().UseCamera(ctx))
	require.Equal(t, 1, platform.OpenSessions())

	require.NoError(t, s.SignOut(ctx))
	assert.Equal(t, 0, platform.OpenSessions())
	assert.Equal(t, coordinator.Normal, s.Home(ctx).Mode)
	assert.Equal(t, ScreenLogin, s.Screen())
}

func TestSignOutAbandonsPendingPermission(t *testing.T) {
	platform := camera.NewScripted(camera.DecisionGranted)
	platform.RequestGate = make(chan struct{})
	s := newTestSession(t, platform)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- s.Entry().UseCamera(ctx) }()
	require.Eventually(t, func() bool { return platform.Requests() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, s.SignOut(ctx))
	close(platform.RequestGate)

	require.ErrorIs(t, <-done, coordinator.ErrSuperseded)
	assert.Equal(t, coordinator.Normal, s.Home(ctx).Mode)
	assert.Equal(t, ScreenLogin, s.Screen())
	assert.Equal(t, 0, platform.OpenSessions())
}

type signOutFailingAuth struct {
	*auth.Memory
	err error
}

func (a signOutFailingAuth) SignOut(context.Context) error { return a.err }

type failingAlerter struct{}

func (failingAlerter) Alert(context.Context, string, string) error {
	return errors.New("webhook unreachable")
}

func TestSignOutFailureLogsUndeliveredAlert(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	s := newTestSession(t, camera.NewScripted(camera.DecisionGranted))
	signOutErr := &auth.AuthError{Op: "sign_out", Message: "Network error", Err: auth.ErrBackend}
	a := New(s.Entry(), signOutFailingAuth{Memory: auth.NewMemory(bcrypt.MinCost), err: signOutErr}, failingAlerter{})

	err := a.SignOut(context.Background())
	require.ErrorIs(t, err, auth.ErrBackend)
	assert.Equal(t, ScreenHome, a.Screen())
	assert.Contains(t, logs.String(), "APP: Failed to deliver alert")
	assert.Contains(t, logs.String(), "webhook unreachable")
}

func TestBuildUnsupportedCamera(t *testing.T) {
	cfg := testConfig()
	cfg.Camera.Supported = false

	s, err := Build(context.Background(), cfg, Deps{Auth: auth.NewMemory(bcrypt.MinCost)})
	require.NoError(t, err)

	err = s.Entry().UseCamera(context.Background())
	require.Error(t, err)
	assert.Equal(t, coordinator.Normal, s.Home(context.Background()).Mode)

	last, ok := s.Alerts.Last()
	require.True(t, ok)
	assert.Equal(t, "Kamera nuk mbështetet në këtë pajisje.", last.Body)
}

func TestNewImageStore(t *testing.T) {
	ctx := context.Background()

	store, err := NewImageStore(ctx, recipecapture.StorageConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryImageStore{}, store)

	store, err = NewImageStore(ctx, recipecapture.StorageConfig{Backend: "FILE", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &storage.FileImageStore{}, store)

	_, err = NewImageStore(ctx, recipecapture.StorageConfig{Backend: "s3"})
	assert.ErrorContains(t, err, "IMAGE_STORE_S3_BUCKET")

	_, err = NewImageStore(ctx, recipecapture.StorageConfig{Backend: "floppy"})
	assert.Error(t, err)
}

func TestNewAuth(t *testing.T) {
	p, err := NewAuth(recipecapture.AuthConfig{Backend: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &auth.Memory{}, p)

	p, err = NewAuth(recipecapture.AuthConfig{Backend: "supabase", URL: "https://example.supabase.co", AnonKey: "anon"}, http.DefaultClient)
	require.NoError(t, err)
	assert.IsType(t, &auth.GoTrue{}, p)

	_, err = NewAuth(recipecapture.AuthConfig{Backend: "supabase"}, nil)
	assert.Error(t, err)

	_, err = NewAuth(recipecapture.AuthConfig{Backend: "ldap"}, nil)
	assert.Error(t, err)
}

func TestNewNamerStatic(t *testing.T) {
	n, err := NewNamer(context.Background(), recipecapture.NamingConfig{Backend: "static"}, "Pa titull")
	require.NoError(t, err)
	assert.Equal(t, naming.Static("Pa titull"), n)

	_, err = NewNamer(context.Background(), recipecapture.NamingConfig{Backend: "oracle"}, "x")
	assert.Error(t, err)
}

func TestNewAlerterFansOutToWebhook(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rec, alerter := NewAlerter(recipecapture.AppConfig{AlertWebhookURL: srv.URL}, srv.Client())
	require.IsType(t, alert.Fanout{}, alerter)
	require.NoError(t, alerter.Alert(context.Background(), "Gabim", "test"))

	assert.Len(t, rec.Messages(), 1)
	assert.Equal(t, int32(1), hits.Load())

	rec, alerter = NewAlerter(recipecapture.AppConfig{}, nil)
	assert.Same(t, rec, alerter)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("IMAGE_STORE", "file")
	t.Setenv("CAMERA_PERMISSION", "prompt")
	t.Setenv("NAMER_MAX_TOKENS", "128")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "artifacts/images", cfg.Storage.Dir)
	assert.Equal(t, "prompt", cfg.Camera.Permission)
	assert.True(t, cfg.Camera.Supported)
	assert.Equal(t, int32(128), cfg.Naming.MaxTokens)
	assert.Equal(t, "Recetë nga kamera", cfg.App.DefaultPhotoTitle)
	assert.Equal(t, "memory", cfg.Auth.Backend)
	assert.Equal(t, "recipe-capture", cfg.Otel.ServiceName)
	assert.Equal(t, 1.0, cfg.Otel.SampleRatio)
	assert.Equal(t, 30*time.Second, cfg.Otel.MetricInterval)
}
