package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"recipecapture"
	"recipecapture/app"
	"recipecapture/auth"
	"recipecapture/camera"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    app.Step
		ok      bool
		wantErr bool
	}{
		{line: "   ", ok: false},
		{line: "add", want: app.Step{Action: "add"}, ok: true},
		{line: "SNAP", want: app.Step{Action: "snap"}, ok: true},
		{line: "exit", want: app.Step{Action: "quit"}, ok: true},
		{line: "title Tavë kosi me mish", want: app.Step{Action: "title", Text: "Tavë kosi me mish"}, ok: true},
		{line: "title", want: app.Step{Action: "title"}, ok: true},
		{line: "login arta@example.com sekret123", want: app.Step{Action: "login", Email: "arta@example.com", Password: "sekret123"}, ok: true},
		{line: "login", want: app.Step{Action: "login"}, ok: true},
		{
			line: "signup Arta Krasniqi arta@example.com sekret123",
			want: app.Step{Action: "signup", FirstName: "Arta", LastName: "Krasniqi", Email: "arta@example.com", Password: "sekret123"},
			ok:   true,
		},
		{line: "signup a b c d e", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok, err := parseLine(tt.line)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestShell(t *testing.T, input string) (*shell, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true

	cfg := app.Config{
		App:     recipecapture.AppConfig{DefaultPhotoTitle: "Recetë nga kamera"},
		Camera:  recipecapture.CameraConfig{Supported: true},
		Storage: recipecapture.StorageConfig{Backend: "memory"},
		Naming:  recipecapture.NamingConfig{Backend: "static"},
	}
	s, err := app.Build(context.Background(), cfg, app.Deps{
		Platform: camera.NewScripted(camera.DecisionGranted),
		Auth:     auth.NewMemory(bcrypt.MinCost),
	})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &shell{app: s, in: bufio.NewScanner(strings.NewReader(input)), out: out}, out
}

func TestShellSession(t *testing.T) {
	input := strings.Join([]string{
		"add",
		"title   ",
		"save",
		"title Fërgesë",
		"save",
		"camera",
		"snap",
		"close",
		"bogus",
		"list",
		"quit",
		"add",
	}, "\n")
	sh, out := newTestShell(t, input)

	require.NoError(t, sh.run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "[Gabim] Ju lutem shkruani titullin e recetës.")
	assert.Contains(t, text, "1. Fërgesë")
	assert.Contains(t, text, "2. Recetë nga kamera")
	assert.Contains(t, text, "camera open (snap, close)")
	assert.Contains(t, text, "other: unknown action")
	assert.Equal(t, 2, sh.app.Recipes.Len(), "input after quit is not read")
}

func TestStdinPrompter(t *testing.T) {
	color.NoColor = true
	tests := []struct {
		input string
		want  bool
		err   bool
	}{
		{input: "y\n", want: true},
		{input: "Po\n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "", err: true},
	}

	for _, tt := range tests {
		out := &bytes.Buffer{}
		prompt := stdinPrompter(bufio.NewScanner(strings.NewReader(tt.input)), out)
		got, err := prompt(context.Background())
		if tt.err {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Contains(t, out.String(), "Allow camera access?")
	}
}
