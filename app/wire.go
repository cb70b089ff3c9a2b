package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"recipecapture"
	"recipecapture/alert"
	"recipecapture/auth"
	"recipecapture/camera"
	"recipecapture/capture/storage"
	"recipecapture/naming"
	"recipecapture/naming/bedrock"
)

// Config gathers every env-decoded config block the binaries use.
type Config struct {
	App     recipecapture.AppConfig
	Camera  recipecapture.CameraConfig
	Storage recipecapture.StorageConfig
	Auth    recipecapture.AuthConfig
	Naming  recipecapture.NamingConfig
	Otel    recipecapture.OtelConfig
}

// LoadConfig decodes Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	for _, target := range []any{&cfg.App, &cfg.Camera, &cfg.Storage, &cfg.Auth, &cfg.Naming, &cfg.Otel} {
		if err := envdecode.Decode(target); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return Config{}, fmt.Errorf("failed to decode config: %w", err)
		}
	}
	return cfg, nil
}

// NewPlatform returns the camera device described by cfg.
func NewPlatform(cfg recipecapture.CameraConfig, prompt camera.Prompter) camera.Platform {
	if !cfg.Supported {
		return camera.Unsupported{}
	}
	return camera.NewDirectory(cfg.PhotosDir, camera.ParsePolicy(cfg.Permission), prompt)
}

// NewImageStore returns the photo store selected by cfg.Backend: memory, file or s3.
func NewImageStore(ctx context.Context, cfg recipecapture.StorageConfig) (storage.ImageStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return storage.NewMemoryImageStore(), nil
	case "file":
		return storage.NewFileImageStore(cfg.Dir), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("missing S3 config: IMAGE_STORE_S3_BUCKET must be set")
		}
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return storage.NewS3ImageStore(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix), nil
	default:
		return nil, fmt.Errorf("unknown image store %q", cfg.Backend)
	}
}

// NewAuth returns the auth provider selected by cfg.Backend: memory or supabase.
func NewAuth(cfg recipecapture.AuthConfig, httpClient recipecapture.HTTPClient) (recipecapture.AuthProvider, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return auth.NewMemory(0), nil
	case "supabase", "gotrue":
		return auth.NewGoTrue(auth.GoTrueOpts{BaseURL: cfg.URL, AnonKey: cfg.AnonKey, HTTPClient: httpClient})
	default:
		return nil, fmt.Errorf("unknown auth backend %q", cfg.Backend)
	}
}

// NewNamer returns the photo namer selected by cfg.Backend: static or bedrock.
func NewNamer(ctx context.Context, cfg recipecapture.NamingConfig, defaultTitle string) (naming.Namer, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "static":
		return naming.Static(defaultTitle), nil
	case "bedrock":
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return bedrock.NewNamer(bedrockruntime.NewFromConfig(awsCfg), bedrock.Options{
			ModelID:   cfg.ModelID,
			MaxTokens: cfg.MaxTokens,
			TopP:      cfg.TopP,
		}), nil
	default:
		return nil, fmt.Errorf("unknown namer %q", cfg.Backend)
	}
}

// NewAlerter returns a Recorder for the shell and, when a webhook is configured, fans alerts out
// to it as well.
func NewAlerter(cfg recipecapture.AppConfig, httpClient recipecapture.HTTPClient) (*alert.Recorder, recipecapture.Alerter) {
	rec := alert.NewRecorder()
	if cfg.AlertWebhookURL == "" {
		return rec, rec
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return rec, alert.Fanout{rec, alert.NewWebhook(cfg.AlertWebhookURL, httpClient)}
}
