package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"

	"recipecapture"
	"recipecapture/alert"
	"recipecapture/app"
	"recipecapture/camera"
	"recipecapture/capture/storage"
	"recipecapture/coordinator"
	"recipecapture/recipes"
)

type Photo struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
}

type Params struct {
	// Permission is the answer to the camera dialog: "grant" or "deny".
	Permission string     `json:"permission"`
	Photo      *Photo     `json:"photo,omitempty"`
	Steps      []app.Step `json:"steps"`
}

type StepResult struct {
	Action string `json:"action"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

type Results struct {
	Mode    string          `json:"mode"`
	Recipes []recipes.Entry `json:"recipes"`
	Steps   []StepResult    `json:"steps"`
	Alerts  []alert.Message `json:"alerts"`
}

type handler struct {
	cfg    app.Config
	images storage.ImageStore
}

func (h handler) Handle(ctx context.Context, params Params) (Results, error) {
	answer := camera.DecisionGranted
	if camera.ParsePolicy(params.Permission) == camera.PolicyDeny {
		answer = camera.DecisionDenied
	}
	platform := camera.NewScripted(answer)
	platform.Unsupported = !h.cfg.Camera.Supported
	if params.Photo != nil {
		platform.Photo = camera.Photo{Data: params.Photo.Data, ContentType: params.Photo.ContentType}
	}

	s, err := app.Build(ctx, h.cfg, app.Deps{
		Platform: platform,
		Images:   h.images,
		Journal:  recipecapture.NewStdoutTransitionLogger(),
	})
	if err != nil {
		slog.Error("SETUP: Failed to build app session", "error", err)
		return Results{}, err
	}

	res := Results{Steps: make([]StepResult, len(params.Steps))}
	for i, err := range s.Replay(ctx, app.Script{Steps: params.Steps}) {
		res.Steps[i] = StepResult{Action: params.Steps[i].Action}
		if err != nil {
			res.Steps[i].Error = err.Error()
			res.Steps[i].Kind = coordinator.Kind(err)
		}
	}

	home := s.Home(ctx)
	res.Mode = home.Mode.String()
	res.Recipes = home.Recipes
	res.Alerts = s.Alerts.Drain()

	slog.Info("RESULT: Replay finished", "steps", len(params.Steps), "recipes", len(res.Recipes))
	return res, nil
}

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}
	if cfg.Storage.S3Bucket == "" {
		log.Fatalf("missing S3 config: IMAGE_STORE_S3_BUCKET must be set")
	}
	cfg.Storage.Backend = "s3"

	images, err := app.NewImageStore(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to create image store: %s", err)
	}
	slog.Info("SETUP: S3 image store initialized", "bucket", cfg.Storage.S3Bucket, "prefix", cfg.Storage.S3Prefix)

	lambda.Start(handler{cfg: cfg, images: images}.Handle)
}
