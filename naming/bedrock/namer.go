// Package bedrock names recipe photos with a vision model on Amazon Bedrock.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"recipecapture/camera"
	"recipecapture/naming"
)

const (
	// defaultModelID is an inference profile ID, not the foundation model's ID.
	defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

	// A title is a handful of words; the tool call envelope is most of the budget.
	defaultMaxTokens = 256

	// Low temperature keeps names short and literal.
	defaultTemperature = 0.2

	defaultTopP = 0.9

	toolName     = "name_recipe"
	maxTitleLen  = 60
	systemPrompt = "You name home-cooked dishes from a single photo. " +
		"Call the name_recipe tool exactly once with a short dish name (at most six words) " +
		"in the language most likely used by the cook. Do not describe the photo."
)

var (
	ErrUnsupportedImage = errors.New("image format not supported by the model")
	ErrNoTitle          = errors.New("model returned no title")
)

type bedrockRuntimeClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type Options struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// Namer implements naming.Namer by forcing the model to call a single tool whose input is the title.
type Namer struct {
	brc  bedrockRuntimeClient
	opts Options
}

var _ naming.Namer = (*Namer)(nil)

func NewNamer(brc bedrockRuntimeClient, opts Options) *Namer {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}
	return &Namer{brc: brc, opts: opts}
}

// InputSchema describes the name_recipe tool input.
func InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"title": {
				Type:        "string",
				Description: "Short name of the dish in the photo.",
			},
		},
		Required: []string{"title"},
	}
}

func (n *Namer) Name(ctx context.Context, photo camera.Photo) (string, error) {
	format, err := imageFormat(photo.ContentType)
	if err != nil {
		return "", err
	}

	spec, err := toolSpec()
	if err != nil {
		return "", err
	}

	in := &bedrockruntime.ConverseInput{
		ModelId: aws.String(n.opts.ModelID),
		System:  []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: systemPrompt}},
		Messages: []types.Message{{
			Role: types.ConversationRoleUser,
			Content: []types.ContentBlock{
				&types.ContentBlockMemberImage{Value: types.ImageBlock{
					Format: format,
					Source: &types.ImageSourceMemberBytes{Value: photo.Data},
				}},
				&types.ContentBlockMemberText{Value: "What is this dish called?"},
			},
		}},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(n.opts.MaxTokens),
			Temperature: aws.Float32(n.opts.Temperature),
			TopP:        aws.Float32(n.opts.TopP),
		},
		ToolConfig: &types.ToolConfiguration{
			Tools:      []types.Tool{&types.ToolMemberToolSpec{Value: spec}},
			ToolChoice: &types.ToolChoiceMemberTool{Value: types.SpecificToolChoice{Name: aws.String(toolName)}},
		},
	}

	out, err := n.brc.Converse(ctx, in)
	if err != nil {
		slog.Error("NAMER: Bedrock converse failed", "error", err, "model", n.opts.ModelID)
		return "", fmt.Errorf("bedrock converse: %w", err)
	}

	if out.Usage != nil {
		slog.Info("NAMER: Bedrock converse succeeded",
			"stop_reason", out.StopReason,
			"input_tokens", aws.ToInt32(out.Usage.InputTokens),
			"output_tokens", aws.ToInt32(out.Usage.OutputTokens),
		)
	}

	title := naming.Clean(titleFromOutput(out), maxTitleLen)
	if title == "" {
		return "", ErrNoTitle
	}
	return title, nil
}

func toolSpec() (types.ToolSpecification, error) {
	// The document encoder does not honor the schema's MarshalJSON, so go through a plain map.
	schemaJSON, err := json.Marshal(InputSchema())
	if err != nil {
		return types.ToolSpecification{}, fmt.Errorf("marshal %s schema: %w", toolName, err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return types.ToolSpecification{}, fmt.Errorf("unmarshal %s schema: %w", toolName, err)
	}
	return types.ToolSpecification{
		Name:        aws.String(toolName),
		Description: aws.String("Record the name of the dish shown in the photo."),
		InputSchema: &types.ToolInputSchemaMemberJson{Value: document.NewLazyDocument(schemaMap)},
	}, nil
}

// titleFromOutput prefers the tool call; a bare text answer is accepted as a fallback.
func titleFromOutput(out *bedrockruntime.ConverseOutput) string {
	if out == nil || out.Output == nil {
		return ""
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg == nil {
		return ""
	}

	var text string
	for _, cb := range msg.Value.Content {
		switch b := cb.(type) {
		case *types.ContentBlockMemberToolUse:
			if aws.ToString(b.Value.Name) != toolName || b.Value.Input == nil {
				continue
			}
			var input map[string]any
			if err := b.Value.Input.UnmarshalSmithyDocument(&input); err != nil {
				slog.Warn("NAMER: Could not decode tool input", "error", err)
				continue
			}
			if s, _ := input["title"].(string); s != "" {
				return s
			}
		case *types.ContentBlockMemberText:
			if text == "" {
				text = b.Value
			}
		}
	}
	return text
}

func imageFormat(contentType string) (types.ImageFormat, error) {
	switch contentType {
	case "image/jpeg":
		return types.ImageFormatJpeg, nil
	case "image/png":
		return types.ImageFormatPng, nil
	case "image/webp":
		return types.ImageFormatWebp, nil
	case "image/gif":
		return types.ImageFormatGif, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImage, contentType)
	}
}
