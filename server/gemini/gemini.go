package gemini

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Daskott/instantdoc/shared"
	pkgErrors "github.com/pkg/errors"
	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

const (
	DEFAULT_MODEL  = "gemini-1.5-pro-002"
	FALLBACK_REPLY = "No response from Gemini"
)

var ErrUpstream = errors.New("gemini request failed")

type Client struct {
	service *generativelanguage.Service
	model   string
	timeout time.Duration
}

// NewClient creates a Gemini client authenticated with 'config.APIKey'.
// Extra options are appended after the API key (used by tests to point at a fake endpoint).
func NewClient(ctx context.Context, config shared.GeminiConfig, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(config.APIKey)}, opts...)

	service, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, pkgErrors.Wrap(err, "gemini.NewClient")
	}

	model := config.Model
	if model == "" {
		model = DEFAULT_MODEL
	}

	return &Client{service: service, model: model, timeout: config.Timeout}, nil
}

// Ask sends 'prompt' as a single user turn & returns the text of the first part of
// the first candidate, or FALLBACK_REPLY when the response carries no text.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	request := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{
			{Role: "user", Parts: []*generativelanguage.Part{{Text: prompt}}},
		},
	}

	response, err := c.service.Models.GenerateContent(modelResourceName(c.model), request).Context(ctx).Do()
	if err != nil {
		return "", pkgErrors.Wrapf(ErrUpstream, "generateContent: %v", err)
	}

	return firstText(response), nil
}

func firstText(response *generativelanguage.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 {
		return FALLBACK_REPLY
	}

	content := response.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0].Text == "" {
		return FALLBACK_REPLY
	}

	return content.Parts[0].Text
}

func modelResourceName(model string) string {
	if strings.HasPrefix(model, "models/") {
		return model
	}

	return "models/" + model
}
