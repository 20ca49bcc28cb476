package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-1.5-flash"

// Client is a thin wrapper over the Gemini API for vision analysis.
type Client interface {
	AnalyzeImage(ctx context.Context, instruction string, image []byte, mimeType string) (string, error)
}

type client struct {
	genaiClient *genai.Client
	model       string
}

func NewClient(ctx context.Context, apiKey, model string) (Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &client{
		genaiClient: genaiClient,
		model:       model,
	}, nil
}

// AnalyzeImage sends the instruction plus the inline image in a single user
// turn and returns the model's reply with any markdown code fence stripped.
func (c *client) AnalyzeImage(
	ctx context.Context,
	instruction string,
	image []byte,
	mimeType string,
) (string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: instruction},
				{InlineData: &genai.Blob{Data: image, MIMEType: mimeType}},
			},
		},
	}

	result, err := c.genaiClient.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	responseText := stripCodeFence(result.Text())
	if responseText == "" {
		return "", fmt.Errorf("no completions returned")
	}

	return responseText, nil
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
