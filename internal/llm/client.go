// Package llm wraps the Gemini API behind a small generation interface:
// schema-constrained JSON extraction and a tool-calling chat step. Everything
// above this package is testable against the Generator interface with a
// scripted fake.
package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Generator is the extraction capability consumed by the classifier, the
// extractor and the agent. Implementations must be safe for concurrent use.
type Generator interface {
	// Generate sends message to the model with temperature pinned to zero
	// and a response schema the output must conform to, and returns the raw
	// JSON bytes of the response.
	Generate(ctx context.Context, schema *genai.Schema, system, message string) ([]byte, error)

	// GenerateWithTools runs one chat step over the given history with the
	// declared tools available. The response either carries function calls
	// to execute or a final text answer.
	GenerateWithTools(ctx context.Context, system string, history []*genai.Content, decls []*genai.FunctionDeclaration) (*genai.GenerateContentResponse, error)
}

// Client is the Gemini-backed Generator. The API key is picked up from the
// environment by the genai SDK (GEMINI_API_KEY).
type Client struct {
	gc    *genai.Client
	model string
}

// NewClient creates a Gemini client for the given model name.
// Pass an empty model to use DefaultModel.
func NewClient(ctx context.Context, model string) (*Client, error) {
	if model == "" {
		model = DefaultModel
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewClient: create genai client: %w", err)
	}
	return &Client{gc: gc, model: model}, nil
}

// Generate implements Generator.
func (c *Client) Generate(ctx context.Context, schema *genai.Schema, system, message string) ([]byte, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	contents := []*genai.Content{
		{Role: genai.RoleUser, Parts: []*genai.Part{{Text: message}}},
	}

	resp, err := c.gc.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("Generate: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("Generate: empty response from model")
	}

	return []byte(CleanJSON(rawText)), nil
}

// GenerateWithTools implements Generator.
func (c *Client) GenerateWithTools(ctx context.Context, system string, history []*genai.Content, decls []*genai.FunctionDeclaration) (*genai.GenerateContentResponse, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(0)),
		Tools:       []*genai.Tool{{FunctionDeclarations: decls}},
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	resp, err := c.gc.Models.GenerateContent(ctx, c.model, history, config)
	if err != nil {
		return nil, fmt.Errorf("GenerateWithTools: generate content: %w", err)
	}

	return resp, nil
}

// Ensure Client implements Generator.
var _ Generator = (*Client)(nil)
