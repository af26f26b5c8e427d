package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/contentai/contentai-golang/internal/models"
)

// completeFunc sends one prompt and returns the response text.
type completeFunc func(ctx context.Context, prompt string) (string, error)

// Gemini generates content with a Google Gemini model. Every call runs under
// its own timeout; callers treat any error as a reason to fall back.
type Gemini struct {
	client       *genai.Client
	complete     completeFunc
	completeJSON completeFunc
	timeout      time.Duration
}

// NewGemini creates the Gemini client for modelName.
func NewGemini(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	text := client.GenerativeModel(modelName)

	// The ideas model is asked for a JSON array; ParseIdeas still accepts
	// labelled text if the model ignores the schema.
	structured := client.GenerativeModel(modelName)
	structured.ResponseMIMEType = "application/json"
	structured.ResponseSchema = ideasSchema

	return &Gemini{
		client:       client,
		complete:     modelCompleter(text),
		completeJSON: modelCompleter(structured),
		timeout:      timeout,
	}, nil
}

var ideasSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":       {Type: genai.TypeString},
			"description": {Type: genai.TypeString},
			"hashtags":    {Type: genai.TypeString},
		},
		Required: []string{"title", "description", "hashtags"},
	},
}

func modelCompleter(model *genai.GenerativeModel) completeFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		res, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", fmt.Errorf("error generating content: %w", err)
		}
		return responseText(res)
	}
}

func responseText(res *genai.GenerateContentResponse) (string, error) {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *Gemini) call(ctx context.Context, fn completeFunc, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return fn(ctx, prompt)
}

func (g *Gemini) Live() bool { return true }

func (g *Gemini) GenerateIdeas(ctx context.Context, niche, audience string, count int) ([]models.Idea, error) {
	text, err := g.call(ctx, g.completeJSON, ideasPrompt(niche, audience, count))
	if err != nil {
		return nil, err
	}
	return IdeasFromResponse(text, count, niche, audience)
}

func (g *Gemini) GenerateScript(ctx context.Context, idea string) (string, error) {
	return g.call(ctx, g.complete, scriptPrompt(idea))
}

func (g *Gemini) ImproveIdea(ctx context.Context, idea, kind string) (Improvement, error) {
	text, err := g.call(ctx, g.complete, improvePrompt(idea, kind))
	if err != nil {
		return Improvement{}, err
	}
	imp, ok := ParseImprovement(text)
	if !ok {
		return Improvement{}, fmt.Errorf("ai: unrecognized improvement response")
	}
	return imp, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
