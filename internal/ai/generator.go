// Package ai produces content ideas, scripts and idea improvements, either
// from Gemini or from deterministic templates when no model is configured.
package ai

import (
	"context"
	"errors"

	"github.com/contentai/contentai-golang/internal/models"
)

// ErrEmptyResponse is returned when the model answered without usable text.
var ErrEmptyResponse = errors.New("ai: empty response")

// ErrUnparseable is returned when the model answered but no idea could be
// read from the text.
var ErrUnparseable = errors.New("ai: unparseable response")

// Improvement is the result of improving an existing idea.
type Improvement struct {
	Title       string `json:"improved_title"`
	Description string `json:"improved_description"`
	Hashtags    string `json:"improved_hashtags"`
}

func (i Improvement) empty() bool {
	return i.Title == "" && i.Description == "" && i.Hashtags == ""
}

// Generator is implemented by the Gemini client and by Fallback. The choice
// is made once at startup.
type Generator interface {
	// Live reports whether output comes from a model rather than templates.
	Live() bool
	GenerateIdeas(ctx context.Context, niche, audience string, count int) ([]models.Idea, error)
	GenerateScript(ctx context.Context, idea string) (string, error)
	ImproveIdea(ctx context.Context, idea, kind string) (Improvement, error)
}
