package ai

import (
	"encoding/json"
	"strings"

	"github.com/contentai/contentai-golang/internal/models"
)

type field int

const (
	fieldNone field = iota
	fieldTitle
	fieldDescription
	fieldHashtags
)

var labels = []struct {
	prefix string
	field  field
}{
	{"título:", fieldTitle},
	{"titulo:", fieldTitle},
	{"title:", fieldTitle},
	{"descrição:", fieldDescription},
	{"descricao:", fieldDescription},
	{"description:", fieldDescription},
	{"hashtags:", fieldHashtags},
}

// labelled splits a line such as "**Título:** Foo" into its field and value.
func labelled(line string) (field, string) {
	stripped := strings.TrimLeft(line, "*#> \t")
	lower := strings.ToLower(stripped)
	for _, l := range labels {
		if strings.HasPrefix(lower, l.prefix) {
			_, value, _ := strings.Cut(stripped, ":")
			return l.field, strings.Trim(value, "* \t")
		}
	}
	return fieldNone, ""
}

func isSeparator(line string) bool {
	return strings.HasPrefix(line, "---")
}

func hasAny(i models.Idea) bool {
	return i.Title != "" || i.Description != "" || i.Hashtags != ""
}

// ParseIdeas extracts exactly expected ideas from a model response. Blocks of
// "Título:/Descrição:/Hashtags:" lines are read in order, a "---" line or a
// new title closes the current idea, and a JSON array of ideas is accepted as
// well. Missing ideas are filled with FallbackIdea. It never fails.
func ParseIdeas(text string, expected int, niche, audience string) []models.Idea {
	ideas, _ := parseIdeas(text, expected, niche, audience)
	return ideas
}

// IdeasFromResponse is ParseIdeas for live model output. A response that
// yields no idea at all is ErrUnparseable rather than a page of templates.
func IdeasFromResponse(text string, expected int, niche, audience string) ([]models.Idea, error) {
	ideas, extracted := parseIdeas(text, expected, niche, audience)
	if expected > 0 && extracted == 0 {
		return nil, ErrUnparseable
	}
	return ideas, nil
}

// parseIdeas also returns how many ideas were read from text before padding.
func parseIdeas(text string, expected int, niche, audience string) ([]models.Idea, int) {
	if expected <= 0 {
		return []models.Idea{}, 0
	}

	ideas, ok := parseJSONIdeas(text)
	if !ok {
		ideas = parseLabelledIdeas(text)
	}
	extracted := min(len(ideas), expected)

	for len(ideas) < expected {
		ideas = append(ideas, FallbackIdea(len(ideas)+1, niche, audience))
	}
	return ideas[:expected], extracted
}

func parseJSONIdeas(text string) ([]models.Idea, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "[") {
		return nil, false
	}

	var raw []models.Idea
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, false
	}
	ideas := make([]models.Idea, 0, len(raw))
	for _, i := range raw {
		i.Title = strings.TrimSpace(i.Title)
		i.Description = strings.TrimSpace(i.Description)
		i.Hashtags = strings.TrimSpace(i.Hashtags)
		if hasAny(i) {
			ideas = append(ideas, i)
		}
	}
	return ideas, true
}

func parseLabelledIdeas(text string) []models.Idea {
	var (
		ideas   []models.Idea
		current models.Idea
	)
	flush := func() {
		if hasAny(current) {
			ideas = append(ideas, current)
		}
		current = models.Idea{}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if isSeparator(line) {
			flush()
			continue
		}

		f, value := labelled(line)
		switch f {
		case fieldTitle:
			flush()
			current.Title = value
		case fieldDescription:
			current.Description = value
		case fieldHashtags:
			current.Hashtags = value
		}
	}
	flush()
	return ideas
}

// ParseImprovement reads the labelled fields of an improvement response. The
// boolean is false when no field was found.
func ParseImprovement(text string) (Improvement, bool) {
	var imp Improvement
	for _, line := range strings.Split(text, "\n") {
		f, value := labelled(strings.TrimSpace(line))
		switch f {
		case fieldTitle:
			imp.Title = value
		case fieldDescription:
			imp.Description = value
		case fieldHashtags:
			imp.Hashtags = value
		}
	}
	return imp, !imp.empty()
}
