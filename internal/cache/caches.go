package cache

import "github.com/contentai/contentai-golang/internal/models"

// Caches holds one Memo per AI-backed operation.
type Caches struct {
	Ideas  *Memo[[]models.Idea]
	Script *Memo[string]
}

func New(size int) (*Caches, error) {
	ideas, err := NewMemo[[]models.Idea](size)
	if err != nil {
		return nil, err
	}
	script, err := NewMemo[string](size)
	if err != nil {
		return nil, err
	}
	return &Caches{Ideas: ideas, Script: script}, nil
}

// ClearAll empties both caches.
func (c *Caches) ClearAll() {
	c.Ideas.Clear()
	c.Script.Clear()
}

// Stats is keyed by operation name.
func (c *Caches) Stats() map[string]Stats {
	return map[string]Stats{
		"generate_ideas":  c.Ideas.Stats(),
		"generate_script": c.Script.Stats(),
	}
}
