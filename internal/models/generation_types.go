package models

import (
	"encoding/json"
	"time"
)

// GenerationKind is the type column of generation_history.
type GenerationKind string

const (
	KindIdeas  GenerationKind = "ideas"
	KindScript GenerationKind = "script"
)

// GenerationRecord is one successful generation. Rows are append-only.
// Anonymous callers have a nil UserID and are identified by Session.
type GenerationRecord struct {
	ID        int64           `json:"id" db:"id"`
	Kind      GenerationKind  `json:"type" db:"type"`
	Data      json.RawMessage `json:"data" db:"data"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UserID    *int64          `json:"user_id" db:"user_id"`
	Session   string          `json:"-" db:"user_session"`
}

// Idea is one structured content idea.
type Idea struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Hashtags    string `json:"hashtags"`
}

// IdeasPayload is stored in GenerationRecord.Data for KindIdeas.
type IdeasPayload struct {
	Niche       string `json:"niche"`
	Audience    string `json:"audience"`
	Count       int    `json:"count"`
	Ideas       []Idea `json:"ideas"`
	AIGenerated bool   `json:"ai_generated"`
}

// ScriptPayload is stored in GenerationRecord.Data for KindScript.
type ScriptPayload struct {
	Idea        string `json:"idea"`
	Script      string `json:"script"`
	AIGenerated bool   `json:"ai_generated"`
}
