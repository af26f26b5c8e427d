// Package generation runs idea and script generation end to end: quota,
// cache, model call with template fallback, and persistence.
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/contentai/contentai-golang/internal/ai"
	"github.com/contentai/contentai-golang/internal/apperr"
	"github.com/contentai/contentai-golang/internal/cache"
	"github.com/contentai/contentai-golang/internal/database"
	"github.com/contentai/contentai-golang/internal/logging"
	"github.com/contentai/contentai-golang/internal/models"
	"github.com/contentai/contentai-golang/internal/quota"
	"github.com/contentai/contentai-golang/internal/store"
)

const (
	MinIdeas     = 1
	MaxIdeas     = 10
	DefaultIdeas = 5
)

// Caller identifies who is generating. User is nil for anonymous callers,
// who are tracked by Session.
type Caller struct {
	User    *models.User
	Session string
}

func (c Caller) userID() *int64 {
	if c.User == nil {
		return nil
	}
	id := c.User.ID
	return &id
}

type IdeasResult struct {
	Niche       string        `json:"niche"`
	Audience    string        `json:"audience"`
	Count       int           `json:"count"`
	Ideas       []models.Idea `json:"ideas"`
	HistoryID   int64         `json:"history_id"`
	AIGenerated bool          `json:"ai_generated"`
	Cached      bool          `json:"cached"`
	Remaining   int           `json:"remaining"`
}

type ScriptResult struct {
	Idea        string `json:"idea"`
	Script      string `json:"script"`
	HistoryID   int64  `json:"history_id"`
	AIGenerated bool   `json:"ai_generated"`
	Cached      bool   `json:"cached"`
	Remaining   int    `json:"remaining"`
}

type ImproveResult struct {
	Idea string `json:"idea"`
	ai.Improvement
	AIGenerated bool `json:"ai_generated"`
}

type Service struct {
	store    *store.Store
	ledger   *quota.Ledger
	caches   *cache.Caches
	gen      ai.Generator
	fallback *ai.Fallback
	log      logging.Logger
}

func NewService(st *store.Store, ledger *quota.Ledger, caches *cache.Caches, gen ai.Generator, log logging.Logger) *Service {
	return &Service{
		store:    st,
		ledger:   ledger,
		caches:   caches,
		gen:      gen,
		fallback: ai.NewFallback(),
		log:      log,
	}
}

// Live reports whether a model is configured.
func (s *Service) Live() bool {
	return s.gen.Live()
}

// Ideas generates count content ideas for niche and audience.
func (s *Service) Ideas(ctx context.Context, caller Caller, niche, audience string, count int) (*IdeasResult, error) {
	niche, audience = strings.TrimSpace(niche), strings.TrimSpace(audience)
	if niche == "" || audience == "" {
		return nil, apperr.Validation("niche and audience are required")
	}
	if count < MinIdeas || count > MaxIdeas {
		return nil, apperr.Validation(fmt.Sprintf("count must be between %d and %d", MinIdeas, MaxIdeas))
	}

	decision, err := s.admit(ctx, caller)
	if err != nil {
		return nil, err
	}

	ideas, cached, live := s.generateIdeas(ctx, niche, audience, count)

	res := &IdeasResult{
		Niche:       niche,
		Audience:    audience,
		Count:       count,
		Ideas:       ideas,
		AIGenerated: live,
		Cached:      cached,
		Remaining:   decision.Remaining(),
	}
	payload := models.IdeasPayload{Niche: niche, Audience: audience, Count: count, Ideas: ideas, AIGenerated: live}
	res.HistoryID, err = s.record(ctx, caller, models.KindIdeas, payload)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "ideas generated",
		"history_id", res.HistoryID, "count", count, "ai_generated", live, "cached", cached, "tier", decision.Tier)
	return res, nil
}

// Script generates a video script for idea.
func (s *Service) Script(ctx context.Context, caller Caller, idea string) (*ScriptResult, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return nil, apperr.Validation("idea is required")
	}

	decision, err := s.admit(ctx, caller)
	if err != nil {
		return nil, err
	}

	script, cached, live := s.generateScript(ctx, idea)

	res := &ScriptResult{
		Idea:        idea,
		Script:      script,
		AIGenerated: live,
		Cached:      cached,
		Remaining:   decision.Remaining(),
	}
	payload := models.ScriptPayload{Idea: idea, Script: script, AIGenerated: live}
	res.HistoryID, err = s.record(ctx, caller, models.KindScript, payload)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "script generated",
		"history_id", res.HistoryID, "ai_generated", live, "cached", cached, "tier", decision.Tier)
	return res, nil
}

// Improve rewrites an idea. It is neither cached, recorded nor counted
// against the quota.
func (s *Service) Improve(ctx context.Context, idea, kind string) (*ImproveResult, error) {
	idea = strings.TrimSpace(idea)
	if idea == "" {
		return nil, apperr.Validation("idea is required")
	}
	if kind = strings.TrimSpace(kind); kind == "" {
		kind = "geral"
	}

	if s.gen.Live() {
		imp, err := s.gen.ImproveIdea(ctx, idea, kind)
		if err == nil {
			return &ImproveResult{Idea: idea, Improvement: imp, AIGenerated: true}, nil
		}
		s.log.Warn(ctx, "ai improve failed, using fallback", "error", err)
	}

	imp, _ := s.fallback.ImproveIdea(ctx, idea, kind)
	return &ImproveResult{Idea: idea, Improvement: imp}, nil
}

func (s *Service) admit(ctx context.Context, caller Caller) (quota.Decision, error) {
	decision, err := s.ledger.Check(ctx, caller.User, caller.Session)
	if err != nil {
		return quota.Decision{}, fmt.Errorf("quota check failed: %w", err)
	}
	if decision.Allowed {
		return decision, nil
	}

	msg := "Daily limit reached. Upgrade to premium for unlimited generations."
	if decision.RequiresAuth {
		msg = "Daily limit reached. Sign in to keep generating."
	}
	s.log.Info(ctx, "quota exceeded", "tier", decision.Tier, "used", decision.Used, "limit", decision.Limit)
	return decision, apperr.QuotaExceeded(msg, decision.Details())
}

// generateIdeas returns the ideas, whether they were cached and whether they
// came from the model.
func (s *Service) generateIdeas(ctx context.Context, niche, audience string, count int) ([]models.Idea, bool, bool) {
	if s.gen.Live() {
		ideas, cached, err := s.caches.Ideas.GetOrCompute(ctx, cache.IdeasKey(niche, audience, count),
			func(ctx context.Context) ([]models.Idea, error) {
				return s.gen.GenerateIdeas(ctx, niche, audience, count)
			})
		if err == nil {
			return slices.Clone(ideas), cached, true
		}
		s.log.Warn(ctx, "ai ideas failed, using fallback", "error", err)
	}

	ideas, _ := s.fallback.GenerateIdeas(ctx, niche, audience, count)
	return ideas, false, false
}

func (s *Service) generateScript(ctx context.Context, idea string) (string, bool, bool) {
	if s.gen.Live() {
		script, cached, err := s.caches.Script.GetOrCompute(ctx, cache.ScriptKey(idea), func(ctx context.Context) (string, error) {
			return s.gen.GenerateScript(ctx, idea)
		})
		if err == nil {
			return script, cached, true
		}
		s.log.Warn(ctx, "ai script failed, using fallback", "error", err)
	}

	script, _ := s.fallback.GenerateScript(ctx, idea)
	return script, false, false
}

// record stores the history row and bumps the matching counter in one
// transaction.
func (s *Service) record(ctx context.Context, caller Caller, kind models.GenerationKind, payload any) (int64, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}

	rec := &models.GenerationRecord{
		Kind:    kind,
		Data:    data,
		UserID:  caller.userID(),
		Session: caller.Session,
	}
	err = s.store.InTx(ctx, func(ctx context.Context, tx database.DBTX) error {
		if err := s.store.Generations.Create(ctx, tx, rec); err != nil {
			return err
		}
		return s.store.Statistics.Increment(ctx, tx, store.CounterFor(kind))
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record %s generation: %w", kind, err)
	}
	return rec.ID, nil
}
