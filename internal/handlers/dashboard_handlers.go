package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contentai/contentai-golang/internal/apperr"
	"github.com/contentai/contentai-golang/internal/database"
	"github.com/contentai/contentai-golang/internal/middleware"
	"github.com/contentai/contentai-golang/internal/models"
	"github.com/contentai/contentai-golang/internal/store"
)

// Health reports liveness, whether a model is configured and the totals.
// GET /api/health
func (h *Handlers) Health(c *gin.Context) {
	snap, err := h.Store.Statistics.Get(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"ai_configured": h.Generation.Live(),
		"statistics":    snap,
		"timestamp":     time.Now().UTC(),
	})
}

// GetStatistics returns the running totals and account counts.
// GET /api/statistics
func (h *Handlers) GetStatistics(c *gin.Context) {
	ctx := c.Request.Context()

	snap, err := h.Store.Statistics.Get(ctx)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	counts, err := h.Store.Users.Counts(ctx)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"statistics": snap,
		"users":      counts,
	})
}

type FeedbackInput struct {
	Message string `json:"message" binding:"required"`
	Rating  *int   `json:"rating" binding:"omitempty,min=1,max=5"`
}

// SubmitFeedback stores a feedback message and bumps the feedback counter.
// POST /api/feedback
func (h *Handlers) SubmitFeedback(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input FeedbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, bindError(err))
		return
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		apperr.Respond(c, apperr.Validation("message is required"))
		return
	}

	// 2. --- Save Feedback + Counter in one Transaction ---
	fb := &models.FeedbackRecord{
		Message: message,
		Rating:  input.Rating,
		Session: c.ClientIP(),
	}
	err := h.Store.InTx(c.Request.Context(), func(ctx context.Context, tx database.DBTX) error {
		if err := h.Store.Feedback.Create(ctx, tx, fb); err != nil {
			return err
		}
		return h.Store.Statistics.Increment(ctx, tx, store.CounterFeedback)
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	// 3. --- Send Success Response ---
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Feedback received",
		"feedback_id": fb.ID,
	})
}

// GetHistory lists the caller's generations: the account's when a token is
// sent, otherwise the anonymous ones from this client.
// GET /api/history
func (h *Handlers) GetHistory(c *gin.Context) {
	// 1. --- Read Pagination ---
	page, perPage, err := pagination(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	ctx := c.Request.Context()
	offset := (page - 1) * perPage

	// 2. --- Query by Account or by Client ---
	var (
		records []models.GenerationRecord
		total   int
	)
	if user := middleware.CurrentUser(c); user != nil {
		records, total, err = h.Store.Generations.ListForUser(ctx, user.ID, perPage, offset)
	} else {
		records, total, err = h.Store.Generations.ListAnonymous(ctx, c.ClientIP(), perPage, offset)
	}
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	// 3. --- Send Success Response ---
	c.JSON(http.StatusOK, historyPage(records, total, page, perPage))
}

// GetUserHistory lists the authenticated user's generations.
// GET /api/user/history
func (h *Handlers) GetUserHistory(c *gin.Context) {
	page, perPage, err := pagination(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	records, total, err := h.Store.Generations.ListForUser(c.Request.Context(), user.ID, perPage, (page-1)*perPage)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, historyPage(records, total, page, perPage))
}

func historyPage(records []models.GenerationRecord, total, page, perPage int) gin.H {
	return gin.H{
		"history":  records,
		"total":    total,
		"page":     page,
		"per_page": perPage,
		"pages":    pages(total, perPage),
	}
}
