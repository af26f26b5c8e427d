package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contentai/contentai-golang/internal/apperr"
	"github.com/contentai/contentai-golang/internal/generation"
)

type GenerateIdeasInput struct {
	Niche    string `json:"niche" binding:"required"`
	Audience string `json:"audience" binding:"required"`
	Count    *int   `json:"count"`
}

// GenerateIdeas returns content ideas for a niche and audience.
// POST /api/generate-ideas
func (h *Handlers) GenerateIdeas(c *gin.Context) {
	var input GenerateIdeasInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, bindError(err))
		return
	}

	count := generation.DefaultIdeas
	if input.Count != nil {
		count = *input.Count
	}

	res, err := h.Generation.Ideas(c.Request.Context(), caller(c), input.Niche, input.Audience, count)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type GenerateScriptInput struct {
	Idea string `json:"idea" binding:"required"`
}

// GenerateScript returns a video script for an idea.
// POST /api/generate-script
func (h *Handlers) GenerateScript(c *gin.Context) {
	var input GenerateScriptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, bindError(err))
		return
	}

	res, err := h.Generation.Script(c.Request.Context(), caller(c), input.Idea)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type ImproveIdeaInput struct {
	Idea string `json:"idea" binding:"required"`
	Type string `json:"type"`
}

// ImproveIdea rewrites an idea. Not counted against the daily quota.
// POST /api/improve-idea
func (h *Handlers) ImproveIdea(c *gin.Context) {
	var input ImproveIdeaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, bindError(err))
		return
	}

	res, err := h.Generation.Improve(c.Request.Context(), input.Idea, input.Type)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
