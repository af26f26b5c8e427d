package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/contentai/contentai-golang/internal/apperr"
	"github.com/contentai/contentai-golang/internal/middleware"
	"github.com/contentai/contentai-golang/internal/store"
)

// ClearCache empties both generation caches.
// POST /admin/clear-cache
func (h *Handlers) ClearCache(c *gin.Context) {
	h.Caches.ClearAll()
	h.Log.Info(c.Request.Context(), "generation caches cleared by admin", "user_id", middleware.CurrentUser(c).ID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cache cleared",
		"cache":   h.Caches.Stats(),
	})
}

// GetCacheStats returns size, hits and misses per cache.
// GET /api/cache-stats
func (h *Handlers) GetCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cache": h.Caches.Stats()})
}

// ListUsers returns every account.
// GET /admin/users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.Store.Users.List(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": len(users),
	})
}

type UpdateUserInput struct {
	IsPremium *bool `json:"is_premium"`
	IsAdmin   *bool `json:"is_admin"`
}

// UpdateUser toggles the premium and admin flags of an account.
// PUT /admin/user/:id
func (h *Handlers) UpdateUser(c *gin.Context) {
	// 1. --- Parse User ID ---
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		apperr.Respond(c, apperr.Validation("Invalid user ID"))
		return
	}

	// 2. --- Bind & Validate JSON ---
	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, bindError(err))
		return
	}
	if input.IsPremium == nil && input.IsAdmin == nil {
		apperr.Respond(c, apperr.Validation("is_premium or is_admin is required"))
		return
	}

	// 3. --- Update Database ---
	user, err := h.Store.Users.SetFlags(c.Request.Context(), id, input.IsPremium, input.IsAdmin)
	if errors.Is(err, store.ErrNotFound) {
		apperr.Respond(c, apperr.NotFound("User"))
		return
	}
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	// 4. --- Send Success Response ---
	h.Log.Info(c.Request.Context(), "user flags updated",
		"user_id", user.ID, "is_premium", user.IsPremium, "is_admin", user.IsAdmin)
	c.JSON(http.StatusOK, gin.H{
		"message": "User updated",
		"user":    user,
	})
}
