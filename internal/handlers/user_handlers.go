package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contentai/contentai-golang/internal/apperr"
	"github.com/contentai/contentai-golang/internal/middleware"
	"github.com/contentai/contentai-golang/internal/models"
	"github.com/contentai/contentai-golang/internal/store"
)

// --- User Registration ---

// RegisterUserInput is separate from models.User so clients cannot set ids
// or tier flags.
type RegisterUserInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
}

// Register creates a free account and returns an access token.
// POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, bindError(err))
		return
	}
	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(input.Email))

	// 1. Reject a taken email before paying for bcrypt
	exists, err := h.Store.Users.EmailExists(ctx, email)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if exists {
		apperr.Respond(c, apperr.Conflict("Email already registered"))
		return
	}

	// 2. Hash the password
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		apperr.Respond(c, err)
		return
	}

	user := &models.User{
		Email:        email,
		PasswordHash: password.Hash,
		CreatedAt:    time.Now().UTC(),
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = &name
	}

	// 3. Save; the unique index still catches a concurrent registration
	if err := h.Store.Users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			apperr.Respond(c, apperr.Conflict("Email already registered"))
			return
		}
		apperr.Respond(c, err)
		return
	}

	h.Log.Info(ctx, "user registered", "user_id", user.ID)
	h.respondWithToken(c, http.StatusCreated, "User registered successfully", user)
}

// --- Login ---

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for an access token.
// POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperr.Respond(c, bindError(err))
		return
	}
	ctx := c.Request.Context()
	invalid := apperr.Unauthorized("Invalid email or password")

	// 2. --- Find User + Check Password ---
	user, err := h.Store.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if errors.Is(err, store.ErrNotFound) {
		apperr.Respond(c, invalid)
		return
	}
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	ok, err := password.Matches(input.Password)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if !ok {
		apperr.Respond(c, invalid)
		return
	}

	// 3. --- Record Login + Issue Token ---
	now := time.Now().UTC()
	if err := h.Store.Users.TouchLastLogin(ctx, user.ID, now); err != nil {
		apperr.Respond(c, err)
		return
	}
	user.LastLogin = &now

	h.respondWithToken(c, http.StatusOK, "Login successful", user)
}

func (h *Handlers) respondWithToken(c *gin.Context, status int, message string, user *models.User) {
	token, err := h.Issuer.GenerateToken(user.ID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(status, gin.H{
		"message":      message,
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(h.Issuer.TTL().Seconds()),
		"user":         user,
		"tier":         user.Tier(),
	})
}

// Me returns the authenticated user's profile.
// GET /api/auth/me
func (h *Handlers) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"user": user,
		"tier": user.Tier(),
	})
}

// Upgrade turns the caller into a premium user.
// POST /api/auth/upgrade
func (h *Handlers) Upgrade(c *gin.Context) {
	current := middleware.CurrentUser(c)
	premium := true

	user, err := h.Store.Users.SetFlags(c.Request.Context(), current.ID, &premium, nil)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	h.Log.Info(c.Request.Context(), "user upgraded to premium", "user_id", user.ID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Account upgraded to premium",
		"user":    user,
		"tier":    user.Tier(),
	})
}
