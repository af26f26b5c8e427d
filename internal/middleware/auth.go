package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/contentai/contentai-golang/internal/apperr"
	"github.com/contentai/contentai-golang/internal/auth"
	"github.com/contentai/contentai-golang/internal/models"
	"github.com/contentai/contentai-golang/internal/store"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID = "userID"
	ContextUser   = "user"
)

// UserLookup loads the account behind a token subject.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

var errNoToken = errors.New("no bearer token")

func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errNoToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperr.Unauthorized("Invalid token format (must be Bearer)")
	}
	return parts[1], nil
}

// authenticate resolves the bearer token into a user. It returns errNoToken
// when the request carries no Authorization header.
func authenticate(c *gin.Context, issuer *auth.Issuer, users UserLookup) (*models.User, error) {
	token, err := bearerToken(c)
	if err != nil {
		return nil, err
	}

	userID, err := issuer.ValidateToken(token)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	user, err := users.GetByID(c.Request.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Unauthorized("User not found")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(issuer *auth.Issuer, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authenticate(c, issuer, users)
		if errors.Is(err, errNoToken) {
			apperr.Abort(c, apperr.Unauthorized("Authorization header required"))
			return
		}
		if err != nil {
			apperr.Abort(c, err)
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUser, user)
		c.Next()
	}
}

// OptionalAuth loads the user when a token is present. Requests without one
// continue anonymously; a present but invalid token is rejected.
func OptionalAuth(issuer *auth.Issuer, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authenticate(c, issuer, users)
		if errors.Is(err, errNoToken) {
			c.Next()
			return
		}
		if err != nil {
			apperr.Abort(c, err)
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUser, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			apperr.Abort(c, apperr.Unauthorized("Authorization header required"))
			return
		}
		if !user.IsAdmin {
			apperr.Abort(c, apperr.Forbidden("Admin access required"))
			return
		}
		c.Next()
	}
}

// RequirePremiumOrAdmin must run after RequireAuth.
func RequirePremiumOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			apperr.Abort(c, apperr.Unauthorized("Authorization header required"))
			return
		}
		if !user.IsAdmin && !user.IsPremium {
			apperr.Abort(c, apperr.Forbidden("Premium or admin access required"))
			return
		}
		c.Next()
	}
}
