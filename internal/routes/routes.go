package routes

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/contentai/contentai-golang/internal/handlers"
	"github.com/contentai/contentai-golang/internal/middleware"
)

// Options configures the router independently of the handler dependencies.
type Options struct {
	CORSOrigins []string
	RateLimiter *middleware.RateLimiter
}

// corsConfig allows the configured frontends; "*" allows any origin.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.New()

	// --- Global middleware ---
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(h.Log))
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))

	requireAuth := middleware.RequireAuth(h.Issuer, h.Store.Users)
	optionalAuth := middleware.OptionalAuth(h.Issuer, h.Store.Users)

	// The throttle covers routes the daily quota does not; generation is
	// bounded by the quota alone.
	throttle := func(c *gin.Context) { c.Next() }
	if opts.RateLimiter != nil {
		throttle = opts.RateLimiter.Middleware()
	}

	api := router.Group("/api")
	{
		// --- Public Routes ---
		api.GET("/health", h.Health)
		api.GET("/statistics", h.GetStatistics)
		api.POST("/feedback", throttle, h.SubmitFeedback)
		api.POST("/improve-idea", throttle, h.ImproveIdea)

		// --- Generation (anonymous or authenticated) ---
		api.POST("/generate-ideas", optionalAuth, h.GenerateIdeas)
		api.POST("/generate-script", optionalAuth, h.GenerateScript)
		api.GET("/history", optionalAuth, h.GetHistory)

		// --- Auth Routes ---
		api.POST("/auth/register", throttle, h.Register)
		api.POST("/auth/login", throttle, h.Login)
		api.GET("/auth/me", requireAuth, h.Me)
		api.POST("/auth/upgrade", requireAuth, h.Upgrade)

		// --- Protected Routes (Login Required) ---
		api.GET("/user/history", requireAuth, h.GetUserHistory)
		api.GET("/cache-stats", requireAuth, middleware.RequirePremiumOrAdmin(), h.GetCacheStats)
	}

	// --- Admin Routes ---
	admin := router.Group("/admin")
	admin.Use(requireAuth, middleware.RequireAdmin())
	{
		admin.POST("/clear-cache", h.ClearCache)
		admin.GET("/users", h.ListUsers)
		admin.PUT("/user/:id", h.UpdateUser)
		admin.GET("/history/export", h.ExportHistory)
	}

	return router
}
