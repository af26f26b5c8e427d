package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/contentai/contentai-golang/internal/ai"
	"github.com/contentai/contentai-golang/internal/auth"
	"github.com/contentai/contentai-golang/internal/cache"
	"github.com/contentai/contentai-golang/internal/database/dbtest"
	"github.com/contentai/contentai-golang/internal/generation"
	"github.com/contentai/contentai-golang/internal/handlers"
	"github.com/contentai/contentai-golang/internal/logging"
	"github.com/contentai/contentai-golang/internal/middleware"
	"github.com/contentai/contentai-golang/internal/models"
	"github.com/contentai/contentai-golang/internal/quota"
	"github.com/contentai/contentai-golang/internal/routes"
	"github.com/contentai/contentai-golang/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	router *gin.Engine
	store  *store.Store
}

func newApp(t *testing.T, gen ai.Generator) *testApp {
	t.Helper()
	return newAppWithLimiter(t, gen, middleware.NewRateLimiter(1000, 1000))
}

func newAppWithLimiter(t *testing.T, gen ai.Generator, limiter *middleware.RateLimiter) *testApp {
	t.Helper()

	st := store.New(dbtest.New(t))
	caches, err := cache.New(100)
	require.NoError(t, err)
	log := logging.Nop()
	ledger := quota.NewLedger(st.Generations, quota.Limits{AnonymousDaily: 3, FreeDaily: 10})

	h := &handlers.Handlers{
		Store:      st,
		Generation: generation.NewService(st, ledger, caches, gen, log),
		Caches:     caches,
		Issuer:     auth.NewIssuer([]byte("test-secret"), time.Hour),
		Log:        log,
	}
	router := routes.SetupRouter(h, routes.Options{
		CORSOrigins: []string{"http://localhost:5000"},
		RateLimiter: limiter,
	})
	return &testApp{router: router, store: st}
}

type request struct {
	method, path, token, ip string
	body                    any
}

func (a *testApp) do(t *testing.T, r request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var body bytes.Buffer
	if r.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(r.body))
	}
	req := httptest.NewRequest(r.method, r.path, &body)
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.ip != "" {
		req.RemoteAddr = r.ip + ":40000"
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (a *testApp) register(t *testing.T, email string) string {
	t.Helper()
	w, body := a.do(t, request{method: http.MethodPost, path: "/api/auth/register",
		body: gin.H{"email": email, "password": "secret123", "name": "Tester"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return body["access_token"].(string)
}

// promote flips flags directly in the store and returns a fresh token.
func (a *testApp) promote(t *testing.T, email string, premium, admin bool) string {
	t.Helper()
	token := a.register(t, email)
	u, err := a.store.Users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	_, err = a.store.Users.SetFlags(context.Background(), u.ID, &premium, &admin)
	require.NoError(t, err)
	return token
}

func ideasBody(count int) gin.H {
	return gin.H{"niche": "tech", "audience": "teens", "count": count}
}

func TestGenerateIdeas_FallbackWhenAIUnavailable(t *testing.T) {
	app := newApp(t, ai.NewFallback())

	w, body := app.do(t, request{method: http.MethodPost, path: "/api/generate-ideas", body: ideasBody(2)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, false, body["ai_generated"])
	assert.Equal(t, false, body["cached"])
	assert.Equal(t, "tech", body["niche"])
	assert.EqualValues(t, 2, body["count"])
	assert.EqualValues(t, 2, body["remaining"])
	assert.NotZero(t, body["history_id"])
	ideas := body["ideas"].([]any)
	require.Len(t, ideas, 2)
	assert.Equal(t, "Reação engraçada de tech para teens", ideas[0].(map[string]any)["title"])
}

func TestGenerateIdeas_BindErrorMessages(t *testing.T) {
	app := newApp(t, ai.NewFallback())

	tests := []struct {
		body any
		want string
	}{
		{gin.H{"niche": "tech", "audience": "teens", "count": "2"}, "count must be of type int"},
		{gin.H{"audience": "teens"}, "niche is required"},
		{gin.H{"niche": "tech"}, "audience is required"},
	}
	for _, tt := range tests {
		w, body := app.do(t, request{method: http.MethodPost, path: "/api/generate-ideas", body: tt.body})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, tt.want, body["error"])
	}

	w, body := app.do(t, request{method: http.MethodPost, path: "/api/auth/register",
		body: gin.H{"email": "a@example.com", "password": "123"}})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "password must be at least 6 characters", body["error"])
}

func TestGenerateIdeas_DefaultsAndValidation(t *testing.T) {
	app := newApp(t, ai.NewFallback())

	w, body := app.do(t, request{method: http.MethodPost, path: "/api/generate-ideas",
		body: gin.H{"niche": "tech", "audience": "teens"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["ideas"], generation.DefaultIdeas)

	for _, b := range []gin.H{
		{"audience": "teens"},
		{"niche": "tech"},
		{"niche": "tech", "audience": "teens", "count": 0},
		{"niche": "tech", "audience": "teens", "count": 11},
	} {
		w, body := app.do(t, request{method: http.MethodPost, path: "/api/generate-ideas", body: b})
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", b)
		assert.Equal(t, "INVALID_INPUT", body["code"])
	}
}

func TestAnonymousQuota(t *testing.T) {
	app := newApp(t, ai.NewFallback())

	for i := 0; i < 3; i++ {
		w, _ := app.do(t, request{method: http.MethodPost, path: "/api/generate-ideas", ip: "198.51.100.7", body: ideasBody(1)})
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w, body := app.do(t, request{method: http.MethodPost, path: "/api/generate-ideas", ip: "198.51.100.7", body: ideasBody(1)})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "QUOTA_EXCEEDED", body["code"])
	assert.Equal(t, true, body["requires_auth"])
	assert.Equal(t, models.TierAnonymous, body["tier"])

	// a different client is unaffected
	w, _ = app.do(t, request{method: http.MethodPost, path: "/api/generate-ideas", ip: "198.51.100.8", body: ideasBody(1)})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFreeUserQuota(t *testing.T) {
	app := newApp(t, ai.NewFallback())
	token := app.register(t, "free@example.com")

	for i := 0; i < 10; i++ {
		w, _ := app.do(t, request{method: http.MethodPost, path: "/api/generate-ideas", token: token, body: ideasBody(1)})
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w, body := app.do(t, request{method: http.MethodPost, path: "/api/generate-ideas", token: token, body: ideasBody(1)})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "QUOTA_EXCEEDED", body["code"])
	_, present := body["requires_auth"]
	assert.False(t, present)
	assert.EqualValues(t, 10, body["limit"])

	w, body = app.do(t, request{method: http.MethodGet, path: "/api/user/history?per_page=100", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 10, body["total"])
}

func TestFreeUserQuota_NotThrottledAtDefaultRate(t *testing.T) {
	// RATE_LIMIT_RPS and RATE_LIMIT_BURST defaults
	app := newAppWithLimiter(t, ai.NewFallback(), middleware.NewRateLimiter(5, 10))
	token := app.register(t, "burst@example.com")

	for i := 0; i < 10; i++ {
		w, body := app.do(t, request{method: http.MethodPost, path: "/api/generate-ideas", token: token, body: ideasBody(1)})
		require.Equal(t, http.StatusOK, w.Code, "request %d: %v", i+1, body)
	}

	w, body := app.do(t, request{method: http.MethodPost, path: "/api/generate-ideas", token: token, body: ideasBody(1)})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "QUOTA_EXCEEDED", body["code"])
}

func TestImproveIdea_Throttled(t *testing.T) {
	app := newAppWithLimiter(t, ai.NewFallback(), middleware.NewRateLimiter(0.001, 2))

	for i := 0; i < 2; i++ {
		w, _ := app.do(t, request{method: http.MethodPost, path: "/api/improve-idea", body: gin.H{"idea": "Gato DJ"}})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w, body := app.do(t, request{method: http.MethodPost, path: "/api/improve-idea", body: gin.H{"idea": "Gato DJ"}})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", body["code"])
}

func TestPremiumIsUnlimited(t *testing.T) {
	app := newApp(t, ai.NewFallback())
	token := app.promote(t, "vip@example.com", true, false)

	for i := 0; i < 12; i++ {
		w, body := app.do(t, request{method: http.MethodPost, path: "/api/generate-script", token: token, body: gin.H{"idea": "Gato DJ"}})
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.EqualValues(t, -1, body["remaining"])
	}
}

func TestGenerateScript(t *testing.T) {
	app := newApp(t, ai.NewFallback())

	w, body := app.do(t, request{method: http.MethodPost, path: "/api/generate-script", body: gin.H{"idea": "Gato DJ na festa"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Gato DJ na festa", body["idea"])
	assert.Contains(t, body["script"], "ROTEIRO DETALHADO")
	assert.Equal(t, false, body["ai_generated"])

	w, _ = app.do(t, request{method: http.MethodPost, path: "/api/generate-script", body: gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImproveIdea(t *testing.T) {
	app := newApp(t, ai.NewFallback())

	w, body := app.do(t, request{method: http.MethodPost, path: "/api/improve-idea", body: gin.H{"idea": "Gato DJ"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[Melhorado] Gato DJ", body["improved_title"])
	assert.Equal(t, false, body["ai_generated"])

	w, _ = app.do(t, request{method: http.MethodPost, path: "/api/improve-idea", body: gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// improving does not consume quota
	_, total, err := app.store.Generations.ListAll(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	app := newApp(t, ai.NewFallback())
	app.register(t, "dup@example.com")

	w, body := app.do(t, request{method: http.MethodPost, path: "/api/auth/register",
		body: gin.H{"email": "DUP@example.com", "password": "another123"}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", body["code"])

	counts, err := app.store.Users.Counts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts.Total)
}

func TestRegister_Validation(t *testing.T) {
	app := newApp(t, ai.NewFallback())

	for _, b := range []gin.H{
		{"email": "not-an-email", "password": "secret123"},
		{"email": "a@example.com", "password": "123"},
		{"password": "secret123"},
	} {
		w, _ := app.do(t, request{method: http.MethodPost, path: "/api/auth/register", body: b})
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", b)
	}
}

func TestLoginMeAndUpgrade(t *testing.T) {
	app := newApp(t, ai.NewFallback())
	app.register(t, "ana@example.com")

	w, _ := app.do(t, request{method: http.MethodPost, path: "/api/auth/login",
		body: gin.H{"email": "ana@example.com", "password": "wrong-password"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = app.do(t, request{method: http.MethodPost, path: "/api/auth/login",
		body: gin.H{"email": "nobody@example.com", "password": "secret123"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := app.do(t, request{method: http.MethodPost, path: "/api/auth/login",
		body: gin.H{"email": "ana@example.com", "password": "secret123"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bearer", body["token_type"])
	assert.EqualValues(t, 3600, body["expires_in"])
	token := body["access_token"].(string)
	user := body["user"].(map[string]any)
	assert.NotNil(t, user["last_login"])
	_, leaked := user["password_hash"]
	assert.False(t, leaked)

	w, body = app.do(t, request{method: http.MethodGet, path: "/api/auth/me", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.TierFree, body["tier"])
	assert.Equal(t, "Tester", body["user"].(map[string]any)["name"])

	w, _ = app.do(t, request{method: http.MethodGet, path: "/api/auth/me"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = app.do(t, request{method: http.MethodPost, path: "/api/auth/upgrade", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.TierPremium, body["tier"])
	assert.Equal(t, true, body["user"].(map[string]any)["is_premium"])
}

func TestHistory_ScopedToCaller(t *testing.T) {
	app := newApp(t, ai.NewFallback())
	token := app.register(t, "h@example.com")

	for i := 0; i < 2; i++ {
		app.do(t, request{method: http.MethodPost, path: "/api/generate-ideas", ip: "192.0.2.50", body: ideasBody(1)})
	}
	app.do(t, request{method: http.MethodPost, path: "/api/generate-script", ip: "192.0.2.50", token: token, body: gin.H{"idea": "x"}})

	w, body := app.do(t, request{method: http.MethodGet, path: "/api/history?page=1&per_page=1", ip: "192.0.2.50"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["total"])
	assert.EqualValues(t, 2, body["pages"])
	history := body["history"].([]any)
	require.Len(t, history, 1)
	assert.Equal(t, "ideas", history[0].(map[string]any)["type"])

	w, body = app.do(t, request{method: http.MethodGet, path: "/api/history", ip: "192.0.2.50", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total"])
	record := body["history"].([]any)[0].(map[string]any)
	assert.Equal(t, "script", record["type"])
	assert.Equal(t, "x", record["data"].(map[string]any)["idea"])

	w, _ = app.do(t, request{method: http.MethodGet, path: "/api/history?per_page=500"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = app.do(t, request{method: http.MethodGet, path: "/api/history?page=0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = app.do(t, request{method: http.MethodGet, path: "/api/user/history"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFeedbackAndStatistics(t *testing.T) {
	app := newApp(t, ai.NewFallback())

	w, body := app.do(t, request{method: http.MethodPost, path: "/api/feedback", body: gin.H{"message": "Adorei", "rating": 5}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotZero(t, body["feedback_id"])

	w, _ = app.do(t, request{method: http.MethodPost, path: "/api/feedback", body: gin.H{"message": "ok", "rating": 9}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = app.do(t, request{method: http.MethodPost, path: "/api/feedback", body: gin.H{"rating": 3}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	app.do(t, request{method: http.MethodPost, path: "/api/generate-ideas", body: ideasBody(1)})
	app.do(t, request{method: http.MethodPost, path: "/api/generate-script", body: gin.H{"idea": "y"}})
	app.register(t, "s@example.com")

	w, body = app.do(t, request{method: http.MethodGet, path: "/api/statistics"})
	require.Equal(t, http.StatusOK, w.Code)
	stats := body["statistics"].(map[string]any)
	assert.EqualValues(t, 1, stats["total_ideas_generated"])
	assert.EqualValues(t, 1, stats["total_scripts_generated"])
	assert.EqualValues(t, 1, stats["total_feedbacks"])
	assert.EqualValues(t, 1, body["users"].(map[string]any)["total"])

	w, body = app.do(t, request{method: http.MethodGet, path: "/api/health"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["ai_configured"])
}

func TestCacheEndpoints(t *testing.T) {
	app := newApp(t, ai.NewFallback())
	free := app.register(t, "free@example.com")
	premium := app.promote(t, "premium@example.com", true, false)
	admin := app.promote(t, "admin@example.com", false, true)

	w, _ := app.do(t, request{method: http.MethodGet, path: "/api/cache-stats"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = app.do(t, request{method: http.MethodGet, path: "/api/cache-stats", token: free})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, body := app.do(t, request{method: http.MethodGet, path: "/api/cache-stats", token: premium})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, body["cache"], "generate_ideas")

	w, _ = app.do(t, request{method: http.MethodPost, path: "/admin/clear-cache", token: premium})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, body = app.do(t, request{method: http.MethodPost, path: "/admin/clear-cache", token: admin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cache cleared", body["message"])
}

func TestAdminUsers(t *testing.T) {
	app := newApp(t, ai.NewFallback())
	admin := app.promote(t, "admin@example.com", false, true)
	app.register(t, "bob@example.com")
	bob, err := app.store.Users.GetByEmail(context.Background(), "bob@example.com")
	require.NoError(t, err)

	w, body := app.do(t, request{method: http.MethodGet, path: "/admin/users", token: admin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["total"])

	path := "/admin/user/" + strconv.FormatInt(bob.ID, 10)
	w, body = app.do(t, request{method: http.MethodPut, path: path, token: admin, body: gin.H{"is_premium": true}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["user"].(map[string]any)["is_premium"])
	assert.Equal(t, false, body["user"].(map[string]any)["is_admin"])

	w, _ = app.do(t, request{method: http.MethodPut, path: path, token: admin, body: gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = app.do(t, request{method: http.MethodPut, path: "/admin/user/abc", token: admin, body: gin.H{"is_admin": true}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = app.do(t, request{method: http.MethodPut, path: "/admin/user/9999", token: admin, body: gin.H{"is_admin": true}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminExportHistory(t *testing.T) {
	app := newApp(t, ai.NewFallback())
	admin := app.promote(t, "admin@example.com", false, true)

	app.do(t, request{method: http.MethodPost, path: "/api/generate-ideas", body: ideasBody(2)})
	app.do(t, request{method: http.MethodPost, path: "/api/generate-script", token: admin, body: gin.H{"idea": "Gato DJ"}})

	w, _ := app.do(t, request{method: http.MethodGet, path: "/admin/history/export", token: admin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Histórico")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Tipo", rows[0][1])
	assert.Equal(t, "script", rows[1][1])
	assert.Equal(t, "Gato DJ", rows[1][5])
	assert.Equal(t, "tech / teens (2 ideias)", rows[2][5])
}
