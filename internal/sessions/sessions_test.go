package sessions

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-lens/internal/analysis"
	"legal-lens/internal/llm"
	"legal-lens/internal/shared/telemetry"
)

func TestStoreLifecycle(t *testing.T) {
	store := NewStore(time.Minute)
	ctx := context.Background()

	sess, err := store.Create(ctx, llm.Credential{Provider: "gemini", APIKey: "g-key"})
	require.NoError(t, err)
	assert.Equal(t, analysis.ModeAI, sess.Mode)
	assert.Equal(t, llm.DefaultGeminiModel, sess.Credential.Model)
	assert.WithinDuration(t, sess.CreatedAt.Add(time.Minute), sess.ExpiresAt, time.Millisecond)

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "g-key", got.Credential.APIKey)

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreExpiry(t *testing.T) {
	store := NewStore(20 * time.Millisecond)
	sess, err := store.Create(context.Background(), llm.Credential{})
	require.NoError(t, err)
	assert.Equal(t, analysis.ModeRuleBased, sess.Mode)

	time.Sleep(40 * time.Millisecond)
	_, err = store.Get(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionJSONNeverContainsKey(t *testing.T) {
	sess, _ := NewStore(time.Minute).Create(context.Background(), llm.Credential{APIKey: "sk-very-secret"})
	raw, err := json.Marshal(sess)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-very-secret")
}

func setupRouter(store *Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(store, false).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestHandlerCreateGetDelete(t *testing.T) {
	telemetry.SetOutput(io.Discard)
	t.Cleanup(func() { telemetry.SetOutput(os.Stdout) })
	store := NewStore(time.Minute)
	router := setupRouter(store)

	body, _ := json.Marshal(map[string]string{"provider": "openai", "apiKey": "sk-test"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.NotContains(t, resp.Body.String(), "sk-test")
	var created sessionResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, analysis.ModeAI, created.Mode)
	assert.True(t, created.HasAPIKey)

	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.AddCookie(cookies[0])
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/session", nil)
	req.AddCookie(cookies[0])
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, 0, store.Count())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.AddCookie(cookies[0])
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHandlerRejectsUnknownProvider(t *testing.T) {
	telemetry.SetOutput(io.Discard)
	t.Cleanup(func() { telemetry.SetOutput(os.Stdout) })
	router := setupRouter(NewStore(time.Minute))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session", bytes.NewReader([]byte(`{"provider":"claude","apiKey":"x"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func resolveWith(t *testing.T, r *Resolver, prepare func(*http.Request)) Resolution {
	t.Helper()
	gin.SetMode(gin.TestMode)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if prepare != nil {
		prepare(req)
	}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return r.Resolve(c)
}

func TestResolverPrecedence(t *testing.T) {
	store := NewStore(time.Minute)
	sess, _ := store.Create(context.Background(), llm.Credential{Provider: "gemini", APIKey: "session-key"})
	r := &Resolver{
		Store:           store,
		DefaultProvider: "openai",
		DefaultModel:    "gpt-4o",
		ConfiguredKeys:  map[string]string{"openai": "env-key"},
	}
	withCookie := func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: sess.ID})
	}

	res := resolveWith(t, r, func(req *http.Request) {
		withCookie(req)
		req.Header.Set("X-LLM-Api-Key", "request-key")
	})
	assert.Equal(t, SourceRequest, res.Source)
	assert.Equal(t, "request-key", res.Credential.APIKey)
	assert.Equal(t, "openai", res.Credential.Provider)
	assert.Equal(t, "gpt-4o", res.Credential.Model)

	res = resolveWith(t, r, withCookie)
	assert.Equal(t, SourceSession, res.Source)
	assert.Equal(t, "session-key", res.Credential.APIKey)
	assert.Equal(t, sess.ID, res.SessionID)

	res = resolveWith(t, r, nil)
	assert.Equal(t, SourceEnv, res.Source)
	assert.Equal(t, "env-key", res.Credential.APIKey)

	res = resolveWith(t, r, func(req *http.Request) {
		req.Header.Set("X-LLM-Provider", "gemini")
	})
	assert.Equal(t, SourceNone, res.Source)
	assert.False(t, res.Credential.Configured())
	assert.Equal(t, llm.DefaultGeminiModel, res.Credential.Model)
}

func TestResolverKeylessSessionFallsBackToConfiguredKey(t *testing.T) {
	store := NewStore(time.Minute)
	sess, _ := store.Create(context.Background(), llm.Credential{Provider: "openai", Model: "gpt-4o"})
	r := &Resolver{
		Store:           store,
		DefaultProvider: "openai",
		ConfiguredKeys:  map[string]string{"openai": "env-key"},
	}

	res := resolveWith(t, r, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: sess.ID})
	})
	assert.Equal(t, SourceEnv, res.Source)
	assert.Equal(t, "env-key", res.Credential.APIKey)
	assert.Equal(t, "gpt-4o", res.Credential.Model)
	assert.Equal(t, sess.ID, res.SessionID)

	r.ConfiguredKeys = nil
	res = resolveWith(t, r, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: sess.ID})
	})
	assert.Equal(t, SourceNone, res.Source)
	assert.False(t, res.Credential.Configured())
}
