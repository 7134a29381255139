package server

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muneebexotic/portfolio-api/internal/config"
	"github.com/muneebexotic/portfolio-api/internal/content"
	"github.com/muneebexotic/portfolio-api/internal/form"
	"github.com/muneebexotic/portfolio-api/internal/notify"
	"github.com/muneebexotic/portfolio-api/internal/ratelimit"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []notify.Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg notify.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func testCatalog() *content.Catalog {
	return &content.Catalog{
		Projects: []content.Project{
			{Title: "Alpha", Slug: "alpha", Summary: "A short one."},
			{Title: "Beta", Slug: "beta", Summary: strings.Repeat("long summary ", 30), Featured: true},
			{Title: "Gamma", Slug: "gamma", Summary: "Another short one.", Featured: true},
		},
		Skills: []content.Skill{
			{Name: "Go", Category: "backend", Level: 8},
			{Name: "Flutter", Category: "mobile", Level: 10},
		},
		Posts: []content.Post{
			{Title: "Old", Slug: "old", PublishedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
			{Title: "New", Slug: "new", PublishedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) (http.Handler, *recordingSender, *ratelimit.MemoryStore) {
	t.Helper()

	cfg := &config.Config{
		Server:  config.Server{ListenAddr: ":0", MaxBodyKB: 64},
		Limiter: config.Limiter{Backend: "memory", Max: 5, Window: time.Hour},
		Contact: config.Contact{AllowJSON: true, AllowForm: true},
		Content: config.Content{SummaryLength: 40},
	}
	if mutate != nil {
		mutate(cfg)
	}

	store := ratelimit.NewMemoryStore(cfg.Limiter.Max, cfg.Limiter.Window)
	sender := &recordingSender{}
	pipeline := form.NewPipeline(store, sender)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := New(cfg, logger, pipeline, store, testCatalog())
	return srv.Router(), sender, store
}

type contactBody struct {
	OK      bool              `json:"ok"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func postContact(t *testing.T, h http.Handler, payload string, hdrs map[string]string) (*httptest.ResponseRecorder, contactBody) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/contact", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	for k, v := range hdrs {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body contactBody
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	}
	return rec, body
}

const validPayload = `{"name":"John Doe","email":"john@example.com","message":"This is a valid test message."}`

func TestContactJSONSuccess(t *testing.T) {
	h, sender, _ := newTestServer(t, nil)

	rec, body := postContact(t, h, validPayload, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.OK)
	assert.NotEmpty(t, body.Message)

	require.Equal(t, 1, sender.count())
	msg := sender.msgs[0]
	assert.Equal(t, "John Doe", msg.Name)
	assert.Equal(t, "john@example.com", msg.Email)
	assert.Equal(t, "203.0.113.7", msg.ClientIP)
	assert.Contains(t, msg.Body, "This is a valid test message.")
}

func TestContactFormEncoded(t *testing.T) {
	h, sender, _ := newTestServer(t, nil)

	vals := url.Values{}
	vals.Set("name", "John Doe")
	vals.Set("email", "john@example.com")
	vals.Set("message", "This is a valid test message.")

	req := httptest.NewRequest(http.MethodPost, "/v1/contact", strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, sender.count())
}

func TestContactValidationErrors(t *testing.T) {
	h, sender, _ := newTestServer(t, nil)

	rec, body := postContact(t, h, `{"name":"J","email":"nope","message":"short"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, body.OK)
	assert.Len(t, body.Errors, 3)
	assert.Contains(t, body.Errors, "name")
	assert.Contains(t, body.Errors, "email")
	assert.Contains(t, body.Errors, "message")
	assert.Zero(t, sender.count())
}

func TestContactRateLimitExhaustion(t *testing.T) {
	h, sender, _ := newTestServer(t, nil)

	for i := 0; i < 5; i++ {
		rec, _ := postContact(t, h, validPayload, nil)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec, body := postContact(t, h, validPayload, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.False(t, body.OK)
	assert.Contains(t, body.Errors["general"], "minute")
	assert.Equal(t, 5, sender.count())

	// A different client is unaffected.
	rec, _ = postContact(t, h, validPayload, map[string]string{"X-Forwarded-For": "198.51.100.9"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContactHoneypot(t *testing.T) {
	h, sender, store := newTestServer(t, nil)

	payload := `{"name":"John Doe","email":"john@example.com","message":"This is a valid test message.","website":"http://spam.example"}`
	rec, body := postContact(t, h, payload, nil)

	assert.Equal(t, http.StatusOK, rec.Code, "bots must see a success response")
	assert.True(t, body.OK)
	assert.Zero(t, sender.count())

	st, err := store.Status(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	assert.Zero(t, st.Count, "deflected submissions must not consume quota")
}

func TestContactSendFailure(t *testing.T) {
	h, sender, _ := newTestServer(t, nil)
	sender.err = fmt.Errorf("smtp: 451 temporary failure")

	rec, body := postContact(t, h, validPayload, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, body.OK)
	assert.NotContains(t, body.Errors["general"], "451", "internal cause must not leak")
	assert.NotEmpty(t, body.Errors["general"])
}

func TestContactHMAC(t *testing.T) {
	h, sender, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Contact.Secret = "s3cret"
	})

	rec, _ := postContact(t, h, validPayload, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, sender.count())

	m := hmac.New(sha256.New, []byte("s3cret"))
	m.Write([]byte(validPayload))
	sig := hex.EncodeToString(m.Sum(nil))

	rec, _ = postContact(t, h, validPayload, map[string]string{"X-Signature": sig})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, sender.count())
}

func TestContactPayloadTooLarge(t *testing.T) {
	h, _, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.MaxBodyKB = 1
	})

	huge := fmt.Sprintf(`{"name":"John Doe","email":"john@example.com","message":"%s"}`, strings.Repeat("x", 2048))
	rec, _ := postContact(t, h, huge, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCORS(t *testing.T) {
	h, sender, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.AllowedOrigins = []string{"https://example.com"}
	})

	rec, _ := postContact(t, h, validPayload, map[string]string{"Origin": "https://example.com"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))

	rec, _ = postContact(t, h, validPayload, map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	assert.Equal(t, 1, sender.count())
}

func TestCORSWildcard(t *testing.T) {
	h, _, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.AllowedOrigins = []string{"*"}
	})

	rec, _ := postContact(t, h, validPayload, map[string]string{"Origin": "https://any.origin.example"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	// The reflected decision still depends on the request origin.
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestCORSPreflight(t *testing.T) {
	h, _, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Server.AllowedOrigins = []string{"https://example.com"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/v1/contact", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestContactLimitStatus(t *testing.T) {
	h, _, _ := newTestServer(t, nil)

	get := func() (int, map[string]any) {
		req := httptest.NewRequest(http.MethodGet, "/v1/contact/limit", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		var body map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		return rec.Code, body
	}

	code, body := get()
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])
	assert.EqualValues(t, 5, body["remaining"])
	assert.Nil(t, body["resetAt"])

	rec, _ := postContact(t, h, validPayload, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	code, body = get()
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["count"])
	assert.EqualValues(t, 4, body["remaining"])
	assert.NotNil(t, body["resetAt"])
}

func TestProjectsEndpoint(t *testing.T) {
	h, _, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/projects", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var projects []content.Project
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&projects))
	require.Len(t, projects, 3)
	assert.Equal(t, "beta", projects[0].Slug)
	assert.Equal(t, "gamma", projects[1].Slug)
	assert.Equal(t, "alpha", projects[2].Slug)
	assert.LessOrEqual(t, len([]rune(projects[0].Summary)), 43, "long summaries are truncated")
	assert.True(t, strings.HasSuffix(projects[0].Summary, "..."))

	req = httptest.NewRequest(http.MethodGet, "/v1/projects?featured=true", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&projects))
	require.Len(t, projects, 2)
	for _, p := range projects {
		assert.True(t, p.Featured)
	}
}

func TestSkillsEndpoint(t *testing.T) {
	h, _, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/skills", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var skills []skillView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&skills))
	require.Len(t, skills, 2)
	assert.Equal(t, 80, skills[0].Percent)
	assert.Equal(t, 100, skills[1].Percent)
}

func TestPostsEndpoint(t *testing.T) {
	h, _, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/posts", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var posts []content.Post
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&posts))
	require.Len(t, posts, 2)
	assert.Equal(t, "new", posts[0].Slug)
}

func TestHealth(t *testing.T) {
	h, _, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
