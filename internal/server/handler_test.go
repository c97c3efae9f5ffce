package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"profilelens/internal/config"
	"profilelens/internal/errors"
	"profilelens/internal/observability"
	"profilelens/internal/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	mu     sync.Mutex
	inputs []types.ProfileInput
	err    error
}

func (a *stubAnalyzer) AnalyzeProfile(_ context.Context, input types.ProfileInput) (*types.AnalysisResult, error) {
	a.mu.Lock()
	a.inputs = append(a.inputs, input)
	a.mu.Unlock()

	if a.err != nil {
		return nil, a.err
	}
	return &types.AnalysisResult{
		Score:        80,
		Summary:      "Backend engineer",
		Keywords:     types.NewKeywordSet("Go", "cloud"),
		Strengths:    []string{"Strong positive and confident tone"},
		Improvements: []string{},
		Suggestions:  []string{"Add measurable achievements"},
	}, nil
}

var reportTime = time.Date(2026, time.October, 19, 14, 30, 5, 0, time.UTC)

func newTestServer(t *testing.T, cfg ServerConfig, analyzer *stubAnalyzer) http.Handler {
	t.Helper()

	appCfg := &config.Config{App: config.AppConfig{
		DefaultFormat:    "json",
		SupportedFormats: []string{"json", "text", "markdown"},
	}}
	s := NewServer(appCfg, cfg, errors.Discard())
	s.Analyzer = analyzer
	s.now = func() time.Time { return reportTime }
	t.Cleanup(func() {
		if s.RateLimiter != nil {
			s.RateLimiter.Close()
		}
	})

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{})
	require.NoError(t, err)
	return s.Handler(om)
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const sampleResult = `{"score":72,"summary":"Platform engineer","keywords":["Go","kubernetes"],"strengths":["Clear headline"],"improvements":["Expand the about section"],"suggestions":["Quantify results"]}`

func TestAnalyzeEndpoint(t *testing.T) {
	analyzer := &stubAnalyzer{}
	h := newTestServer(t, ServerConfig{}, analyzer)

	rec := serve(h, postJSON("/analyze", `{"headline":"Engineer","skills":"Go"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result types.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 80, result.Score)
	assert.Equal(t, []string{"Go", "cloud"}, result.Keywords.Slice())

	require.Len(t, analyzer.inputs, 1)
	assert.Equal(t, types.ProfileInput{Headline: "Engineer", Skills: "Go"}, analyzer.inputs[0])
}

func TestAnalyzeEndpointMissingKey(t *testing.T) {
	analyzer := &stubAnalyzer{err: errors.NewConfigError(errors.ErrCodeMissingAPIKey, "API key not configured", nil)}
	h := newTestServer(t, ServerConfig{}, analyzer)

	rec := serve(h, postJSON("/analyze", `{}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"API key not configured"}`, rec.Body.String())
}

func TestAnalyzeEndpointRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name     string
		req      func() *http.Request
		expected int
	}{
		{
			name:     "malformed json",
			req:      func() *http.Request { return postJSON("/analyze", `{"headline":`) },
			expected: http.StatusBadRequest,
		},
		{
			name: "wrong content type",
			req: func() *http.Request {
				req := postJSON("/analyze", `{}`)
				req.Header.Set("Content-Type", "text/plain")
				return req
			},
			expected: http.StatusBadRequest,
		},
		{
			name:     "wrong method",
			req:      func() *http.Request { return httptest.NewRequest(http.MethodGet, "/analyze", nil) },
			expected: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &stubAnalyzer{}
			h := newTestServer(t, ServerConfig{}, analyzer)

			rec := serve(h, tt.req())
			assert.Equal(t, tt.expected, rec.Code)
			assert.Empty(t, analyzer.inputs)
		})
	}
}

func TestAnalyzeEndpointAcceptsCharset(t *testing.T) {
	h := newTestServer(t, ServerConfig{}, &stubAnalyzer{})

	req := postJSON("/analyze", `{"headline":"Engineer"}`)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	assert.Equal(t, http.StatusOK, serve(h, req).Code)
}

func TestAnalyzeEndpointBodyLimit(t *testing.T) {
	h := newTestServer(t, ServerConfig{MaxRequestSize: 16}, &stubAnalyzer{})

	rec := serve(h, postJSON("/analyze", `{"headline":"`+strings.Repeat("x", 64)+`"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "request body too large")
}

func TestReportEndpoint(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		filename    string
		contentType string
		contains    []string
	}{
		{
			name:        "default markdown",
			filename:    "linkedin_profile_analysis_20261019_143005.md",
			contentType: "text/markdown; charset=utf-8",
			contains: []string{
				"# LinkedIn Profile Analysis Report",
				"_Generated on: October 19, 2026 14:30_",
				"## Profile Score: 72%",
				"`Go`, `kubernetes`",
			},
		},
		{
			name:        "text",
			query:       "?format=text",
			filename:    "linkedin_profile_analysis_20261019_143005.txt",
			contentType: "text/plain; charset=utf-8",
			contains:    []string{"Profile Score: 72%", "  - Quantify results"},
		},
		{
			name:        "json",
			query:       "?format=json",
			filename:    "linkedin_profile_analysis_20261019_143005.json",
			contentType: "application/json",
			contains:    []string{`"generated_at": "2026-10-19T14:30:05Z"`, `"score": 72`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, ServerConfig{}, &stubAnalyzer{})

			rec := serve(h, postJSON("/report"+tt.query, sampleResult))

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, `attachment; filename="`+tt.filename+`"`, rec.Header().Get("Content-Disposition"))
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			for _, want := range tt.contains {
				assert.Contains(t, rec.Body.String(), want)
			}
		})
	}
}

func TestReportEndpointRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "unsupported format", path: "/report?format=pdf", body: sampleResult},
		{name: "score out of range", path: "/report", body: `{"score":140}`},
		{name: "negative score", path: "/report", body: `{"score":-1}`},
		{name: "malformed json", path: "/report", body: `{"score":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, ServerConfig{}, &stubAnalyzer{})

			rec := serve(h, postJSON(tt.path, tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, rec.Header().Get("Content-Disposition"))
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		value    string
		expected int
	}{
		{name: "missing key", expected: http.StatusUnauthorized},
		{name: "invalid key", header: "X-API-Key", value: "nope", expected: http.StatusUnauthorized},
		{name: "x-api-key", header: "X-API-Key", value: "secret-key-1", expected: http.StatusOK},
		{name: "bearer token", header: "Authorization", value: "Bearer secret-key-1", expected: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, ServerConfig{APIKeys: []string{"secret-key-1", ""}}, &stubAnalyzer{})

			req := postJSON("/analyze", `{}`)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			assert.Equal(t, tt.expected, serve(h, req).Code)
		})
	}
}

func TestHealthIsNotAuthenticated(t *testing.T) {
	h := newTestServer(t, ServerConfig{APIKeys: []string{"secret-key-1"}}, &stubAnalyzer{})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "profilelens", body["service"])
}

func TestRateLimitMiddleware(t *testing.T) {
	rateLimit := &config.RateLimitConfig{Enabled: true, RequestsPerMin: 1, BurstCapacity: 2, ByIP: true}
	h := newTestServer(t, ServerConfig{RateLimit: rateLimit}, &stubAnalyzer{})

	assert.Equal(t, http.StatusOK, serve(h, postJSON("/analyze", `{}`)).Code)
	assert.Equal(t, http.StatusOK, serve(h, postJSON("/analyze", `{}`)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, postJSON("/analyze", `{}`)).Code)

	other := postJSON("/analyze", `{}`)
	other.RemoteAddr = "198.51.100.7:4000"
	assert.Equal(t, http.StatusOK, serve(h, other).Code)

	stats := serve(h, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, stats.Code)
	var body struct {
		RateLimiting map[string]any `json:"rate_limiting"`
	}
	require.NoError(t, json.Unmarshal(stats.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body.RateLimiting["rejected_requests"])
	assert.EqualValues(t, 2, body.RateLimiting["active_limiters"])
}

func TestRequestIDMiddleware(t *testing.T) {
	h := newTestServer(t, ServerConfig{}, &stubAnalyzer{})

	t.Run("assigns a new id", func(t *testing.T) {
		rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
		_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
		assert.NoError(t, err)
	})

	t.Run("echoes a valid id", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, id)
		assert.Equal(t, id, serve(h, req).Header().Get(RequestIDHeader))
	})

	t.Run("replaces an invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(RequestIDHeader, "not-a-uuid")
		got := serve(h, req).Header().Get(RequestIDHeader)
		assert.NotEqual(t, "not-a-uuid", got)
		_, err := uuid.Parse(got)
		assert.NoError(t, err)
	})
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{name: "remote addr", remoteAddr: "192.0.2.1:1234", expected: "192.0.2.1"},
		{name: "forwarded for", remoteAddr: "192.0.2.1:1234", headers: map[string]string{"X-Forwarded-For": "garbage, 203.0.113.9, 10.0.0.1"}, expected: "203.0.113.9"},
		{name: "real ip", remoteAddr: "192.0.2.1:1234", headers: map[string]string{"X-Real-IP": "203.0.113.10"}, expected: "203.0.113.10"},
		{name: "invalid real ip", remoteAddr: "192.0.2.1:1234", headers: map[string]string{"X-Real-IP": "nope"}, expected: "192.0.2.1"},
		{name: "no port", remoteAddr: "192.0.2.1", expected: "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, getClientIP(req))
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "abcdefgh****", maskAPIKey("abcdefghijkl"))
}
