package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docspell/internal/config"
	"github.com/dgallion1/docspell/internal/langtool"
	"github.com/dgallion1/docspell/internal/pipeline"
)

const testKey = "test-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		DocspellAPIKey: testKey,
		Language:       "en-US",
		Limit:          10,
		SkipContexts:   []string{"listing"},
		MaxUploadBytes: 1 << 20,
	}
	return NewServer(langtool.AmericanEnglish(), pipeline.NewResultStore(time.Hour), pipeline.NewStats(time.Hour),
		slog.New(slog.DiscardHandler), cfg)
}

func uploadRequest(t *testing.T, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/check", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+testKey)
	return req
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) pipeline.Result {
	t.Helper()
	var res pipeline.Result
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
	return res
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats/checks", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats/checks", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheck_CleanDocument(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, "notes.txt", "This document is short.\n", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeResult(t, rec)
	assert.Equal(t, pipeline.StatusPassed, res.Status)
	assert.Empty(t, res.Findings)
	assert.Empty(t, res.Report)
	assert.NotEmpty(t, res.ID)
}

func TestCheck_MistakesFound(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, "guide.md", "# Guide\n\n## Setup\n\nThis paragraf is short.\n", nil))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	res := decodeResult(t, rec)
	assert.Equal(t, pipeline.StatusMistakes, res.Status)
	require.Len(t, res.Findings, 1)
	f := res.Findings[0]
	assert.Equal(t, "guide.md", f.File)
	assert.Equal(t, "3", f.Line)
	assert.Equal(t, "paragraf", f.Text)
	assert.Contains(t, f.Suggestions, "paragraph")
	assert.True(t, strings.HasPrefix(res.Report, "guide.md:3: Possible spelling mistake found.\n"))

	// The stored result is retrievable by ID.
	req := httptest.NewRequest(http.MethodGet, "/api/checks/"+res.ID, nil)
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, res.ID, decodeResult(t, rec).ID)
}

func TestCheck_IgnoreField(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, "notes.txt", "This paragraf is short.\n", map[string]string{"ignore": "paragraf"}))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCheck_LanguageField(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, "notes.txt", "The colour is red.\n", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, "notes.txt", "The colour is red.\n", map[string]string{"language": "en-GB"}))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, "notes.txt", "text", map[string]string{"language": "xx-YY"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheck_UnsupportedFileType(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, "image.png", "binary", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported file type")
}

func TestCheck_ParseFailureIsStored(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, "broken.docx", "not a zip", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	res := decodeResult(t, rec)
	assert.Equal(t, pipeline.StatusFailed, res.Status)
	assert.Contains(t, res.Error, "parse docx")
	assert.Equal(t, 1, s.results.Len())
}

func TestCheck_FileTooLarge(t *testing.T) {
	s := newTestServer(t)
	s.cfg.MaxUploadBytes = 8
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, uploadRequest(t, "notes.txt", "far more than eight bytes", nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestGetCheck_NotFound(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/checks/missing", nil)
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckStatsAndMetrics(t *testing.T) {
	s := newTestServer(t)
	s.ServeHTTP(httptest.NewRecorder(), uploadRequest(t, "a.txt", "This is fine.\n", nil))
	s.ServeHTTP(httptest.NewRecorder(), uploadRequest(t, "b.txt", "This is fnie.\n", nil))

	req := httptest.NewRequest(http.MethodGet, "/api/stats/checks", nil)
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Language      string                 `json:"language"`
		StoredResults int                    `json:"stored_results"`
		Stats         pipeline.StatsSnapshot `json:"stats"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "en-US", body.Language)
	assert.Equal(t, 2, body.StoredResults)
	assert.Equal(t, 2, body.Stats.Count)
	assert.Equal(t, 1, body.Stats.Failed, "a pass that found mistakes counts as failed")

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `docspell_checks_total{status="mistakes_found"} 1`)
	assert.Contains(t, rec.Body.String(), `docspell_checks_total{status="passed"} 1`)
	assert.Contains(t, rec.Body.String(), "docspell_check_duration_seconds_bucket")
}

func TestLanguages(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/languages", nil)
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"default":"en-US"`)
	assert.Contains(t, rec.Body.String(), "en-GB")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct{ in, want string }{
		{"guide.md", "guide.md"},
		{"../../etc/passwd.txt", "passwd.txt"},
		{"dir/notes.txt", "notes.txt"},
		{"", "unnamed"},
		{"a..b.txt", "a_b.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), tt.in)
	}
}

func TestAuthMiddleware_Challenge(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/languages", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Bearer realm="docspell"`, rec.Header().Get("WWW-Authenticate"))
	assert.JSONEq(t, `{"error":"missing authorization"}`, rec.Body.String())
}
