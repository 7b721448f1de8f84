package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docspell/internal/langtool"
	"github.com/dgallion1/docspell/internal/parser"
	"github.com/dgallion1/docspell/internal/pipeline"
	"github.com/dgallion1/docspell/internal/spellcheck"
)

// handleCheck spell-checks one uploaded document. It answers 200 when the
// document is clean, 422 with the findings when mistakes were found and
// 400 when the document could not be parsed.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	lang := s.lang
	if code := r.FormValue("language"); code != "" {
		if lang, err = langtool.ForCode(code); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	scCfg := s.cfg.Spellcheck(io.Discard)
	if v := r.FormValue("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			scCfg.Limit = n
		}
	}
	if v := r.FormValue("ignore"); v != "" {
		scCfg.IgnoreWords = append(append([]string(nil), scCfg.IgnoreWords...), spellcheck.SplitWords(v)...)
	}

	reportDir, err := os.MkdirTemp("", "docspell-report-*")
	if err != nil {
		jsonError(w, "failed to create report directory", http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(reportDir)
	scCfg.ReportDir = reportDir

	start := time.Now()
	res := s.check(data, filename, lang, scCfg)
	s.metrics.observe(res, strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), "."), time.Since(start).Seconds())
	s.results.Put(res)

	code := http.StatusOK
	switch res.Status {
	case pipeline.StatusMistakes:
		code = http.StatusUnprocessableEntity
	case pipeline.StatusFailed:
		code = http.StatusBadRequest
	}
	s.log.Info("checked document", "check_id", res.ID, "file", filename, "status", res.Status, "findings", len(res.Findings))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(res)
}

// check runs one pass with a walker and rule engine of its own; walkers
// buffer per-pass state and are not shared between requests.
func (s *Server) check(data []byte, filename string, lang *langtool.Language, scCfg spellcheck.Config) *pipeline.Result {
	res := pipeline.NewResult(filename, data)
	walker := spellcheck.New(scCfg, langtool.NewTool(lang), s.log)
	p := pipeline.New(parser.Options{PDFFallback: s.cfg.PDFFallbackPdftotext}, s.log, s.stats, spellcheck.Extension{Walker: walker})

	_, err := p.Convert(bytes.NewReader(data), filename)
	var found *spellcheck.MistakesFoundError
	switch {
	case err == nil:
		res.Status = pipeline.StatusPassed
	case errors.As(err, &found):
		res.Status = pipeline.StatusMistakes
		for _, m := range found.Mistakes {
			res.Findings = append(res.Findings, m.Finding())
		}
		if report, rerr := os.ReadFile(found.ReportPath); rerr == nil {
			res.Report = string(report)
		}
	default:
		res.Status = pipeline.StatusFailed
		res.Error = err.Error()
	}
	return res
}

func (s *Server) handleGetCheck(w http.ResponseWriter, r *http.Request) {
	checkID := chi.URLParam(r, "checkID")
	res := s.results.Get(checkID)
	if res == nil {
		jsonError(w, "check not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"default":   s.lang.Code,
		"supported": langtool.SupportedCodes(),
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
