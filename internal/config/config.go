package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/dgallion1/docspell/internal/langtool"
	"github.com/dgallion1/docspell/internal/spellcheck"
)

// DefaultProjectFile is looked up in the working directory by the CLI.
const DefaultProjectFile = ".docspell.yml"

type Config struct {
	Port string

	// Auth
	DocspellAPIKey string

	// Spell checking
	Language         string
	Limit            int
	ReportDir        string
	SkipContexts     []string
	SingleVisitLists bool
	// Dictionary is an extra word list file, one word per line.
	Dictionary  string
	IgnoreWords []string

	// Upload limits
	MaxUploadBytes int64

	// Stored check results
	ResultTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		DocspellAPIKey: os.Getenv("DOCSPELL_API_KEY"),

		Language:         envOr("SPELLCHECK_LANGUAGE", "en-US"),
		Limit:            envInt("SPELLCHECK_LIMIT", 10),
		ReportDir:        envOr("SPELLCHECK_REPORT_DIR", "."),
		SkipContexts:     envList("SPELLCHECK_SKIP_CONTEXTS", []string{"listing"}),
		SingleVisitLists: envBool("SPELLCHECK_SINGLE_VISIT_LISTS", false),
		Dictionary:       os.Getenv("SPELLCHECK_DICTIONARY"),
		IgnoreWords:      envList("SPELLCHECK_IGNORE", nil),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10<<20), // 10MB

		ResultTTL: envDuration("RESULT_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}
	cfg.clamp()
	return cfg
}

func (c *Config) clamp() {
	if c.Limit <= 0 {
		c.Limit = 10
	}
	if c.ReportDir == "" {
		c.ReportDir = "."
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 10 << 20
	}
	if c.ResultTTL <= 0 {
		c.ResultTTL = 1 * time.Hour
	}
}

// projectFile is the YAML layout of .docspell.yml. Pointer fields tell an
// absent key from a zero value.
type projectFile struct {
	Language         *string  `yaml:"language"`
	Limit            *int     `yaml:"limit"`
	ReportDir        *string  `yaml:"report_dir"`
	SkipContexts     []string `yaml:"skip_contexts"`
	IgnoreWords      []string `yaml:"ignore_words"`
	Dictionary       *string  `yaml:"dictionary"`
	SingleVisitLists *bool    `yaml:"single_visit_lists"`
}

// LoadFile overlays the keys present in a YAML project file onto cfg.
// Ignore words are added to those already configured.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read project file: %w", err)
	}
	var pf projectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return fmt.Errorf("parse project file %s: %w", path, err)
	}

	if pf.Language != nil {
		cfg.Language = *pf.Language
	}
	if pf.Limit != nil {
		cfg.Limit = *pf.Limit
	}
	if pf.ReportDir != nil {
		cfg.ReportDir = *pf.ReportDir
	}
	if pf.SkipContexts != nil {
		cfg.SkipContexts = pf.SkipContexts
	}
	cfg.IgnoreWords = append(cfg.IgnoreWords, pf.IgnoreWords...)
	if pf.Dictionary != nil {
		cfg.Dictionary = *pf.Dictionary
	}
	if pf.SingleVisitLists != nil {
		cfg.SingleVisitLists = *pf.SingleVisitLists
	}
	cfg.clamp()
	return nil
}

// Validate checks the settings shared by the CLI and the server.
func (c Config) Validate() error {
	if _, err := langtool.ForCode(c.Language); err != nil {
		return fmt.Errorf("SPELLCHECK_LANGUAGE: %w", err)
	}
	if c.Dictionary != "" {
		if _, err := os.Stat(c.Dictionary); err != nil {
			return fmt.Errorf("SPELLCHECK_DICTIONARY: %w", err)
		}
	}
	return nil
}

// ValidateServer additionally requires the API key.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DocspellAPIKey == "" {
		return fmt.Errorf("DOCSPELL_API_KEY is required")
	}
	return nil
}

// Spellcheck returns the walker settings. Reports are echoed to stdout.
func (c Config) Spellcheck(stdout io.Writer) spellcheck.Config {
	return spellcheck.Config{
		Limit:            c.Limit,
		SkipContexts:     c.SkipContexts,
		SingleVisitLists: c.SingleVisitLists,
		ReportDir:        c.ReportDir,
		IgnoreWords:      c.IgnoreWords,
		Stdout:           stdout,
	}
}

// NewTool builds a rule engine for the configured language, extended with
// the extra dictionary when one is set.
func (c Config) NewTool() (*langtool.Tool, error) {
	lang, err := langtool.ForCode(c.Language)
	if err != nil {
		return nil, err
	}
	if c.Dictionary != "" {
		f, err := os.Open(c.Dictionary)
		if err != nil {
			return nil, fmt.Errorf("open dictionary: %w", err)
		}
		defer f.Close()
		if lang, err = lang.WithWords(f); err != nil {
			return nil, fmt.Errorf("load dictionary %s: %w", c.Dictionary, err)
		}
	}
	return langtool.NewTool(lang), nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
