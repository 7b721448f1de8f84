package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ResultStatus is the outcome of one check.
type ResultStatus string

const (
	StatusPassed   ResultStatus = "passed"
	StatusMistakes ResultStatus = "mistakes_found"
	StatusFailed   ResultStatus = "failed"
)

// Finding is the JSON form of one spelling mistake.
type Finding struct {
	File        string   `json:"file"`
	Line        string   `json:"line"`
	RuleID      string   `json:"rule_id"`
	Message     string   `json:"message"`
	Text        string   `json:"text"`
	Offset      int      `json:"offset"`
	Suggestions []string `json:"suggestions"`
}

// Result records one finished check.
type Result struct {
	ID          string       `json:"check_id"`
	Filename    string       `json:"filename"`
	Status      ResultStatus `json:"status"`
	ContentHash string       `json:"content_hash"`
	Findings    []Finding    `json:"findings"`
	Report      string       `json:"report,omitempty"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NewResult returns a result with a fresh time-ordered ID.
func NewResult(filename string, content []byte) *Result {
	return &Result{
		ID:          newResultID(),
		Filename:    filename,
		ContentHash: ContentHashHex(content),
		Findings:    []Finding{},
		CreatedAt:   time.Now(),
	}
}

func newResultID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ResultStore is a thread-safe in-memory result registry with TTL eviction.
type ResultStore struct {
	mu      sync.Mutex
	results map[string]*Result
	ttl     time.Duration
}

func NewResultStore(ttl time.Duration) *ResultStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultStore{
		results: make(map[string]*Result),
		ttl:     ttl,
	}
}

func (s *ResultStore) Put(r *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.ID] = r
}

func (s *ResultStore) Get(id string) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results[id]
}

func (s *ResultStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Cleanup removes expired results.
func (s *ResultStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, r := range s.results {
		if now.Sub(r.CreatedAt) > s.ttl {
			delete(s.results, id)
		}
	}
}

// RunCleanup evicts expired results every interval until ctx is done.
func (s *ResultStore) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
