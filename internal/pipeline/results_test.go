package pipeline

import (
	"context"
	"testing"
	"time"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h := ContentHashHex([]byte{}); h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewResult(t *testing.T) {
	a := NewResult("a.md", []byte("x"))
	b := NewResult("a.md", []byte("x"))
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
	}
	if a.ContentHash != b.ContentHash {
		t.Errorf("expected equal content hashes")
	}
	if a.Findings == nil {
		t.Error("expected non-nil findings slice")
	}
}

func TestResultStore_PutGet(t *testing.T) {
	store := NewResultStore(time.Hour)
	r := NewResult("doc.md", nil)
	store.Put(r)

	got := store.Get(r.ID)
	if got == nil {
		t.Fatal("expected to get result back")
	}
	if got.Filename != "doc.md" {
		t.Errorf("expected filename %q, got %q", "doc.md", got.Filename)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing result")
	}
}

func TestResultStore_TTLCleanup(t *testing.T) {
	store := NewResultStore(50 * time.Millisecond)

	old := &Result{ID: "old", CreatedAt: time.Now().Add(-time.Second)}
	fresh := &Result{ID: "new", CreatedAt: time.Now()}
	store.Put(old)
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired result to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh result to survive cleanup")
	}
}

func TestResultStore_RunCleanupStopsWithContext(t *testing.T) {
	store := NewResultStore(time.Millisecond)
	store.Put(&Result{ID: "old", CreatedAt: time.Now().Add(-time.Second)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.RunCleanup(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for store.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if store.Len() != 0 {
		t.Errorf("expected store to be empty, got %d results", store.Len())
	}
}
