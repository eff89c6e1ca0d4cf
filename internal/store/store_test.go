package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndRecent(t *testing.T) {
	s := openTestStore(t)

	c := &Conversion{
		SourceType: "url",
		SourceName: "https://example.com/article",
		Voice:      "en-US-AriaNeural",
		Rate:       1.5,
		Optimized:  true,
		Chunks:     3,
		Characters: 4200,
		SessionDir: "article_20260830_120000",
	}
	if err := s.Add(c); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if c.ID == 0 {
		t.Error("Add should backfill ID")
	}
	if c.CreatedAt.IsZero() {
		t.Error("Add should backfill CreatedAt")
	}

	got, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}

	r := got[0]
	if r.SourceType != "url" || r.SourceName != "https://example.com/article" {
		t.Errorf("source mismatch: %+v", r)
	}
	if r.Voice != "en-US-AriaNeural" || r.Rate != 1.5 {
		t.Errorf("voice/rate mismatch: %+v", r)
	}
	if !r.Optimized || r.Chunks != 3 || r.Characters != 4200 {
		t.Errorf("stats mismatch: %+v", r)
	}
	if r.SessionDir != "article_20260830_120000" {
		t.Errorf("session dir mismatch: %s", r.SessionDir)
	}
	if time.Since(r.CreatedAt) > time.Minute {
		t.Errorf("created_at not recent: %v", r.CreatedAt)
	}
}

func TestRecent_OrderAndLimit(t *testing.T) {
	s := openTestStore(t)

	for i := 1; i <= 5; i++ {
		c := &Conversion{
			SourceType: "text",
			Voice:      "en-US-AriaNeural",
			SessionDir: fmt.Sprintf("session_%d", i),
		}
		if err := s.Add(c); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Recent(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	// 最新的记录在前
	if got[0].SessionDir != "session_5" || got[2].SessionDir != "session_3" {
		t.Errorf("wrong order: %s, %s, %s",
			got[0].SessionDir, got[1].SessionDir, got[2].SessionDir)
	}
}

func TestRecent_Empty(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}
