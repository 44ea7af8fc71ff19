package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeClock struct{ now time.Time }

func (f fakeClock) Now() time.Time { return f.now }

// fakeStore is an in-memory WordStore counting fetches.
type fakeStore struct {
	entries    map[string][]BadWordEntry
	listCalls  int
	listErr    error
	createErr  error
	deleteRows int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string][]BadWordEntry)}
}

func (s *fakeStore) ListActiveCustomWords(_ context.Context, guildID string) ([]BadWordEntry, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.entries[guildID], nil
}

func (s *fakeStore) CreateBadWord(_ context.Context, entry BadWordEntry, _ string) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.entries[entry.GuildID] = append(s.entries[entry.GuildID], entry)
	return nil
}

func (s *fakeStore) DeleteBadWords(_ context.Context, word, guildID string) (int64, error) {
	kept := s.entries[guildID][:0]
	var removed int64
	for _, entry := range s.entries[guildID] {
		if entry.Word == word {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	s.entries[guildID] = kept
	if s.deleteRows > 0 {
		return s.deleteRows, nil
	}
	return removed, nil
}

func newTestEngine(store WordStore) *Engine {
	return NewEngine(store, Defaults{}, zap.NewNop())
}

func TestLoadWordsCacheTTL(t *testing.T) {
	store := newFakeStore()
	store.entries["g1"] = []BadWordEntry{{Word: "Badword ", Severity: SeverityHigh, GuildID: "g1"}}
	engine := newTestEngine(store)

	start := time.Unix(0, 0)
	engine.WithClock(fakeClock{now: start})

	words := engine.loadWords(context.Background(), "g1")
	if len(words) != 1 || words[0].Word != "badword" {
		t.Fatalf("expected normalized badword entry, got %v", words)
	}
	engine.loadWords(context.Background(), "g1")
	if store.listCalls != 1 {
		t.Fatalf("expected 1 fetch inside TTL, got %d", store.listCalls)
	}

	engine.WithClock(fakeClock{now: start.Add(wordCacheTTL + time.Second)})
	engine.loadWords(context.Background(), "g1")
	if store.listCalls != 2 {
		t.Fatalf("expected 2 fetches after TTL expiry, got %d", store.listCalls)
	}
}

func TestLoadWordsFailOpen(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("store down")
	engine := newTestEngine(store)

	words := engine.loadWords(context.Background(), "g1")
	if len(words) != 0 {
		t.Fatalf("expected empty list on store failure, got %v", words)
	}

	// Analysis still works against the built-in lists.
	result := engine.AnalyzeContent(context.Background(), "you are an idiot", Options{Sensitivity: SensitivityHigh, GuildID: "g1"})
	if result.IsClean {
		t.Fatalf("expected built-in detection despite store failure")
	}
}

func TestAddWordInvalidatesCache(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)
	engine.WithClock(fakeClock{now: time.Unix(0, 0)})

	if got := engine.loadWords(context.Background(), "guildA"); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}

	if _, err := engine.AddBadWord(context.Background(), "slur", SeverityHigh, "guildA", "mod1"); err != nil {
		t.Fatalf("add word: %v", err)
	}

	words := engine.loadWords(context.Background(), "guildA")
	if len(words) != 1 || words[0].Word != "slur" {
		t.Fatalf("expected new word visible inside TTL window, got %v", words)
	}
}

func TestAddWordValidation(t *testing.T) {
	engine := newTestEngine(newFakeStore())
	if _, err := engine.AddBadWord(context.Background(), "   ", SeverityHigh, "g1", "mod1"); !errors.Is(err, ErrEmptyWord) {
		t.Fatalf("expected ErrEmptyWord, got %v", err)
	}
	if _, err := engine.AddBadWord(context.Background(), "word", Severity("extreme"), "g1", "mod1"); !errors.Is(err, ErrInvalidSeverity) {
		t.Fatalf("expected ErrInvalidSeverity, got %v", err)
	}
}

func TestRemoveWord(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)

	if _, err := engine.AddBadWord(context.Background(), "Gone", SeverityLow, "g1", "mod1"); err != nil {
		t.Fatalf("add word: %v", err)
	}
	removed, err := engine.RemoveBadWord(context.Background(), "gone", "g1")
	if err != nil || !removed {
		t.Fatalf("expected removal, got removed=%v err=%v", removed, err)
	}
	removed, err = engine.RemoveBadWord(context.Background(), "gone", "g1")
	if err != nil || removed {
		t.Fatalf("expected no rows on second removal, got removed=%v err=%v", removed, err)
	}
}
