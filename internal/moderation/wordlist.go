package moderation

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// GlobalScope is the cache key for entries not bound to any guild.
const GlobalScope = "global"

const wordCacheTTL = 5 * time.Minute

// WordStore is the persistence dependency for custom words. Injected at
// construction so tests can substitute a fake.
type WordStore interface {
	ListActiveCustomWords(ctx context.Context, guildID string) ([]BadWordEntry, error)
	CreateBadWord(ctx context.Context, entry BadWordEntry, addedBy string) error
	DeleteBadWords(ctx context.Context, word, guildID string) (int64, error)
}

// Clock abstracts time for cache-TTL tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type cachedList struct {
	entries  []BadWordEntry
	loadedAt time.Time
}

type wordCache struct {
	mu    sync.RWMutex
	items map[string]cachedList
}

func newWordCache() *wordCache {
	return &wordCache{items: make(map[string]cachedList)}
}

func (c *wordCache) get(key string, now time.Time) ([]BadWordEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[key]
	if !ok || now.Sub(item.loadedAt) >= wordCacheTTL {
		return nil, false
	}
	return item.entries, true
}

func (c *wordCache) set(key string, entries []BadWordEntry, now time.Time) {
	c.mu.Lock()
	c.items[key] = cachedList{entries: entries, loadedAt: now}
	c.mu.Unlock()
}

func (c *wordCache) invalidate(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func scopeKey(guildID string) string {
	if guildID == "" {
		return GlobalScope
	}
	return guildID
}

// loadWords returns the custom word list for a scope, served from cache while
// fresh. Store failures are fail-open: an empty list is returned, the cache is
// left untouched, and custom-word detection degrades instead of blocking
// message processing.
func (e *Engine) loadWords(ctx context.Context, guildID string) []BadWordEntry {
	key := scopeKey(guildID)
	now := e.clock.Now()

	if entries, ok := e.cache.get(key, now); ok {
		return entries
	}

	rows, err := e.store.ListActiveCustomWords(ctx, guildID)
	if err != nil {
		e.logger.Warn("custom word fetch failed, continuing without custom words",
			zap.String("scope", key), zap.Error(err))
		return nil
	}

	entries := make([]BadWordEntry, 0, len(rows))
	for _, row := range rows {
		word := strings.ToLower(strings.TrimSpace(row.Word))
		if word == "" {
			continue
		}
		severity := row.Severity
		if !severity.Valid() {
			severity = SeverityMedium
		}
		entries = append(entries, BadWordEntry{
			Word:     word,
			Category: CategoryCustom,
			Severity: severity,
			GuildID:  row.GuildID,
		})
	}

	e.cache.set(key, entries, now)
	return entries
}

// AddBadWord normalizes and persists one custom word, then invalidates the
// affected scope so the next load re-fetches.
func (e *Engine) AddBadWord(ctx context.Context, word string, severity Severity, guildID, addedBy string) (BadWordEntry, error) {
	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return BadWordEntry{}, ErrEmptyWord
	}
	if !severity.Valid() {
		return BadWordEntry{}, ErrInvalidSeverity
	}

	entry := BadWordEntry{
		Word:     normalized,
		Category: CategoryCustom,
		Severity: severity,
		GuildID:  guildID,
	}
	if err := e.store.CreateBadWord(ctx, entry, addedBy); err != nil {
		return BadWordEntry{}, err
	}

	e.cache.invalidate(scopeKey(guildID))
	return entry, nil
}

// RemoveBadWord deletes matching rows for (word, scope) and reports whether
// anything was removed. The cache is invalidated regardless of the outcome.
func (e *Engine) RemoveBadWord(ctx context.Context, word, guildID string) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(word))
	defer e.cache.invalidate(scopeKey(guildID))

	if normalized == "" {
		return false, ErrEmptyWord
	}
	removed, err := e.store.DeleteBadWords(ctx, normalized, guildID)
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

// GuildWordList groups the custom entries visible to one guild.
type GuildWordList struct {
	Custom []BadWordEntry
}

// BadWordsForGuild returns the guild's custom words plus global custom words.
func (e *Engine) BadWordsForGuild(ctx context.Context, guildID string) GuildWordList {
	list := GuildWordList{Custom: []BadWordEntry{}}
	list.Custom = append(list.Custom, e.loadWords(ctx, "")...)
	if guildID != "" {
		list.Custom = append(list.Custom, e.loadWords(ctx, guildID)...)
	}
	return list
}
