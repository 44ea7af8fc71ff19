package moderation

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Defaults applies to guilds without saved settings and to zero-value fields
// at construction time.
type Defaults struct {
	Sensitivity                 Sensitivity
	ActionType                  Action
	EnableScriptTransliteration bool
}

// Engine is the content-moderation text-analysis engine. One instance per
// process; all dependencies are constructor-injected.
type Engine struct {
	store    WordStore
	logger   *zap.Logger
	clock    Clock
	cache    *wordCache
	defaults Defaults

	settingsMu sync.RWMutex
	settings   map[string]GuildSettings
}

// NewEngine creates an engine around the given word store.
func NewEngine(store WordStore, defaults Defaults, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaults.Sensitivity == "" {
		defaults.Sensitivity = SensitivityMedium
	}
	if defaults.ActionType == "" {
		defaults.ActionType = ActionDelete
	}
	return &Engine{
		store:    store,
		logger:   logger,
		clock:    realClock{},
		cache:    newWordCache(),
		defaults: defaults,
		settings: make(map[string]GuildSettings),
	}
}

// WithClock swaps the time source, for TTL tests.
func (e *Engine) WithClock(clock Clock) {
	e.clock = clock
}

// SaveGuildSettings replaces a guild's settings wholesale. Last write wins.
func (e *Engine) SaveGuildSettings(guildID string, settings GuildSettings) {
	settings.GuildID = guildID
	settings.Sensitivity = NormalizeSensitivity(string(settings.Sensitivity))
	if settings.ActionType == "" {
		settings.ActionType = e.defaults.ActionType
	}
	e.settingsMu.Lock()
	e.settings[guildID] = settings
	e.settingsMu.Unlock()
}

// GetGuildSettings returns a guild's settings, or defaults when none were saved.
func (e *Engine) GetGuildSettings(guildID string) GuildSettings {
	e.settingsMu.RLock()
	settings, ok := e.settings[guildID]
	e.settingsMu.RUnlock()
	if ok {
		return settings
	}
	return GuildSettings{
		GuildID:                     guildID,
		Enabled:                     true,
		EnableScriptTransliteration: e.defaults.EnableScriptTransliteration,
		ActionType:                  e.defaults.ActionType,
		Sensitivity:                 e.defaults.Sensitivity,
	}
}

// ShouldMonitorChannel reports whether a channel is subject to moderation.
// An empty monitored list means every channel is monitored.
func (e *Engine) ShouldMonitorChannel(guildID, channelID string) bool {
	settings := e.GetGuildSettings(guildID)
	if len(settings.MonitoredChannelIDs) == 0 {
		return true
	}
	for _, id := range settings.MonitoredChannelIDs {
		if id == channelID {
			return true
		}
	}
	return false
}

// IsUserExcluded reports whether any of the member's roles is excluded.
func (e *Engine) IsUserExcluded(guildID string, roleIDs []string) bool {
	settings := e.GetGuildSettings(guildID)
	for _, excluded := range settings.ExcludedRoleIDs {
		for _, role := range roleIDs {
			if role == excluded {
				return true
			}
		}
	}
	return false
}

// AnalyzeContent classifies one message against the built-in and custom word
// lists. It never returns an error: malformed or empty input yields a clean
// result and store failures degrade fail-open.
func (e *Engine) AnalyzeContent(ctx context.Context, text string, opts Options) AnalysisResult {
	if strings.TrimSpace(text) == "" {
		return cleanResult()
	}
	sensitivity := NormalizeSensitivity(string(opts.Sensitivity))

	words := e.candidateWords(ctx, opts.GuildID)
	if len(words) == 0 {
		return cleanResult()
	}

	variants := Variants(text, opts.EnableScriptTransliteration)
	threshold := confidenceThreshold(sensitivity)

	detections := make([]Detection, 0, 2)
	for _, entry := range words {
		best, ok := e.bestMatch(variants, entry.Word)
		if !ok || best.confidence < threshold {
			continue
		}
		detections = append(detections, Detection{
			Word:           entry.Word,
			Category:       entry.Category,
			Severity:       entry.Severity,
			Confidence:     best.confidence,
			Method:         best.method,
			MatchedVariant: best.variant,
		})
	}
	if len(detections) == 0 {
		return cleanResult()
	}

	sort.SliceStable(detections, func(i, j int) bool {
		return detections[i].Confidence > detections[j].Confidence
	})

	maxSeverity := SeverityLow
	detected := make([]string, 0, len(detections))
	for _, d := range detections {
		detected = append(detected, d.Word)
		if d.Severity.rank() > maxSeverity.rank() {
			maxSeverity = d.Severity
		}
	}

	// Detections below the flag bar are still reported; IsClean carries the
	// policy decision.
	return AnalysisResult{
		IsClean:           !shouldFlag(sensitivity, maxSeverity, detections),
		DetectedWords:     detected,
		DetectedDetails:   detections,
		Severity:          maxSeverity,
		Confidence:        accumulateConfidence(detections),
		RecommendedAction: recommendAction(maxSeverity, len(detections)),
	}
}

type variantMatch struct {
	confidence float64
	method     string
	variant    string
}

// bestMatch runs every matcher across every variant and keeps the single
// highest-confidence hit for the word.
func (e *Engine) bestMatch(variants []string, word string) (variantMatch, bool) {
	best := variantMatch{}
	found := false
	for _, variant := range variants {
		res, ok := detectWord(variant, word)
		if !ok {
			continue
		}
		if res.confidence > best.confidence {
			best = variantMatch{confidence: res.confidence, method: res.method, variant: variant}
			found = true
			if best.confidence >= directConfidence {
				return best, true
			}
		}
	}
	return best, found
}

// candidateWords merges the built-in lists, global custom words, guild custom
// words, and the guild's inline custom-word settings, deduplicated by word.
func (e *Engine) candidateWords(ctx context.Context, guildID string) []BadWordEntry {
	out := make([]BadWordEntry, 0, len(builtinWords)+8)
	seen := make(map[string]struct{}, len(builtinWords)+8)

	add := func(entry BadWordEntry) {
		if entry.Word == "" {
			return
		}
		if _, dup := seen[entry.Word]; dup {
			return
		}
		seen[entry.Word] = struct{}{}
		out = append(out, entry)
	}

	for _, entry := range builtinWords {
		add(entry)
	}
	for _, entry := range e.loadWords(ctx, "") {
		add(entry)
	}
	if guildID != "" {
		for _, entry := range e.loadWords(ctx, guildID) {
			add(entry)
		}
		for _, word := range e.GetGuildSettings(guildID).CustomWords {
			add(BadWordEntry{
				Word:     strings.ToLower(strings.TrimSpace(word)),
				Category: CategoryCustom,
				Severity: SeverityMedium,
				GuildID:  guildID,
			})
		}
	}
	return out
}
