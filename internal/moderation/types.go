package moderation

import "strings"

// Severity is the three-level ordinal attached to a word entry.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// Valid reports whether s is one of the three known severities.
func (s Severity) Valid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// Action is a remedial action a caller can apply to a flagged message.
type Action string

const (
	ActionWarn    Action = "warn"
	ActionDelete  Action = "delete"
	ActionTimeout Action = "timeout"
	ActionKick    Action = "kick"
)

// Sensitivity selects the confidence threshold and flag policy.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// NormalizeSensitivity maps arbitrary input to a known tier, defaulting to medium.
func NormalizeSensitivity(value string) Sensitivity {
	switch Sensitivity(strings.ToLower(value)) {
	case SensitivityLow:
		return SensitivityLow
	case SensitivityHigh:
		return SensitivityHigh
	default:
		return SensitivityMedium
	}
}

// CategoryCustom marks guild- or globally-added words; built-in lists carry
// their language tag ("en", "ru") instead.
const CategoryCustom = "custom"

// BadWordEntry is one word-list record. Entries are immutable once created;
// edits are delete + recreate.
type BadWordEntry struct {
	Word     string
	Category string
	Severity Severity
	// GuildID is empty for global entries.
	GuildID string
}

// GuildSettings is the per-guild moderation configuration. Replaced wholesale
// on save, last write wins.
type GuildSettings struct {
	GuildID                     string
	Enabled                     bool
	EnableScriptTransliteration bool
	ActionType                  Action
	Sensitivity                 Sensitivity
	CustomWords                 []string
	// MonitoredChannelIDs empty means every channel is monitored.
	MonitoredChannelIDs []string
	ExcludedRoleIDs     []string
}

// Options control a single AnalyzeContent call.
type Options struct {
	Sensitivity                 Sensitivity
	EnableScriptTransliteration bool
	GuildID                     string
}

// Detection describes the best match found for one word.
type Detection struct {
	Word           string
	Category       string
	Severity       Severity
	Confidence     float64
	Method         string
	MatchedVariant string
}

// AnalysisResult is the outcome of one AnalyzeContent call. It is never
// persisted by the engine.
type AnalysisResult struct {
	IsClean           bool
	DetectedWords     []string
	DetectedDetails   []Detection
	Severity          Severity
	Confidence        float64
	RecommendedAction Action
}

func cleanResult() AnalysisResult {
	return AnalysisResult{
		IsClean:           true,
		DetectedWords:     []string{},
		DetectedDetails:   []Detection{},
		Severity:          SeverityLow,
		Confidence:        0,
		RecommendedAction: ActionWarn,
	}
}
