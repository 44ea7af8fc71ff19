package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken  string           `yaml:"discord_token"`
	DatabasePath  string           `yaml:"database_path"`
	LogLevel      string           `yaml:"log_level"`
	Mode          string           `yaml:"mode"`
	RetentionDays int              `yaml:"retention_days"`
	Dashboard     DashboardConfig  `yaml:"dashboard"`
	Moderation    ModerationConfig `yaml:"moderation"`
	Escalation    EscalationConfig `yaml:"escalation"`
}

type DashboardConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type ModerationConfig struct {
	Sensitivity            string `yaml:"sensitivity"`
	ActionType             string `yaml:"action_type"`
	ScriptTransliteration  bool   `yaml:"script_transliteration"`
	NotifyChannelID        string `yaml:"notify_channel_id"`
	TimeoutMinutes         int    `yaml:"timeout_minutes"`
	DMWarnEnabled          bool   `yaml:"dm_warn_enabled"`
	DeleteFlaggedByDefault bool   `yaml:"delete_flagged_by_default"`
}

type EscalationConfig struct {
	Enabled            bool `yaml:"enabled"`
	TimeoutAfter       int  `yaml:"timeout_after"`
	KickAfter          int  `yaml:"kick_after"`
	ForgivenessMinutes int  `yaml:"forgiveness_minutes"`
}

func DefaultConfig() Config {
	return Config{
		DatabasePath:  "/data/wordwarden.db",
		LogLevel:      "info",
		Mode:          "normal",
		RetentionDays: 30,
		Dashboard:     DashboardConfig{Enabled: false, Addr: ":8080"},
		Moderation: ModerationConfig{
			Sensitivity:            "medium",
			ActionType:             "delete",
			ScriptTransliteration:  false,
			TimeoutMinutes:         10,
			DMWarnEnabled:          true,
			DeleteFlaggedByDefault: true,
		},
		Escalation: EscalationConfig{
			Enabled:            true,
			TimeoutAfter:       3,
			KickAfter:          6,
			ForgivenessMinutes: 1440,
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}

	cfg.Mode = normalizeMode(cfg.Mode)
	cfg.Moderation.Sensitivity = normalizeSensitivity(cfg.Moderation.Sensitivity)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Mode = envString("MODE", cfg.Mode)
	cfg.RetentionDays = envInt("RETENTION_DAYS", cfg.RetentionDays)
	cfg.Dashboard.Enabled = envBool("DASHBOARD_ENABLED", cfg.Dashboard.Enabled)
	cfg.Dashboard.Addr = envString("DASHBOARD_ADDR", cfg.Dashboard.Addr)
	cfg.Moderation.Sensitivity = envString("MODERATION_SENSITIVITY", cfg.Moderation.Sensitivity)
	cfg.Moderation.ActionType = envString("MODERATION_ACTION", cfg.Moderation.ActionType)
	cfg.Moderation.ScriptTransliteration = envBool("SCRIPT_TRANSLITERATION", cfg.Moderation.ScriptTransliteration)
	cfg.Moderation.NotifyChannelID = envString("NOTIFY_CHANNEL_ID", cfg.Moderation.NotifyChannelID)
	cfg.Moderation.TimeoutMinutes = envInt("TIMEOUT_MINUTES", cfg.Moderation.TimeoutMinutes)
	cfg.Moderation.DMWarnEnabled = envBool("DM_WARN_ENABLED", cfg.Moderation.DMWarnEnabled)
	cfg.Escalation.Enabled = envBool("ESCALATION_ENABLED", cfg.Escalation.Enabled)
	cfg.Escalation.TimeoutAfter = envInt("ESCALATION_TIMEOUT_AFTER", cfg.Escalation.TimeoutAfter)
	cfg.Escalation.KickAfter = envInt("ESCALATION_KICK_AFTER", cfg.Escalation.KickAfter)
	cfg.Escalation.ForgivenessMinutes = envInt("ESCALATION_FORGIVENESS_MINUTES", cfg.Escalation.ForgivenessMinutes)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}

func normalizeMode(value string) string {
	switch strings.ToLower(value) {
	case "audit":
		return "audit"
	default:
		return "normal"
	}
}

func normalizeSensitivity(value string) string {
	switch strings.ToLower(value) {
	case "low", "medium", "high":
		return strings.ToLower(value)
	default:
		return "medium"
	}
}
