package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"wordwarden/internal/moderation"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db *sql.DB
}

type AuditLog struct {
	ID        int64
	GuildID   string
	UserID    string
	Level     string
	Event     string
	Details   string
	CreatedAt time.Time
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *Store) Migrate() error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrations.ReadFile(path.Join("migrations", file))
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			if isIgnorableMigrationError(err) {
				continue
			}
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
	}
	return nil
}

// ListActiveCustomWords returns active custom word rows for one scope. An
// empty guildID selects global entries.
func (s *Store) ListActiveCustomWords(ctx context.Context, guildID string) ([]moderation.BadWordEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT word, severity, COALESCE(guild_id, '')
		FROM bad_words
		WHERE COALESCE(guild_id, '') = ? AND is_active = 1
		ORDER BY word
	`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []moderation.BadWordEntry
	for rows.Next() {
		var entry moderation.BadWordEntry
		var severity string
		if err := rows.Scan(&entry.Word, &severity, &entry.GuildID); err != nil {
			return nil, err
		}
		entry.Category = moderation.CategoryCustom
		entry.Severity = moderation.Severity(severity)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) CreateBadWord(ctx context.Context, entry moderation.BadWordEntry, addedBy string) error {
	var guildID any
	if entry.GuildID != "" {
		guildID = entry.GuildID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bad_words (word, category, severity, guild_id, added_by, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, 1, ?)
	`, entry.Word, entry.Category, string(entry.Severity), guildID, addedBy, time.Now().Unix())
	return err
}

func (s *Store) DeleteBadWords(ctx context.Context, word, guildID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM bad_words WHERE word = ? AND COALESCE(guild_id, '') = ?
	`, word, guildID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetModerationSettings loads persisted settings for a guild. Missing rows
// fall back to the provided defaults rather than failing.
func (s *Store) GetModerationSettings(ctx context.Context, guildID string, defaults moderation.GuildSettings) (moderation.GuildSettings, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT enabled, enable_transliteration, action_type, sensitivity,
		custom_words, monitored_channels, excluded_roles
		FROM moderation_settings WHERE guild_id = ?
	`, guildID)

	result := defaults
	result.GuildID = guildID

	var enabled, translit int
	var action, sensitivity, customWords, channels, roles string
	err := row.Scan(&enabled, &translit, &action, &sensitivity, &customWords, &channels, &roles)
	if err != nil {
		if err == sql.ErrNoRows {
			return result, nil
		}
		return moderation.GuildSettings{}, err
	}

	result.Enabled = enabled == 1
	result.EnableScriptTransliteration = translit == 1
	result.ActionType = moderation.Action(action)
	result.Sensitivity = moderation.NormalizeSensitivity(sensitivity)
	result.CustomWords = splitList(customWords)
	result.MonitoredChannelIDs = splitList(channels)
	result.ExcludedRoleIDs = splitList(roles)
	return result, nil
}

// ListModerationSettings returns every persisted guild configuration, used to
// warm the engine's settings map on startup.
func (s *Store) ListModerationSettings(ctx context.Context) ([]moderation.GuildSettings, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT guild_id, enabled, enable_transliteration, action_type, sensitivity,
		custom_words, monitored_channels, excluded_roles
		FROM moderation_settings
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []moderation.GuildSettings
	for rows.Next() {
		var settings moderation.GuildSettings
		var enabled, translit int
		var action, sensitivity, customWords, channels, roles string
		if err := rows.Scan(&settings.GuildID, &enabled, &translit, &action, &sensitivity, &customWords, &channels, &roles); err != nil {
			return nil, err
		}
		settings.Enabled = enabled == 1
		settings.EnableScriptTransliteration = translit == 1
		settings.ActionType = moderation.Action(action)
		settings.Sensitivity = moderation.NormalizeSensitivity(sensitivity)
		settings.CustomWords = splitList(customWords)
		settings.MonitoredChannelIDs = splitList(channels)
		settings.ExcludedRoleIDs = splitList(roles)
		out = append(out, settings)
	}
	return out, rows.Err()
}

func (s *Store) UpsertModerationSettings(ctx context.Context, settings moderation.GuildSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO moderation_settings (
			guild_id, enabled, enable_transliteration, action_type, sensitivity,
			custom_words, monitored_channels, excluded_roles
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET
			enabled = excluded.enabled,
			enable_transliteration = excluded.enable_transliteration,
			action_type = excluded.action_type,
			sensitivity = excluded.sensitivity,
			custom_words = excluded.custom_words,
			monitored_channels = excluded.monitored_channels,
			excluded_roles = excluded.excluded_roles
	`,
		settings.GuildID,
		boolToInt(settings.Enabled),
		boolToInt(settings.EnableScriptTransliteration),
		string(settings.ActionType),
		string(settings.Sensitivity),
		joinList(settings.CustomWords),
		joinList(settings.MonitoredChannelIDs),
		joinList(settings.ExcludedRoleIDs),
	)
	return err
}

func (s *Store) AddAuditLog(ctx context.Context, log AuditLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (guild_id, user_id, level, event, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, log.GuildID, log.UserID, log.Level, log.Event, log.Details, log.CreatedAt.Unix())
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, guildID string, since time.Time) ([]AuditLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, level, event, details, created_at
		FROM audit_logs
		WHERE guild_id = ? AND created_at >= ?
		ORDER BY created_at DESC
	`, guildID, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []AuditLog
	for rows.Next() {
		var log AuditLog
		var created int64
		if err := rows.Scan(&log.ID, &log.GuildID, &log.UserID, &log.Level, &log.Event, &log.Details, &created); err != nil {
			return nil, err
		}
		log.CreatedAt = time.Unix(created, 0)
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func (s *Store) CleanupAuditLogs(ctx context.Context, retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	_, err := s.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < ?`, cutoff.Unix())
	return err
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func joinList(values []string) string {
	return strings.Join(values, ",")
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isIgnorableMigrationError(err error) bool {
	if err == nil {
		return false
	}
	message := err.Error()
	return strings.Contains(message, "duplicate column name") || strings.Contains(message, "already exists")
}
