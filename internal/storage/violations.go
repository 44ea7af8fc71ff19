package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// UserViolation tracks how often a member was flagged, with a forgiveness
// window after which the count resets.
type UserViolation struct {
	GuildID    string
	UserID     string
	CountTotal int
	LastAt     time.Time
	LastAction string
	ResetAt    *time.Time
}

func (s *Store) GetViolation(ctx context.Context, guildID, userID string) (UserViolation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT guild_id, user_id, count_total, last_at, COALESCE(last_action, ''), reset_at
		FROM user_violations
		WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)

	var v UserViolation
	var lastAt int64
	var resetAt sql.NullInt64
	err := row.Scan(&v.GuildID, &v.UserID, &v.CountTotal, &lastAt, &v.LastAction, &resetAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return UserViolation{}, nil
		}
		return UserViolation{}, err
	}
	v.LastAt = time.Unix(lastAt, 0)
	if resetAt.Valid {
		value := time.Unix(resetAt.Int64, 0)
		v.ResetAt = &value
	}
	return v, nil
}

// IncrementViolation bumps the member's violation count and returns the new
// total. Counts past their reset deadline start over at one.
func (s *Store) IncrementViolation(ctx context.Context, guildID, userID, lastAction string, forgiveAfter time.Duration) (int, error) {
	now := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var count int
	var resetAt sql.NullInt64
	row := tx.QueryRowContext(ctx, `
		SELECT count_total, reset_at
		FROM user_violations
		WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)
	scanErr := row.Scan(&count, &resetAt)
	if scanErr != nil && !errors.Is(scanErr, sql.ErrNoRows) {
		err = scanErr
		return 0, err
	}
	if scanErr == nil && resetAt.Valid && now.Unix() >= resetAt.Int64 {
		count = 0
	}

	count++
	var nextReset any
	if forgiveAfter != 0 {
		nextReset = now.Add(forgiveAfter).Unix()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_violations (guild_id, user_id, count_total, last_at, last_action, reset_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, user_id) DO UPDATE SET
			count_total = excluded.count_total,
			last_at = excluded.last_at,
			last_action = excluded.last_action,
			reset_at = excluded.reset_at
	`, guildID, userID, count, now.Unix(), lastAction, nextReset)
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) ResetViolations(ctx context.Context, guildID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM user_violations WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)
	return err
}
