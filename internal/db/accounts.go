package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL unique_violation.
const uniqueViolation = "23505"

// AccountRepository handles linked account database operations.
// All operations are keyed by the Telegram id.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// GetByTelegramID retrieves a linked account by Telegram id.
func (r *AccountRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*LinkedAccount, error) {
	query := `
		SELECT id, telegram_id, spotify_user_id, access_token, refresh_token, token_expiry, created_at, updated_at
		FROM linked_accounts
		WHERE telegram_id = $1
	`
	var account LinkedAccount
	err := r.pool.QueryRow(ctx, query, telegramID).Scan(
		&account.ID,
		&account.TelegramID,
		&account.SpotifyUserID,
		&account.AccessToken,
		&account.RefreshToken,
		&account.TokenExpiry,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying linked account: %w", err)
	}
	return &account, nil
}

// CreateIfAbsent inserts an unlinked record for the Telegram id if none
// exists yet and returns the stored row. Safe under concurrent first contact
// from the same id: the unique index on telegram_id makes the insert a no-op
// for all but one caller.
func (r *AccountRepository) CreateIfAbsent(ctx context.Context, telegramID int64) (*LinkedAccount, error) {
	query := `
		INSERT INTO linked_accounts (id, telegram_id, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (telegram_id) DO NOTHING
	`
	if _, err := r.pool.Exec(ctx, query, uuid.New(), telegramID); err != nil {
		return nil, fmt.Errorf("inserting linked account: %w", err)
	}
	return r.GetByTelegramID(ctx, telegramID)
}

// Link stores the Spotify identity and tokens for a Telegram id as a single
// read-modify-write transaction. It returns ErrNotFound if no record exists
// and ErrConflict if the Spotify identity is already bound to a different
// Telegram id, or this record is already bound to a different Spotify
// identity. The refresh token is only overwritten when the update carries one.
func (r *AccountRepository) Link(ctx context.Context, telegramID int64, upd LinkUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var current *string
	err = tx.QueryRow(ctx,
		`SELECT spotify_user_id FROM linked_accounts WHERE telegram_id = $1 FOR UPDATE`,
		telegramID,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("locking linked account: %w", err)
	}
	if current != nil && *current != upd.SpotifyUserID {
		return ErrConflict
	}

	// Checked here rather than left to the unique index so the caller sees a
	// clean conflict error instead of a storage-layer violation.
	var other int64
	err = tx.QueryRow(ctx,
		`SELECT telegram_id FROM linked_accounts WHERE spotify_user_id = $1 AND telegram_id <> $2`,
		upd.SpotifyUserID, telegramID,
	).Scan(&other)
	if err == nil {
		return ErrConflict
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("checking spotify identity: %w", err)
	}

	query := `
		UPDATE linked_accounts
		SET spotify_user_id = $2,
		    access_token = $3,
		    refresh_token = COALESCE($4, refresh_token),
		    token_expiry = $5,
		    updated_at = NOW()
		WHERE telegram_id = $1
	`
	if _, err := tx.Exec(ctx, query, telegramID, upd.SpotifyUserID, upd.AccessToken, upd.RefreshToken, upd.TokenExpiry); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("updating linked account: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing link: %w", err)
	}
	return nil
}
