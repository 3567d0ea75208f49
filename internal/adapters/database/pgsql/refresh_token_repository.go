package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/echopind/echopind_backend/internal/apperrors"
	"github.com/echopind/echopind_backend/internal/core/domain"
	"github.com/echopind/echopind_backend/internal/models"
	"github.com/echopind/echopind_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

// withUserLock runs fn in a transaction holding the user's row lock, serializing
// all session mutations for that user.
func (r *PgxUserRepository) withUserLock(ctx context.Context, userID string, fn func(tx pgx.Tx) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, `SELECT user_id FROM users WHERE user_id = $1 FOR UPDATE;`, userID).Scan(&id)
		if err != nil {
			return translateError(err, fmt.Sprintf("failed to lock user %s", userID))
		}
		return fn(tx)
	})
}

func purgeExpired(ctx context.Context, tx pgx.Tx, userID string, now time.Time) error {
	_, err := tx.Exec(ctx, `DELETE FROM user_refresh_tokens WHERE user_id = $1 AND expires_at <= $2;`, userID, now)
	if err != nil {
		return fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	return nil
}

func insertAndTrim(ctx context.Context, tx pgx.Tx, userID string, token domain.RefreshToken, maxTokens int) error {
	m := mapping.ToModelRefreshToken(token)
	_, err := tx.Exec(ctx, `
		INSERT INTO user_refresh_tokens (token_hash, user_id, issued_at, expires_at)
		VALUES ($1, $2, $3, $4);`,
		m.TokenHash, userID, m.IssuedAt, m.ExpiresAt,
	)
	if err != nil {
		return translateError(err, "failed to record session")
	}
	_, err = tx.Exec(ctx, `
		DELETE FROM user_refresh_tokens
		WHERE user_id = $1 AND seq NOT IN (
			SELECT seq FROM user_refresh_tokens WHERE user_id = $1 ORDER BY seq DESC LIMIT $2
		);`,
		userID, maxTokens,
	)
	if err != nil {
		return fmt.Errorf("failed to trim sessions: %w", err)
	}
	return nil
}

func (r *PgxUserRepository) AddRefreshToken(ctx context.Context, userID string, token domain.RefreshToken, maxTokens int, now time.Time) error {
	return r.withUserLock(ctx, userID, func(tx pgx.Tx) error {
		if err := purgeExpired(ctx, tx, userID, now); err != nil {
			return err
		}
		return insertAndTrim(ctx, tx, userID, token, maxTokens)
	})
}

func (r *PgxUserRepository) RotateRefreshToken(ctx context.Context, userID, oldHash string, next domain.RefreshToken, maxTokens int, now time.Time) error {
	return r.withUserLock(ctx, userID, func(tx pgx.Tx) error {
		if err := purgeExpired(ctx, tx, userID, now); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM user_refresh_tokens WHERE user_id = $1 AND token_hash = $2;`, userID, oldHash)
		if err != nil {
			return fmt.Errorf("failed to consume session: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return insertAndTrim(ctx, tx, userID, next, maxTokens)
	})
}

func (r *PgxUserRepository) RemoveRefreshToken(ctx context.Context, userID, tokenHash string) error {
	err := r.withUserLock(ctx, userID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM user_refresh_tokens WHERE user_id = $1 AND token_hash = $2;`, userID, tokenHash)
		if err != nil {
			return fmt.Errorf("failed to remove session: %w", err)
		}
		return nil
	})
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	return err
}

func (r *PgxUserRepository) ClearRefreshTokens(ctx context.Context, userID string) error {
	return r.withUserLock(ctx, userID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM user_refresh_tokens WHERE user_id = $1;`, userID)
		if err != nil {
			return fmt.Errorf("failed to clear sessions of user %s: %w", userID, err)
		}
		return nil
	})
}

func (r *PgxUserRepository) ListRefreshTokens(ctx context.Context, userID string, now time.Time) ([]domain.RefreshToken, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT token_hash, issued_at, expires_at FROM user_refresh_tokens
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY seq ASC;`,
		userID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	tokens, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.RefreshToken])
	if err != nil {
		return nil, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return mapping.ToDomainRefreshTokens(tokens), nil
}
