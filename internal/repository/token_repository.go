package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dextryayers/rujukan-jatim/internal/models"
)

var ErrTokenNotFound = errors.New("token not found")

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// Issue stores a fresh token after removing every existing token for the
// user, keeping the one-live-token-per-user invariant in a single transaction.
func (r *TokenRepository) Issue(ctx context.Context, token models.AuthToken) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, token.UserID); err != nil {
		return err
	}

	const insert = `
		INSERT INTO auth_tokens (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	if _, err := tx.Exec(ctx, insert, token.ID, token.UserID, token.Token, token.ExpiresAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// FindLive returns the token row only while it has not expired.
func (r *TokenRepository) FindLive(ctx context.Context, token string, now time.Time) (models.AuthToken, error) {
	const query = `
		SELECT id, user_id, token, expires_at, created_at
		FROM auth_tokens
		WHERE token = $1 AND expires_at > $2
	`

	row := r.pool.QueryRow(ctx, query, token, now)
	var out models.AuthToken
	if err := row.Scan(&out.ID, &out.UserID, &out.Token, &out.ExpiresAt, &out.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.AuthToken{}, ErrTokenNotFound
		}
		return models.AuthToken{}, err
	}
	return out, nil
}

// DeleteByToken is idempotent: deleting an unknown token is not an error.
func (r *TokenRepository) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE token = $1`, token)
	return err
}

func (r *TokenRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE user_id = $1`, userID)
	return err
}

func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
