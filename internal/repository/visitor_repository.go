package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dextryayers/rujukan-jatim/internal/models"
)

var (
	ErrSessionNotFound = errors.New("visitor session not found")
	ErrStatNotFound    = errors.New("visitor stat not found")
)

type VisitorRepository struct {
	pool *pgxpool.Pool
}

func NewVisitorRepository(pool *pgxpool.Pool) *VisitorRepository {
	return &VisitorRepository{pool: pool}
}

func (r *VisitorRepository) GetSession(ctx context.Context, sessionID string) (models.VisitorSession, error) {
	const query = `
		SELECT id, session_id, ip_address, user_agent, last_seen, last_counted_at, created_at, updated_at
		FROM visitor_sessions
		WHERE session_id = $1
	`

	row := r.pool.QueryRow(ctx, query, sessionID)
	var session models.VisitorSession
	if err := row.Scan(
		&session.ID,
		&session.SessionID,
		&session.IPAddress,
		&session.UserAgent,
		&session.LastSeen,
		&session.LastCountedAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VisitorSession{}, ErrSessionNotFound
		}
		return models.VisitorSession{}, err
	}
	return session, nil
}

func (r *VisitorRepository) SaveSession(ctx context.Context, session models.VisitorSession) error {
	const query = `
		INSERT INTO visitor_sessions (
			id, session_id, ip_address, user_agent, last_seen, last_counted_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
		ON CONFLICT (session_id)
		DO UPDATE SET
			ip_address = EXCLUDED.ip_address,
			user_agent = EXCLUDED.user_agent,
			last_seen = EXCLUDED.last_seen,
			last_counted_at = EXCLUDED.last_counted_at,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.SessionID,
		session.IPAddress,
		session.UserAgent,
		session.LastSeen,
		session.LastCountedAt,
	)
	return err
}

func (r *VisitorRepository) CountActive(ctx context.Context, since time.Time) (int64, error) {
	const query = `SELECT COUNT(*) FROM visitor_sessions WHERE last_seen >= $1`
	var count int64
	if err := r.pool.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *VisitorRepository) DeleteIdleSessions(ctx context.Context, before time.Time) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM visitor_sessions WHERE last_seen < $1`, before)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// BumpStat lazily creates the row for the date and adds the deltas. The
// addition happens in SQL so concurrent bumps do not lose more than the
// in-flight request's own read.
func (r *VisitorRepository) BumpStat(ctx context.Context, id string, date time.Time, addViews, addUniques int64) (models.VisitorStat, error) {
	const query = `
		INSERT INTO visitor_stats (id, date, views, unique_visitors, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (date)
		DO UPDATE SET
			views = visitor_stats.views + $3,
			unique_visitors = visitor_stats.unique_visitors + $4,
			updated_at = NOW()
		RETURNING id, date, views, unique_visitors, created_at, updated_at
	`

	row := r.pool.QueryRow(ctx, query, id, date, addViews, addUniques)
	var stat models.VisitorStat
	if err := row.Scan(&stat.ID, &stat.Date, &stat.Views, &stat.UniqueVisitors, &stat.CreatedAt, &stat.UpdatedAt); err != nil {
		return models.VisitorStat{}, err
	}
	return stat, nil
}

func (r *VisitorRepository) GetStat(ctx context.Context, date time.Time) (models.VisitorStat, error) {
	const query = `
		SELECT id, date, views, unique_visitors, created_at, updated_at
		FROM visitor_stats
		WHERE date = $1
	`

	row := r.pool.QueryRow(ctx, query, date)
	var stat models.VisitorStat
	if err := row.Scan(&stat.ID, &stat.Date, &stat.Views, &stat.UniqueVisitors, &stat.CreatedAt, &stat.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VisitorStat{}, ErrStatNotFound
		}
		return models.VisitorStat{}, err
	}
	return stat, nil
}

// ListRecentStats returns the newest rows up to limit, oldest first.
func (r *VisitorRepository) ListRecentStats(ctx context.Context, limit int) ([]models.VisitorStat, error) {
	const query = `
		SELECT id, date, views, unique_visitors, created_at, updated_at
		FROM (
			SELECT id, date, views, unique_visitors, created_at, updated_at
			FROM visitor_stats
			ORDER BY date DESC
			LIMIT $1
		) recent
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.VisitorStat
	for rows.Next() {
		var stat models.VisitorStat
		if err := rows.Scan(&stat.ID, &stat.Date, &stat.Views, &stat.UniqueVisitors, &stat.CreatedAt, &stat.UpdatedAt); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}
