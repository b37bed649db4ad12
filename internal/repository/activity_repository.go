package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dextryayers/rujukan-jatim/internal/models"
)

type ActivityRepository struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{pool: pool}
}

func (r *ActivityRepository) Append(ctx context.Context, entry models.ActivityLog) error {
	const query = `
		INSERT INTO activity_logs (id, type, description, user_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	_, err := r.pool.Exec(ctx, query, entry.ID, entry.Type, entry.Description, entry.UserID, entry.Metadata)
	return err
}

// ListRecent returns the newest entries with the actor joined in.
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	const query = `
		SELECT l.id, l.type, l.description, l.user_id, l.metadata, l.created_at,
		       u.id, u.username, u.name
		FROM activity_logs l
		LEFT JOIN users u ON u.id = l.user_id
		ORDER BY l.created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ActivityLogEntry
	for rows.Next() {
		var entry models.ActivityLogEntry
		var actorID, actorUsername, actorName *string
		if err := rows.Scan(
			&entry.ID,
			&entry.Type,
			&entry.Description,
			&entry.UserID,
			&entry.Metadata,
			&entry.CreatedAt,
			&actorID,
			&actorUsername,
			&actorName,
		); err != nil {
			return nil, err
		}
		if actorID != nil {
			entry.User = &models.ActivityActor{
				ID:       *actorID,
				Username: derefString(actorUsername),
				Name:     derefString(actorName),
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
