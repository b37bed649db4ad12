package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dextryayers/rujukan-jatim/internal/ids"
	"github.com/dextryayers/rujukan-jatim/internal/models"
)

type ActivityStore interface {
	Append(ctx context.Context, entry models.ActivityLog) error
	ListRecent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error)
}

// ActivityLogger appends audit entries. Failures are logged and swallowed:
// an audit hiccup must never fail the mutation it describes.
type ActivityLogger struct {
	store ActivityStore
	log   zerolog.Logger
}

func NewActivityLogger(store ActivityStore, log zerolog.Logger) *ActivityLogger {
	return &ActivityLogger{store: store, log: log}
}

func (l *ActivityLogger) Log(ctx context.Context, logType, description string, actor *models.User, metadata map[string]any) {
	entry := models.ActivityLog{
		ID:          ids.New(),
		Type:        logType,
		Description: description,
		Metadata:    metadata,
	}
	if actor != nil {
		userID := actor.ID
		entry.UserID = &userID
	}

	if err := l.store.Append(ctx, entry); err != nil {
		l.log.Error().Err(err).Str("type", logType).Msg("append activity log failed")
	}
}

func (l *ActivityLogger) Recent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}
	return l.store.ListRecent(ctx, limit)
}
