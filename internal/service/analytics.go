package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dextryayers/rujukan-jatim/internal/ids"
	"github.com/dextryayers/rujukan-jatim/internal/models"
	"github.com/dextryayers/rujukan-jatim/internal/repository"
)

// ActiveWindow is how recently a session must have been seen to count as
// "active now".
const ActiveWindow = 5 * time.Minute

const (
	defaultStatDays = 14
	maxStatDays     = 90
)

type VisitorStore interface {
	GetSession(ctx context.Context, sessionID string) (models.VisitorSession, error)
	SaveSession(ctx context.Context, session models.VisitorSession) error
	CountActive(ctx context.Context, since time.Time) (int64, error)
	BumpStat(ctx context.Context, id string, date time.Time, addViews, addUniques int64) (models.VisitorStat, error)
	GetStat(ctx context.Context, date time.Time) (models.VisitorStat, error)
	ListRecentStats(ctx context.Context, limit int) ([]models.VisitorStat, error)
}

type AnalyticsService struct {
	visitors VisitorStore
	log      zerolog.Logger
	now      func() time.Time
}

func NewAnalyticsService(visitors VisitorStore, log zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{
		visitors: visitors,
		log:      log,
		now:      time.Now,
	}
}

const dateLayout = "2006-01-02"

func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Track registers a page visit. A session is counted toward the daily
// unique-visitor total once per calendar date; the view counter also bumps
// on explicit countView. Counter updates are read-modify-write without
// locking, which is fine for approximate analytics.
func (s *AnalyticsService) Track(ctx context.Context, sessionID, ip, userAgent string, countView bool) (models.VisitorSummary, error) {
	now := s.now()
	today := dateOnly(now)

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	session, err := s.visitors.GetSession(ctx, sessionID)
	isNew := false
	if err != nil {
		if !errors.Is(err, repository.ErrSessionNotFound) {
			return models.VisitorSummary{}, err
		}
		isNew = true
		session = models.VisitorSession{
			ID:        ids.New(),
			SessionID: sessionID,
		}
	}

	firstToday := isNew || session.LastCountedAt == nil ||
		dateOnly(*session.LastCountedAt).Format(dateLayout) != today.Format(dateLayout)

	if ip != "" {
		session.IPAddress = &ip
	}
	if userAgent != "" {
		if len(userAgent) > 500 {
			userAgent = userAgent[:500]
		}
		session.UserAgent = &userAgent
	}
	session.LastSeen = now
	session.LastCountedAt = &today

	if err := s.visitors.SaveSession(ctx, session); err != nil {
		return models.VisitorSummary{}, err
	}

	var addViews, addUniques int64
	if firstToday {
		addUniques = 1
	}
	if countView || firstToday {
		addViews = 1
	}

	stat, err := s.visitors.BumpStat(ctx, ids.New(), today, addViews, addUniques)
	if err != nil {
		return models.VisitorSummary{}, err
	}

	activeNow, err := s.visitors.CountActive(ctx, now.Add(-ActiveWindow))
	if err != nil {
		return models.VisitorSummary{}, err
	}

	return models.VisitorSummary{
		SessionID: sessionID,
		ActiveNow: activeNow,
		Today: models.DailyStat{
			Date:           today.Format(dateLayout),
			Views:          stat.Views,
			UniqueVisitors: stat.UniqueVisitors,
		},
	}, nil
}

// RecentStats returns daily rows for the last N days, oldest first. Days is
// clamped to 1..90.
func (s *AnalyticsService) RecentStats(ctx context.Context, days int) ([]models.DailyStat, error) {
	if days < 1 {
		days = defaultStatDays
	}
	if days > maxStatDays {
		days = maxStatDays
	}

	stats, err := s.visitors.ListRecentStats(ctx, days)
	if err != nil {
		return nil, err
	}

	out := make([]models.DailyStat, 0, len(stats))
	for _, stat := range stats {
		out = append(out, models.DailyStat{
			Date:           stat.Date.Format(dateLayout),
			Views:          stat.Views,
			UniqueVisitors: stat.UniqueVisitors,
		})
	}
	return out, nil
}

// Summary is the read-only gauge: active sessions plus today's counters.
func (s *AnalyticsService) Summary(ctx context.Context) (models.VisitorSummary, error) {
	now := s.now()
	today := dateOnly(now)

	summary := models.VisitorSummary{
		Today: models.DailyStat{Date: today.Format(dateLayout)},
	}

	stat, err := s.visitors.GetStat(ctx, today)
	if err == nil {
		summary.Today.Views = stat.Views
		summary.Today.UniqueVisitors = stat.UniqueVisitors
	} else if !errors.Is(err, repository.ErrStatNotFound) {
		return models.VisitorSummary{}, err
	}

	activeNow, err := s.visitors.CountActive(ctx, now.Add(-ActiveWindow))
	if err != nil {
		return models.VisitorSummary{}, err
	}
	summary.ActiveNow = activeNow

	return summary, nil
}
