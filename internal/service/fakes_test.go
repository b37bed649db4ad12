package service

import (
	"context"
	"time"

	"github.com/dextryayers/rujukan-jatim/internal/models"
	"github.com/dextryayers/rujukan-jatim/internal/repository"
)

type fakeUserStore struct {
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) Update(_ context.Context, user models.User) error {
	if _, ok := f.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	f.users[user.ID] = user
	return nil
}

type fakeTokenStore struct {
	tokens map[string]models.AuthToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]models.AuthToken)}
}

func (f *fakeTokenStore) Issue(_ context.Context, token models.AuthToken) error {
	for key, existing := range f.tokens {
		if existing.UserID == token.UserID {
			delete(f.tokens, key)
		}
	}
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeTokenStore) FindLive(_ context.Context, token string, now time.Time) (models.AuthToken, error) {
	existing, ok := f.tokens[token]
	if !ok || existing.Expired(now) {
		return models.AuthToken{}, repository.ErrTokenNotFound
	}
	return existing, nil
}

func (f *fakeTokenStore) DeleteByToken(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

type staticVerifier struct {
	pass bool
}

func (v staticVerifier) Verify(context.Context, string, string) bool {
	return v.pass
}

type fakeVisitorStore struct {
	sessions map[string]models.VisitorSession
	stats    map[string]models.VisitorStat
}

func newFakeVisitorStore() *fakeVisitorStore {
	return &fakeVisitorStore{
		sessions: make(map[string]models.VisitorSession),
		stats:    make(map[string]models.VisitorStat),
	}
}

func (f *fakeVisitorStore) GetSession(_ context.Context, sessionID string) (models.VisitorSession, error) {
	session, ok := f.sessions[sessionID]
	if !ok {
		return models.VisitorSession{}, repository.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeVisitorStore) SaveSession(_ context.Context, session models.VisitorSession) error {
	f.sessions[session.SessionID] = session
	return nil
}

func (f *fakeVisitorStore) CountActive(_ context.Context, since time.Time) (int64, error) {
	var count int64
	for _, session := range f.sessions {
		if !session.LastSeen.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeVisitorStore) BumpStat(_ context.Context, id string, date time.Time, addViews, addUniques int64) (models.VisitorStat, error) {
	key := date.Format("2006-01-02")
	stat, ok := f.stats[key]
	if !ok {
		stat = models.VisitorStat{ID: id, Date: date}
	}
	stat.Views += addViews
	stat.UniqueVisitors += addUniques
	f.stats[key] = stat
	return stat, nil
}

func (f *fakeVisitorStore) GetStat(_ context.Context, date time.Time) (models.VisitorStat, error) {
	stat, ok := f.stats[date.Format("2006-01-02")]
	if !ok {
		return models.VisitorStat{}, repository.ErrStatNotFound
	}
	return stat, nil
}

func (f *fakeVisitorStore) ListRecentStats(_ context.Context, limit int) ([]models.VisitorStat, error) {
	var stats []models.VisitorStat
	for _, stat := range f.stats {
		stats = append(stats, stat)
	}
	for i := 0; i < len(stats); i++ {
		for j := i + 1; j < len(stats); j++ {
			if stats[j].Date.Before(stats[i].Date) {
				stats[i], stats[j] = stats[j], stats[i]
			}
		}
	}
	if len(stats) > limit {
		stats = stats[len(stats)-limit:]
	}
	return stats, nil
}
