package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/dextryayers/rujukan-jatim/internal/repository"
)

// Visitor sessions idle longer than this are swept.
const sessionRetention = 30 * 24 * time.Hour

// Scheduler runs the nightly retention sweeps.
type Scheduler struct {
	cron     *cron.Cron
	tokens   *repository.TokenRepository
	visitors *repository.VisitorRepository
	log      zerolog.Logger
}

func NewScheduler(tokens *repository.TokenRepository, visitors *repository.VisitorRepository, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		tokens:   tokens,
		visitors: visitors,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("15 2 * * *", s.sweepExpiredTokens); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("45 2 * * *", s.sweepIdleSessions); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
	return nil
}

// Stop waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) sweepExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.tokens.DeleteExpired(ctx, time.Now())
	if err != nil {
		s.log.Error().Err(err).Msg("sweep expired tokens failed")
		return
	}
	s.log.Info().Int64("deleted", deleted).Msg("expired tokens swept")
}

func (s *Scheduler) sweepIdleSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.visitors.DeleteIdleSessions(ctx, time.Now().Add(-sessionRetention))
	if err != nil {
		s.log.Error().Err(err).Msg("sweep idle sessions failed")
		return
	}
	s.log.Info().Int64("deleted", deleted).Msg("idle visitor sessions swept")
}
