package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron"

	"github.com/pathwise/engage-backend/internal/config"
	"github.com/pathwise/engage-backend/internal/logger"
	"github.com/pathwise/engage-backend/internal/repos"
)

// SessionSweeper is the safety net behind lazy abandonment: sessions nobody
// reads again still get closed, so history queries see them as abandoned.
type SessionSweeper struct {
	log         *logger.Logger
	cfg         config.SessionConfig
	sessionRepo repos.LearningSessionRepo
	c           *cron.Cron
}

func NewSessionSweeper(baseLog *logger.Logger, cfg config.SessionConfig, sessionRepo repos.LearningSessionRepo) *SessionSweeper {
	return &SessionSweeper{
		log:         baseLog.With("job", "SessionSweeper"),
		cfg:         cfg,
		sessionRepo: sessionRepo,
		c:           cron.New(),
	}
}

// Start schedules the sweep every 10 minutes.
func (s *SessionSweeper) Start() error {
	if err := s.c.AddFunc("@every 10m", s.sweep); err != nil {
		return err
	}
	s.c.Start()
	return nil
}

func (s *SessionSweeper) Stop() {
	s.c.Stop()
}

func (s *SessionSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-time.Duration(s.cfg.AbandonAfterMinutes) * time.Minute)
	n, err := s.sessionRepo.MarkAbandonedBefore(ctx, nil, cutoff)
	if err != nil {
		s.log.Error("Session sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("Swept idle sessions", "count", n)
	}
}
