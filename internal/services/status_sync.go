package services

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// StatusSync closes sessions still marked as recording whose browser has
// gone away. Overlapping runs are skipped.
type StatusSync struct {
	sessions Sessions
	log      logrus.FieldLogger

	mu      sync.Mutex
	running bool
}

func NewStatusSync(sessions Sessions, log logrus.FieldLogger) *StatusSync {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &StatusSync{sessions: sessions, log: log}
}

func (s *StatusSync) Run() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	fixed, err := s.sessions.SweepStale(ctx)
	if err != nil {
		s.log.WithError(err).Error("failed to query recording sessions")
		return
	}
	if fixed > 0 {
		s.log.WithField("closed", fixed).Info("closed sessions without a live recorder")
	}
}
