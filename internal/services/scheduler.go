// Package services runs the periodic maintenance of recording sessions.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultRetentionSpec runs the retention purge every day at 03:00.
	DefaultRetentionSpec = "0 0 3 * * *"
	// DefaultSweepSpec runs the stale session sweep every minute.
	DefaultSweepSpec = "0 * * * * *"
	jobTimeout       = 30 * time.Second
)

// Sessions is the part of the session store the jobs maintain.
type Sessions interface {
	SweepStale(ctx context.Context) (int, error)
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

type SchedulerConfig struct {
	RetentionDays int
	RetentionSpec string
	SweepSpec     string
}

type SchedulerService struct {
	cron *cron.Cron
	log  logrus.FieldLogger
}

// NewScheduler registers the retention purge and the stale session sweep.
// A RetentionDays of zero or less disables the purge.
func NewScheduler(sessions Sessions, cfg SchedulerConfig, log logrus.FieldLogger) (*SchedulerService, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.RetentionSpec == "" {
		cfg.RetentionSpec = DefaultRetentionSpec
	}
	if cfg.SweepSpec == "" {
		cfg.SweepSpec = DefaultSweepSpec
	}

	s := &SchedulerService{
		cron: cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cronLogger{log}))),
		log:  log,
	}

	if cfg.RetentionDays > 0 {
		job := &RetentionJob{Sessions: sessions, Days: cfg.RetentionDays, Log: log, Now: time.Now}
		if _, err := s.cron.AddJob(cfg.RetentionSpec, job); err != nil {
			return nil, fmt.Errorf("schedule retention purge: %w", err)
		}
	}
	if _, err := s.cron.AddJob(cfg.SweepSpec, NewStatusSync(sessions, log)); err != nil {
		return nil, fmt.Errorf("schedule stale session sweep: %w", err)
	}
	return s, nil
}

func (s *SchedulerService) Start() {
	s.cron.Start()
	s.log.WithField("jobs", len(s.cron.Entries())).Info("scheduler service started")
}

// Stop stops scheduling and waits for running jobs to finish.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler service stopped")
}

// RetentionJob deletes stopped sessions older than Days.
type RetentionJob struct {
	Sessions Sessions
	Days     int
	Log      logrus.FieldLogger
	Now      func() time.Time
}

func (j *RetentionJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	cutoff := j.Now().AddDate(0, 0, -j.Days)
	n, err := j.Sessions.Purge(ctx, cutoff)
	if err != nil {
		j.Log.WithError(err).Error("retention purge failed")
		return
	}
	if n > 0 {
		j.Log.WithFields(logrus.Fields{"deleted": n, "cutoff": cutoff}).Info("purged old sessions")
	}
}

type cronLogger struct {
	log logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithError(err).WithFields(fields(keysAndValues)).Error(msg)
}

func fields(kv []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
