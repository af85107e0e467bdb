// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a named unit of periodic work.
type Job struct {
	Name     string
	Schedule string
	Run      func()
}

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.SugaredLogger
}

// New creates a scheduler whose jobs recover from panics and log through log.
func New(log *zap.SugaredLogger) *Scheduler {
	cronLog := zapCronLogger{log: log}
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cronLog), cron.WithChain(cron.Recover(cronLog))),
		log:  log,
	}
}

// Add registers a job. An invalid schedule is logged and returned.
func (s *Scheduler) Add(job Job) error {
	if _, err := s.cron.AddFunc(job.Schedule, job.Run); err != nil {
		s.log.Errorw("failed to schedule job", "job", job.Name, "schedule", job.Schedule, "error", err)
		return err
	}
	s.log.Infow("scheduled job", "job", job.Name, "schedule", job.Schedule)
	return nil
}

// Start starts the cron scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// zapCronLogger adapts a sugared zap logger to cron.Logger.
type zapCronLogger struct {
	log *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
