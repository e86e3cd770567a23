// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scheduler arms a single recurring timer from the mutable
// schedule configuration and turns each firing (or manual trigger) into a
// pipeline run with its own audit record. The timer is an explicit owned
// value: reconciling always disarms the previous one before arming anew,
// so at most one exists. Runs themselves are fire-and-forget goroutines;
// the scheduler never waits on one, and overlapping runs each operate on
// independent records.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"autopress/internal/models"
	"autopress/internal/pipeline"
)

// Runner is the slice of the pipeline the scheduler invokes.
type Runner interface {
	ChooseTopic(ctx context.Context) (string, error)
	Run(ctx context.Context, topic string, authorID *uuid.UUID, rec pipeline.Recorder) (*pipeline.Result, error)
}

// RunStore is the subset of the run store the scheduler needs.
type RunStore interface {
	Create() (*models.Run, error)
	SetStatus(id uuid.UUID, status models.RunStatus, topic *string) error
	AppendLog(id uuid.UUID, line string) error
	Complete(id uuid.UUID, status models.RunStatus, contentID *uuid.UUID) error
}

// ScheduleStore reads the singleton configuration and records firings.
type ScheduleStore interface {
	Get() (*models.ScheduleConfig, error)
	SetLastRun(t time.Time) error
}

// armedTimer is the one recurring timer the scheduler may own.
type armedTimer struct {
	ticker *time.Ticker
	stop   chan struct{}
}

// Scheduler drives unattended pipeline runs.
type Scheduler struct {
	runner   Runner
	runs     RunStore
	schedule ScheduleStore
	logger   *slog.Logger

	mu    sync.Mutex
	timer *armedTimer
}

// New creates a scheduler. Call Reconcile to arm it from stored config.
func New(runner Runner, runs RunStore, schedule ScheduleStore) *Scheduler {
	return &Scheduler{
		runner:   runner,
		runs:     runs,
		schedule: schedule,
		logger:   slog.Default().With("component", "scheduler"),
	}
}

// firingPeriod derives the timer period from the configured interval.
// Intervals under an hour fire every N minutes; 60 and above drop the
// minutes component and fire on whole hours.
func firingPeriod(intervalMinutes int) time.Duration {
	if intervalMinutes < 60 {
		return time.Duration(intervalMinutes) * time.Minute
	}
	return time.Duration(intervalMinutes/60) * time.Hour
}

// Reconcile reads the configuration and replaces the armed timer to match:
// inactive disarms, active re-arms with the computed period. Failures are
// logged and leave the previous timer state intact; callers never see them.
func (s *Scheduler) Reconcile() {
	cfg, err := s.schedule.Get()
	if err != nil {
		s.logger.Error("reconcile: read schedule config", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.disarmLocked()

	if !cfg.IsActive {
		s.logger.Info("scheduler disarmed", "reason", "inactive")
		return
	}

	period := firingPeriod(cfg.IntervalMinutes)
	s.armLocked(period)
	s.logger.Info("scheduler armed", "interval_minutes", cfg.IntervalMinutes, "period", period)
}

// Stop disarms the timer. In-flight runs finish on their own.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarmLocked()
}

// Armed reports whether a timer is currently installed.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Scheduler) armLocked(period time.Duration) {
	t := &armedTimer{
		ticker: time.NewTicker(period),
		stop:   make(chan struct{}),
	}
	s.timer = t

	go func() {
		for {
			select {
			case <-t.ticker.C:
				if _, err := s.RunNow(""); err != nil {
					s.logger.Error("scheduled run failed to start", "error", err)
				}
			case <-t.stop:
				return
			}
		}
	}()
}

func (s *Scheduler) disarmLocked() {
	if s.timer == nil {
		return
	}
	s.timer.ticker.Stop()
	close(s.timer.stop)
	s.timer = nil
}

// RunNow starts a pipeline run outside the timer: a run record is created
// immediately and returned, and the run proceeds in the background. An
// empty topic means the pipeline chooses one autonomously.
func (s *Scheduler) RunNow(topic string) (*models.Run, error) {
	run, err := s.runs.Create()
	if err != nil {
		return nil, fmt.Errorf("scheduler: create run record: %w", err)
	}

	go s.execute(run, topic)
	return run, nil
}

// execute performs one full run against its record. Runs are not
// cancellable once started, so the background context is deliberate.
func (s *Scheduler) execute(run *models.Run, topic string) {
	ctx := context.Background()

	rec := func(msg string) {
		line := fmt.Sprintf("[%s] %s", time.Now().UTC().Format("2006-01-02 15:04:05"), msg)
		if err := s.runs.AppendLog(run.ID, line); err != nil {
			s.logger.Warn("append run log", "run", run.ID, "error", err)
		}
	}

	if err := s.schedule.SetLastRun(time.Now()); err != nil {
		s.logger.Warn("record last run time", "error", err)
	}

	if topic == "" {
		chosen, err := s.runner.ChooseTopic(ctx)
		if err != nil {
			rec("topic selection failed: " + err.Error())
			s.finish(run.ID, models.RunStatusFailed, nil)
			return
		}
		topic = chosen
		rec("topic selected: " + topic)
	} else {
		rec("topic provided: " + topic)
	}

	if err := s.runs.SetStatus(run.ID, models.RunStatusGenerating, &topic); err != nil {
		s.logger.Error("advance run status", "run", run.ID, "error", err)
	}

	result, err := s.runner.Run(ctx, topic, nil, rec)
	if err != nil {
		rec("run aborted: " + err.Error())
		s.finish(run.ID, models.RunStatusFailed, nil)
		return
	}

	var contentID *uuid.UUID
	status := models.RunStatusCompleted
	if result.Content != nil {
		contentID = &result.Content.ID
		if result.Content.Status == models.ContentStatusDraft {
			status = models.RunStatusFailed
		}
	}
	for _, e := range result.Errors {
		rec("stage error: " + e)
	}

	s.finish(run.ID, status, contentID)
}

func (s *Scheduler) finish(id uuid.UUID, status models.RunStatus, contentID *uuid.UUID) {
	if err := s.runs.Complete(id, status, contentID); err != nil {
		s.logger.Error("complete run record", "run", id, "error", err)
	}
}
