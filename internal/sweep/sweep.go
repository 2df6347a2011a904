// Package sweep re-runs the batch on a schedule so rows that failed or
// never ran get another chance without an operator kicking them off. A
// sweep is always a resume pass: finished work is never repeated.
package sweep

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/reformlab/reformer/internal/driver"
	"github.com/reformlab/reformer/internal/event"
	"github.com/reformlab/reformer/internal/metrics"
	"github.com/reformlab/reformer/pkg/log"
	"github.com/robfig/cron"
)

// RunFunc executes one sweep pass and reports its summary.
type RunFunc func(ctx context.Context) (*driver.Summary, error)

// Config parameterizes the scheduler.
type Config struct {
	// Schedule is a five-field cron expression.
	Schedule string
	// Timezone optionally anchors the schedule; empty means local time.
	Timezone string
}

// Scheduler fires sweep passes on a cron schedule.
type Scheduler struct {
	schedule cron.Schedule
	location *time.Location
	bus      event.Bus
	run      RunFunc
}

// New parses the schedule and builds a scheduler around the given run
// function.
func New(cfg Config, bus event.Bus, run RunFunc) (*Scheduler, error) {
	if run == nil {
		return nil, errors.New("sweep: run function is required")
	}

	expr := strings.TrimSpace(cfg.Schedule)
	if expr == "" {
		return nil, errors.New("sweep: schedule is required")
	}

	parser := cron.NewParser(
		cron.Minute |
			cron.Hour |
			cron.Dom |
			cron.Month |
			cron.Dow,
	)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "sweep: parse schedule %q", expr)
	}

	var location *time.Location
	if tz := strings.TrimSpace(cfg.Timezone); tz != "" {
		if location, err = time.LoadLocation(tz); err != nil {
			return nil, errors.Wrapf(err, "sweep: invalid timezone %q", tz)
		}
	}

	return &Scheduler{
		schedule: schedule,
		location: location,
		bus:      bus,
		run:      run,
	}, nil
}

// Start blocks firing sweeps until ctx is cancelled. A failed sweep is
// logged and counted, not fatal; the schedule keeps going.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info("sweep scheduler started", "next", s.nextTick().Format(time.RFC3339))

	for {
		select {
		case <-time.After(time.Until(s.nextTick())):
			s.fire(ctx)
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
}

func (s *Scheduler) fire(ctx context.Context) {
	summary, err := s.run(ctx)
	if err != nil {
		metrics.SweepRunsTotal.WithLabelValues("error").Inc()
		log.Error("sweep failed", "error", err)
		return
	}

	metrics.SweepRunsTotal.WithLabelValues("ok").Inc()
	log.Info("sweep completed",
		"batch_id", summary.BatchID,
		"completed", summary.Completed,
		"converged", summary.Converged,
		"skipped", summary.Skipped,
	)

	if s.bus == nil {
		return
	}

	evt := event.Event{
		Type:      event.TypeSweepCompleted,
		BatchID:   summary.BatchID,
		Timestamp: time.Now().UTC(),
	}
	if payload, err := json.Marshal(summary); err == nil {
		evt.Payload = payload
	}
	s.bus.Publish(evt)
}

func (s *Scheduler) nextTick() time.Time {
	base := time.Now()
	if s.location != nil {
		base = base.In(s.location)
	}
	return s.schedule.Next(base)
}
