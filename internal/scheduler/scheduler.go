package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/cwa-weather-push/internal/weather"
)

// DefaultSchedule fires at 05:30 and 17:30, half an hour after the CWA
// 12-hour forecast refresh.
const DefaultSchedule = "30 5,17 * * *"

// Runner is the job fired on every tick.
type Runner interface {
	Run(ctx context.Context) (weather.RunReport, error)
}

// Scheduler owns a single cron job that runs the push pipeline.
// Missed firings are not caught up.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       *gocron.Job
	runner    Runner
	spec      string
}

// New creates a new Scheduler evaluating spec in loc.
func New(runner Runner, spec string, loc *time.Location) *Scheduler {
	if spec == "" {
		spec = DefaultSchedule
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		runner:    runner,
		spec:      spec,
	}
}

// Start registers the job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.job != nil {
		return fmt.Errorf("scheduler already started")
	}

	job, err := s.scheduler.Cron(s.spec).SingletonMode().Do(s.runOnce)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}
	s.job = job

	s.scheduler.StartAsync()
	log.Printf("INFO: scheduler started (%s, %s), next run %s",
		s.spec, s.scheduler.Location(), job.NextRun().Format(time.RFC3339))
	return nil
}

// NextRun reports when the job fires next, or the zero time if not started.
func (s *Scheduler) NextRun() time.Time {
	if s.job == nil {
		return time.Time{}
	}
	return s.job.NextRun()
}

// Stop stops the scheduler and cancels any future runs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// runOnce runs to completion; each remote call is bounded by its client timeout.
func (s *Scheduler) runOnce() {
	log.Println("INFO: scheduler: running weather push job")
	if _, err := s.runner.Run(context.Background()); err != nil {
		log.Printf("ERROR: scheduler: weather push job failed: %v", err)
		return
	}
	log.Println("INFO: scheduler: completed weather push job")
}
