package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// pastDueAfter is how late a firing may start before it is reported as past due.
const pastDueAfter = time.Minute

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

type Job func(ctx context.Context) error

type Config struct {
	Spec     string
	Location *time.Location
	// Timeout bounds a single firing. Zero means no bound.
	Timeout time.Duration
}

// Scheduler fires a job on a cron schedule, one firing at a time.
type Scheduler struct {
	config   Config
	schedule cron.Schedule
	job      Job
	logger   zerolog.Logger
	cron     *cron.Cron

	mu       sync.Mutex
	expected time.Time
	now      func() time.Time
}

// ParseSpec validates a five-field cron expression or descriptor such as @daily.
func ParseSpec(spec string) (cron.Schedule, error) {
	s, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

func New(config Config, job Job, logger zerolog.Logger) (*Scheduler, error) {
	if config.Location == nil {
		config.Location = time.UTC
	}
	schedule, err := ParseSpec(config.Spec)
	if err != nil {
		return nil, err
	}
	cl := cronLogger{logger: logger}
	s := &Scheduler{
		config:   config,
		schedule: schedule,
		job:      job,
		logger:   logger,
		now:      time.Now,
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(config.Location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
	return s, nil
}

// Start registers the job and starts the cron loop. Firings derive their context from ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.config.Spec, func() { s.fire(ctx) }); err != nil {
		return fmt.Errorf("failed to register schedule: %w", err)
	}
	s.setExpected(s.schedule.Next(s.now().In(s.config.Location)))
	s.cron.Start()

	s.logger.Info().
		Str("schedule", s.config.Spec).
		Str("location", s.config.Location.String()).
		Time("next", s.Next()).
		Msg("scheduler started")
	return nil
}

// Stop prevents new firings and waits for a running one to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expected
}

func (s *Scheduler) setExpected(t time.Time) {
	s.mu.Lock()
	s.expected = t
	s.mu.Unlock()
}

func (s *Scheduler) fire(ctx context.Context) {
	started := s.now().In(s.config.Location)
	expected := s.Next()
	if !expected.IsZero() && started.Sub(expected) > pastDueAfter {
		s.logger.Warn().
			Time("expected", expected).
			Time("started", started).
			Msg("timer is past due")
	}
	s.setExpected(s.schedule.Next(started))

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	if err := s.job(s.logger.WithContext(ctx)); err != nil {
		s.logger.Error().Err(err).Msg("scheduled run failed")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
