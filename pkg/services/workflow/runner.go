package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/de-tools/env-expiry/pkg/models/domain"
	"github.com/de-tools/env-expiry/pkg/services/config"
	"github.com/de-tools/env-expiry/pkg/services/expiry"
	"github.com/de-tools/env-expiry/pkg/services/inventory"
	"github.com/de-tools/env-expiry/pkg/services/notify"
	"github.com/de-tools/env-expiry/pkg/services/report"
	"github.com/rs/zerolog"
)

type Settings struct {
	Tags     config.Tags
	Location *time.Location
	Verbose  bool
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Tags:     cfg.Tags,
		Location: cfg.Location(),
		Verbose:  cfg.Verbose,
	}
}

// Runner executes one pass: enumerate, normalize, classify, build, deliver.
type Runner struct {
	enumerator inventory.Enumerator
	notifier   notify.Notifier
	settings   Settings
	clock      func() time.Time
	onReport   func(*domain.Report)
}

type Option func(*Runner)

// WithClock replaces time.Now as the source of the current time.
func WithClock(clock func() time.Time) Option {
	return func(r *Runner) { r.clock = clock }
}

// WithReportHook is called with the finished report right before delivery.
func WithReportHook(hook func(*domain.Report)) Option {
	return func(r *Runner) { r.onReport = hook }
}

func NewRunner(enumerator inventory.Enumerator, notifier notify.Notifier, settings Settings, opts ...Option) *Runner {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	r := &Runner{
		enumerator: enumerator,
		notifier:   notifier,
		settings:   settings,
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run returns an EnumerationError when the inventory cannot be read; nothing is sent in that case.
// Delivery failures are returned wrapped, together with the already computed result.
func (r *Runner) Run(ctx context.Context) (*domain.RunResult, error) {
	result, err := r.Build(ctx)
	if err != nil {
		return nil, err
	}
	if r.onReport != nil {
		r.onReport(result.Report)
	}

	sent, err := r.notifier.Deliver(ctx, result.Report)
	if err != nil {
		return result, fmt.Errorf("failed to deliver report: %w", err)
	}
	result.Send = sent
	return result, nil
}

// Build runs every stage except delivery.
func (r *Runner) Build(ctx context.Context) (*domain.RunResult, error) {
	logger := zerolog.Ctx(ctx)
	now := r.clock()

	records, err := r.enumerator.Enumerate(ctx)
	if err != nil {
		return nil, &domain.EnumerationError{Err: err}
	}
	logger.Info().Int("records", len(records)).Msg("enumerated tagged resources")

	envs := make([]domain.Environment, 0, len(records))
	var warnings []domain.NormalizationWarning
	for _, raw := range records {
		env, warn := expiry.Normalize(raw, r.settings.Tags, r.settings.Location)
		if warn != nil {
			logger.Warn().
				Str("resource_id", warn.ResourceID).
				Str("reason", string(warn.Reason)).
				Str("tag", warn.Tag).
				Str("value", warn.Value).
				Msg("skipping record")
			warnings = append(warnings, *warn)
			continue
		}
		envs = append(envs, *env)
	}

	classified := expiry.ClassifyAll(envs, now, r.settings.Location)
	rep := report.Build(classified, now, report.StatsFromWarnings(warnings), report.Options{
		Verbose: r.settings.Verbose,
	})

	logger.Info().
		Int("expired", rep.Count(domain.BucketExpired)).
		Int("tomorrow", rep.Count(domain.BucketTomorrow)).
		Int("three_days", rep.Count(domain.BucketThreeDays)).
		Int("seven_days", rep.Count(domain.BucketSevenDays)).
		Int("attention", rep.TotalCount).
		Int("parse_errors", rep.ParseErrors).
		Int("missing_expiration", rep.MissingExpiration).
		Msg("report built")

	return &domain.RunResult{Report: rep, Warnings: warnings}, nil
}
