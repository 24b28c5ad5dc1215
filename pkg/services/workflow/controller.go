package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/de-tools/env-expiry/pkg/models/domain"
	"github.com/rs/zerolog"
)

var ErrRunInProgress = errors.New("a run is already in progress")

type Pipeline interface {
	Run(ctx context.Context) (*domain.RunResult, error)
}

// Controller guards a pipeline so that the scheduler and manual triggers never overlap.
type Controller interface {
	Trigger(ctx context.Context, source string) (*domain.RunResult, error)
	LastRun() (domain.RunRecord, bool)
}

type DefaultController struct {
	pipeline Pipeline

	running sync.Mutex
	mu      sync.Mutex
	last    *domain.RunRecord
}

func NewController(pipeline Pipeline) *DefaultController {
	return &DefaultController{pipeline: pipeline}
}

func (ctrl *DefaultController) Trigger(ctx context.Context, source string) (*domain.RunResult, error) {
	if !ctrl.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer ctrl.running.Unlock()

	logger := zerolog.Ctx(ctx).With().Str("trigger", source).Logger()
	ctx = logger.WithContext(ctx)

	rec := domain.RunRecord{Source: source, StartedAt: time.Now()}
	logger.Info().Msg("expiration check started")

	res, err := ctrl.pipeline.Run(ctx)

	rec.FinishedAt = time.Now()
	rec.Err = err
	ctrl.mu.Lock()
	ctrl.last = &rec
	ctrl.mu.Unlock()

	if err != nil {
		logger.Error().Err(err).Dur("took", rec.FinishedAt.Sub(rec.StartedAt)).Msg("expiration check failed")
		return res, err
	}
	logger.Info().Dur("took", rec.FinishedAt.Sub(rec.StartedAt)).Msg("expiration check completed")
	return res, nil
}

func (ctrl *DefaultController) LastRun() (domain.RunRecord, bool) {
	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	if ctrl.last == nil {
		return domain.RunRecord{}, false
	}
	return *ctrl.last, true
}
