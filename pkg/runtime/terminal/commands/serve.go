package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/de-tools/env-expiry/pkg/server"
	"github.com/de-tools/env-expiry/pkg/services/scheduler"
	"github.com/de-tools/env-expiry/pkg/services/workflow"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	scheduledRunTimeout = 5 * time.Minute
	shutdownTimeout     = 10 * time.Second
)

type ServeCmd struct {
	deps Deps
}

func NewServeCmd(deps Deps) *cobra.Command {
	sc := &ServeCmd{deps: deps}
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the check on a schedule and expose the HTTP trigger",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}
}

func (sc *ServeCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger := zerolog.Ctx(ctx)

	cfg, err := sc.deps.LoadConfig()
	if err != nil {
		return err
	}
	runner, err := newRunner(cfg, sc.deps.Output, false)
	if err != nil {
		return err
	}
	ctrl := workflow.NewController(runner)

	sched, err := scheduler.New(scheduler.Config{
		Spec:     cfg.Schedule,
		Location: cfg.Location(),
		Timeout:  scheduledRunTimeout,
	}, func(ctx context.Context) error {
		_, err := ctrl.Trigger(ctx, "schedule")
		return err
	}, *logger)
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	webAPI := server.NewWebAPI(*logger, server.Config{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: shutdownTimeout,
		Dependencies:    server.Dependencies{Controller: ctrl},
	})
	if err := webAPI.Start(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
