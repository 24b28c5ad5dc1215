package commands

import (
	"github.com/de-tools/env-expiry/pkg/adapters"
	"github.com/de-tools/env-expiry/pkg/runtime/terminal/export"
	"github.com/de-tools/env-expiry/pkg/services/workflow"
	"github.com/spf13/cobra"
)

type RunCmd struct {
	deps Deps
	demo bool
}

func NewRunCmd(deps Deps) *cobra.Command {
	rc := &RunCmd{deps: deps}
	return &cobra.Command{
		Use:   "run",
		Short: "Run the expiration check once and send the report",
		Args:  cobra.NoArgs,
		RunE:  rc.run,
	}
}

// NewDemoCmd runs the full pipeline against fabricated environments in mock mode.
func NewDemoCmd(deps Deps) *cobra.Command {
	rc := &RunCmd{deps: deps, demo: true}
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the pipeline against demo environments and print the payload",
		Args:  cobra.NoArgs,
		RunE:  rc.run,
	}
}

func (rc *RunCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := rc.deps.LoadConfig()
	if err != nil {
		return err
	}

	runner, err := newRunner(cfg, rc.deps.Output, rc.demo)
	if err != nil {
		return err
	}

	source := "cli"
	if rc.demo {
		source = "demo"
	}
	res, runErr := workflow.NewController(runner).Trigger(cmd.Context(), source)

	if err := export.NewSummaryReporter(rc.deps.ErrOutput).Handle(adapters.MapRunResultDomainToApi(res, runErr)); err != nil {
		return err
	}
	return runErr
}
