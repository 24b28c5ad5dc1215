package commands

import (
	"fmt"

	"github.com/de-tools/env-expiry/pkg/runtime/terminal/export"
	"github.com/spf13/cobra"
)

type ListCmd struct {
	deps Deps
	demo bool
}

// NewListCmd prints the classified environments as a table without sending anything.
func NewListCmd(deps Deps) *cobra.Command {
	lc := &ListCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tagged environments grouped by urgency",
		Args:  cobra.NoArgs,
		RunE:  lc.run,
	}

	cmd.Flags().BoolVar(&lc.demo, "demo", false, "Use demo environments instead of querying Azure")

	return cmd
}

func (lc *ListCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, err := lc.deps.LoadConfig()
	if err != nil {
		return err
	}
	// Nothing is delivered, so the webhook is not required.
	cfg.MockMode = true

	runner, err := newRunner(cfg, lc.deps.Output, lc.demo)
	if err != nil {
		return err
	}

	res, err := runner.Build(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	return export.NewReporter(lc.deps.Output, cfg.Location()).Handle(res.Report)
}
