package commands

import (
	"io"

	"github.com/de-tools/env-expiry/pkg/services/config"
)

// Deps is resolved by the root command and shared by every subcommand.
type Deps struct {
	// LoadConfig merges defaults, the config file, the environment and flags. The result is not validated.
	LoadConfig func() (*config.Config, error)
	Output     io.Writer
	ErrOutput  io.Writer
}
