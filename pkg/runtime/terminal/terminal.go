package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/de-tools/env-expiry/pkg/runtime/terminal/commands"
	"github.com/de-tools/env-expiry/pkg/services/config"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CLI represents the command-line interface
type CLI struct {
	opts    Options
	viper   *viper.Viper
	rootCmd *cobra.Command

	cfgPath   string
	envFile   string
	logLevel  string
	logFormat string
}

// Options contain configuration for the CLI
type Options struct {
	// Output receives report payloads and tables.
	Output io.Writer
	// ErrOutput receives logs and run summaries.
	ErrOutput io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}

	cli := &CLI{
		opts:  opts,
		viper: config.NewViper(),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background())
}

func (cli *CLI) ExecuteContext(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "expiry",
		Short:             "Deployment environment expiration notifier",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: cli.setup,
	}
	cmd.SetOut(cli.opts.Output)
	cmd.SetErr(cli.opts.ErrOutput)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cli.cfgPath, "config", "c", "", "Path to a config file (yaml, json or toml)")
	flags.StringVar(&cli.envFile, "env-file", ".env", "Path to a .env file, ignored when missing")
	flags.StringVar(&cli.logLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&cli.logFormat, "log-format", "console", "Log format (console or json)")
	flags.String("subscription-id", "", "Azure subscription to scan")
	flags.String("webhook-url", "", "Chat webhook URL")
	flags.Bool("mock", false, "Print the payload instead of posting it")
	flags.Bool("verbose", false, "Include healthy environments in the report")
	flags.String("timezone", "", "IANA zone used for calendar-day comparison")

	bindings := map[string]string{
		"subscription_id": "subscription-id",
		"webhook_url":     "webhook-url",
		"mock_mode":       "mock",
		"verbose":         "verbose",
		"timezone":        "timezone",
	}
	for key, flag := range bindings {
		_ = cli.viper.BindPFlag(key, flags.Lookup(flag))
	}

	deps := commands.Deps{
		LoadConfig: cli.loadConfig,
		Output:     cli.opts.Output,
		ErrOutput:  cli.opts.ErrOutput,
	}
	cmd.AddCommand(commands.NewRunCmd(deps))
	cmd.AddCommand(commands.NewDemoCmd(deps))
	cmd.AddCommand(commands.NewListCmd(deps))
	cmd.AddCommand(commands.NewServeCmd(deps))

	return cmd
}

func (cli *CLI) setup(cmd *cobra.Command, _ []string) error {
	logger, err := NewLogger(cli.opts.ErrOutput, cli.logLevel, cli.logFormat)
	if err != nil {
		return err
	}

	if err := godotenv.Load(cli.envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load env file: %w", err)
		}
		logger.Debug().Str("path", cli.envFile).Msg("no env file found")
	}

	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}

func (cli *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cli.viper, cli.cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyProfile(); err != nil {
		return nil, fmt.Errorf("failed to apply azure profile: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the root logger. Console output is human readable, json is one object per line.
func NewLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	switch format {
	case "json":
	case "console", "":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Logger{}, fmt.Errorf("unsupported log format %q (want console or json)", format)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
