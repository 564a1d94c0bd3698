// Package cli provides the command-line interface for pdparty.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/klauern/pdparty/internal/config"
	"github.com/klauern/pdparty/internal/logging"
	"github.com/klauern/pdparty/internal/progress"
	"github.com/klauern/pdparty/internal/treesync"
	"github.com/klauern/pdparty/internal/ui"
)

var (
	// Version is the current version of the application.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// BuildDate is the date and time of the build.
	BuildDate = "unknown"
)

// Run executes the CLI application with the given context and arguments.
func Run(ctx context.Context, args []string) error {
	return newCommand(os.Stdout, os.Stderr).Run(ctx, args)
}

func newCommand(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "pdparty",
		Usage:     "Keep bundled Pd resources in sync and drive the PdParty runtime",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output (info level logging, unchanged entries in reports)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug output (debug level logging, implies verbose)",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "json-logs",
				Usage: "Emit logs as JSON",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a config file (.yaml or .toml)",
				Sources: cli.EnvVars(config.EnvPrefix + "CONFIG"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			configureColors(cmd)
			return ctx, configureLogging(cmd)
		},
		Commands: []*cli.Command{
			versionCommand(),
			configCommand(),
			syncCommand(),
			statusCommand(),
			runCommand(),
			openCommand(),
		},
	}
}

// configureColors sets up color output based on CLI flags.
func configureColors(cmd *cli.Command) {
	if cmd.Bool("no-color") {
		ui.DisableColors()
	}
}

// configureLogging sets up the logging level based on CLI flags.
func configureLogging(cmd *cli.Command) error {
	opts := logging.DefaultOptions()
	opts.JSON = cmd.Bool("json-logs")

	if cmd.Bool("debug") {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	} else if cmd.Bool("verbose") {
		opts.Level = slog.LevelInfo
	}

	logger := logging.New(opts)
	logging.SetDefault(logger)

	logging.Debug("logging configured", slog.String("level", opts.Level.String()))

	return nil
}

// loadConfig loads the config named by --config, or the default config
// file, and applies its output policy.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := cmd.String("config"); path != "" {
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	switch cfg.Output.Color {
	case "never":
		ui.DisableColors()
	case "always":
		if !cmd.Bool("no-color") {
			ui.EnableColors()
		}
	}
	return cfg, nil
}

func verbose(cmd *cli.Command, cfg *config.Config) bool {
	return cmd.Bool("verbose") || cmd.Bool("debug") || cfg.Output.Verbose
}

// syncObserver combines progress bars (per the output policy) with extra
// observers such as metrics.
func syncObserver(cmd *cli.Command, cfg *config.Config, extra ...treesync.Observer) treesync.Observer {
	var obs treesync.Observers
	switch cfg.Output.Progress {
	case "never":
	case "always":
		obs = append(obs, progress.NewSyncObserver(cmd.Root().ErrWriter, true))
	default:
		obs = append(obs, progress.NewSyncObserver(cmd.Root().ErrWriter, false))
	}
	return append(obs, extra...)
}

// selectTrees returns the requested trees, or every configured tree when
// none are named.
func selectTrees(cfg *config.Config, names []string) ([]string, error) {
	if len(names) == 0 {
		return cfg.Sync.Trees, nil
	}
	for _, n := range names {
		if !slices.Contains(cfg.Sync.Trees, n) {
			return nil, fmt.Errorf("unknown tree %q (configured: %s)", n, strings.Join(cfg.Sync.Trees, ", "))
		}
	}
	return names, nil
}
