package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/klauern/pdparty/internal/app"
	"github.com/klauern/pdparty/internal/config"
	"github.com/klauern/pdparty/internal/glue"
	"github.com/klauern/pdparty/internal/logging"
	"github.com/klauern/pdparty/internal/subsystem/scene"
	"github.com/klauern/pdparty/internal/treesync"
	"github.com/klauern/pdparty/internal/ui"
	"github.com/klauern/pdparty/internal/ui/tui"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Display or initialize the configuration",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "init",
				Usage: "Write the default configuration file",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing file with --init",
			},
			&cli.BoolFlag{
				Name:  "toml",
				Usage: "Print the configuration as TOML",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer
			path := cmd.String("config")
			if path == "" {
				path = config.FilePath()
			}

			if cmd.Bool("init") {
				if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
					return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
				}
				if err := config.Default().SaveToPath(path); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
				fmt.Fprintln(w, ui.StatusSuccess("Wrote "+path))
				return nil
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			status := ui.Dim("(not found, using defaults)")
			if _, err := os.Stat(path); err == nil {
				status = ui.Dim("(loaded)")
			}
			fmt.Fprintf(w, "%s %s %s\n\n", ui.Bold("Config file:"), path, status)

			data, err := cfg.Marshal(cmd.Bool("toml"))
			if err != nil {
				return err
			}
			_, err = w.Write(data)
			return err
		},
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Synchronize bundled resource trees into the user tree",
		ArgsUsage: "[tree...]",
		Description: `Copy the bundled lib, samples and tests trees into the user tree.
   Each top-level entry is staged and swapped in, so an interrupted run never
   leaves a half-written directory behind. Entries already up to date are left
   alone.

   Examples:
     pdparty sync
     pdparty sync lib
     pdparty sync --dry-run samples tests`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"d"},
				Usage:   "Preview changes without modifying files",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Exit with an error when any entry failed",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			trees, err := selectTrees(cfg, cmd.Args().Slice())
			if err != nil {
				return err
			}

			a, err := app.New(app.Options{
				Config:       cfg,
				Logger:       logging.Default(),
				SyncObserver: syncObserver(cmd, cfg),
			})
			if err != nil {
				return err
			}

			return syncTrees(ctx, cmd.Root().Writer, a, trees, cmd.Bool("dry-run"), cmd.Bool("strict"), verbose(cmd, cfg))
		},
	}
}

func syncTrees(ctx context.Context, w io.Writer, a *app.App, trees []string, dryRun, strict, verbose bool) error {
	var errs []error
	for _, name := range trees {
		report, err := a.Sync(ctx, name, dryRun)
		if report != nil && (err == nil || len(report.Items) > 0) {
			ui.PrintReport(w, report, verbose)
		}
		if err != nil {
			fmt.Fprintln(w, ui.StatusError(fmt.Sprintf("%s: %v", name, err)))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		if strict && !report.Success() {
			errs = append(errs, fmt.Errorf("%s: %d entries failed", name, len(report.Failed())))
		}
	}
	return errors.Join(errs...)
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "Show what a synchronization would change",
		ArgsUsage: "[tree...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Browse the plan in an interactive table and apply it",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			trees, err := selectTrees(cfg, cmd.Args().Slice())
			if err != nil {
				return err
			}
			a, err := app.New(app.Options{Config: cfg, Logger: logging.Default()})
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			var (
				reports []*treesync.Report
				errs    []error
			)
			for _, name := range trees {
				report, err := a.Sync(ctx, name, true)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", name, err))
					continue
				}
				reports = append(reports, report)
			}

			if !cmd.Bool("interactive") {
				for _, r := range reports {
					ui.PrintReport(w, r, verbose(cmd, cfg))
				}
				for _, err := range errs {
					fmt.Fprintln(w, ui.StatusError(err.Error()))
				}
				return errors.Join(errs...)
			}

			res, err := tui.RunPlan(reports)
			if err != nil {
				return err
			}
			if res.Action != tui.PlanActionSync {
				return errors.Join(errs...)
			}

			synced, err := app.New(app.Options{
				Config:       cfg,
				Logger:       logging.Default(),
				SyncObserver: syncObserver(cmd, cfg),
			})
			if err != nil {
				return err
			}
			return syncTrees(ctx, w, synced, res.Trees, false, false, verbose(cmd, cfg))
		},
	}
}

func openCommand() *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "Open a URL or a file of the active scene in the browser",
		ArgsUsage: "<url>",
		Description: `Relative paths resolve against the scene folder.

   Examples:
     pdparty open --scene samples/drone info.html
     pdparty open https://puredata.info`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "scene",
				Usage: "Scene folder, relative to the user tree (defaults to app.scene)",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Title for the launched content",
			},
			&cli.BoolFlag{
				Name:  "print",
				Usage: "Print the resolved URL instead of opening it",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errors.New("open requires exactly 1 argument: <url>")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			scenes, err := scene.New(cfg.UserRoot())
			if err != nil {
				return err
			}
			name := cmd.String("scene")
			if name == "" {
				name = cfg.App.Scene
			}
			if name != "" {
				if err := scenes.Open(name); err != nil {
					return err
				}
			}

			launcher := glue.NewBrowserLauncher(scenes)
			if cmd.Bool("print") {
				target, err := launcher.Resolve(cmd.Args().First())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.Root().Writer, target)
				return nil
			}
			return launcher.Launch(ctx, cmd.Args().First(), cmd.String("title"))
		},
	}
}
