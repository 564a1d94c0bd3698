package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/klauern/pdparty/internal/app"
	"github.com/klauern/pdparty/internal/logging"
	"github.com/klauern/pdparty/internal/metrics"
	"github.com/klauern/pdparty/internal/registry"
	"github.com/klauern/pdparty/internal/ui"
)

const shutdownTimeout = 10 * time.Second

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Launch the runtime: sync lib, start subsystems, sync the rest in the background",
		Description: `Runs until interrupted. On Unix, SIGUSR1 moves the runtime to the
   background (subsystems are suspended unless app.runs_in_background is set)
   and SIGUSR2 brings it back to the foreground.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address (overrides metrics.addr)",
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Exit after background synchronization finishes",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			m := metrics.New()
			a, err := app.New(app.Options{
				Config:        cfg,
				Logger:        logging.Default(),
				SyncObserver:  syncObserver(cmd, cfg, m),
				StateObserver: m,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := cmd.Root().Writer
			res, err := a.Start(ctx)
			if err != nil {
				return err
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()
				if err := a.Terminate(shutdownCtx); err != nil {
					logging.Warn("teardown reported errors", logging.Err(err))
				}
			}()
			printStartup(w, a, res)

			addr := cmd.String("metrics-addr")
			if addr == "" {
				addr = cfg.Metrics.Addr
			}
			if addr != "" {
				go func() {
					if err := m.Serve(ctx, addr); err != nil {
						logging.Error("metrics server failed", logging.Err(err))
					}
				}()
				logging.Info("serving metrics", slog.String("addr", addr))
			}

			if cmd.Bool("once") {
				if err := a.Wait(ctx); err != nil {
					return err
				}
				for _, r := range a.Reports() {
					ui.PrintReport(w, r, verbose(cmd, cfg))
				}
				return nil
			}

			return superviseLifecycle(ctx, a)
		},
	}
}

func printStartup(w io.Writer, a *app.App, res *registry.InitResult) {
	fmt.Fprintln(w, ui.Header("Subsystems"))
	ui.PrintStates(w, a.Registry().States())
	if len(res.Skipped) > 0 {
		fmt.Fprintln(w, ui.StatusWarning(fmt.Sprintf("%d unregistered subsystem(s) skipped", len(res.Skipped))))
	}
	if err := a.SyncErr("lib"); err != nil {
		fmt.Fprintln(w, ui.StatusError("lib: "+err.Error()))
	}
}

// superviseLifecycle forwards background and foreground signals to the app
// until ctx is done.
func superviseLifecycle(ctx context.Context, a *app.App) error {
	sigs := make(chan os.Signal, 1)
	notifyLifecycle(sigs)
	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			logging.Info("shutting down")
			return nil
		case sig := <-sigs:
			var err error
			if isBackgroundSignal(sig) {
				err = a.EnterBackground(ctx)
			} else {
				err = a.EnterForeground(ctx)
			}
			if err != nil && !errors.Is(err, app.ErrTerminated) {
				logging.Warn("lifecycle transition failed", "signal", sig.String(), logging.Err(err))
			}
		}
	}
}
