package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sawyersrpg/savecore/internal/config"
	"github.com/sawyersrpg/savecore/internal/infra/confloader"
	"github.com/sawyersrpg/savecore/internal/infra/shutdown"
	"github.com/sawyersrpg/savecore/internal/integrity/schema"
	"github.com/sawyersrpg/savecore/internal/sync"
	"github.com/sawyersrpg/savecore/internal/telemetry/metric"
)

// WatchCommand returns the watch command. It verifies slots whenever
// the saves directory changes, which catches corruption introduced by
// other processes while the game is not running.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Watch the saves directory and verify slots on change",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Value: 2 * time.Second,
				Usage: "Wait this long after the last change before verifying",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Serve Prometheus metrics while watching",
			},
		},
		Action: watchAction,
	}
}

func watchAction(c *cli.Context) error {
	e, closeEnv, err := openEnv(c)
	if err != nil {
		return err
	}
	defer closeEnv()

	if e.cfg.Storage.Backend == config.BackendMemory {
		return fmt.Errorf("watch requires an on-disk backend")
	}

	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(e.logger))
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	if err := watcher.WatchDir(e.cfg.Storage.Dir); err != nil {
		return err
	}

	registry := metric.NewRegistry()
	e.slots.RegisterMetrics(registry)

	// With cloud sync configured, changed slots are also backed up
	// after they verify. The sync manager's fingerprint check keeps
	// repeat sweeps from re-uploading unchanged saves.
	var cloudMgr *sync.Manager
	if e.cfg.Cloud.Enabled && e.cfg.Cloud.Server != "" {
		cloudMgr, err = e.cloudManager()
		if err != nil {
			return err
		}
		cloudMgr.RegisterMetrics(registry)
	}

	handler := shutdown.NewHandler(10 * time.Second)
	handler.OnShutdown(func(ctx context.Context) error {
		return watcher.Stop()
	})

	if c.Bool("metrics") || e.cfg.Metrics.Enabled {
		srv := metric.NewServer(e.cfg.Metrics.Addr, registry, e.logger)
		srv.Start()
		handler.OnShutdown(srv.Shutdown)
	}

	// Coalesce change bursts; a single save touches several files on
	// the Badger backend.
	changes := make(chan string, 16)
	watcher.OnChange(func(path string) {
		select {
		case changes <- path:
		default:
		}
	})
	watcher.StartAsync()

	go func() {
		debounce := c.Duration("debounce")
		var timer *time.Timer
		for range changes {
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				verifyAll(c, e, cloudMgr)
			})
		}
	}()

	fmt.Fprintf(c.App.Writer, "Watching %s (ctrl-c to stop)\n", e.cfg.Storage.Dir)
	return handler.Wait()
}

// verifyAll re-verifies every occupied slot, reports problems, and
// backs up the healthy ones when cloud sync is configured.
func verifyAll(c *cli.Context, e *env, cloudMgr *sync.Manager) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	metas, err := e.slots.List(ctx)
	if err != nil {
		e.logger.Error("verify sweep failed", "error", err)
		return
	}

	for _, meta := range metas {
		res, err := verifySlot(ctx, e, meta.SlotIndex, schema.Options{})
		if err != nil {
			e.logger.Error("slot unreadable", "slot", meta.SlotIndex, "error", err)
			continue
		}
		if !res.Valid || !res.ChecksumOK {
			fmt.Fprintf(c.App.Writer, "⚠ slot %d failed verification (checksum ok: %v, errors: %d)\n",
				meta.SlotIndex, res.ChecksumOK, len(res.Errors))
			continue
		}

		if cloudMgr == nil {
			continue
		}
		outcome, err := cloudMgr.BackupToCloud(ctx, meta.SlotIndex)
		if err != nil {
			e.logger.Error("backup failed", "slot", meta.SlotIndex, "error", err)
			continue
		}
		if !outcome.Skipped {
			fmt.Fprintf(c.App.Writer, "✓ slot %d backed up (%s)\n", meta.SlotIndex, outcome.SavedTo)
		}
	}
	e.logger.Info("verify sweep complete", "slots", len(metas))
}
