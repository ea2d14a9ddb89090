package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sawyersrpg/savecore/internal/cli/output"
	"github.com/sawyersrpg/savecore/internal/core/domain"
)

// CloudCommand returns the cloud subcommand group.
func CloudCommand() *cli.Command {
	return &cli.Command{
		Name:  "cloud",
		Usage: "Back up, restore, and inspect cloud saves",
		Subcommands: []*cli.Command{
			{
				Name:      "backup",
				Usage:     "Upload a slot to the cloud save server",
				ArgsUsage: "SLOT",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "all",
						Aliases: []string{"a"},
						Usage:   "Back up every occupied slot",
					},
				},
				Action: cloudBackup,
			},
			{
				Name:      "restore",
				Usage:     "Download a cloud save into a local slot",
				ArgsUsage: "SLOT",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite the local slot without confirmation",
					},
				},
				Action: cloudRestore,
			},
			{
				Name:      "status",
				Usage:     "Compare a local slot against its cloud copy",
				ArgsUsage: "SLOT",
				Action:    cloudStatus,
			},
			{
				Name:   "pending",
				Usage:  "List uploads deferred while the network was down",
				Action: cloudPending,
			},
			{
				Name:   "flush",
				Usage:  "Retry deferred uploads",
				Action: cloudFlush,
			},
		},
	}
}

func cloudBackup(c *cli.Context) error {
	e, closeEnv, err := openEnv(c)
	if err != nil {
		return err
	}
	defer closeEnv()

	mgr, err := e.cloudManager()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var indices []int
	if c.Bool("all") {
		metas, err := e.slots.List(ctx)
		if err != nil {
			return err
		}
		for _, meta := range metas {
			indices = append(indices, meta.SlotIndex)
		}
	} else {
		index, err := parseSlotIndex(c)
		if err != nil {
			return err
		}
		indices = []int{index}
	}

	for _, index := range indices {
		outcome, err := mgr.BackupToCloud(ctx, index)
		if err != nil {
			return fmt.Errorf("slot %d: %w", index, err)
		}

		switch {
		case outcome.Skipped:
			fmt.Fprintf(c.App.Writer, "Slot %d unchanged since last upload; skipped.\n", index)
		case outcome.Queued:
			fmt.Fprintf(c.App.Writer, "⚠ Slot %d saved locally; upload queued until the network returns.\n", index)
		case outcome.FallbackUsed:
			fmt.Fprintf(c.App.Writer, "⚠ Slot %d saved locally; cloud storage quota exceeded.\n", index)
		default:
			fmt.Fprintf(c.App.Writer, "✓ Slot %d backed up.\n", index)
		}
	}
	return nil
}

func cloudRestore(c *cli.Context) error {
	index, err := parseSlotIndex(c)
	if err != nil {
		return err
	}

	e, closeEnv, err := openEnv(c)
	if err != nil {
		return err
	}
	defer closeEnv()

	mgr, err := e.cloudManager()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Restoring overwrites the local slot, so an occupied slot needs an
	// explicit go-ahead.
	if !c.Bool("force") {
		if _, err := e.slots.Record(ctx, index); err == nil {
			fmt.Fprintf(c.App.Writer, "Slot %d has a local save. Overwrite it with the cloud copy? [y/N]: ", index)
			var confirm string
			fmt.Fscanln(c.App.Reader, &confirm)
			if confirm != "y" && confirm != "Y" {
				fmt.Fprintln(c.App.Writer, "Cancelled.")
				return nil
			}
		}
	}

	state, report, err := mgr.RestoreFromCloud(ctx, index)
	if err != nil {
		if errors.Is(err, domain.ErrCloudNotFound) {
			return cli.Exit(fmt.Sprintf("no cloud save exists for slot %d", index), 1)
		}
		return err
	}

	fmt.Fprintf(c.App.Writer, "✓ Slot %d restored (%s, level %d).\n", index, state.Player.Name, state.Player.Level)
	for _, line := range report.Summary() {
		fmt.Fprintf(c.App.Writer, "  - %s\n", line)
	}
	return nil
}

// statusView is the status view for one slot.
type statusView struct {
	Slot   int    `json:"slot"`
	Status string `json:"status"`
}

func cloudStatus(c *cli.Context) error {
	index, err := parseSlotIndex(c)
	if err != nil {
		return err
	}

	e, closeEnv, err := openEnv(c)
	if err != nil {
		return err
	}
	defer closeEnv()

	mgr, err := e.cloudManager()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status, err := mgr.Status(ctx, index)
	if err != nil {
		return err
	}

	formatter := output.NewFormatter(output.Format(e.flags.Output), e.flags.Wide)
	return formatter.Format(c.App.Writer, statusView{Slot: index, Status: string(status)})
}

// pendingView is the pending-upload list view.
type pendingView struct {
	ID       string `json:"id"`
	Slot     int    `json:"slot"`
	Saved    int64  `json:"saved" table:"millis"`
	Enqueued int64  `json:"enqueued" table:"millis"`
}

func cloudPending(c *cli.Context) error {
	e, closeEnv, err := openEnv(c)
	if err != nil {
		return err
	}
	defer closeEnv()

	mgr, err := e.cloudManager()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	uploads, err := mgr.PendingUploads(ctx)
	if err != nil {
		return err
	}

	rows := make([]pendingView, 0, len(uploads))
	for _, u := range uploads {
		rows = append(rows, pendingView{
			ID:       u.ID,
			Slot:     u.SlotIndex,
			Saved:    u.Timestamp,
			Enqueued: u.EnqueuedAt,
		})
	}

	formatter := output.NewFormatter(output.Format(e.flags.Output), e.flags.Wide)
	if err := formatter.Format(c.App.Writer, rows); err != nil {
		return err
	}
	if output.Format(e.flags.Output) == output.FormatTable {
		fmt.Fprintf(c.App.Writer, "\n%d deferred uploads\n", len(rows))
	}
	return nil
}

func cloudFlush(c *cli.Context) error {
	e, closeEnv, err := openEnv(c)
	if err != nil {
		return err
	}
	defer closeEnv()

	mgr, err := e.cloudManager()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	before, err := mgr.PendingUploads(ctx)
	if err != nil {
		return err
	}
	if len(before) == 0 {
		fmt.Fprintln(c.App.Writer, "No deferred uploads.")
		return nil
	}

	if err := mgr.FlushQueue(ctx); err != nil {
		return err
	}

	after, err := mgr.PendingUploads(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Flushed %d of %d deferred uploads.\n", len(before)-len(after), len(before))
	return nil
}
