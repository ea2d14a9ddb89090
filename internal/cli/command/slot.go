package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sawyersrpg/savecore/internal/cli/output"
	"github.com/sawyersrpg/savecore/internal/core/domain"
)

// SlotCommand returns the slot subcommand group.
func SlotCommand() *cli.Command {
	return &cli.Command{
		Name:    "slot",
		Aliases: []string{"slots"},
		Usage:   "Manage local save slots",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List occupied save slots",
				Action: slotList,
			},
			{
				Name:      "show",
				Usage:     "Load a slot through the integrity pipeline and show it",
				ArgsUsage: "SLOT",
				Action:    slotShow,
			},
			{
				Name:      "delete",
				Usage:     "Delete a save slot",
				ArgsUsage: "SLOT",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					},
				},
				Action: slotDelete,
			},
			{
				Name:      "export",
				Usage:     "Export a slot's raw save record to a file",
				ArgsUsage: "SLOT FILE",
				Action:    slotExport,
			},
			{
				Name:      "import",
				Usage:     "Import a save record file into a slot",
				ArgsUsage: "SLOT FILE",
				Action:    slotImport,
			},
		},
	}
}

// slotListRow is the list view of one occupied slot.
type slotListRow struct {
	Slot     int    `json:"slot"`
	Name     string `json:"name"`
	Saved    int64  `json:"saved" table:"millis"`
	PlayTime string `json:"playTime"`
	Version  string `json:"version" table:"wide"`
}

func slotList(c *cli.Context) error {
	e, closeEnv, err := openEnv(c)
	if err != nil {
		return err
	}
	defer closeEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	metas, err := e.slots.List(ctx)
	if err != nil {
		return err
	}

	rows := make([]slotListRow, 0, len(metas))
	for _, meta := range metas {
		rows = append(rows, slotListRow{
			Slot:     meta.SlotIndex,
			Name:     meta.Name,
			Saved:    meta.Timestamp,
			PlayTime: formatPlayTime(meta.TotalPlayTime),
			Version:  meta.GetEquipmentVersion(),
		})
	}

	formatter := output.NewFormatter(output.Format(e.flags.Output), e.flags.Wide)
	if err := formatter.Format(c.App.Writer, rows); err != nil {
		return err
	}
	if output.Format(e.flags.Output) == output.FormatTable {
		fmt.Fprintf(c.App.Writer, "\n%d of %d slots occupied\n", len(rows), e.slots.Slots())
	}
	return nil
}

// slotView is the detailed view of a loaded slot.
type slotView struct {
	Slot          int      `json:"slot"`
	PlayerName    string   `json:"playerName"`
	Level         int      `json:"level"`
	Gold          int64    `json:"gold"`
	CurrentArea   string   `json:"currentArea"`
	InventorySize int      `json:"inventorySize"`
	Creatures     int      `json:"creatures"`
	Saved         int64    `json:"saved" table:"millis"`
	Recovered     bool     `json:"recovered"`
	ChecksumOK    bool     `json:"checksumOk"`
	MigratedFrom  string   `json:"migratedFrom,omitempty"`
	Repaired      []string `json:"repairedFields,omitempty" table:"wide"`
}

func slotShow(c *cli.Context) error {
	index, err := parseSlotIndex(c)
	if err != nil {
		return err
	}

	e, closeEnv, err := openEnv(c)
	if err != nil {
		return err
	}
	defer closeEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	state, report, err := e.slots.Load(ctx, index)
	if err != nil {
		return err
	}

	view := slotView{
		Slot:          index,
		PlayerName:    state.Player.Name,
		Level:         state.Player.Level,
		Gold:          state.Player.Gold,
		CurrentArea:   state.CurrentArea,
		InventorySize: len(state.Inventory),
		Creatures:     len(state.Creatures),
		Saved:         state.Timestamp,
		Recovered:     report.Recovered,
		ChecksumOK:    report.ChecksumOK,
		MigratedFrom:  report.MigratedFrom,
		Repaired:      report.RepairedFields,
	}

	formatter := output.NewFormatter(output.Format(e.flags.Output), e.flags.Wide)
	if err := formatter.Format(c.App.Writer, view); err != nil {
		return err
	}

	if report.Recovered && output.Format(e.flags.Output) == output.FormatTable {
		fmt.Fprintf(c.App.Writer, "\n⚠ this save needed recovery; run 'savecore repair %d' to persist the repaired state\n", index)
	}
	return nil
}

func slotDelete(c *cli.Context) error {
	index, err := parseSlotIndex(c)
	if err != nil {
		return err
	}

	if !c.Bool("force") {
		fmt.Fprintf(c.App.Writer, "Are you sure you want to delete slot %d? [y/N]: ", index)
		var confirm string
		fmt.Fscanln(c.App.Reader, &confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Fprintln(c.App.Writer, "Cancelled.")
			return nil
		}
	}

	e, closeEnv, err := openEnv(c)
	if err != nil {
		return err
	}
	defer closeEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := e.slots.Delete(ctx, index); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Slot %d deleted.\n", index)
	return nil
}

func slotExport(c *cli.Context) error {
	index, err := parseSlotIndex(c)
	if err != nil {
		return err
	}
	path := c.Args().Get(1)
	if path == "" {
		return fmt.Errorf("output file required")
	}

	e, closeEnv, err := openEnv(c)
	if err != nil {
		return err
	}
	defer closeEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	record, err := e.slots.Record(ctx, index)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(c.App.Writer, "Slot %d exported to %s.\n", index, path)
	return nil
}

func slotImport(c *cli.Context) error {
	index, err := parseSlotIndex(c)
	if err != nil {
		return err
	}
	path := c.Args().Get(1)
	if path == "" {
		return fmt.Errorf("input file required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var record domain.SaveRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return fmt.Errorf("%s is not a save record: %w", path, err)
	}

	e, closeEnv, err := openEnv(c)
	if err != nil {
		return err
	}
	defer closeEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// The imported record goes through the full pipeline before it is
	// persisted, so a damaged file cannot land in a slot unrepaired.
	_, report, err := e.slots.Ingest(ctx, index, &record)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Imported %s into slot %d.\n", path, index)
	if report.Recovered {
		fmt.Fprintf(c.App.Writer, "⚠ the imported save needed recovery (%d fields repaired)\n", len(report.RepairedFields))
	}
	if report.MigratedFrom != "" {
		fmt.Fprintf(c.App.Writer, "Migrated from equipment version %s.\n", report.MigratedFrom)
	}
	return nil
}

// formatPlayTime renders milliseconds of play time as h/m.
func formatPlayTime(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	d := time.Duration(ms) * time.Millisecond
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
