package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sawyersrpg/savecore/internal/cli/output"
	"github.com/sawyersrpg/savecore/internal/core/domain"
	"github.com/sawyersrpg/savecore/internal/integrity/schema"
	"github.com/sawyersrpg/savecore/internal/slot"
	"github.com/sawyersrpg/savecore/pkg/checksum"
)

// VerifyCommand returns the verify command. It inspects a slot without
// modifying it.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Check a slot's checksum and structure without modifying it",
		ArgsUsage: "SLOT",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "Verify every occupied slot",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Treat deprecated fields as errors",
			},
			&cli.BoolFlag{
				Name:  "deep",
				Usage: "Validate individual collection elements",
			},
		},
		Action: verifyAction,
	}
}

// verifyResult is the verify view for one slot.
type verifyResult struct {
	Slot            int      `json:"slot"`
	ChecksumOK      bool     `json:"checksumOk"`
	Valid           bool     `json:"valid"`
	Errors          []string `json:"errors,omitempty"`
	Warnings        []string `json:"warnings,omitempty" table:"wide"`
	CorruptedFields []string `json:"corruptedFields,omitempty"`
}

func verifyAction(c *cli.Context) error {
	e, closeEnv, err := openEnv(c)
	if err != nil {
		return err
	}
	defer closeEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts := schema.Options{
		StrictMode:     c.Bool("strict"),
		DeepValidation: c.Bool("deep"),
	}

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

	results := make([]verifyResult, 0, len(indices))
	healthy := true
	for _, index := range indices {
		res, err := verifySlot(ctx, e, index, opts)
		if err != nil {
			return err
		}
		if !res.Valid || !res.ChecksumOK {
			healthy = false
		}
		results = append(results, *res)
	}

	formatter := output.NewFormatter(output.Format(e.flags.Output), e.flags.Wide)
	if err := formatter.Format(c.App.Writer, results); err != nil {
		return err
	}

	if !healthy {
		return cli.Exit("one or more slots failed verification", 1)
	}
	return nil
}

func verifySlot(ctx context.Context, e *env, index int, opts schema.Options) (*verifyResult, error) {
	record, err := e.slots.Record(ctx, index)
	if err != nil {
		return nil, err
	}

	doc, err := record.Document()
	if err != nil {
		return nil, domain.ErrPayloadMalformed.WithCause(err)
	}

	result := schema.Validate(doc, schema.CurrentDescriptor(), opts)
	return &verifyResult{
		Slot:            index,
		ChecksumOK:      checksum.Verify(doc, record.Checksum),
		Valid:           result.IsValid,
		Errors:          result.Errors,
		Warnings:        result.Warnings,
		CorruptedFields: result.CorruptedFields,
	}, nil
}

// RepairCommand returns the repair command. It runs the load pipeline
// and writes the repaired state back to the slot.
func RepairCommand() *cli.Command {
	return &cli.Command{
		Name:      "repair",
		Usage:     "Run recovery on a slot and persist the repaired save",
		ArgsUsage: "SLOT",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report what would be repaired without writing",
			},
		},
		Action: repairAction,
	}
}

func repairAction(c *cli.Context) error {
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

	record, err := e.slots.Record(ctx, index)
	if err != nil {
		return err
	}
	name := record.Metadata.Name

	state, report, err := e.slots.Load(ctx, index)
	if err != nil {
		return err
	}

	if !report.Recovered && report.MigratedFrom == "" && len(report.ClearedReferences) == 0 {
		fmt.Fprintf(c.App.Writer, "Slot %d is healthy; nothing to repair.\n", index)
		return nil
	}

	if c.Bool("dry-run") {
		fmt.Fprintf(c.App.Writer, "Slot %d would be repaired:\n", index)
		printRepairSummary(c, report)
		return nil
	}

	if err := e.slots.Save(ctx, index, name, state); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Slot %d repaired:\n", index)
	printRepairSummary(c, report)
	return nil
}

func printRepairSummary(c *cli.Context, report *slot.LoadReport) {
	for _, line := range report.Summary() {
		fmt.Fprintf(c.App.Writer, "  - %s\n", line)
	}
}

// MigrateCommand returns the migrate command.
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:      "migrate",
		Usage:     "Upgrade a slot's save to the current equipment version",
		ArgsUsage: "SLOT",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "all",
				Aliases: []string{"a"},
				Usage:   "Migrate every occupied slot",
			},
		},
		Action: migrateAction,
	}
}

func migrateAction(c *cli.Context) error {
	e, closeEnv, err := openEnv(c)
	if err != nil {
		return err
	}
	defer closeEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
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

	migrated := 0
	for _, index := range indices {
		record, err := e.slots.Record(ctx, index)
		if err != nil {
			return err
		}

		state, report, err := e.slots.Load(ctx, index)
		if err != nil {
			return err
		}
		if report.MigratedFrom == "" {
			fmt.Fprintf(c.App.Writer, "Slot %d is already current.\n", index)
			continue
		}

		if err := e.slots.Save(ctx, index, record.Metadata.Name, state); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "Slot %d migrated from equipment version %s.\n", index, report.MigratedFrom)
		migrated++
	}

	if len(indices) > 1 {
		fmt.Fprintf(c.App.Writer, "\n%d of %d slots migrated.\n", migrated, len(indices))
	}
	return nil
}
