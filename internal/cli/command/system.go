package command

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sawyersrpg/savecore/internal/cli/output"
	"github.com/sawyersrpg/savecore/internal/infra/buildinfo"
)

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:  "system",
		Usage: "Inspect savecore and its storage",
		Subcommands: []*cli.Command{
			{
				Name:   "info",
				Usage:  "Show build and storage information",
				Action: systemInfo,
			},
		},
	}
}

// systemView is the system info view.
type systemView struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	Backend   string `json:"backend"`
	DataDir   string `json:"dataDir"`
	Slots     int    `json:"slots"`
	Occupied  int    `json:"occupied"`
	Encrypted bool   `json:"encrypted"`
}

func systemInfo(c *cli.Context) error {
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

	info := buildinfo.Get()
	view := systemView{
		Version:   info.Version,
		Commit:    info.Commit,
		BuildTime: info.BuildTime,
		GoVersion: runtime.Version(),
		Backend:   e.cfg.Storage.Backend,
		DataDir:   e.cfg.Storage.Dir,
		Slots:     e.slots.Slots(),
		Occupied:  len(metas),
		Encrypted: e.cfg.Security.EncryptionPassphrase != "",
	}

	formatter := output.NewFormatter(output.Format(e.flags.Output), e.flags.Wide)
	if err := formatter.Format(c.App.Writer, view); err != nil {
		return err
	}

	if output.Format(e.flags.Output) == output.FormatTable && e.cfg.Cloud.Enabled {
		fmt.Fprintf(c.App.Writer, "\nCloud sync: %s\n", e.cfg.Cloud.Server)
	}
	return nil
}
