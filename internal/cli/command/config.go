package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/sawyersrpg/savecore/internal/cli/output"
	"github.com/sawyersrpg/savecore/internal/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect and validate configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration with secrets masked",
				Action: configShow,
			},
			{
				Name:      "validate",
				Usage:     "Validate a config file",
				ArgsUsage: "[FILE]",
				Action:    configValidate,
			},
			{
				Name:      "init",
				Usage:     "Write a starter config file",
				ArgsUsage: "FILE",
				Action:    configInit,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	flags := ParseGlobalFlags(c)

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	format := output.Format(flags.Output)
	if format == output.FormatTable {
		// Nested sections read better as YAML
		format = output.FormatYAML
	}
	formatter := output.NewFormatter(format, flags.Wide)
	return formatter.Format(c.App.Writer, config.Sanitize(cfg))
}

func configValidate(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	if path := c.Args().First(); path != "" {
		flags.ConfigFile = path
	}
	if flags.ConfigFile == "" {
		return fmt.Errorf("config file required (pass a path or --config)")
	}

	if _, err := loadConfig(flags); err != nil {
		return cli.Exit(fmt.Sprintf("invalid: %v", err), 1)
	}

	fmt.Fprintf(c.App.Writer, "%s is valid.\n", flags.ConfigFile)
	return nil
}

// starterConfig is the template written by config init.
const starterConfig = `storage:
  # badger, sqlite, or memory
  backend: badger
  dir: ~/.sawyers-rpg/saves
  slots: 10
  sync_writes: true
  gc_interval: 10m

cloud:
  enabled: false
  server: ""
  api_key: ""
  # Optional extra CA bundle for private deployments
  ca_file: ""
  uploads_per_second: 1.0
  upload_burst: 3

security:
  # Leave empty to store saves unencrypted
  encryption_passphrase: ""
  encryption_salt_file: ~/.sawyers-rpg/salt

log:
  level: info
  format: json

metrics:
  enabled: false
  addr: 127.0.0.1:9590
`

func configInit(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("output file required")
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := os.WriteFile(path, []byte(starterConfig), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(c.App.Writer, "Wrote starter config to %s.\n", path)
	return nil
}
