package command

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/sawyersrpg/savecore/internal/config"
	"github.com/sawyersrpg/savecore/internal/infra/buildinfo"
	"github.com/sawyersrpg/savecore/internal/infra/confloader"
	"github.com/sawyersrpg/savecore/internal/infra/tlsroots"
	"github.com/sawyersrpg/savecore/internal/slot"
	"github.com/sawyersrpg/savecore/internal/sync"
	"github.com/sawyersrpg/savecore/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:    "savecore",
		Usage:   "Save integrity and migration tool for Sawyer's RPG",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SlotCommand(),
			VerifyCommand(),
			RepairCommand(),
			MigrateCommand(),
			CloudCommand(),
			ConfigCommand(),
			SystemCommand(),
			WatchCommand(),
		},
	}

	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path",
			EnvVars: []string{"SAVECORE_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "data-dir",
			Aliases: []string{"d"},
			Usage:   "Saves directory (overrides config)",
			EnvVars: []string{"SAVECORE_STORAGE_DIR"},
		},
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "Storage backend: badger, sqlite, memory (overrides config)",
			EnvVars: []string{"SAVECORE_STORAGE_BACKEND"},
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Cloud save server address (overrides config)",
			EnvVars: []string{"SAVECORE_CLOUD_SERVER"},
		},
		&cli.StringFlag{
			Name:    "api-key",
			Aliases: []string{"K"},
			Usage:   "Cloud API key for authentication",
			EnvVars: []string{"SAVECORE_CLOUD_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level: debug, info, warn, error",
			EnvVars: []string{"SAVECORE_LOG_LEVEL"},
			Value:   "warn",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	ConfigFile string
	DataDir    string
	Backend    string
	Server     string
	APIKey     string
	Output     string // table, json, yaml
	Wide       bool
	LogLevel   string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		ConfigFile: c.String("config"),
		DataDir:    c.String("data-dir"),
		Backend:    c.String("backend"),
		Server:     c.String("server"),
		APIKey:     c.String("api-key"),
		Output:     c.String("output"),
		Wide:       c.Bool("wide"),
		LogLevel:   c.String("log-level"),
	}
}

// loadConfig resolves the effective configuration: defaults, then the
// config file, then environment, then flag overrides.
func loadConfig(flags *GlobalFlags) (*config.Config, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if flags.ConfigFile != "" {
		opts = append(opts, confloader.WithConfigFile(flags.ConfigFile))
	}
	loader := confloader.NewLoader(opts...)
	if err := loader.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if flags.DataDir != "" {
		cfg.Storage.Dir = flags.DataDir
	}
	if flags.Backend != "" {
		cfg.Storage.Backend = flags.Backend
	}
	if flags.Server != "" {
		cfg.Cloud.Server = flags.Server
		cfg.Cloud.Enabled = true
	}
	if flags.APIKey != "" {
		cfg.Cloud.APIKey = flags.APIKey
	}

	if err := config.Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// env holds the wired runtime a command operates on.
type env struct {
	cfg    *config.Config
	flags  *GlobalFlags
	store  slot.Store
	slots  *slot.Manager
	logger *slog.Logger
}

// openEnv builds the store and slot manager for a command invocation.
// The caller must call close when done.
func openEnv(c *cli.Context) (*env, func(), error) {
	flags := ParseGlobalFlags(c)

	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}

	log := logger.NewSlog(logger.Config{
		Level:  flags.LogLevel,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})

	store, err := openStore(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	slots := slot.NewManager(store, slot.ManagerOptions{
		Slots:  cfg.Storage.Slots,
		Logger: log,
	})

	e := &env{
		cfg:    cfg,
		flags:  flags,
		store:  store,
		slots:  slots,
		logger: log,
	}
	return e, func() { store.Close() }, nil
}

// openStore builds the configured backend, wrapped with encryption when
// a passphrase is configured.
func openStore(cfg *config.Config, log *slog.Logger) (slot.Store, error) {
	var (
		inner slot.Store
		err   error
	)

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		inner, err = slot.NewSQLiteStore(filepath.Join(cfg.Storage.Dir, "saves.db"))
	case config.BackendMemory:
		inner = slot.NewMemoryStore()
	default:
		badgerCfg := slot.DefaultBadgerConfig(cfg.Storage.Dir)
		badgerCfg.SyncWrites = cfg.Storage.SyncWrites
		if cfg.Storage.GCInterval > 0 {
			badgerCfg.GCInterval = cfg.Storage.GCInterval
		}
		inner, err = slot.NewBadgerStore(badgerCfg, log)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}

	if cfg.Security.EncryptionPassphrase == "" {
		return inner, nil
	}

	salt, err := readSaltFile(cfg.Security.EncryptionSaltFile)
	if err != nil {
		inner.Close()
		return nil, err
	}

	enc, newSalt, err := slot.NewEncryptedStore(inner, slot.EncryptionConfig{
		Passphrase: []byte(cfg.Security.EncryptionPassphrase),
		Salt:       salt,
		Algorithm:  cfg.Security.Algorithm,
	})
	if err != nil {
		inner.Close()
		return nil, fmt.Errorf("enable encryption: %w", err)
	}

	if salt == nil && newSalt != nil {
		if err := writeSaltFile(cfg.Security.EncryptionSaltFile, newSalt); err != nil {
			enc.Close()
			return nil, err
		}
	}
	return enc, nil
}

func readSaltFile(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("encryption enabled but no salt file configured")
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read salt file: %w", err)
	}
	return data, nil
}

func writeSaltFile(path string, salt []byte) error {
	if err := os.WriteFile(path, salt, 0o600); err != nil {
		return fmt.Errorf("persist salt file: %w", err)
	}
	return nil
}

// cloudManager wires the sync manager for commands that reach the
// cloud save server.
func (e *env) cloudManager() (*sync.Manager, error) {
	if !e.cfg.Cloud.Enabled || e.cfg.Cloud.Server == "" {
		return nil, fmt.Errorf("cloud sync is not configured (set cloud.server or pass --server)")
	}

	var httpOpts []sync.HTTPOption
	if e.cfg.Cloud.CAFile != "" {
		pool, err := tlsroots.ForServer(e.cfg.Cloud.CAFile)
		if err != nil {
			return nil, err
		}
		httpOpts = append(httpOpts, sync.WithTLSConfig(pool.ClientConfig()))
	}

	cloud := sync.NewHTTPCloudStore(e.cfg.Cloud.Server, e.cfg.Cloud.APIKey, httpOpts...)
	return sync.NewManager(e.slots, cloud, e.store, sync.ManagerOptions{
		Logger:           e.logger,
		UploadsPerSecond: rate.Limit(e.cfg.Cloud.UploadsPerSecond),
		UploadBurst:      e.cfg.Cloud.UploadBurst,
	}), nil
}

// parseSlotIndex parses the first positional argument as a slot index.
func parseSlotIndex(c *cli.Context) (int, error) {
	arg := c.Args().First()
	if arg == "" {
		return 0, fmt.Errorf("slot index required")
	}
	var index int
	if _, err := fmt.Sscanf(arg, "%d", &index); err != nil {
		return 0, fmt.Errorf("invalid slot index %q", arg)
	}
	return index, nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
