package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voyagen/radiodir/internal/cache"
	"github.com/voyagen/radiodir/internal/config"
	"github.com/voyagen/radiodir/internal/logging"
	"github.com/voyagen/radiodir/internal/store"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

func rootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "radiodir",
		Short:         "Radio station directory API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Optional config file path (YAML); else use env DATABASE_URL")

	root.AddCommand(serveCommand(a), seedCommand(a), migrateCommand(a))
	return root
}

func (a *app) init() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFromFile(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.log = logging.New(a.cfg.LogFormat)
	return nil
}

// migrate applies the schema. The migrations directory is resolved against
// the working directory first and the executable's directory second.
func (a *app) migrate() error {
	if err := store.EnsurePgcrypto(a.cfg.DatabaseURL); err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	dir := resolveDir(a.cfg.MigrationsDir)
	if err := store.RunMigrations(a.cfg.DatabaseURL, "file://"+filepath.ToSlash(dir)); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	a.log.Info("migrations applied", zap.String("dir", dir))
	return nil
}

func resolveDir(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	if _, err := os.Stat(abs); err != nil {
		if exe, e := os.Executable(); e == nil {
			return filepath.Join(filepath.Dir(exe), dir)
		}
	}
	return abs
}

// openRedis connects to REDIS_URL when configured. A nil Redis means caching
// and the import lock are disabled.
func (a *app) openRedis(ctx context.Context) (*cache.Redis, error) {
	if a.cfg.RedisURL == "" {
		a.log.Info("redis disabled (REDIS_URL not set)")
		return nil, nil
	}
	rds, err := cache.New(a.cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	if err := rds.Ping(ctx); err != nil {
		_ = rds.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	a.log.Info("redis connected")
	return rds, nil
}

func migrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.migrate()
		},
	}
}
