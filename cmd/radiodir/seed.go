package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voyagen/radiodir/internal/cache"
	"github.com/voyagen/radiodir/internal/config"
	"github.com/voyagen/radiodir/internal/metrics"
	"github.com/voyagen/radiodir/internal/service"
	"github.com/voyagen/radiodir/internal/store"
)

const (
	importLockTTL = 2 * time.Minute
	pushTimeout   = 10 * time.Second
)

type seedFlags struct {
	data      string
	countries string
	clear     bool
	batchSize int
}

func seedCommand(a *app) *cobra.Command {
	var f seedFlags
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import station seed files into the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.seed(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVar(&f.data, "data", "", "Directory holding the per-country JSON files (default SEED_DATA_PATH)")
	cmd.Flags().StringVar(&f.countries, "countries", "", "Country list YAML (default COUNTRIES_FILE)")
	cmd.Flags().BoolVar(&f.clear, "clear", false, "Delete every station before importing")
	cmd.Flags().IntVar(&f.batchSize, "batch-size", 0, "Records per progress batch (default IMPORT_BATCH_SIZE)")
	return cmd
}

func (a *app) seed(ctx context.Context, f seedFlags) error {
	if f.data == "" {
		f.data = a.cfg.SeedDataPath
	}
	if f.data == "" {
		return errors.New("seed: no data directory; pass --data or set SEED_DATA_PATH")
	}
	if f.countries == "" {
		f.countries = a.cfg.CountriesFile
	}
	if f.batchSize <= 0 {
		f.batchSize = a.cfg.ImportBatchSize
	}

	sources, err := config.LoadCountries(resolveDir(f.countries))
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	if err := a.migrate(); err != nil {
		return err
	}
	pg, err := store.NewPostgres(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pg.Close()

	var s store.Store = pg
	rds, err := a.openRedis(ctx)
	if err != nil {
		return err
	}
	if rds != nil {
		defer rds.Close()
		// Writes through the cached store so the API drops stale station pages.
		s = store.NewCachedStore(pg, rds, a.cfg.CacheTTL, a.log)

		lock, err := cache.TryLock(ctx, rds, cache.ImportLockKey, importLockTTL)
		if errors.Is(err, cache.ErrLocked) {
			return fmt.Errorf("seed: another import is running: %w", err)
		}
		if err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				a.log.Warn("release import lock", zap.Error(err))
			}
		}()
		stopRefresh := keepLock(ctx, lock, a.log)
		defer stopRefresh()
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	// Pushed on the way out, including after a failed run.
	defer a.pushImportMetrics(reg)
	im := service.NewImporter(s, a.log, m, f.batchSize)

	if f.clear {
		if err := im.ClearAll(ctx); err != nil {
			return fmt.Errorf("seed: clear: %w", err)
		}
	}

	sum, err := im.Run(ctx, f.data, sources)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	for _, c := range sum.Countries {
		if c.MissingFile {
			a.log.Warn("country skipped, no seed file", zap.String("country", c.Code))
		}
	}
	return nil
}

// pushImportMetrics sends the import collectors to PUSHGATEWAY_URL. A push
// failure is logged and does not change the outcome of the run.
func (a *app) pushImportMetrics(g prometheus.Gatherer) {
	if a.cfg.PushgatewayURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()
	if err := metrics.Push(ctx, a.cfg.PushgatewayURL, metrics.ImportJob, g); err != nil {
		a.log.Warn("push import metrics", zap.Error(err))
		return
	}
	a.log.Info("import metrics pushed", zap.String("url", a.cfg.PushgatewayURL))
}

// keepLock refreshes lock at half its TTL until the returned stop is called.
func keepLock(ctx context.Context, lock *cache.Lock, log *zap.Logger) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		t := time.NewTicker(importLockTTL / 2)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := lock.Refresh(ctx); err != nil {
					log.Warn("refresh import lock", zap.Error(err))
				}
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}
