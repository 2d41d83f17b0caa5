package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/voyagen/radiodir/internal/metrics"
	"github.com/voyagen/radiodir/internal/server"
	"github.com/voyagen/radiodir/internal/store"
)

func serveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.migrate(); err != nil {
				return err
			}

			pg, err := store.NewPostgres(ctx, a.cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("db: %w", err)
			}
			defer pg.Close()

			var appStore store.Store = pg
			rds, err := a.openRedis(ctx)
			if err != nil {
				return err
			}
			if rds != nil {
				defer rds.Close()
				appStore = store.NewCachedStore(pg, rds, a.cfg.CacheTTL, a.log)
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m, err := metrics.New(reg)
			if err != nil {
				return fmt.Errorf("metrics: %w", err)
			}

			return server.New(appStore, a.cfg, a.log, m, reg).ListenAndServe(ctx)
		},
	}
}
