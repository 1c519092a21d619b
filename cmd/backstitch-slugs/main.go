// Command backstitch-slugs backfills a unique URL-safe slug onto every post
// that is missing one. One-shot: scans, resolves, writes, reports, exits.
// Safe to rerun; a second pass over a fully migrated collection writes nothing.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"backstitch/internal/modkit"
	"backstitch/internal/platform/config"
	"backstitch/internal/platform/logger"
	"backstitch/internal/platform/store"

	slugsmod "backstitch/internal/services/slugs/module"
)

func main() {
	// config comes before the logger so a bare env mistake prints plainly
	dbURL := strings.TrimSpace(os.Getenv("SERVICE_PGSQL_DBURL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "SERVICE_PGSQL_DBURL is required")
		os.Exit(1)
	}

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()
	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         dbURL,
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		Log: *l,
	}

	m := slugsmod.New(deps)
	ports := m.Ports().(slugsmod.Ports)

	rep, err := ports.Runner.Run(context.Background())
	if err != nil {
		l.Fatal().Err(err).Msg("slug migration failed")
	}

	l.Info().
		Int("scanned", rep.Scanned).
		Int("migrated", rep.Migrated).
		Int("skipped", rep.Skipped).
		Msg("slug migration complete")
}
