// Command backstitch-likes fans the legacy liked_by array on each post out
// into one post_likes row per (post, user) pair. One-shot and rerun-safe:
// the composite-key insert-if-absent makes repeated runs converge on the
// same final table.
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

	likesmod "backstitch/internal/services/likes/module"
)

func main() {
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

	m := likesmod.New(deps)
	ports := m.Ports().(likesmod.Ports)

	rep, err := ports.Runner.Run(context.Background())
	if err != nil {
		l.Fatal().Err(err).Msg("likes migration failed")
	}

	l.Info().
		Int("posts", rep.Posts).
		Int("inserted", rep.Inserted).
		Int("deduped", rep.Deduped).
		Int("skipped", rep.Skipped).
		Msg("likes migration complete")
}
