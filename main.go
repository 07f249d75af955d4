package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/flagle/internal/config"
	"github.com/robalobadob/flagle/internal/daily"
	"github.com/robalobadob/flagle/internal/game"
	"github.com/robalobadob/flagle/internal/httpserver"
	"github.com/robalobadob/flagle/internal/pixel"
	"github.com/robalobadob/flagle/internal/pool"
	"github.com/robalobadob/flagle/internal/sqlite"
	"github.com/robalobadob/flagle/internal/store"
	"github.com/robalobadob/flagle/migrations"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("bad time zone")
	}

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	if err := sqlite.Migrate(db, migrations.FS); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	p, err := pool.Load(cfg.PoolFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load pool")
	}
	palette, err := pool.LoadPalette(cfg.PaletteFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load palette")
	}

	sel, err := daily.NewSelector(p.Codes(), cfg.ShuffleSeed, daily.Epoch(loc))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build daily rotation")
	}

	svc := game.NewService(game.Options{
		Pool:     p,
		Selector: sel,
		Loader:   pixel.NewCachingLoader(pixel.NewFSLoader(os.DirFS(cfg.FlagsDir))),
		Store:    store.NewSQLite(db),
		Results:  daily.NewStore(db),
	})

	srv := httpserver.New(cfg, svc, db, palette)
	log.Info().
		Str("port", cfg.Port).
		Int("pool", p.Len()).
		Str("tz", loc.String()).
		Str("today", svc.Today().String()).
		Msg("starting flagle server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
