package main

import (
	"context"
	"log"
	"net/http"

	"go.uber.org/zap"

	"cryptolab/internal/auth"
	"cryptolab/internal/config"
	"cryptolab/internal/httpserver"
	"cryptolab/internal/logger"
	"cryptolab/internal/spn"
	"cryptolab/internal/store"
)

func main() {
	cfg := config.Load()
	lg := logger.New(cfg.LogLevel)
	defer lg.Sync()
	lg.Debugw("config loaded", "config", cfg.String())

	deps := httpserver.Deps{
		Signer: auth.NewSigner(cfg.JWT.Secret, cfg.JWT.ExpiresIn),
		Limits: cfg.Limits,
		SPN:    spn.NewRegistry(),
		Log:    lg,
	}
	if cfg.Persistent() {
		st, err := store.Open(cfg.Database.URL)
		if err != nil {
			lg.Fatalw("db connect failed", "error", err)
		}
		if err := st.Migrate(); err != nil {
			lg.Fatalw("automigrate failed", "error", err)
		}
		seedDefaultLearner(st, cfg.Seed, lg)
		deps.Store = st
	} else {
		lg.Infow("DATABASE_URL is empty, running without accounts or history")
	}

	router := httpserver.NewRouter(deps)
	lg.Infow("listening", "port", cfg.Server.Port)
	if err := http.ListenAndServe(cfg.Addr(), router); err != nil {
		log.Fatal(err)
	}
}

func seedDefaultLearner(st *store.Store, seed config.SeedConfig, lg *zap.SugaredLogger) {
	hash, err := auth.HashPassword(seed.Password)
	if err != nil {
		lg.Fatalw("hash default password failed", "error", err)
	}
	if err := st.SeedDefaults(context.Background(), seed.Email, hash, lg); err != nil {
		lg.Warnw("seed defaults failed", "error", err)
	}
}
