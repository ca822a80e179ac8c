package main

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/FreeMEM/DPMS/internal/auth"
	"github.com/FreeMEM/DPMS/internal/config"
	"github.com/FreeMEM/DPMS/internal/db"
	"github.com/FreeMEM/DPMS/internal/logger"
	"github.com/FreeMEM/DPMS/internal/server"
	"github.com/FreeMEM/DPMS/internal/voting"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}
	cfg := config.Load()
	logger.Configure(cfg.LogLevel, cfg.LogFile)

	var store db.Store
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		if err := db.Migrate(conn); err != nil {
			log.Fatal().Err(err).Msg("database migration failed")
		}
		store = db.NewGormStore(conn)
	} else {
		// Without DATABASE_URL everything lives in memory. Handy for
		// local development, nothing survives a restart.
		store = db.NewMemStore()
		log.Warn().Msg("DATABASE_URL not set, using in-memory store")
	}

	votes := voting.NewService(store, cfg.CodeBatchMax, cfg.VoteCommentMaxLength)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	srv := server.New(store, votes, tokens, cfg, log.Logger)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("dpms server listening")
	if err := srv.Router().Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
