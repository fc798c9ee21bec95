package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/denhaven/breeder-backend/internal/config"
	"github.com/denhaven/breeder-backend/internal/db"
	"github.com/denhaven/breeder-backend/internal/model"
	"github.com/denhaven/breeder-backend/internal/server"
)

// set via -ldflags at build time
var (
	gitSHA    = "dev"
	buildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "breeder-backend").Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	srv := server.New(nil, cfg, log, gitSHA, buildTime)
	addr := ":" + cfg.Port

	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("addr", addr).Msg("starting server")
		errCh <- srv.Start(addr)
	}()

	// Attach the database after the listener is up so the healthcheck stays
	// green while Cloud SQL warms; repositories answer ErrDBNotReady until then.
	go func() {
		conn, err := db.Connect(cfg)
		if err != nil {
			log.Error().Err(err).Msg("db connect failed")
			return
		}
		srv.SetDB(conn)
		if err := migrate(conn); err != nil {
			log.Error().Err(err).Msg("auto migrate failed")
		}
		log.Info().Msg("database attached")
	}()

	if err := <-errCh; err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&model.Provider{},
		&model.ClientThread{},
		&model.ClientMessage{},
		&model.BreederThread{},
		&model.BreederParticipant{},
		&model.BreederMessage{},
		&model.Party{},
		&model.Contact{},
		&model.BlockRecord{},
	)
}
