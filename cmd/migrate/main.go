package main

import (
	"os"

	"github.com/joho/godotenv"

	"server/internal/db"
	"server/internal/infra"
)

func main() {
	_ = godotenv.Load()

	logger := infra.NewLogger(os.Getenv("APP_ENV"), "migrate")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}

	migrator, err := db.NewMigrator(dbURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer migrator.Close()

	if err := migrator.Run(); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}
	logger.Info().Msg("migrations complete")
}
