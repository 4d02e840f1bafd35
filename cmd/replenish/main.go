package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/andresuchdata/supplyflow/internal/config"
	"github.com/andresuchdata/supplyflow/pkg/logger"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("could not load .env file")
	}

	if err := newCLI(config.Load).Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("replenish failed")
	}
}
