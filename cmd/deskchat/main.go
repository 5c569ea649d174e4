package main

import (
	"fmt"
	"os"

	"github.com/deskchat/deskchat/internal/app"
	"github.com/deskchat/deskchat/internal/config"
	"github.com/deskchat/deskchat/internal/logging"
)

const version = "v1.2.0"

func main() {
	logger := logging.New()
	logger.Info().Str("version", version).Msg("DeskChat starting")

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		logger.Fatal().Err(err).Msg("error loading config")
	}

	application := app.New(cfg, version, logger, nil)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("fatal error")
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			os.Exit(1)
		}
	}()

	application.Run()
}
