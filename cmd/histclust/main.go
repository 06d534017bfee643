// Package main provides the histclust command line entry point.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("histclust failed")
	}
}
