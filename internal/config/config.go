// Package config loads runtime settings shared by the wildhand binaries.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds settings read from WILDHAND_* environment variables. A .env
// file in the working directory is applied first when present; command-line
// flags layer on top of these values.
type Config struct {
	Port         string `env:"WILDHAND_PORT" envDefault:"9000"`
	WebAddr      string `env:"WILDHAND_WEB_ADDR" envDefault:":8080"`
	DataFile     string `env:"WILDHAND_DATA" envDefault:"wildhand.db"`
	CardsFile    string `env:"WILDHAND_CARDS"` // empty = embedded card set
	DecksFile    string `env:"WILDHAND_DECKS"` // empty = embedded starter decks
	DraftRounds  int    `env:"WILDHAND_DRAFT_ROUNDS" envDefault:"3"`
	MaxRounds    int    `env:"WILDHAND_MAX_ROUNDS" envDefault:"30"`
	OTELEndpoint string `env:"WILDHAND_OTEL_ENDPOINT"` // empty = tracing off
}

// Load applies .env when present, then parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
