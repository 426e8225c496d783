package main

import "time"

type Config struct {
	LogLevel          string        `env:"LOG_LEVEL,required=true"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath     string        `env:"BLUGE_FILEPATH,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	Host              string        `env:"HOST,default=localhost"`
	Port              int           `env:"PORT,default=8080"`
	AllowedOrigin     string        `env:"ALLOWED_ORIGIN,default=*"`
	LimitListings     *int          `env:"LIMIT_LISTINGS"`
	SearchPageSize    int           `env:"SEARCH_PAGE_SIZE,default=10"`
	ModelServerURL    string        `env:"MODEL_SERVER_URL,required=true"`
	ModelRetries      int           `env:"MODEL_RETRIES,default=2"`
	ModelBackoff      time.Duration `env:"MODEL_BACKOFF,default=500ms"`
	// DEBUG_PORT enables the Badger inspector; 0 keeps it off.
	DebugPort int `env:"DEBUG_PORT"`
}
