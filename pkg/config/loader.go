package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvLoaded sync.Once

// Load populates the provided configuration struct from environment variables.
//
// It first attempts to load the default .env file (once per process, missing
// files are fine), then parses environment variables into the struct based on
// `env` field tags.
//
// Example:
//
//	type MongoConfig struct {
//		URL     string        `env:"MONGODB_URL,required"`
//		Timeout time.Duration `env:"MONGODB_TIMEOUT" envDefault:"10s"`
//	}
//
//	var cfg MongoConfig
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
func Load[T any](v *T) error {
	defaultEnvLoaded.Do(func() {
		// The .env file might not exist and that's ok.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
// Use for configuration that is required for the application to start.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
