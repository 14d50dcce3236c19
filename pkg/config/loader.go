package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Load reads the given .env files into the process environment and parses
// it into a new T. Variables already set in the environment win over file
// values. Without arguments ".env" is tried and silently skipped if missing.
//
//	type Config struct {
//	    Session session.Config
//	    Redis   redis.Config
//	}
//
//	cfg, err := config.Load[Config]()
func Load[T any](files ...string) (T, error) {
	var zero T

	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return zero, errors.Join(ErrLoadingEnvFile, err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return zero, errors.Join(ErrLoadingEnvFile, err)
	}

	cfg, err := env.ParseAs[T]()
	if err != nil {
		return zero, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad works like Load but panics on failure.
func MustLoad[T any](files ...string) T {
	cfg, err := Load[T](files...)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// FromMap parses environ into a new T without touching the process
// environment.
func FromMap[T any](environ map[string]string) (T, error) {
	var cfg T
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}
