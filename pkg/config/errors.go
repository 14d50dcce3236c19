package config

import "errors"

var (
	// ErrParsingConfig is returned when the environment cannot be parsed into the config struct
	ErrParsingConfig = errors.New("config.parse_failed")

	// ErrLoadingEnvFile is returned when an explicitly requested .env file cannot be read
	ErrLoadingEnvFile = errors.New("config.env_file_failed")
)
