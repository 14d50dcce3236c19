// Package config loads typed configuration from the environment.
//
// Structs describe their variables with github.com/caarlos0/env/v11 tags;
// nested structs are parsed recursively, so service configs can be composed
// from the Config types of the packages they wire together. Optional .env
// files are read with github.com/joho/godotenv first.
//
//	type Config struct {
//	    Session session.Config
//	    Redis   redis.Config
//	}
//
//	cfg := config.MustLoad[Config]()
package config
