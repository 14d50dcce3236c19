package redis

import "time"

type Config struct {
	ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"` // ConnectionURL is the URL of the database, e.g. "redis://:password@localhost:6379/0".
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`                      // RetryAttempts is the number of attempts to connect to the server.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`                     // RetryInterval is the pause between connection attempts.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`                   // ConnectTimeout bounds the whole connection procedure.
	KeyPrefix      string        `env:"REDIS_SESSION_KEY_PREFIX" envDefault:"session:"`           // KeyPrefix namespaces session entries.
	ReadyTimeout   time.Duration `env:"REDIS_READY_TIMEOUT" envDefault:"500ms"`                   // ReadyTimeout bounds the ping used by Cache.Ready.
}
