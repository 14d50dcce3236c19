// Package redis connects to Redis and provides a session cache engine on top
// of github.com/redis/go-redis/v9.
//
// Connect parses a redis:// URL and pings the server, retrying according to
// Config. Healthcheck returns a probe usable by readiness endpoints. Cache
// stores session payloads under a configurable key prefix with native TTLs
// and reports readiness with a bounded PING, which is what the session
// manager consults before touching the cache.
//
// # Usage
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	manager, err := session.New(
//	    session.WithPasswords(password),
//	    session.WithCache(redis.NewCacheFromConfig(client, cfg)),
//	)
//
// Config fields can be populated from environment variables via
// github.com/caarlos0/env.
package redis
