// Package httpserver runs an http.Server with graceful shutdown and
// provides liveness and readiness handlers.
//
// Run blocks until the context is cancelled or an interrupt/TERM signal
// arrives, then calls http.Server.Shutdown bounded by the shutdown timeout.
// Failures wrap ErrStart and ErrShutdown.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server failed", logger.Error(err))
//	}
//
// HealthCheckHandler turns dependency checks, such as the session cache
// readiness, into a readiness probe.
package httpserver
