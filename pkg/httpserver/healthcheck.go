package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/hybridsession/pkg/logger"
)

// Probe checks one dependency.
type Probe func(ctx context.Context) error

// HealthCheckHandler serves liveness ("ALIVE") when no probes are given and
// readiness ("READY" or 503 "NOT_READY") otherwise.
func HealthCheckHandler(log *slog.Logger, probes ...Probe) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if len(probes) == 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		for _, probe := range probes {
			if err := probe(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
