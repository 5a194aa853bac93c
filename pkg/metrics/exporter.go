package metrics

import (
	"errors"
	"log/slog"
	"net/http"

	"contrib.go.opencensus.io/exporter/prometheus"
)

// StartExporter registers the views, creates a Prometheus exporter and
// serves it at addr under /metrics. The returned server is already
// listening in the background; Close it to stop.
func StartExporter(addr, namespace string, logger *slog.Logger) (*http.Server, error) {
	if err := Register(); err != nil {
		return nil, err
	}

	pe, err := prometheus.NewExporter(prometheus.Options{
		Namespace: namespace,
		OnError: func(err error) {
			if logger != nil {
				logger.Warn("metrics: export failed", "error", err)
			}
		},
	})
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", pe)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			if logger != nil {
				logger.Error("metrics: scrape endpoint stopped", "addr", addr, "error", err)
			}
		}
	}()
	return srv, nil
}
