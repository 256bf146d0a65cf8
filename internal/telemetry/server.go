package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewMux создаёт HTTP mux: /healthz + /metrics.
func NewMux(gatherer prometheus.Gatherer) *http.ServeMux {
	startTime := time.Now()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime).Round(time.Second))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Serve запускает HTTP сервер метрик до отмены ctx.
// Ошибка сервера логируется и не останавливает супервизор.
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *slog.Logger) {
	server := &http.Server{
		Addr:              addr,
		Handler:           NewMux(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	go func() {
		logger.Info("metrics listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()
}
