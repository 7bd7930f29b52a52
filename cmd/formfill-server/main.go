// Command formfill-server serves the form engine over HTTP.
//
//	formfill-server -config formfill.yaml
//	formfill-server -root /srv/form -listen :8080
//
// POST /api/generate with JSON or form data returns the filled PDF. Add
// "debug": true (or ?debug=1) for a JSON report instead. GET /baseline.pdf
// returns the blank template.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lvillar/formfill"
	"github.com/lvillar/formfill/httpapi"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	listen := flag.String("listen", "", "listen address (overrides config)")
	root := flag.String("root", "", "form root directory (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "formfill-server: %v\n", err)
		os.Exit(2)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *root != "" {
		cfg.Root = *root
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	eng := formfill.New(cfg.Options(logger)...)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           httpapi.New(eng, logger).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = run(ctx, srv, logger)
	if cerr := eng.Close(); cerr != nil {
		logger.Error("closing asset cache", "err", cerr)
	}
	if err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*formfill.Config, error) {
	if path == "" {
		return formfill.DefaultConfig(), nil
	}
	return formfill.LoadConfig(path)
}

// run serves until ctx is done, then shuts down, letting in-flight
// requests finish within shutdownTimeout.
func run(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
			return
		}
		errc <- nil
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
	if err := <-errc; err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
