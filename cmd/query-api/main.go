// Command query-api serves an in-memory query-api fed by simulated
// disruption signals, for running the dashboard without the real platform.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/httpx"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/logging"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/queryapi"
)

func main() {
	fs := flag.NewFlagSet("query-api", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "listen address")
	tick := fs.Duration("tick", 5*time.Second, "interval between simulated signals (0 disables)")
	backfill := fs.Int("backfill", 200, "events spread over the past 24h at startup")
	seed := fs.Int64("seed", time.Now().UnixNano(), "simulator seed")
	threshold := fs.Float64("alert-threshold", queryapi.DefaultAlertThreshold, "risk score that opens an alert")
	cooldown := fs.Duration("alert-cooldown", queryapi.DefaultAlertCooldown, "minimum gap between alerts for one location and commodity")
	logLevel := fs.String("log-level", "info", "log level")
	logFormat := fs.String("log-format", "console", "console or json")
	_ = fs.Parse(os.Args[1:])

	logger := logging.New(os.Stderr, *logLevel, *logFormat).With().Str("service", "query-api").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := queryapi.New()
	mem.SetAlertPolicy(*threshold, *cooldown)
	sim := queryapi.NewSimulator(mem, *seed, time.Hour, logger)
	sim.Backfill(time.Now(), *backfill, 24*time.Hour)
	if *tick > 0 {
		go sim.Run(ctx, *tick)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(15 * time.Second))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "query-api"})
	})
	router.Mount("/", mem.Routes())

	server := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", *addr).Int64("seed", *seed).Msg("query-api listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("query-api server error")
	}
}
