package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/app"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/config"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/logging"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/surface/terminal"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/surface/web"
)

func main() {
	fs := flag.NewFlagSet("dashboard", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config file (overrides DASHBOARD_CONFIG)")
	apiBase := fs.String("api-base", "", "query-api base URL")
	surface := fs.String("surface", "", "terminal or web")
	addr := fs.String("addr", "", "listen address for the web surface")
	window := fs.Int("window", 0, "initial time window in hours")
	refresh := fs.Duration("refresh", 0, "polling interval")
	noColor := fs.Bool("no-color", false, "plain terminal output")
	_ = fs.Parse(os.Args[1:])

	if *configPath != "" {
		_ = os.Setenv("DASHBOARD_CONFIG", *configPath)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "dashboard config error: %v\n", err)
		os.Exit(2)
	}
	if *apiBase != "" {
		cfg.APIBase = *apiBase
	}
	if *surface != "" {
		cfg.Surface = *surface
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	if *window > 0 {
		cfg.WindowHours = *window
	}
	if *refresh > 0 {
		cfg.RefreshInterval = *refresh
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard config error: %v\n", err)
		os.Exit(2)
	}

	logOut, closeLog, err := logWriter(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dashboard log file error: %v\n", err)
		os.Exit(2)
	}
	defer closeLog()
	logger := logging.New(logOut, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New(cfg, logger)

	logger.Info().
		Str("api_base", cfg.APIBase).
		Str("surface", cfg.Surface).
		Int("window_hours", a.Window.Hours()).
		Dur("refresh_interval", cfg.RefreshInterval).
		Msg("dashboard starting")

	a.Scheduler.Start(ctx)
	defer a.Scheduler.Stop()

	switch cfg.Surface {
	case "web":
		err = serveWeb(ctx, cfg, a, logger)
	default:
		err = runTerminal(ctx, a, logger, !*noColor)
	}
	if err != nil {
		logger.Error().Err(err).Msg("dashboard stopped")
		a.Scheduler.Stop()
		os.Exit(1)
	}
}

func serveWeb(ctx context.Context, cfg config.Config, a *app.App, logger zerolog.Logger) error {
	srv := web.NewServer(a.Board, a.Window, a.Orchestrator, logger, 0)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", cfg.HTTPAddr).Msg("web surface listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve web surface: %w", err)
	}
	return nil
}

func runTerminal(ctx context.Context, a *app.App, logger zerolog.Logger, color bool) error {
	session := terminal.NewSession(a.Board, a.Window, a.Orchestrator, os.Stdout,
		terminal.WithColor(color),
		terminal.WithLogger(logger),
	)

	if color {
		// Hide cursor
		fmt.Print("\033[?25l")
		defer fmt.Print("\033[?25h")
	}
	return session.Run(ctx, os.Stdin)
}

// logWriter keeps logs off stdout. The terminal surface owns the screen, so
// LOG_FILE is honoured there; otherwise logs go to stderr.
func logWriter(cfg config.Config) (io.Writer, func(), error) {
	if cfg.LogFile == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.LogFile, err)
	}
	return f, func() { _ = f.Close() }, nil
}
