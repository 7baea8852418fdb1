// Package app assembles the dashboard client from configuration.
package app

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/client"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/config"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/dashboard"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/view"
)

type App struct {
	Board        *view.Board
	Window       *view.Window
	Client       *client.Client
	Orchestrator *dashboard.Orchestrator
	Dispatcher   *dashboard.Dispatcher
	Scheduler    *dashboard.Scheduler
	Logger       zerolog.Logger
}

func New(cfg config.Config, logger zerolog.Logger) *App {
	board := view.NewBoard()
	window := view.NewWindow(cfg.WindowHours, cfg.WindowChoices)

	api := client.New(cfg.APIBase,
		client.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		client.WithLogger(logger.With().Str("component", "client").Logger()),
	)

	orch := dashboard.NewOrchestrator(api, dashboard.BoardTargets(board), window, board,
		dashboard.WithLimits(dashboard.Limits{
			Hotspots: cfg.HotspotLimit,
			Alerts:   cfg.AlertLimit,
			Risks:    cfg.RiskLimit,
		}),
		dashboard.WithLogger(logger),
	)
	disp := dashboard.NewDispatcher(api, orch, board, board, logger)
	orch.SetActionHandler(disp.Perform)

	return &App{
		Board:        board,
		Window:       window,
		Client:       api,
		Orchestrator: orch,
		Dispatcher:   disp,
		Scheduler:    dashboard.NewScheduler(cfg.RefreshInterval, orch.Refresh, logger),
		Logger:       logger,
	}
}

// ChangeWindow stores a new selector value and starts a cycle for it.
func (a *App) ChangeWindow(ctx context.Context, raw string) error {
	a.Window.SetRaw(raw)
	return a.Orchestrator.Refresh(ctx)
}
