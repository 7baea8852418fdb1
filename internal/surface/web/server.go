// Package web serves the board over HTTP: an HTML page for people and a
// JSON API for scripts. Every state change goes through the same
// orchestrator and dispatcher as the terminal surface.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/contracts"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/dashboard"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/format"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/httpx"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/metrics"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("board.html").Funcs(template.FuncMap{
	"clock": format.Time,
	"pct": func(v float64) string {
		if v > 100 {
			v = 100
		}
		return format.Score(v, 1)
	},
}).ParseFS(templateFS, "templates/board.html"))

type Refresher interface {
	Refresh(ctx context.Context) error
	State() dashboard.State
}

type Server struct {
	board     *view.Board
	window    *view.Window
	refresher Refresher
	logger    zerolog.Logger
	reload    time.Duration
}

// NewServer wires the surface. reload is how often the HTML page re-reads
// the board; it never triggers a fetch by itself.
func NewServer(board *view.Board, window *view.Window, refresher Refresher, logger zerolog.Logger, reload time.Duration) *Server {
	if reload <= 0 {
		reload = 5 * time.Second
	}
	return &Server{
		board:     board,
		window:    window,
		refresher: refresher,
		logger:    logger.With().Str("component", "web").Logger(),
		reload:    reload,
	}
}

func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "dashboard"})
	})
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	router.Get("/", s.handlePage)
	router.Post("/refresh", s.formHandler(func(r *http.Request) error {
		s.refresh(r)
		return nil
	}))
	router.Post("/window", s.formHandler(func(r *http.Request) error {
		s.window.SetRaw(r.FormValue("hours"))
		s.refresh(r)
		return nil
	}))
	router.Post("/notice/dismiss", s.formHandler(func(*http.Request) error {
		s.board.ClearNotice()
		return nil
	}))
	router.Post("/alerts/{id}/{action}", s.formHandler(func(r *http.Request) error {
		return s.click(r)
	}))

	router.Route("/api", func(r chi.Router) {
		r.Get("/board", s.handleBoard)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/window", s.handleWindow)
		r.Post("/alerts/{id}/{action}", s.handleAction)
	})

	return router
}

type boardResponse struct {
	view.Snapshot
	WindowHours int    `json:"window_hours"`
	State       string `json:"state"`
}

func (s *Server) snapshot() boardResponse {
	return boardResponse{
		Snapshot:    s.board.Snapshot(),
		WindowHours: s.window.Hours(),
		State:       s.refresher.State().String(),
	}
}

func (s *Server) handleBoard(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.refresh(r); err != nil {
		httpx.WriteError(w, http.StatusBadGateway, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Hours int `json:"hours"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err)
		return
	}
	s.window.SetRaw(strconv.Itoa(body.Hours))
	if err := s.refresh(r); err != nil {
		httpx.WriteError(w, http.StatusBadGateway, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	err := s.click(r)
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, s.snapshot())
	case errors.Is(err, view.ErrNoBinding):
		httpx.WriteError(w, http.StatusNotFound, err)
	case errors.Is(err, dashboard.ErrUnknownAction):
		httpx.WriteError(w, http.StatusBadRequest, err)
	case errors.Is(err, dashboard.ErrInFlight):
		httpx.WriteError(w, http.StatusConflict, err)
	default:
		httpx.WriteError(w, http.StatusBadGateway, err)
	}
}

// refresh and click detach from the request context: a closed browser tab
// does not abort a cycle or an alert update already sent.
func (s *Server) refresh(r *http.Request) error {
	return s.refresher.Refresh(context.WithoutCancel(r.Context()))
}

func (s *Server) click(r *http.Request) error {
	key := view.ControlKey{
		AlertID: contracts.ID(chi.URLParam(r, "id")),
		Action:  contracts.AlertAction(chi.URLParam(r, "action")),
	}
	if !key.Action.Valid() {
		return dashboard.ErrUnknownAction
	}
	return s.board.Click(context.WithoutCancel(r.Context()), key)
}

// formHandler runs fn and sends the browser back to the page. Failures are
// already on the board's notice.
func (s *Server) formHandler(fn func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r); err != nil {
			s.logger.Debug().Err(err).Str("path", r.URL.Path).Str("request_id", middleware.GetReqID(r.Context())).Msg("form action failed")
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

type pageData struct {
	boardResponse
	Choices []int
	Reload  int
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	data := pageData{
		boardResponse: s.snapshot(),
		Choices:       s.window.Choices(),
		Reload:        int(s.reload.Seconds()),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Msg("render page")
	}
}
