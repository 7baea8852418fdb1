// Package terminal draws the board on an ANSI terminal and reads commands
// from a line-oriented input.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/contracts"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/dashboard"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/view"
)

const clearScreen = "\033[H\033[2J"

// ErrQuit is returned by Execute for the quit command.
var ErrQuit = errors.New("quit")

type Refresher interface {
	Refresh(ctx context.Context) error
	State() dashboard.State
}

type Session struct {
	board     *view.Board
	window    *view.Window
	refresher Refresher
	out       io.Writer
	palette   Palette
	clear     bool
	logger    zerolog.Logger

	paintMu sync.Mutex
}

type Option func(*Session)

// WithColor turns ANSI colors and screen clearing on or off.
func WithColor(on bool) Option {
	return func(s *Session) {
		s.palette.Color = on
		s.clear = on
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger.With().Str("component", "terminal").Logger()
	}
}

func NewSession(board *view.Board, window *view.Window, refresher Refresher, out io.Writer, opts ...Option) *Session {
	s := &Session{
		board:     board,
		window:    window,
		refresher: refresher,
		out:       out,
		palette:   Palette{Color: true},
		clear:     true,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repaint draws the current board once.
func (s *Session) Repaint() {
	frame := Frame{
		Snapshot: s.board.Snapshot(),
		Hours:    s.window.Hours(),
		Choices:  s.window.Choices(),
		State:    s.refresher.State().String(),
	}
	s.paintMu.Lock()
	defer s.paintMu.Unlock()
	if s.clear {
		fmt.Fprint(s.out, clearScreen)
	}
	Paint(s.out, frame, s.palette)
}

// Execute runs one command line. Failures of refreshes and alert updates
// are also on the board's notice; the returned error is for the caller's
// log.
func (s *Session) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "q", "quit", "exit":
		return ErrQuit
	case "r", "refresh":
		return s.refresher.Refresh(ctx)
	case "w", "window":
		if len(args) != 1 {
			return fmt.Errorf("usage: window <hours>")
		}
		s.window.SetRaw(args[0])
		return s.refresher.Refresh(ctx)
	case "d", "dismiss":
		s.board.ClearNotice()
		return nil
	case "ack", "resolve":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <alert id>", cmd)
		}
		key := view.ControlKey{AlertID: contracts.ID(args[0]), Action: contracts.AlertAction(cmd)}
		if err := s.board.Click(ctx, key); err != nil {
			if errors.Is(err, view.ErrNoBinding) {
				s.board.Notify(fmt.Sprintf("No open alert %s on the board.", args[0]))
			}
			return fmt.Errorf("%s alert %s: %w", cmd, args[0], err)
		}
		return nil
	case "h", "help", "?":
		s.Repaint()
		return nil
	default:
		s.board.Notify(fmt.Sprintf("Unknown command %q.", cmd))
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// Run repaints on every board change and executes input lines until quit,
// end of input or ctx cancellation. Commands run in their own goroutines so
// a slow refresh never blocks typing.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	s.Repaint()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.board.Changes():
			s.Repaint()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if isQuit(line) {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := s.Execute(ctx, line); err != nil {
					s.logger.Warn().Err(err).Str("command", line).Msg("command failed")
				}
			}()
		}
	}
}

func isQuit(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToLower(fields[0]) {
	case "q", "quit", "exit":
		return true
	}
	return false
}
