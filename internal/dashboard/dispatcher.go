package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/contracts"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/metrics"
	"github.com/shiroonigami23-ui/supply-shock-dashboard/internal/view"
)

var (
	ErrInFlight      = errors.New("action already in flight")
	ErrUnknownAction = errors.New("unknown alert action")
	ErrNoDispatcher  = errors.New("no action dispatcher configured")
)

type Transitioner interface {
	TransitionAlert(ctx context.Context, id contracts.ID, action contracts.AlertAction) (contracts.TransitionResult, error)
}

type Refresher interface {
	Refresh(ctx context.Context) error
}

// Controls holds the disabled flag of each action control.
type Controls interface {
	TryDisable(key view.ControlKey) bool
	Enable(key view.ControlKey)
}

type Dispatcher struct {
	client    Transitioner
	refresher Refresher
	controls  Controls
	notifier  view.Notifier
	logger    zerolog.Logger
}

func NewDispatcher(client Transitioner, refresher Refresher, controls Controls, notifier view.Notifier, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		client:    client,
		refresher: refresher,
		controls:  controls,
		notifier:  notifier,
		logger:    logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Perform submits an alert transition. The originating control stays
// disabled until the request and the follow-up refresh finish. Only a
// successful transition triggers a refresh.
func (d *Dispatcher) Perform(ctx context.Context, id contracts.ID, action contracts.AlertAction) error {
	if !action.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	key := view.ControlKey{AlertID: id, Action: action}
	if !d.controls.TryDisable(key) {
		metrics.AlertActionsTotal.WithLabelValues(string(action), "duplicate").Inc()
		return ErrInFlight
	}
	defer d.controls.Enable(key)

	log := d.logger.With().Str("alert_id", string(id)).Str("action", string(action)).Logger()

	result, err := d.client.TransitionAlert(ctx, id, action)
	if err != nil {
		metrics.AlertActionsTotal.WithLabelValues(string(action), "failed").Inc()
		log.Warn().Err(err).Msg("alert update failed")
		d.notifier.Notify("Failed to update alert: " + err.Error())
		return fmt.Errorf("%s alert %s: %w", action, id, err)
	}
	metrics.AlertActionsTotal.WithLabelValues(string(action), "success").Inc()
	log.Info().Str("status", result.Status).Msg("alert updated")

	if err := d.refresher.Refresh(ctx); err != nil {
		log.Debug().Err(err).Msg("refresh after alert update failed")
	}
	return nil
}
