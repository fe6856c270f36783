package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	clouddomain "nathanbeddoewebdev/dropproxy/internal/cloud/domain"
)

// maxTransientErrors is the number of consecutive non-rate-limit errors
// allowed before the poll loop gives up.
const maxTransientErrors = 3

// waitForDroplet waits for every action recorded against the droplet.
func (w *Workflow) waitForDroplet(ctx context.Context, dropletID string) error {
	actions, err := w.cloud.DropletActions(ctx, dropletID)
	if err != nil {
		return fmt.Errorf("failed to list droplet actions: %w", err)
	}
	for _, a := range actions {
		if err := w.waitForAction(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// waitForAction polls an action until it completes. It gives up when the
// action errors, after Config.MaxPollAttempts polls, on the first
// rate-limit error or after maxTransientErrors failures in a row.
func (w *Workflow) waitForAction(ctx context.Context, action clouddomain.ActionStatus) error {
	switch action.Status {
	case clouddomain.ActionStatusCompleted:
		return nil
	case clouddomain.ActionStatusErrored:
		return actionFailed(action)
	}

	var consecutiveErrors int
	for i := 0; i < w.cfg.MaxPollAttempts; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.cfg.PollInterval):
		}

		status, err := w.cloud.GetAction(ctx, action.ID)
		if err != nil {
			if errors.Is(err, clouddomain.ErrRateLimited) {
				return fmt.Errorf("polling stopped: %w", err)
			}
			consecutiveErrors++
			if consecutiveErrors >= maxTransientErrors {
				return fmt.Errorf("error polling action %s (after %d consecutive failures): %w", action.ID, consecutiveErrors, err)
			}
			w.out.Infof("Transient error, retrying... (%d/%d)", consecutiveErrors, maxTransientErrors)
			continue
		}
		consecutiveErrors = 0

		switch status.Status {
		case clouddomain.ActionStatusCompleted:
			return nil
		case clouddomain.ActionStatusErrored:
			return actionFailed(*status)
		default:
			w.out.Infof("The droplet status is %s. Waiting for droplet", status.Status)
		}
	}

	return fmt.Errorf("%w: action %s (%d polls)", ErrActionTimedOut, action.ID, w.cfg.MaxPollAttempts)
}

func actionFailed(a clouddomain.ActionStatus) error {
	if a.ErrorMessage != "" {
		return fmt.Errorf("%w: %s %s: %s", ErrActionFailed, a.Type, a.ID, a.ErrorMessage)
	}
	return fmt.Errorf("%w: %s %s", ErrActionFailed, a.Type, a.ID)
}
