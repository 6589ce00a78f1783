// Package tui provides the terminal dashboard over the reconciliation
// core: record list, countdown, alert banner, and status transitions.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmoralesp/turnero/internal/domain"
	"github.com/dmoralesp/turnero/internal/poller"
)

// updateMsg is sent when the reconciliation loop publishes a result.
type updateMsg struct {
	update poller.Update
}

// clockTickMsg drives the countdown and marker-expiry redraws.
type clockTickMsg time.Time

// transitionFailedMsg is sent when a status transition is rejected
// locally (unknown key, disallowed transition, or already in flight).
type transitionFailedMsg struct {
	err error
}

// transitionAppliedMsg is sent when the optimistic update was applied
// locally. The scheduled reconciliation fetch converges it with the
// remote truth.
type transitionAppliedMsg struct {
	key    domain.Key
	target domain.Status
}

// waitForUpdate blocks on the subscription channel and converts the
// next published update into a message.
func waitForUpdate(updates <-chan poller.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return nil
		}
		return updateMsg{update: u}
	}
}

// clockTick emits one tick per second for the countdown display.
func clockTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}
