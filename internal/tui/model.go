package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmoralesp/turnero/internal/alert"
	"github.com/dmoralesp/turnero/internal/domain"
	"github.com/dmoralesp/turnero/internal/mutate"
	"github.com/dmoralesp/turnero/internal/poller"
)

// Model is the bubbletea model for one dashboard session.
type Model struct {
	vertical domain.Vertical
	loop     *poller.Loop
	alerts   *alert.State
	tones    *alert.Sequencer
	mutator  *mutate.Mutator
	updates  <-chan poller.Update

	snapshot *domain.Snapshot
	cursor   int
	width    int
	status   string

	keys keyMap
	help help.Model
}

// NewModel creates the dashboard model. The loop must already be
// subscribed and started by the caller.
func NewModel(vertical domain.Vertical, loop *poller.Loop, alerts *alert.State, tones *alert.Sequencer, mutator *mutate.Mutator, updates <-chan poller.Update) *Model {
	return &Model{
		vertical: vertical,
		loop:     loop,
		alerts:   alerts,
		tones:    tones,
		mutator:  mutator,
		updates:  updates,
		width:    defaultWidth,
		keys:     defaultKeys,
		help:     help.New(),
	}
}

// Init starts the update subscription and the display clock.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), clockTick())
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case updateMsg:
		m.snapshot = msg.update.Snapshot
		if m.cursor >= len(m.snapshot.Records) {
			m.cursor = max(0, len(m.snapshot.Records)-1)
		}
		m.status = ""
		return m, waitForUpdate(m.updates)
	case clockTickMsg:
		return m, clockTick()
	case transitionFailedMsg:
		m.status = msg.err.Error()
		return m, nil
	case transitionAppliedMsg:
		if m.snapshot != nil {
			for i := range m.snapshot.Records {
				if m.snapshot.Records[i].Key() == msg.key {
					m.snapshot.Records[i].Status = msg.target
				}
			}
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.teardown()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.snapshot != nil && m.cursor < len(m.snapshot.Records)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Refresh):
		m.loop.RefreshNow()
	case key.Matches(msg, m.keys.Sound):
		// The user gesture that unlocks audio playback.
		m.tones.Unlock()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Advance):
		return m, m.transitionSelected(0)
	case key.Matches(msg, m.keys.Fallback):
		return m, m.transitionSelected(1)
	}
	return m, nil
}

// transitionSelected moves the record under the cursor to its nth
// allowed next status, when one exists.
func (m *Model) transitionSelected(n int) tea.Cmd {
	if m.snapshot == nil || m.cursor >= len(m.snapshot.Records) {
		return nil
	}
	record := m.snapshot.Records[m.cursor]
	next := m.vertical.NextStatuses(record.Status)
	if n >= len(next) {
		return nil
	}
	key := record.Key()
	target := next[n]
	return func() tea.Msg {
		if err := m.mutator.Transition(context.Background(), key, target); err != nil {
			return transitionFailedMsg{err: err}
		}
		return transitionAppliedMsg{key: key, target: target}
	}
}

// teardown stops the reconciliation loop and every scheduled timer
// together. Leaking a stray timer across navigation is a defect.
func (m *Model) teardown() {
	m.loop.Stop()
	m.tones.Stop()
	m.alerts.Shutdown()
}
