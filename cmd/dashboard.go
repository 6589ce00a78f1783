/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dmoralesp/turnero/internal/alert"
	"github.com/dmoralesp/turnero/internal/config"
	"github.com/dmoralesp/turnero/internal/domain"
	"github.com/dmoralesp/turnero/internal/mutate"
	"github.com/dmoralesp/turnero/internal/poller"
	"github.com/dmoralesp/turnero/internal/remote"
	"github.com/dmoralesp/turnero/internal/session"
	"github.com/dmoralesp/turnero/internal/store"
	"github.com/dmoralesp/turnero/internal/tui"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Run the live dashboard for a vertical",
	Long: `Run the live dashboard for a vertical.

The dashboard polls the remote system on the vertical's cadence,
highlights new and changed records, and lets the operator progress
record statuses. Press 's' once to enable the audible alert.`,
	RunE: runDashboard,
}

var (
	dashboardVertical string
	dashboardInterval int
	dashboardMute     bool
)

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringVar(&dashboardVertical, "vertical", "", "business vertical: barberia or carrito (overrides config)")
	dashboardCmd.Flags().IntVar(&dashboardInterval, "interval", 0, "poll interval in seconds (overrides the vertical default)")
	dashboardCmd.Flags().BoolVar(&dashboardMute, "mute", false, "disable the audible alert entirely")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	name := cfg.Dashboard.Vertical
	if dashboardVertical != "" {
		name = dashboardVertical
	}
	vertical, err := domain.VerticalByName(name)
	if err != nil {
		return err
	}

	period := vertical.PollPeriod
	if p := cfg.PollPeriod(); p > 0 {
		period = p
	}
	if dashboardInterval > 0 {
		period = time.Duration(dashboardInterval) * time.Second
	}

	client, err := buildClient(cfg)
	if err != nil {
		return err
	}

	snapshots := store.New()
	loop := poller.New(period, func(ctx context.Context) (*domain.Snapshot, error) {
		return client.FetchSnapshot(ctx, vertical)
	}, snapshots, logger)

	var emitter alert.ToneEmitter = alert.TerminalBell{W: os.Stdout}
	if dashboardMute {
		emitter = alert.NoopEmitter{}
	}
	tones := alert.NewSequencer(emitter, alert.NoopHaptics{})
	alerts := alert.NewState()
	dispatcher := alert.NewDispatcher(alerts, tones, alert.ExecNotifier{}, logger)

	mutator := mutate.New(vertical, snapshots, func(ctx context.Context, rowID int, status domain.Status) error {
		return client.UpdateStatus(ctx, vertical, rowID, status)
	}, loop, logger)

	// The dispatcher and the TUI each get their own subscription so a
	// busy render never delays an alert cycle.
	alertUpdates := loop.Subscribe()
	viewUpdates := loop.Subscribe()
	go func() {
		for update := range alertUpdates {
			dispatcher.Dispatch(update.Diff)
		}
	}()

	ctx := context.Background()
	loop.Start(ctx)
	defer loop.Stop()

	model := tui.NewModel(vertical, loop, alerts, tones, mutator, viewUpdates)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	mutator.Wait()
	return nil
}

// buildClient points the remote client at the gateway when one is
// configured, minting a fresh session credential for the operator;
// otherwise it talks to the remote system directly with the API key.
func buildClient(cfg *config.Config) (*remote.Client, error) {
	httpClient := &http.Client{Timeout: cfg.RemoteTimeout()}
	if cfg.Gateway.URL != "" {
		if cfg.Operator.Negocio == "" {
			return nil, errors.New("operator.negocio is required to go through the gateway")
		}
		sess := &session.Session{
			Usuario:   cfg.Operator.Usuario,
			Negocio:   cfg.Operator.Negocio,
			Token:     "local",
			Timestamp: time.Now().UnixMilli(),
		}
		return remote.New(cfg.Gateway.URL+"/api",
			remote.WithSession(sess),
			remote.WithHTTPClient(httpClient)), nil
	}
	if cfg.Remote.BaseURL == "" {
		return nil, errors.New("remote.base_url is not configured")
	}
	return remote.New(cfg.Remote.BaseURL,
		remote.WithAPIKey(cfg.Remote.APIKey),
		remote.WithHTTPClient(httpClient)), nil
}
