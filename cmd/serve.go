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
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmoralesp/turnero/internal/gateway"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the session-gated gateway",
	Long: `Run the session-gated gateway.

The gateway validates the operator's session cookie on every request
and forwards valid requests to the remote system of record, attaching
the server-held API key. It exposes:

    POST /auth/login     issue the session cookie
    POST /auth/logout    clear the session cookie
    *    /api/...        authenticated proxy to the remote system`,
	RunE: runServe,
}

var serveListen string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Remote.BaseURL == "" {
		return errors.New("remote.base_url is not configured")
	}
	listen := cfg.Gateway.Listen
	if serveListen != "" {
		listen = serveListen
	}

	gw := gateway.New(cfg.Remote.BaseURL, cfg.Remote.APIKey, logger,
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.RemoteTimeout()}))

	server := &http.Server{
		Addr:              listen,
		Handler:           gw.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", "addr", listen, "remote", cfg.Remote.BaseURL)
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("gateway server failed: %w", err)
		}
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("gateway shutdown failed: %w", err)
		}
	}
	return nil
}
