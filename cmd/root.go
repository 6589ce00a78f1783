/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dmoralesp/turnero/internal/config"
	"github.com/dmoralesp/turnero/internal/logging"
	"github.com/dmoralesp/turnero/internal/version"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "turnero",
	Short: "A live queue dashboard for small-business counters.",
	Long: `A live queue dashboard for small-business counters.

Turnero polls a remote system of record for appointments or orders,
detects new arrivals and status changes, alerts the operator, and
pushes status transitions back through an authenticated gateway.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = version.String()
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.config/turnero/config.toml)")
}

// loadConfig reads the configuration and installs the global logger.
func loadConfig() (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(logging.Config{
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
	})
	logging.SetGlobal(logger)
	return cfg, logger, nil
}
