// Package main is the entry point for the obscopilot workflow engine.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/justedave0/obscopilot-sub001/pkg/config"
)

// Version information
const (
	AppVersion = "0.1.0"
	AppName    = "obscopilot"
)

var configPath string

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: "OBSCopilot workflow engine",
		Long:  "Workflow engine reacting to Twitch and OBS events with user-authored automations",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")

	rootCmd.AddCommand(serveCmd(), validateCmd(), listCmd(), versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", AppName, AppVersion)
		},
	}
}

// loadConfig loads the configuration from the --config flag or falls back
// to defaults.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(configPath)
}
