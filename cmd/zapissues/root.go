package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zapissues/zapissues/internal/config"
)

// cfg is resolved once per invocation by the root command
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "zapissues",
	Short: "File GitHub issues from ZAP scan reports",
	Long: `zapissues reads an OWASP ZAP HTML report, extracts the High and Medium
severity findings and files them as GitHub issues, skipping findings that
already have an open issue.

Configuration is read from an optional YAML file, then a .env file, then the
environment (GITHUB_OWNER, GITHUB_REPO, GITHUB_TOKEN, ANTHROPIC_API_KEY, ...).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		setupLogging(debug)

		if cmd.Name() == versionCmd.Name() {
			return nil
		}

		loaded, err := loadConfig(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("env-file", "", "Path to a .env file (default: ./.env when present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig layers the YAML file, the env file and the environment
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	c := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return c, err
		}
		c = loaded
	}

	if envFile != "" {
		if err := config.LoadEnvFile(envFile, true); err != nil {
			return c, err
		}
	} else if err := config.LoadEnvFile(config.DefaultEnvFile, false); err != nil {
		return c, err
	}

	if err := c.ApplyEnv(); err != nil {
		return c, err
	}
	return c, nil
}
