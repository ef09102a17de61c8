// Package main provides the CLI entrypoint of the domain checker.
// It wires subcommands (check, serve), loads configuration, and initializes logging.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"domaincheck/internal/config"
	"domaincheck/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// main sets up the root Cobra command, loads configuration and logging, and
// registers subcommands before executing the CLI.
func main() {
	rootCmd := &cobra.Command{
		Use:           "domaincheck",
		Short:         "Checks domain registrations and estimates traffic and backlinks",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// there is no way to access flags before command execution in cobra.
	// configPath here is parsed using the standard flags package.
	// following line is just added to prevent errors when Cobra is parsing the flags.
	rootCmd.PersistentFlags().StringP("config", "c", "config.yml", "Config File Path")

	configPath := flag.String("c", "config.yml", "The config file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config file", err)
	}

	logger.Setup(cfg.Environment, cfg.LogLevel)

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			_ = logger.Get(ctx).Sync()

			panic(p)
		}
	}()

	rootCmd.AddCommand(
		checkCommand(cfg),
		serveCommand(cfg),
	)

	err = rootCmd.Execute()
	if err != nil {
		rootCmd.PrintErrln("Error:", err)
	}
	_ = logger.Get(ctx).Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
