// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sportsdl/internal/config"
	"sportsdl/internal/extract"
	"sportsdl/internal/log"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagPlayer string
	flagJSON   bool
	flagPick   bool
	flagPlay   bool
	flagDebug  bool
	flagConfig string
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sportsdl <url>",
	Short: "Resolve LAOLA1 and EHF TV streams from the terminal",
	Long: `sportsdl resolves LAOLA1 titanplayer embeds and ehftv.com pages into
playable stream formats. Print them, pick one interactively, or hand the best
one to mpv/vlc.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              extractRun,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}

// printError prints expected errors as plain messages and everything else
// with its full wrap chain.
func printError(err error) {
	var expected *extract.ExpectedError
	if errors.As(err, &expected) {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", expected.Msg)
		return
	}
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Media player: mpv | vlc | iina | celluloid")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: $XDG_CONFIG_HOME/sportsdl/config.toml)")
	rootCmd.Flags().BoolVarP(&flagJSON, "json", "j", false, "Output extraction result as JSON")
	rootCmd.Flags().BoolVarP(&flagPick, "pick", "p", false, "Pick a format interactively and print its URL")
	rootCmd.Flags().BoolVar(&flagPlay, "play", false, "Play the best (or picked) format")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := cfg.LogLevel
	if cfg.Debug {
		level = "debug"
	}
	log.Configure(log.Config{Level: level, Output: os.Stderr, Console: true})

	return nil
}
