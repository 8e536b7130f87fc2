package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"quizbuzzer/lib/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "buzzer",
	Short: "Quiz buzzer console",
	Long: `Runs the quiz buzzer console: two contestant buzzers with an answer
countdown, and a soundboard played from the sound card directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConsole,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "buzzer.yaml", "config file")
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// loadConfig reads the config file and installs the configured logger
// as the default.
func loadConfig() (*config.Store, config.Settings, *slog.Logger, error) {
	store, err := config.Load(cfgPath, slog.Default())
	if err != nil {
		return nil, config.Settings{}, nil, err
	}
	settings, err := store.Settings()
	if err != nil {
		return nil, config.Settings{}, nil, err
	}
	log := newLogger(settings.LogLevel)
	slog.SetDefault(log)
	return store, settings, log, nil
}
