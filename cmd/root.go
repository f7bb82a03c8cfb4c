package cmd

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ThatCatDev/modelinspect/internal/apiclient"
	"github.com/ThatCatDev/modelinspect/internal/config"
	"github.com/ThatCatDev/modelinspect/internal/logging"
)

var (
	ollamaURL string
	timeout   time.Duration
	debug     bool
	logFile   string
)

var rootCmd = &cobra.Command{
	Use:          "modelinspect",
	Short:        "Inspect models installed on a local Ollama daemon",
	Long:         "modelinspect lists the models installed on a local Ollama daemon and shows a model's configuration and system prompt.",
	SilenceUsage: true,
	RunE:         runTUI,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&ollamaURL, "ollama-url", "", "daemon URL (default $OLLAMA_HOST or http://127.0.0.1:11434)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "bound on each daemon request (0 waits indefinitely)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file")
}

// loadConfig layers the command-line flags over .env and the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(".env")
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("ollama-url") {
		cfg.OllamaHost = ollamaURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("debug") {
		cfg.Debug = debug
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	return cfg, nil
}

// setup loads the configuration and builds the logger and daemon client.
// Without a log file, logs go to fallback (nil discards them).
func setup(cmd *cobra.Command, fallback io.Writer) (*config.Config, zerolog.Logger, *apiclient.Client, func() error, error) {
	noop := func() error { return nil }

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, zerolog.Nop(), nil, noop, err
	}

	log, closeLog, err := logging.New(logging.Options{
		Debug:    cfg.Debug,
		File:     cfg.LogFile,
		Fallback: fallback,
	})
	if err != nil {
		return nil, zerolog.Nop(), nil, noop, err
	}

	baseURL, err := cfg.OllamaURL()
	if err != nil {
		closeLog()
		return nil, zerolog.Nop(), nil, noop, err
	}
	log.Debug().Str("ollama", baseURL).Dur("timeout", cfg.Timeout).Msg("configuration loaded")

	return cfg, log, apiclient.New(baseURL, cfg.Timeout), closeLog, nil
}
