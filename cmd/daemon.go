package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jfmyers9/simplay/internal/config"
	"github.com/jfmyers9/simplay/internal/daemon"
	"github.com/jfmyers9/simplay/internal/discord"
	"github.com/jfmyers9/simplay/internal/history"
	"github.com/jfmyers9/simplay/internal/library"
	"github.com/jfmyers9/simplay/internal/player"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	daemonLogFile  string
	daemonLogLevel string
)

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the playback daemon",
	Long: `Run the playback daemon that owns the play queue and drives mpv.

The daemon will:
- Start mpv in the background and follow its end-of-track events
- Listen for commands on a local socket
- Report now-playing and completed plays to the server
- Record plays in the local history database (unless disabled)
- Handle graceful shutdown on SIGINT/SIGTERM

The daemon runs in the foreground and logs to stderr by default.
Use the --log-file flag to log to a file (useful for launchd or systemd).`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.Flags().StringVar(&daemonLogFile, "log-file", "", "Log file path (default: stderr)")
	daemonCmd.Flags().StringVar(&daemonLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := setupLogger(daemonLogFile, daemonLogLevel)

	logger.Info().
		Str("version", version).
		Str("server", cfg.ServerURL).
		Msg("Starting simplay daemon")

	api, err := newAPIClient(cfg, subsonicLogger{logger.With().Str("component", "subsonic").Logger()})
	if err != nil {
		return fmt.Errorf("failed to create server client: %w", err)
	}
	lib := library.New(api, logger)

	mpv, err := player.Spawn(cfg.MPVPath, config.PlayerSocketPath(), logger)
	if err != nil {
		return err
	}

	var opts []daemon.Option
	if cfg.History.Enabled {
		journal, err := history.Open(config.HistoryPath())
		if err != nil {
			_ = mpv.Close()
			return fmt.Errorf("failed to open history: %w", err)
		}
		opts = append(opts, daemon.WithJournal(journal))
	}
	if cfg.Discord.Enabled {
		opts = append(opts, daemon.WithPresence(discord.New(cfg.Discord.AppID, logger)))
	}

	d := daemon.New(daemon.Config{
		SocketPath: config.SocketPath(),
		EndGrace:   cfg.EndGrace,
		MaxShuffle: cfg.MaxShuffle,
		VolumeStep: cfg.VolumeStep,
	}, mpv, lib, logger, opts...)

	// Run daemon (blocks until shutdown signal)
	runErr := d.Run()
	if runErr != nil {
		logger.Error().Err(runErr).Msg("Daemon error")
	}

	if err := d.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
		return errors.Join(runErr, err)
	}

	logger.Info().Msg("Daemon stopped")
	return runErr
}

// subsonicLogger adapts zerolog to the SDK's debug logger.
type subsonicLogger struct {
	logger zerolog.Logger
}

func (l subsonicLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logFile, logLevel string) zerolog.Logger {
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	var output *os.File
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}
