/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/jfmyers9/simplay/internal/config"
	"github.com/jfmyers9/simplay/internal/protocol"
	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "simplay",
	Short: "Shuffle and play music from a Subsonic server",
	Long: `simplay plays music from a Subsonic-compatible server through mpv.

A background daemon owns the play queue and drives mpv. Every other
command talks to the daemon over a local socket, so playback can be
controlled from scripts, window manager bindings or the terminal UI.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// sendCommand delivers req to the daemon and prints the reply. Failures
// are returned so the caller exits non-zero.
func sendCommand(req protocol.Request) (protocol.Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), protocol.DefaultTimeout)
	defer cancel()

	socketPath := config.SocketPath()
	resp, err := protocol.Send(ctx, socketPath, req)
	if err != nil {
		return protocol.Response{}, daemonUnavailable(socketPath, err)
	}
	if !resp.OK {
		return resp, errors.New(resp.Message)
	}
	return resp, nil
}

func daemonUnavailable(socketPath string, err error) error {
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("daemon is not running (no listener on %s); start it with 'simplay daemon'", socketPath)
	}
	return err
}

// runRequest sends req and prints the daemon's message on success.
func runRequest(out io.Writer, req protocol.Request) error {
	resp, err := sendCommand(req)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, resp.Message)
	return nil
}
