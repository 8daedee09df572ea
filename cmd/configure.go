package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jfmyers9/simplay/internal/config"
	"github.com/jfmyers9/simplay/pkg/subsonic"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Set up the Subsonic server connection",
	Long: `Configure the Subsonic-compatible server simplay plays from.

This command will:
1. Prompt for the server URL, username and password
2. Check the credentials with a ping request
3. Save them to the config file (readable by you only)

Press Enter at a prompt to keep the current value.`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())

	fmt.Fprintln(out, "Subsonic Server Setup")
	fmt.Fprintln(out, "=====================")
	fmt.Fprintln(out)

	if cfg.ServerURL, err = prompt(out, reader, "Server URL", cfg.ServerURL); err != nil {
		return err
	}
	cfg.ServerURL = strings.TrimSuffix(cfg.ServerURL, "/")
	if cfg.Username, err = prompt(out, reader, "Username", cfg.Username); err != nil {
		return err
	}

	password, err := readPassword(out, reader)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password != "" {
		cfg.Password = password
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nChecking connection...")
	if err := pingServer(cfg); err != nil {
		return fmt.Errorf("server check failed: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(out, "\n✓ Connected to %s as %s\n", cfg.ServerURL, cfg.Username)
	fmt.Fprintf(out, "✓ Settings saved to %s/config.yaml\n", config.ConfigDir())
	fmt.Fprintln(out, "\nYou can now start playback with 'simplay daemon' and 'simplay shuffle'.")
	return nil
}

// prompt reads one line, returning current when the line is blank.
func prompt(out io.Writer, reader *bufio.Reader, label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	if line = strings.TrimSpace(line); line != "" {
		return line, nil
	}
	return current, nil
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(out io.Writer, reader *bufio.Reader) (string, error) {
	fmt.Fprint(out, "Password (leave blank to keep): ")
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		return strings.TrimSpace(string(b)), err
	}
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func pingServer(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	api, err := newAPIClient(cfg, nil)
	if err != nil {
		return err
	}
	_, err = api.Raw(ctx, "ping", nil)
	return err
}

// newAPIClient builds an SDK client from the saved settings.
func newAPIClient(cfg *config.Config, logger subsonic.Logger) (*subsonic.Client, error) {
	tlsVerify := cfg.TLSVerify
	return subsonic.NewClient(subsonic.Config{
		BaseURL:    cfg.ServerURL,
		Username:   cfg.Username,
		Password:   cfg.Password,
		APIVersion: cfg.APIVersion,
		ClientName: cfg.ClientName,
		Suffix:     cfg.EndpointSuffix,
		Timeout:    cfg.RequestTimeout,
		TLSVerify:  &tlsVerify,
		Logger:     logger,
	})
}
