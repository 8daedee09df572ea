package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jfmyers9/simplay/internal/config"
	"github.com/spf13/cobra"
)

var apiParams []string

var apiCmd = &cobra.Command{
	Use:   "api ENDPOINT",
	Short: "Call a Subsonic API endpoint and print the JSON response",
	Long: `Call any Subsonic API endpoint with the configured credentials and print
the response, indented.

Examples:
  simplay api ping
  simplay api getAlbumList2 --param type=newest --param size=5
  simplay api search3 -p query=radiohead`,
	Args: cobra.ExactArgs(1),
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().StringArrayVarP(&apiParams, "param", "p", nil, "Query parameter as key=value (repeatable)")
}

func runAPI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	params, err := parseParams(apiParams)
	if err != nil {
		return err
	}

	api, err := newAPIClient(cfg, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	raw, err := api.Raw(ctx, args[0], params)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(cmd.OutOrStdout())
	return err
}

// parseParams turns key=value pairs into query values. Repeated keys are
// kept in order.
func parseParams(pairs []string) (url.Values, error) {
	params := url.Values{}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q (want key=value)", p)
		}
		params.Add(key, value)
	}
	return params, nil
}
