package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

func apiClient(socketPath string) *http.Client {
	// No client timeout: a post already handed to the daemon runs to
	// completion, and the answer is only useful once it has.
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", socketPath)
			},
		},
	}
}

// apiDo sends a JSON request to the daemon over its socket and decodes the
// response into out.
func apiDo(ctx context.Context, method, path string, in, out any) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, "http://socialhub"+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := apiClient(cfg.Socket()).Do(req)
	if err != nil {
		return fmt.Errorf("connecting to daemon: %w (is socialhub daemon running?)", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s", apiErr.Error)
		}
		return fmt.Errorf("API error %d: %s", resp.StatusCode, data)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the daemon is running and has credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		var health map[string]string
		if err := apiDo(cmd.Context(), "GET", "/v1/health", nil, &health); err != nil {
			return err
		}
		var exists struct {
			Exists bool `json:"exists"`
		}
		if err := apiDo(cmd.Context(), "GET", "/v1/credentials/exists", nil, &exists); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "daemon:      %s\n", okStyle.Render(health["status"]))
		if exists.Exists {
			fmt.Fprintf(out, "credentials: %s\n", okStyle.Render("present"))
		} else {
			fmt.Fprintf(out, "credentials: %s\n", failStyle.Render("missing"))
		}
		return nil
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent daemon log output",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("lines")
		var resp struct {
			Lines []string `json:"lines"`
		}
		if err := apiDo(cmd.Context(), "GET", "/v1/logs?n="+strconv.Itoa(n), nil, &resp); err != nil {
			return err
		}
		for _, line := range resp.Lines {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	logsCmd.Flags().IntP("lines", "n", 50, "number of lines to show")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
}
