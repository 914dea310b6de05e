// Package main implements the wikictl CLI for browsing a running rmwiki server.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	wikihttp "github.com/fyrsmithlabs/rmwiki/internal/http"
)

var (
	// serverURL is the base URL for the rmwiki HTTP server
	serverURL string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wikictl",
	Short: "CLI for the rmwiki HTTP server",
	Long: `wikictl is a command-line interface for a running rmwiki server.
It lists characters, shows single characters and manages favourites.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:9090", "rmwiki server URL")
	rootCmd.AddCommand(healthCmd)
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check rmwiki server health",
	Long: `Check the health status of the rmwiki HTTP server.

Examples:
  # Check health
  wikictl health

  # Check health on a different server
  wikictl health --server http://localhost:8080`,
	RunE: runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	var resp wikihttp.HealthResponse
	if err := doJSON(cmd.Context(), serverURL, http.MethodGet, "/health", &resp); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderHealth(resp, serverURL))
	return nil
}

// apiError is a non-2xx answer from the server.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string {
	if e.message == "" {
		return fmt.Sprintf("server returned status %d", e.status)
	}
	return fmt.Sprintf("server returned status %d: %s", e.status, e.message)
}

// errorBody covers both loader results and echo's default error body.
type errorBody struct {
	Result  wikihttp.ResultResponse `json:"result"`
	Message string                  `json:"message"`
}

func (b errorBody) text() string {
	switch {
	case b.Result.Message != "":
		return b.Result.Message
	case b.Result.Error != "":
		return b.Result.Error
	default:
		return b.Message
	}
}

// doJSON sends a request to server and decodes a 2xx body into out.
func doJSON(ctx context.Context, server, method, path string, out any) error {
	url := server + path
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.text() != "" {
			return &apiError{status: resp.StatusCode, message: eb.text()}
		}
		return &apiError{status: resp.StatusCode, message: string(bytes.TrimSpace(body))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
