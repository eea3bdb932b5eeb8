package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL    string
	outputFormat string
)

// httpClient is shared by every command that talks to the server
var httpClient = &http.Client{Timeout: 30 * time.Second}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "marketplace",
	Short: "Gatehouse marketplace CLI - browse and vet compute resources",
	Long: `Gatehouse marketplace CLI.

This CLI tool allows you to:
- Browse marketplace listings and subscription plans
- Estimate rental costs and suggested GPU prices
- Validate hardware specs before onboarding
- Seed the local catalog and review resource approval`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", getEnvOrDefault("MARKETPLACE_URL", "http://localhost:8080"), "Marketplace server URL")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getJSON performs a GET against the server and decodes the response into out
func getJSON(req *http.Request, out interface{}) error {
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error: %s", string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
