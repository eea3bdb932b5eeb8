package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the settings the CLI resolves",
	Long:  `Show where the CLI sends requests, which admin key it sends and which catalog database seed writes to.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective CLI settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Print the environment export for a setting",
	Long: `Print the environment export that sets a CLI setting. Supported keys:
  server     - MARKETPLACE_URL
  admin-key  - ADMIN_API_KEY
  database   - DATABASE_PATH (sqlite catalog used by seed)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

// settingEnv maps config set keys to the variables the CLI reads
var settingEnv = map[string]string{
	"server":    "MARKETPLACE_URL",
	"admin-key": "ADMIN_API_KEY",
	"database":  "DATABASE_PATH",
}

// cliEnvVars are listed by config show in this order
var cliEnvVars = []string{"MARKETPLACE_URL", "ADMIN_API_KEY", "DATABASE_DRIVER", "DATABASE_PATH", "DATABASE_URL"}

// CLISettings is the effective configuration of one CLI invocation
type CLISettings struct {
	ServerURL      string            `json:"server_url"`
	OutputFormat   string            `json:"output_format"`
	AdminAPIKey    string            `json:"admin_api_key"`
	DatabaseDriver string            `json:"database_driver"`
	DatabasePath   string            `json:"database_path,omitempty"`
	DatabaseDSN    string            `json:"database_dsn,omitempty"`
	Environment    map[string]string `json:"environment"`
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	db, err := catalogConfig()
	if err != nil {
		return err
	}

	settings := CLISettings{
		ServerURL:      serverURL,
		OutputFormat:   outputFormat,
		AdminAPIKey:    maskSecret(adminAPIKey),
		DatabaseDriver: db.Driver,
		DatabasePath:   db.Path,
		DatabaseDSN:    redactDSN(db.DSN),
		Environment:    make(map[string]string, len(cliEnvVars)),
	}
	for _, name := range cliEnvVars {
		value, ok := os.LookupEnv(name)
		switch {
		case !ok:
			settings.Environment[name] = ""
		case name == "ADMIN_API_KEY":
			settings.Environment[name] = maskSecret(value)
		case name == "DATABASE_URL":
			settings.Environment[name] = redactDSN(value)
		default:
			settings.Environment[name] = value
		}
	}

	if outputFormat == "json" {
		return printJSON(settings)
	}

	fmt.Println("Marketplace CLI Configuration")
	fmt.Println("=============================")
	fmt.Println()
	fmt.Printf("Server URL:     %s\n", settings.ServerURL)
	fmt.Printf("Output Format:  %s\n", settings.OutputFormat)
	if adminAPIKey == "" {
		fmt.Println("Admin API Key:  (not set, review is unavailable)")
	} else {
		fmt.Printf("Admin API Key:  %s\n", settings.AdminAPIKey)
	}
	fmt.Printf("Catalog:        %s", settings.DatabaseDriver)
	switch {
	case settings.DatabaseDSN != "":
		fmt.Printf(" %s\n", settings.DatabaseDSN)
	case settings.DatabasePath != "":
		fmt.Printf(" %s\n", settings.DatabasePath)
	default:
		fmt.Println()
	}
	fmt.Println()

	fmt.Println("Environment Variables:")
	for _, name := range cliEnvVars {
		if v := settings.Environment[name]; v != "" {
			fmt.Printf("  %s=%s\n", name, v)
		} else {
			fmt.Printf("  %s (not set)\n", name)
		}
	}

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	env, ok := settingEnv[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	fmt.Println("The CLI reads its settings from the environment. Run:")
	fmt.Printf("  export %s=%s\n", env, value)
	switch key {
	case "server":
		fmt.Println()
		fmt.Println("Or use the --server flag with each command.")
	case "admin-key":
		fmt.Println()
		fmt.Println("Or use the --admin-key flag with review.")
	case "database":
		fmt.Println()
		fmt.Println("Or use the --database flag with seed.")
	}
	return nil
}

// maskSecret keeps the last four characters of long secrets
func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}

// redactDSN hides the password of a connection URL
func redactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		if strings.Contains(dsn, "password=") {
			return "(redacted)"
		}
		return dsn
	}
	return u.Redacted()
}
