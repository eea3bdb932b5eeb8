package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gatehouse/marketplace/internal/catalog"
	"github.com/gatehouse/marketplace/internal/config"
)

var (
	adminAPIKey  string
	seedDatabase string
)

var reviewCmd = &cobra.Command{
	Use:   "review [resource-id]",
	Short: "Show the approval review for a catalog resource",
	Long:  `Show the three approval signals, blockers and spec check for a catalog resource. Requires the admin API key.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runReview,
}

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Load plans and resources into the local catalog",
	Long: `Load a YAML seed file into the catalog database named by the
DATABASE_* environment. Only the sqlite backend accepts seeds.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(seedCmd)

	reviewCmd.Flags().StringVar(&adminAPIKey, "admin-key", os.Getenv("ADMIN_API_KEY"), "Admin API key")
	seedCmd.Flags().StringVar(&seedDatabase, "database", "", "SQLite database path (overrides DATABASE_PATH)")
}

func runReview(cmd *cobra.Command, args []string) error {
	if adminAPIKey == "" {
		return fmt.Errorf("admin API key is required (--admin-key or ADMIN_API_KEY)")
	}

	req, err := http.NewRequest(http.MethodGet,
		fmt.Sprintf("%s/api/v1/admin/resources/%s/review", serverURL, url.PathEscape(args[0])), nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Admin-API-Key", adminAPIKey)

	var review Review
	if err := getJSON(req, &review); err != nil {
		return err
	}

	if outputFormat == "json" {
		return printJSON(review)
	}

	fmt.Printf("Resource:   %s (public %s)\n", review.ResourceID, review.PublicID)
	fmt.Printf("Validation: %s\n", review.ValidationStatus)
	fmt.Printf("Verifier:   %s\n", review.VerifierStatus)
	fmt.Printf("Admin:      %s\n", review.AdminApprovalStatus)
	fmt.Printf("Overall:    %s\n", review.OverallStatus)
	fmt.Printf("Available:  %s\n", yesNo(review.IsAvailable))
	if len(review.Blockers) > 0 {
		fmt.Printf("Blockers:   %s\n", strings.Join(review.Blockers, ", "))
	}
	for _, e := range review.Specs.Errors {
		fmt.Printf("Spec error: %s\n", e)
	}
	return nil
}

// catalogConfig resolves the catalog database from the DATABASE_* environment
// and the seed --database override
func catalogConfig() (config.DatabaseConfig, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	if seedDatabase != "" {
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = seedDatabase
	}
	return cfg.Database, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	db, err := catalogConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	backend, err := catalog.Open(ctx, db)
	if err != nil {
		return err
	}
	defer backend.Close()

	seed, err := backend.Seed(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %d plans and %d resources into %s\n", len(seed.Plans), len(seed.Resources), db.Path)
	return nil
}
