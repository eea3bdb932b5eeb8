package cmd

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	listingsGPU           string
	listingsRegion        string
	listingsProvider      string
	listingsMaxPrice      float64
	listingsLimit         int
	listingsPlan          string
	listingsHours         float64
	listingsAvailableOnly bool
)

var listingsCmd = &cobra.Command{
	Use:     "listings",
	Aliases: []string{"ls"},
	Short:   "List marketplace resources",
	Long:    `Display obfuscated marketplace listings, optionally evaluated against a subscription plan.`,
	RunE:    runListings,
}

var getCmd = &cobra.Command{
	Use:   "get [public-id]",
	Short: "Show a single listing",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(listingsCmd)
	rootCmd.AddCommand(getCmd)

	listingsCmd.Flags().StringVarP(&listingsGPU, "gpu", "g", "", "Filter by GPU model substring (e.g., 4090, A100)")
	listingsCmd.Flags().StringVarP(&listingsRegion, "region", "r", "", "Filter by region")
	listingsCmd.Flags().StringVarP(&listingsProvider, "provider", "p", "", "Filter by upstream provider")
	listingsCmd.Flags().Float64Var(&listingsMaxPrice, "max-price", 0, "Maximum price per hour (USD)")
	listingsCmd.Flags().IntVar(&listingsLimit, "limit", 0, "Maximum number of upstream offers")
	listingsCmd.Flags().StringVar(&listingsPlan, "plan", "", "Evaluate listings against a plan (ID or slug)")
	listingsCmd.Flags().Float64Var(&listingsHours, "hours", 0, "Add an estimated cost for this many hours")
	listingsCmd.Flags().BoolVar(&listingsAvailableOnly, "available-only", false, "Only show rentable resources")
}

func listingsQuery() url.Values {
	params := url.Values{}
	if listingsGPU != "" {
		params.Set("gpu_model", listingsGPU)
	}
	if listingsRegion != "" {
		params.Set("region", listingsRegion)
	}
	if listingsProvider != "" {
		params.Set("provider", listingsProvider)
	}
	if listingsMaxPrice > 0 {
		params.Set("max_price", fmt.Sprintf("%.2f", listingsMaxPrice))
	}
	if listingsLimit > 0 {
		params.Set("limit", strconv.Itoa(listingsLimit))
	}
	if listingsPlan != "" {
		params.Set("plan", listingsPlan)
	}
	if listingsHours > 0 {
		params.Set("hours", strconv.FormatFloat(listingsHours, 'f', -1, 64))
	}
	if listingsAvailableOnly {
		params.Set("available_only", "true")
	}
	return params
}

func runListings(cmd *cobra.Command, args []string) error {
	reqURL := fmt.Sprintf("%s/api/v1/resources", serverURL)
	if params := listingsQuery(); len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}

	var result ListingsResponse
	if err := getJSON(req, &result); err != nil {
		return err
	}

	if outputFormat == "json" {
		return printJSON(result)
	}

	if len(result.Resources) == 0 {
		fmt.Println("No resources found matching criteria.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tHARDWARE\tTIER\tREGION\tPRICE/HR\tAVAILABLE\tPLAN")
	fmt.Fprintln(w, "--\t----\t--------\t----\t------\t--------\t---------\t----")

	for _, l := range result.Resources {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t$%.2f\t%s\t%s\n",
			l.ID,
			l.Type,
			hardwareLabel(l),
			orDash(l.GPUTier),
			l.Region,
			l.HourlyPrice,
			yesNo(l.IsAvailable),
			planColumn(l),
		)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d resources\n", result.Count)
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/v1/resources/%s", serverURL, url.PathEscape(args[0])), nil)
	if err != nil {
		return err
	}

	var listing Listing
	if err := getJSON(req, &listing); err != nil {
		return err
	}

	if outputFormat == "json" {
		return printJSON(listing)
	}

	fmt.Printf("ID:          %s\n", listing.ID)
	fmt.Printf("Type:        %s\n", listing.Type)
	fmt.Printf("Hardware:    %s\n", hardwareLabel(listing))
	fmt.Printf("CPU:         %s\n", listing.CPULabel)
	fmt.Printf("Memory:      %dGB RAM, %dGB %s\n", listing.RAMGB, listing.StorageGB, listing.StorageType)
	fmt.Printf("Location:    %s, %s (%s)\n", listing.Region, listing.Country, listing.Datacenter)
	fmt.Printf("Price:       $%.2f/hr\n", listing.HourlyPrice)
	fmt.Printf("Performance: %d\n", listing.PerformanceScore)
	fmt.Printf("Available:   %s\n", yesNo(listing.IsAvailable))
	return nil
}

func hardwareLabel(l Listing) string {
	if l.GPULabel == "" {
		return l.CPULabel
	}
	if l.GPUCount > 1 {
		return fmt.Sprintf("%dx %s (%dGB)", l.GPUCount, l.GPULabel, l.GPUVramGB)
	}
	return fmt.Sprintf("%s (%dGB)", l.GPULabel, l.GPUVramGB)
}

func planColumn(l Listing) string {
	if l.Plan == nil {
		return "-"
	}
	if l.Plan.Allowed {
		return "allowed"
	}
	if l.Plan.SuggestedPlan != "" {
		return "upgrade: " + l.Plan.SuggestedPlan
	}
	return "denied"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
