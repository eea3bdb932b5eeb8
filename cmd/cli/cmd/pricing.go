package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gatehouse/marketplace/internal/pricing"
)

var (
	costHourlyPrice float64
	costHours       float64
)

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Estimate the cost of a rental",
	RunE:  runCost,
}

var suggestPriceCmd = &cobra.Command{
	Use:   "suggest-price [gpu-model]",
	Short: "Show the suggested hourly price range for a GPU model",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggestPrice,
}

func init() {
	rootCmd.AddCommand(costCmd)
	rootCmd.AddCommand(suggestPriceCmd)

	costCmd.Flags().Float64Var(&costHourlyPrice, "price", 0, "Hourly price (USD)")
	costCmd.Flags().Float64Var(&costHours, "hours", 1, "Rental duration in hours")
}

func runCost(cmd *cobra.Command, args []string) error {
	total := pricing.CalculateRentalCost(costHourlyPrice, costHours)

	if outputFormat == "json" {
		return printJSON(map[string]float64{
			"hourly_price": costHourlyPrice,
			"hours":        costHours,
			"total":        total,
		})
	}

	fmt.Printf("$%.2f/hr x %gh = $%.2f\n", costHourlyPrice, costHours, total)
	return nil
}

func runSuggestPrice(cmd *cobra.Command, args []string) error {
	model := args[0]
	r := pricing.SuggestedPrice(model)

	if outputFormat == "json" {
		return printJSON(map[string]interface{}{
			"gpu_model": model,
			"min":       r.Min,
			"max":       r.Max,
			"suggested": r.Suggested,
		})
	}

	fmt.Printf("%s: $%.2f - $%.2f/hr (suggested $%.2f)\n", model, r.Min, r.Max, r.Suggested)
	return nil
}
