package cmd

import (
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List subscription plans",
	RunE:  runPlans,
}

func init() {
	rootCmd.AddCommand(plansCmd)
}

func runPlans(cmd *cobra.Command, args []string) error {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/v1/plans", serverURL), nil)
	if err != nil {
		return err
	}

	var result PlansResponse
	if err := getJSON(req, &result); err != nil {
		return err
	}

	if outputFormat == "json" {
		return printJSON(result)
	}

	if len(result.Plans) == 0 {
		fmt.Println("No plans configured.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SLUG\tNAME\tPRICE/MO\tGPU ACCESS\tCPU ACCESS\tMAX CORES\tMAX GPUS")
	fmt.Fprintln(w, "----\t----\t--------\t----------\t----------\t---------\t--------")

	for _, p := range result.Plans {
		fmt.Fprintf(w, "%s\t%s\t$%.2f\t%s\t%s\t%s\t%s\n",
			p.Slug,
			p.Name,
			p.PriceMonthly,
			orDash(p.AllowedGPUAccess),
			orDash(p.AllowedCPUAccess),
			ceiling(p.MaxCPUCores),
			ceiling(p.MaxGPUCount),
		)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d plans\n", result.Count)
	return nil
}

func ceiling(n int) string {
	if n <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d", n)
}
