package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gatehouse/marketplace/internal/validation"
)

var (
	validateCPUCores  float64
	validateRAMGB     float64
	validateStorageGB float64
	validateVRAMGB    float64
	validateGPUModel  string
)

// errSpecsInvalid is returned when a spec has blocking errors
var errSpecsInvalid = errors.New("specs are invalid")

var validateSpecsCmd = &cobra.Command{
	Use:   "validate-specs",
	Short: "Validate a hardware spec before onboarding",
	Long: `Validate a candidate hardware spec. Every check runs; warnings are
reported but do not fail validation.`,
	RunE: runValidateSpecs,
}

func init() {
	rootCmd.AddCommand(validateSpecsCmd)

	validateSpecsCmd.Flags().Float64Var(&validateCPUCores, "cpu-cores", 0, "CPU core count")
	validateSpecsCmd.Flags().Float64Var(&validateRAMGB, "ram", 0, "RAM in GB")
	validateSpecsCmd.Flags().Float64Var(&validateStorageGB, "storage", 0, "Storage in GB")
	validateSpecsCmd.Flags().Float64Var(&validateVRAMGB, "vram", 0, "GPU VRAM in GB")
	validateSpecsCmd.Flags().StringVar(&validateGPUModel, "gpu-model", "", "GPU model name")
}

func runValidateSpecs(cmd *cobra.Command, args []string) error {
	in := validation.SpecInput{
		CPUCores:  validateCPUCores,
		RAMGB:     validateRAMGB,
		StorageGB: validateStorageGB,
	}
	if cmd != nil && cmd.Flags().Changed("vram") {
		vram := validateVRAMGB
		in.GPUVramGB = &vram
	}
	if cmd != nil && cmd.Flags().Changed("gpu-model") {
		model := validateGPUModel
		in.GPUModel = &model
	}

	result := validation.ValidateSpecs(in)

	if outputFormat == "json" {
		if err := printJSON(result); err != nil {
			return err
		}
	} else {
		for _, e := range result.Errors {
			fmt.Printf("ERROR:   %s\n", e)
		}
		for _, w := range result.Warnings {
			fmt.Printf("WARNING: %s\n", w)
		}
		if result.Valid {
			fmt.Println("Specs are valid.")
		}
	}

	if !result.Valid {
		return errSpecsInvalid
	}
	return nil
}
