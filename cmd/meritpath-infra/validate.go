package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	infra "github.com/meritpath/infra"
	"github.com/meritpath/infra/internal/validation"
)

func newValidateCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "validate [package]",
		Short: "Validate the synthesized template with cfn-lint",
		Long: `Validate synthesizes the template, which verifies every declared
reference resolves, then runs cfn-lint over the result.

Exit codes: 0 clean, 1 synthesis error, 2 lint errors.

Examples:
    meritpath-infra validate
    meritpath-infra validate -f json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(stackPackage(args), outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func runValidate(pkg, format string) error {
	tmpl, _, err := synthesize(pkg)
	if err != nil {
		return err
	}

	lintResult, err := validation.LintTemplate(tmpl)
	if err != nil {
		return err
	}

	result := infra.ValidateResult{
		Success:   lintResult.Passed,
		Resources: len(tmpl.Resources),
		Errors:    lintResult.Errors,
		Warnings:  lintResult.Warnings,
	}

	if err := outputValidateResult(result, format); err != nil {
		return err
	}

	if !result.Success {
		os.Exit(exitFindings)
	}
	return nil
}

func outputValidateResult(result infra.ValidateResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		fmt.Printf("Validated %d resources.\n", result.Resources)
		for _, e := range result.Errors {
			fmt.Printf("  error: %s\n", e)
		}
		for _, w := range result.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		if result.Success {
			fmt.Println("Template is valid.")
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
