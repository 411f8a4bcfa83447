package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	infra "github.com/meritpath/infra"
	"github.com/meritpath/infra/internal/rules"
)

// Exit code 2 distinguishes rule findings from synthesis failures, so
// CI can treat them differently.
const exitFindings = 2

func newCheckCmd() *cobra.Command {
	var (
		outputFormat string
		enabledRules []string
	)

	cmd := &cobra.Command{
		Use:   "check [package]",
		Short: "Run the stack rules against the synthesized template",
		Long: `Check synthesizes the template and verifies the stack contracts:
CORS on every status branch, the 504 timeout selection pattern, the
integration target, logging order, role policy grants, binary media
types, and the handler environment.

Exit codes: 0 clean, 1 synthesis error, 2 findings.

Examples:
    meritpath-infra check
    meritpath-infra check --rule MPI001 --rule MPI002
    meritpath-infra check -f json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(stackPackage(args), outputFormat, enabledRules)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringArrayVar(&enabledRules, "rule", nil, "Run only the given rule IDs")

	return cmd
}

func runCheck(pkg, format string, enabledRules []string) error {
	tmpl, _, err := synthesize(pkg)
	if err != nil {
		return err
	}

	result := rules.Check(tmpl, rules.Options{EnabledRules: enabledRules})

	if err := outputCheckResult(result, format); err != nil {
		return err
	}

	if len(result.Findings) > 0 {
		os.Exit(exitFindings)
	}
	return nil
}

func outputCheckResult(result *infra.CheckResult, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if len(result.Findings) == 0 {
			fmt.Println("All stack rules passed.")
			return nil
		}
		fmt.Printf("%d finding(s):\n\n", len(result.Findings))
		for _, f := range result.Findings {
			fmt.Println(formatFinding(f))
		}

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}

func formatFinding(f infra.CheckFinding) string {
	if f.Resource != "" {
		return fmt.Sprintf("  %s %s: %s: %s", f.Severity, f.Rule, f.Resource, f.Message)
	}
	return fmt.Sprintf("  %s %s: %s", f.Severity, f.Rule, f.Message)
}
