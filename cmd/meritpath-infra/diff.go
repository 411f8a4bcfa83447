package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meritpath/infra/internal/differ"
)

func newDiffCmd() *cobra.Command {
	var (
		outputFormat string
		ignoreOrder  bool
	)

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare two template files",
		Long: `Diff compares two synthesized templates at the resource level and
reports added, removed, and modified resources. Useful for reviewing
what a stack change deploys, e.g. an IAM policy that widened between
revisions.

Exit codes: 0 identical, 1 error, 2 differences found.

Examples:
    meritpath-infra diff template.old.json template.json
    meritpath-infra diff old.yaml new.yaml --ignore-order -f json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(args[0], args[1], outputFormat, ignoreOrder)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Ignore array element order")

	return cmd
}

func runDiff(oldPath, newPath, format string, ignoreOrder bool) error {
	result, err := differ.CompareFiles(oldPath, newPath, differ.Options{
		IgnoreOrder: ignoreOrder,
	})
	if err != nil {
		return err
	}

	if err := outputDiffResult(result, format); err != nil {
		return err
	}

	if result.Summary.Total > 0 {
		os.Exit(exitFindings)
	}
	return nil
}

func outputDiffResult(result *differ.Result, format string) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))

	case "text":
		if result.Summary.Total == 0 {
			fmt.Println("Templates are identical.")
			return nil
		}

		for _, entry := range result.Diff.Added {
			fmt.Printf("+ %s (%s)\n", entry.Resource, entry.Type)
		}
		for _, entry := range result.Diff.Removed {
			fmt.Printf("- %s (%s)\n", entry.Resource, entry.Type)
		}
		for _, entry := range result.Diff.Modified {
			fmt.Printf("~ %s (%s)\n", entry.Resource, entry.Type)
			for _, change := range entry.Changes {
				fmt.Printf("    %s\n", change)
			}
		}
		fmt.Printf("\n%d added, %d removed, %d modified\n",
			result.Summary.Added, result.Summary.Removed, result.Summary.Modified)

	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	return nil
}
