package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var (
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "build [package]",
		Short: "Synthesize the CloudFormation template",
		Long: `Build discovers the stack declarations and synthesizes the template.

Examples:
    meritpath-infra build
    meritpath-infra build -o template.json
    meritpath-infra build -f yaml -o template.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(stackPackage(args), outputFormat, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runBuild(pkg, format, outputFile string) error {
	tmpl, _, err := synthesize(pkg)
	if err != nil {
		return err
	}

	data, err := encodeTemplate(tmpl, format)
	if err != nil {
		return err
	}

	if outputFile == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d resources)\n", outputFile, len(tmpl.Resources))
	return nil
}
