package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meritpath/infra/internal/discover"
	"github.com/meritpath/infra/internal/graph"
	"github.com/meritpath/infra/stack"
)

func newGraphCmd() *cobra.Command {
	var (
		outputFormat      string
		outputFile        string
		includeParameters bool
	)

	cmd := &cobra.Command{
		Use:   "graph [package]",
		Short: "Render the dependency graph",
		Long: `Graph renders the stack's dependency graph, including the explicit
DependsOn edges, as Graphviz DOT or Mermaid.

Examples:
    meritpath-infra graph | dot -Tsvg -o stack.svg
    meritpath-infra graph -f mermaid
    meritpath-infra graph --parameters`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(stackPackage(args), outputFormat, outputFile, includeParameters)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&includeParameters, "parameters", false, "Include parameter nodes")

	return cmd
}

func runGraph(pkg, format, outputFile string, includeParameters bool) error {
	result, err := discover.Discover(discover.Options{
		Packages: []string{pkg},
	})
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	g := &graph.Generator{
		IncludeParameters: includeParameters,
		Format:            graph.Format(format),
		Overrides:         stack.Overrides(),
	}

	if outputFile == "" {
		return g.Generate(result.Resources, result.Parameters, os.Stdout)
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer f.Close()

	return g.Generate(result.Resources, result.Parameters, f)
}
