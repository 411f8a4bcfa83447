// Command meritpath-infra synthesizes the CloudFormation template for
// the document evaluation API from the Go declarations in the stack
// package.
//
// Usage:
//
//	meritpath-infra build              Synthesize the template
//	meritpath-infra check              Run the stack rules against it
//	meritpath-infra validate           cfn-lint the synthesized template
//	meritpath-infra list               List declared resources
//	meritpath-infra graph              Render the dependency graph
//	meritpath-infra diff old new       Compare two template files
//	meritpath-infra watch              Rebuild on source changes
//	meritpath-infra version            Show version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "meritpath-infra",
		Short: "Synthesize the evaluation API stack from Go declarations",
		Long: `meritpath-infra turns the declarations in the stack package into a
CloudFormation template.

Resources are plain Go vars:

    var AccessLogGroup = logs.LogGroup{
        LogGroupName: "/aws/apigateway/evaluate-api",
    }

Synthesize and check:

    meritpath-infra build -f yaml -o template.yaml
    meritpath-infra check`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newBuildCmd(),
		newCheckCmd(),
		newValidateCmd(),
		newListCmd(),
		newGraphCmd(),
		newDiffCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("meritpath-infra %s\n", getVersion())
		},
	}
}
