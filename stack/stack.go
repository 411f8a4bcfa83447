// Package stack declares the document evaluation API: a Lambda handler
// fronted by an API Gateway REST endpoint at POST /evaluate, with the
// IAM roles and CloudWatch logging wiring the deployment needs.
//
// Each package-level var is one CloudFormation resource; the var name is
// the logical ID. The meritpath-infra CLI discovers the declarations by
// parsing this package and synthesizes the template.
package stack

import (
	infra "github.com/meritpath/infra"
	"github.com/meritpath/infra/internal/config"
)

// cfg supplies the synthesis-time knobs (stage name, retention, handler
// environment). Lowercase on purpose: only exported vars become template
// entities.
var cfg = config.MustLoad()

// Values maps logical IDs to the declared resource values. Discovery
// works on the AST; this registry hands the builder the actual structs.
// Keys must match the exported resource var names in this package.
func Values() map[string]any {
	return map[string]any{
		"AccessLogGroup":              AccessLogGroup,
		"ApiGatewayLogRole":           ApiGatewayLogRole,
		"ApiAccount":                  ApiAccount,
		"EvaluateFunctionRole":        EvaluateFunctionRole,
		"EvaluateFunction":            EvaluateFunction,
		"EvaluateApiInvokePermission": EvaluateApiInvokePermission,
		"EvaluateApi":                 EvaluateApi,
		"EvaluateResource":            EvaluateResource,
		"EvaluateMethod":              EvaluateMethod,
		"EvaluateCorsMethod":          EvaluateCorsMethod,
		"ApiDeployment":               ApiDeployment,
		"ApiStage":                    ApiStage,
	}
}

// Parameters maps parameter names to their declarations.
func Parameters() map[string]any {
	return map[string]any{
		"CodeBucket": CodeBucket,
		"CodeKey":    CodeKey,
	}
}

// Outputs maps output names to their declarations.
func Outputs() map[string]any {
	return map[string]any{
		"EndpointURL": EndpointURL,
	}
}

// Overrides carries the resource attributes CloudFormation cannot infer
// from property references.
//
// The stage must wait for the account-level logging configuration: a
// stage with execution logging enabled fails to create until the
// API Gateway account has a CloudWatch role. Nothing in the stage's
// properties references the account, so the edge is explicit.
//
// The deployment snapshot must include both methods, and the methods are
// referenced by the API, not by the deployment, so those edges are
// explicit too.
func Overrides() map[string]infra.ResourceOverride {
	return map[string]infra.ResourceOverride{
		"AccessLogGroup": {DeletionPolicy: "Delete"},
		"ApiDeployment":  {DependsOn: []string{"EvaluateMethod", "EvaluateCorsMethod"}},
		"ApiStage":       {DependsOn: []string{"ApiAccount"}},
	}
}
