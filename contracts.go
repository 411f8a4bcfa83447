// Package infra provides Go types for the meritpath evaluation API stack.
//
// Infrastructure is declared as package-level composite literals in the stack
// package:
//
//	var AccessLogGroup = logs.LogGroup{
//	    LogGroupName: "/aws/apigateway/evaluate-api",
//	}
//
//	var EvaluateFunction = lambda.Function{
//	    FunctionName: "evaluate-handler",
//	    Role:         EvaluateFunctionRole.Arn,  // GetAtt reference
//	}
//
// The meritpath-infra CLI discovers these declarations via AST parsing and
// synthesizes a CloudFormation template.
package infra

import (
	"encoding/json"
)

// Resource represents a CloudFormation resource.
// All resource types (lambda.Function, iam.Role, etc.) implement this interface.
type Resource interface {
	// ResourceType returns the CloudFormation type (e.g., "AWS::Lambda::Function")
	ResourceType() string
}

// AttrRef represents a GetAtt reference to a resource attribute.
// Resource types have AttrRef fields for each supported attribute.
//
// Example:
//
//	var EvaluateFunctionRole = iam.Role{...}
//	var EvaluateFunction = lambda.Function{
//	    Role: EvaluateFunctionRole.Arn,  // EvaluateFunctionRole.Arn is an AttrRef
//	}
//
// When serialized to CloudFormation JSON, AttrRef becomes:
//
//	{"Fn::GetAtt": ["EvaluateFunctionRole", "Arn"]}
type AttrRef struct {
	// Resource is the logical name of the referenced resource
	Resource string
	// Attribute is the attribute name (e.g., "Arn", "RootResourceId")
	Attribute string
}

// MarshalJSON serializes AttrRef to CloudFormation GetAtt syntax.
func (a AttrRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string{
		"Fn::GetAtt": {a.Resource, a.Attribute},
	})
}

// IsZero returns true if the AttrRef has not been populated.
func (a AttrRef) IsZero() bool {
	return a.Resource == "" && a.Attribute == ""
}

// AttrRefUsage records where a resource attribute is referenced inside another
// declaration. The template builder uses the field path to inject the
// Fn::GetAtt at the right place in the serialized properties.
type AttrRefUsage struct {
	// ResourceName is the logical name of the referenced resource
	ResourceName string
	// Attribute is the referenced attribute (e.g., "Arn")
	Attribute string
	// FieldPath is the dotted property path where the reference appears
	FieldPath string
}

// DiscoveredResource represents a resource found by AST parsing.
type DiscoveredResource struct {
	// Name is the variable name (becomes the CloudFormation logical ID)
	Name string
	// Type is the Go type (e.g., "lambda.Function", "iam.Role")
	Type string
	// Package is the package name containing the declaration
	Package string
	// File is the source file path
	File string
	// Line is the line number of the declaration
	Line int
	// Dependencies are logical names of referenced declarations
	Dependencies []string
	// AttrRefUsages are attribute references found in the declaration
	AttrRefUsages []AttrRefUsage
}

// DiscoveredParameter represents a template parameter declaration.
type DiscoveredParameter struct {
	Name string
	File string
	Line int
}

// DiscoveredOutput represents a stack output declaration.
type DiscoveredOutput struct {
	Name          string
	File          string
	Line          int
	AttrRefUsages []AttrRefUsage
}

// ResourceOverride carries resource attributes that CloudFormation cannot
// infer from property references: explicit creation-order edges and the
// deletion policy. The stack package declares these alongside its values.
type ResourceOverride struct {
	// DependsOn lists logical names the resource must wait for
	DependsOn []string
	// DeletionPolicy is the CloudFormation DeletionPolicy ("Delete", "Retain")
	DeletionPolicy string
}

// Template represents a CloudFormation template.
type Template struct {
	AWSTemplateFormatVersion string                 `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
	Description              string                 `json:"Description,omitempty" yaml:"Description,omitempty"`
	Parameters               map[string]Parameter   `json:"Parameters,omitempty" yaml:"Parameters,omitempty"`
	Resources                map[string]ResourceDef `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]Output      `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// ResourceDef is a single resource in the CloudFormation template.
type ResourceDef struct {
	Type           string         `json:"Type" yaml:"Type"`
	Properties     map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn      []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
	DeletionPolicy string         `json:"DeletionPolicy,omitempty" yaml:"DeletionPolicy,omitempty"`
}

// Parameter is a CloudFormation template parameter.
type Parameter struct {
	Type           string `json:"Type" yaml:"Type"`
	Description    string `json:"Description,omitempty" yaml:"Description,omitempty"`
	Default        any    `json:"Default,omitempty" yaml:"Default,omitempty"`
	AllowedValues  []any  `json:"AllowedValues,omitempty" yaml:"AllowedValues,omitempty"`
	AllowedPattern string `json:"AllowedPattern,omitempty" yaml:"AllowedPattern,omitempty"`
	NoEcho         bool   `json:"NoEcho,omitempty" yaml:"NoEcho,omitempty"`
}

// Output is a CloudFormation template output.
type Output struct {
	Description string `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       any    `json:"Value" yaml:"Value"`
	Export *struct {
		Name string `json:"Name" yaml:"Name"`
	} `json:"Export,omitempty" yaml:"Export,omitempty"`
}

// BuildResult is the JSON output from `meritpath-infra build`.
type BuildResult struct {
	Success   bool     `json:"success"`
	Template  Template `json:"template,omitempty"`
	Resources []string `json:"resources,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// CheckResult is the JSON output from `meritpath-infra check`.
type CheckResult struct {
	Success  bool           `json:"success"`
	Findings []CheckFinding `json:"findings,omitempty"`
}

// CheckFinding is a single stack-rule violation.
type CheckFinding struct {
	Rule     string `json:"rule"`
	Resource string `json:"resource,omitempty"`
	Severity string `json:"severity"` // "error", "warning"
	Message  string `json:"message"`
}

// ValidateResult is the JSON output from `meritpath-infra validate`.
type ValidateResult struct {
	Success   bool     `json:"success"`
	Resources int      `json:"resources"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ListResult is the JSON output from `meritpath-infra list`.
type ListResult struct {
	Resources []ListResource `json:"resources"`
}

// ListResource is a single resource in the list output.
type ListResource struct {
	Name string `json:"name"`
	Type string `json:"type"`
	File string `json:"file"`
	Line int    `json:"line"`
}

// TemplateDiff describes the difference between two synthesized templates.
type TemplateDiff struct {
	Added    []DiffEntry `json:"added,omitempty"`
	Removed  []DiffEntry `json:"removed,omitempty"`
	Modified []DiffEntry `json:"modified,omitempty"`
}

// DiffEntry is a single resource-level difference.
type DiffEntry struct {
	Resource string   `json:"resource"`
	Type     string   `json:"type"`
	Changes  []string `json:"changes,omitempty"`
}

// DiffSummary counts diff entries by kind.
type DiffSummary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
	Total    int `json:"total"`
}
