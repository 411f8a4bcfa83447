// Package intrinsics provides the CloudFormation intrinsic functions used by
// the evaluation API stack.
//
// The core intrinsic types come from cloudformation-schema-go and are
// re-exported here; IAM policy document types are defined locally.
//
// Core intrinsic functions:
//
//	Ref{"EvaluateApi"} → {"Ref": "EvaluateApi"}
//	Sub{String: "${AWS::StackName}-api"} → {"Fn::Sub": "${AWS::StackName}-api"}
//	Join{Delimiter: ",", Values: []any{"a", "b"}} → {"Fn::Join": [",", ["a", "b"]]}
//
// Pseudo-parameters:
//
//	AWS_REGION, AWS_ACCOUNT_ID, AWS_STACK_NAME, etc.
package intrinsics

import (
	"encoding/json"

	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

// Re-export the intrinsic types the stack declarations use.
type (
	// Ref represents a CloudFormation Ref intrinsic function.
	Ref = intrinsics.Ref

	// GetAtt represents a CloudFormation Fn::GetAtt intrinsic function.
	GetAtt = intrinsics.GetAtt

	// Sub represents a CloudFormation Fn::Sub intrinsic function.
	Sub = intrinsics.Sub

	// SubWithMap is Fn::Sub with a variable map.
	SubWithMap = intrinsics.SubWithMap

	// Join represents a CloudFormation Fn::Join intrinsic function.
	Join = intrinsics.Join

	// Output represents a CloudFormation stack output.
	Output = intrinsics.Output
)

// Parameter defines a CloudFormation template parameter with full metadata.
// When used as a value in resource properties, it serializes to
// {"Ref": "ParameterName"}; the template builder resolves the name from the
// declaring variable.
//
// Example:
//
//	var CodeBucket = Parameter{
//	    Type:        "String",
//	    Description: "S3 bucket holding the handler bundle",
//	}
//
//	var Bundle = lambda.Function_Code{
//	    S3Bucket: CodeBucket,  // Serializes to {"Ref": "CodeBucket"}
//	}
type Parameter struct {
	// Type is the CloudFormation parameter type (String, Number, etc.)
	Type string
	// Description is optional documentation for the parameter
	Description string
	// Default is the default value if none is provided
	Default any
	// AllowedValues restricts the parameter to specific values
	AllowedValues []any
	// AllowedPattern is a regex pattern for String type validation
	AllowedPattern string
	// NoEcho masks the parameter value in console/logs
	NoEcho bool

	// name is set by the template builder to enable proper Ref serialization
	name string
}

// SetName sets the parameter name for Ref serialization.
func (p *Parameter) SetName(name string) {
	p.name = name
}

// Name returns the parameter name.
func (p Parameter) Name() string {
	return p.name
}

// MarshalJSON serializes Parameter as a CloudFormation Ref when used as a value.
func (p Parameter) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Ref": p.name})
}

// ToDefinition returns the parameter as a map suitable for the Parameters section.
func (p Parameter) ToDefinition() map[string]any {
	def := map[string]any{
		"Type": p.Type,
	}
	if p.Description != "" {
		def["Description"] = p.Description
	}
	if p.Default != nil {
		def["Default"] = p.Default
	}
	if len(p.AllowedValues) > 0 {
		def["AllowedValues"] = p.AllowedValues
	}
	if p.AllowedPattern != "" {
		def["AllowedPattern"] = p.AllowedPattern
	}
	if p.NoEcho {
		def["NoEcho"] = true
	}
	return def
}
