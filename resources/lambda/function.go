// Package lambda provides AWS::Lambda resource types.
package lambda

import (
	infra "github.com/meritpath/infra"
)

// Function represents AWS::Lambda::Function.
type Function struct {
	FunctionName  any    `json:"FunctionName,omitempty"`
	Description   string `json:"Description,omitempty"`
	Runtime       string `json:"Runtime,omitempty"`
	Handler       string `json:"Handler,omitempty"`
	Code          any    `json:"Code,omitempty"`
	Role          any    `json:"Role,omitempty"`
	Timeout       int    `json:"Timeout,omitempty"`
	MemorySize    int    `json:"MemorySize,omitempty"`
	Environment   any    `json:"Environment,omitempty"`
	Architectures []any  `json:"Architectures,omitempty"`

	// Arn is the GetAtt reference to the function ARN.
	Arn infra.AttrRef `json:"-"`
}

// ResourceType returns the CloudFormation type.
func (r Function) ResourceType() string {
	return "AWS::Lambda::Function"
}

// Function_Code references the deployment bundle.
type Function_Code struct {
	S3Bucket any    `json:"S3Bucket,omitempty"`
	S3Key    any    `json:"S3Key,omitempty"`
	ZipFile  string `json:"ZipFile,omitempty"`
}

// Function_Environment holds the function's environment variable mapping.
type Function_Environment struct {
	Variables map[string]any `json:"Variables,omitempty"`
}
