// Package iam provides AWS::IAM resource types.
package iam

import (
	infra "github.com/meritpath/infra"
)

// Role represents AWS::IAM::Role.
type Role struct {
	RoleName                 any    `json:"RoleName,omitempty"`
	Description              string `json:"Description,omitempty"`
	AssumeRolePolicyDocument any    `json:"AssumeRolePolicyDocument,omitempty"`
	ManagedPolicyArns        []any  `json:"ManagedPolicyArns,omitempty"`
	Policies                 []any  `json:"Policies,omitempty"`
	Path                     string `json:"Path,omitempty"`
	MaxSessionDuration       int    `json:"MaxSessionDuration,omitempty"`

	// Arn is the GetAtt reference to the role ARN.
	Arn infra.AttrRef `json:"-"`
	// RoleId is the GetAtt reference to the stable role ID.
	RoleId infra.AttrRef `json:"-"`
}

// ResourceType returns the CloudFormation type.
func (r Role) ResourceType() string {
	return "AWS::IAM::Role"
}

// Role_Policy is an inline policy attached to a Role.
type Role_Policy struct {
	PolicyName     any `json:"PolicyName,omitempty"`
	PolicyDocument any `json:"PolicyDocument,omitempty"`
}
