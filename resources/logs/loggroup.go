// Package logs provides AWS::Logs resource types.
package logs

import (
	infra "github.com/meritpath/infra"
)

// LogGroup represents AWS::Logs::LogGroup.
type LogGroup struct {
	LogGroupName    any `json:"LogGroupName,omitempty"`
	RetentionInDays int `json:"RetentionInDays,omitempty"`
	KmsKeyId        any `json:"KmsKeyId,omitempty"`

	// Arn is the GetAtt reference to the log group ARN.
	Arn infra.AttrRef `json:"-"`
}

// ResourceType returns the CloudFormation type.
func (r LogGroup) ResourceType() string {
	return "AWS::Logs::LogGroup"
}
