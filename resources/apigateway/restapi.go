// Package apigateway provides AWS::ApiGateway resource types.
package apigateway

import (
	infra "github.com/meritpath/infra"
)

// RestApi represents AWS::ApiGateway::RestApi.
type RestApi struct {
	Name                  any    `json:"Name,omitempty"`
	Description           string `json:"Description,omitempty"`
	BinaryMediaTypes      []any  `json:"BinaryMediaTypes,omitempty"`
	EndpointConfiguration any    `json:"EndpointConfiguration,omitempty"`

	// RootResourceId is the GetAtt reference to the API's root resource.
	RootResourceId infra.AttrRef `json:"-"`
}

// ResourceType returns the CloudFormation type.
func (r RestApi) ResourceType() string {
	return "AWS::ApiGateway::RestApi"
}

// Resource represents AWS::ApiGateway::Resource.
type Resource struct {
	RestApiId any    `json:"RestApiId,omitempty"`
	ParentId  any    `json:"ParentId,omitempty"`
	PathPart  string `json:"PathPart,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Resource) ResourceType() string {
	return "AWS::ApiGateway::Resource"
}
