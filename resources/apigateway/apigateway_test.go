package apigateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infra "github.com/meritpath/infra"
)

// TestResourceTypes verifies all API Gateway resource types return correct CloudFormation types.
func TestResourceTypes(t *testing.T) {
	tests := []struct {
		name     string
		resource infra.Resource
		expected string
	}{
		{"RestApi", RestApi{}, "AWS::ApiGateway::RestApi"},
		{"Resource", Resource{}, "AWS::ApiGateway::Resource"},
		{"Method", Method{}, "AWS::ApiGateway::Method"},
		{"Deployment", Deployment{}, "AWS::ApiGateway::Deployment"},
		{"Stage", Stage{}, "AWS::ApiGateway::Stage"},
		{"Account", Account{}, "AWS::ApiGateway::Account"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.resource.ResourceType())
		})
	}
}

// TestRestApiSerialization tests that RestApi serializes to valid JSON.
func TestRestApiSerialization(t *testing.T) {
	api := RestApi{
		Name:             "documents-api",
		Description:      "Document evaluation endpoint",
		BinaryMediaTypes: []any{"multipart/form-data", "application/pdf"},
	}

	data, err := json.Marshal(api)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, "documents-api", parsed["Name"])
	media := parsed["BinaryMediaTypes"].([]any)
	assert.Len(t, media, 2)
	assert.Equal(t, "multipart/form-data", media[0])

	// RootResourceId is an attribute reference, not a property
	_, hasRoot := parsed["RootResourceId"]
	assert.False(t, hasRoot, "RootResourceId should never serialize as a property")
}

// TestMethodSerialization tests that Method and its integration serialize to valid JSON.
func TestMethodSerialization(t *testing.T) {
	method := Method{
		HttpMethod:        "POST",
		AuthorizationType: "NONE",
		Integration: Method_Integration{
			Type_:                 "AWS",
			IntegrationHttpMethod: "POST",
			IntegrationResponses: []any{
				Method_IntegrationResponse{
					StatusCode: "200",
					ResponseParameters: map[string]any{
						"method.response.header.Access-Control-Allow-Origin": "'*'",
					},
				},
				Method_IntegrationResponse{
					StatusCode:       "504",
					SelectionPattern: ".*TimeoutException.*",
				},
			},
		},
		MethodResponses: []any{
			Method_MethodResponse{StatusCode: "200"},
			Method_MethodResponse{StatusCode: "504"},
		},
	}

	data, err := json.Marshal(method)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, "POST", parsed["HttpMethod"])

	integration := parsed["Integration"].(map[string]any)
	assert.Equal(t, "AWS", integration["Type"])

	responses := integration["IntegrationResponses"].([]any)
	require.Len(t, responses, 2)
	timeout := responses[1].(map[string]any)
	assert.Equal(t, "504", timeout["StatusCode"])
	assert.Equal(t, ".*TimeoutException.*", timeout["SelectionPattern"])

	// The 200 branch has no pattern so it is the default
	ok := responses[0].(map[string]any)
	_, hasPattern := ok["SelectionPattern"]
	assert.False(t, hasPattern, "default branch should omit SelectionPattern")
}

// TestStageSerialization tests that Stage serializes access logging settings.
func TestStageSerialization(t *testing.T) {
	stage := Stage{
		StageName: "prod",
		AccessLogSetting: Stage_AccessLogSetting{
			DestinationArn: "arn:aws:logs:us-east-1:123456789012:log-group:access",
			Format:         `{"requestId":"$context.requestId"}`,
		},
		MethodSettings: []any{
			Stage_MethodSetting{
				ResourcePath: "/*",
				HttpMethod:   "*",
				LoggingLevel: "INFO",
			},
		},
	}

	data, err := json.Marshal(stage)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, "prod", parsed["StageName"])

	logging := parsed["AccessLogSetting"].(map[string]any)
	assert.Contains(t, logging["Format"], "$context.requestId")

	settings := parsed["MethodSettings"].([]any)
	require.Len(t, settings, 1)
	assert.Equal(t, "INFO", settings[0].(map[string]any)["LoggingLevel"])
}

// TestOmitEmptyFields tests that empty fields are omitted from JSON.
func TestOmitEmptyFields(t *testing.T) {
	method := Method{
		HttpMethod: "OPTIONS",
	}

	data, err := json.Marshal(method)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, "OPTIONS", parsed["HttpMethod"])

	_, hasIntegration := parsed["Integration"]
	assert.False(t, hasIntegration, "Integration should be omitted when nil")

	_, hasResponses := parsed["MethodResponses"]
	assert.False(t, hasResponses, "MethodResponses should be omitted when empty")
}

// TestResourceImplementsInterface verifies all resources implement infra.Resource.
func TestResourceImplementsInterface(t *testing.T) {
	var _ infra.Resource = RestApi{}
	var _ infra.Resource = Resource{}
	var _ infra.Resource = Method{}
	var _ infra.Resource = Deployment{}
	var _ infra.Resource = Stage{}
	var _ infra.Resource = Account{}
}
