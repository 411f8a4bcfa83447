package lambda

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infra "github.com/meritpath/infra"
)

// TestResourceTypes verifies Lambda resource types return correct CloudFormation types.
func TestResourceTypes(t *testing.T) {
	tests := []struct {
		name     string
		resource infra.Resource
		expected string
	}{
		{"Function", Function{}, "AWS::Lambda::Function"},
		{"Permission", Permission{}, "AWS::Lambda::Permission"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.resource.ResourceType())
		})
	}
}

// TestFunctionSerialization tests that Function serializes to valid JSON.
func TestFunctionSerialization(t *testing.T) {
	fn := Function{
		Handler:    "lambda_function.lambda_handler",
		Runtime:    "python3.12",
		MemorySize: 1024,
		Timeout:    120,
		Code: Function_Code{
			S3Bucket: "deploy-bucket",
			S3Key:    "bundles/evaluate.zip",
		},
		Environment: Function_Environment{
			Variables: map[string]any{
				"LOG_LEVEL": "INFO",
			},
		},
	}

	data, err := json.Marshal(fn)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, "lambda_function.lambda_handler", parsed["Handler"])
	assert.Equal(t, "python3.12", parsed["Runtime"])
	assert.Equal(t, float64(1024), parsed["MemorySize"])
	assert.Equal(t, float64(120), parsed["Timeout"])

	code := parsed["Code"].(map[string]any)
	assert.Equal(t, "deploy-bucket", code["S3Bucket"])

	env := parsed["Environment"].(map[string]any)
	vars := env["Variables"].(map[string]any)
	assert.Equal(t, "INFO", vars["LOG_LEVEL"])
}

// TestPermissionSerialization tests that Permission serializes to valid JSON.
func TestPermissionSerialization(t *testing.T) {
	perm := Permission{
		FunctionName: "evaluate",
		Action:       "lambda:InvokeFunction",
		Principal:    "apigateway.amazonaws.com",
		SourceArn:    "arn:aws:execute-api:us-east-1:123456789012:abc/*",
	}

	data, err := json.Marshal(perm)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, "lambda:InvokeFunction", parsed["Action"])
	assert.Equal(t, "apigateway.amazonaws.com", parsed["Principal"])
}

// TestFunctionWithAttrRef tests that Function can reference another resource's attribute.
func TestFunctionWithAttrRef(t *testing.T) {
	fn := Function{
		Handler: "lambda_function.lambda_handler",
		Runtime: "python3.12",
		Role: infra.AttrRef{
			Resource:  "EvaluateFunctionRole",
			Attribute: "Arn",
		},
	}

	data, err := json.Marshal(fn)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	role := parsed["Role"].(map[string]any)
	getAtt := role["Fn::GetAtt"].([]any)
	assert.Equal(t, "EvaluateFunctionRole", getAtt[0])
	assert.Equal(t, "Arn", getAtt[1])
}

// TestOmitEmptyFields tests that empty fields are omitted from JSON.
func TestOmitEmptyFields(t *testing.T) {
	fn := Function{
		Handler: "lambda_function.lambda_handler",
	}

	data, err := json.Marshal(fn)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, "lambda_function.lambda_handler", parsed["Handler"])

	_, hasTimeout := parsed["Timeout"]
	assert.False(t, hasTimeout, "Timeout should be omitted when zero")

	_, hasEnv := parsed["Environment"]
	assert.False(t, hasEnv, "Environment should be omitted when nil")

	_, hasArn := parsed["Arn"]
	assert.False(t, hasArn, "Arn should never serialize as a property")
}
