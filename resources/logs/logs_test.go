package logs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResourceType verifies LogGroup returns the correct CloudFormation type.
func TestResourceType(t *testing.T) {
	assert.Equal(t, "AWS::Logs::LogGroup", LogGroup{}.ResourceType())
}

// TestLogGroupSerialization tests that LogGroup serializes to valid JSON.
func TestLogGroupSerialization(t *testing.T) {
	lg := LogGroup{
		LogGroupName:    "/aws/apigateway/documents-access",
		RetentionInDays: 30,
	}

	data, err := json.Marshal(lg)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	assert.Equal(t, "/aws/apigateway/documents-access", parsed["LogGroupName"])
	assert.Equal(t, float64(30), parsed["RetentionInDays"])
}

// TestOmitEmptyFields tests that empty fields are omitted from JSON.
func TestOmitEmptyFields(t *testing.T) {
	lg := LogGroup{}

	data, err := json.Marshal(lg)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	_, hasRetention := parsed["RetentionInDays"]
	assert.False(t, hasRetention, "RetentionInDays should be omitted when zero")

	_, hasArn := parsed["Arn"]
	assert.False(t, hasArn, "Arn should never serialize as a property")
}
