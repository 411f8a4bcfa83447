package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infra "github.com/meritpath/infra"
)

func sampleResources() map[string]infra.DiscoveredResource {
	return map[string]infra.DiscoveredResource{
		"ApiGatewayLogRole": {
			Name: "ApiGatewayLogRole", Type: "iam.Role",
		},
		"ApiAccount": {
			Name: "ApiAccount", Type: "apigateway.Account",
			Dependencies: []string{"ApiGatewayLogRole"},
			AttrRefUsages: []infra.AttrRefUsage{
				{ResourceName: "ApiGatewayLogRole", Attribute: "Arn", FieldPath: "CloudWatchRoleArn"},
			},
		},
		"ApiStage": {
			Name: "ApiStage", Type: "apigateway.Stage",
		},
	}
}

func TestGenerateDOT(t *testing.T) {
	g := &Generator{}

	out, err := g.GenerateString(sampleResources(), nil)
	require.NoError(t, err)

	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "ApiAccount")
	assert.Contains(t, out, "AWS::ApiGateway::Account")
	assert.Contains(t, out, "AWS::IAM::Role")
	// Attribute reference edges are colored
	assert.Contains(t, out, "blue")
}

func TestGenerateMermaid(t *testing.T) {
	g := &Generator{Format: FormatMermaid}

	out, err := g.GenerateString(sampleResources(), nil)
	require.NoError(t, err)

	assert.Contains(t, out, "graph")
	assert.Contains(t, out, "ApiAccount")
}

func TestGenerateWithOverrideEdges(t *testing.T) {
	g := &Generator{
		Overrides: map[string]infra.ResourceOverride{
			"ApiStage": {DependsOn: []string{"ApiAccount"}},
		},
	}

	out, err := g.GenerateString(sampleResources(), nil)
	require.NoError(t, err)

	assert.Contains(t, out, "DependsOn")
	assert.Contains(t, out, "dashed")
}

func TestGenerateWithParameters(t *testing.T) {
	resources := map[string]infra.DiscoveredResource{
		"EvaluateFunction": {
			Name: "EvaluateFunction", Type: "lambda.Function",
			Dependencies: []string{"CodeBucket"},
		},
	}
	parameters := map[string]infra.DiscoveredParameter{
		"CodeBucket": {Name: "CodeBucket"},
	}

	withParams := &Generator{IncludeParameters: true}
	out, err := withParams.GenerateString(resources, parameters)
	require.NoError(t, err)
	assert.Contains(t, out, "CodeBucket")

	withoutParams := &Generator{}
	out, err = withoutParams.GenerateString(resources, parameters)
	require.NoError(t, err)
	assert.NotContains(t, out, "CodeBucket",
		"parameter nodes are dropped unless requested")
}

func TestGenerateDeterministic(t *testing.T) {
	g := &Generator{}

	first, err := g.GenerateString(sampleResources(), nil)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		next, err := g.GenerateString(sampleResources(), nil)
		require.NoError(t, err)
		assert.Equal(t, first, next)
	}
}

func TestCfTypeLabel(t *testing.T) {
	assert.Equal(t, "AWS::Lambda::Function", cfTypeLabel("lambda.Function"))
	assert.Equal(t, "AWS::Logs::LogGroup", cfTypeLabel("logs.LogGroup"))
	assert.Equal(t, "s3.Bucket", cfTypeLabel("s3.Bucket"))
	assert.True(t, strings.HasPrefix(cfTypeLabel("iam.Role"), "AWS::IAM"))
}
