package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infra "github.com/meritpath/infra"
)

// conformingTemplate builds a template that satisfies every rule: a
// POST method with four CORS-mapped status branches, an invoke
// permission, a logged stage behind the account, an execution role with
// the full grant set, and a handler with its environment contract.
func conformingTemplate() *infra.Template {
	corsParams := map[string]any{corsHeaderKey: "'*'"}
	corsDeclared := map[string]any{corsHeaderKey: true}

	return &infra.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]infra.ResourceDef{
			"EvaluateApi": {
				Type: "AWS::ApiGateway::RestApi",
				Properties: map[string]any{
					"Name":             "evaluate-api",
					"BinaryMediaTypes": []any{"multipart/form-data", "application/pdf"},
				},
			},
			"EvaluateFunction": {
				Type: "AWS::Lambda::Function",
				Properties: map[string]any{
					"Runtime": "python3.12",
					"Environment": map[string]any{
						"Variables": map[string]any{
							"LOG_LEVEL":         "INFO",
							"KNOWLEDGE_BASE_ID": "BYASZZZFRM",
						},
					},
				},
			},
			"EvaluateApiInvokePermission": {
				Type: "AWS::Lambda::Permission",
				Properties: map[string]any{
					"Action":       "lambda:InvokeFunction",
					"FunctionName": map[string]any{"Ref": "EvaluateFunction"},
					"Principal":    "apigateway.amazonaws.com",
				},
			},
			"EvaluateFunctionRole": {
				Type: "AWS::IAM::Role",
				Properties: map[string]any{
					"AssumeRolePolicyDocument": map[string]any{
						"Statement": []any{
							map[string]any{
								"Effect":    "Allow",
								"Principal": map[string]any{"Service": []any{"lambda.amazonaws.com"}},
								"Action":    "sts:AssumeRole",
							},
						},
					},
					"Policies": []any{
						map[string]any{
							"PolicyName": "function-logs",
							"PolicyDocument": map[string]any{
								"Statement": []any{
									map[string]any{
										"Effect": "Allow",
										"Action": []any{
											"logs:CreateLogGroup",
											"logs:CreateLogStream",
											"logs:PutLogEvents",
										},
									},
								},
							},
						},
						map[string]any{
							"PolicyName": "bedrock-access",
							"PolicyDocument": map[string]any{
								"Statement": []any{
									map[string]any{
										"Effect": "Allow",
										"Action": []any{"bedrock:InvokeModel", "bedrock:Retrieve"},
									},
								},
							},
						},
					},
				},
			},
			"EvaluateMethod": {
				Type: "AWS::ApiGateway::Method",
				Properties: map[string]any{
					"HttpMethod": "POST",
					"Integration": map[string]any{
						"Type": "AWS",
						"Uri": map[string]any{
							"Fn::Sub": "arn:${AWS::Partition}:apigateway:${AWS::Region}:lambda:path/2015-03-31/functions/${EvaluateFunction.Arn}/invocations",
						},
						"IntegrationResponses": []any{
							map[string]any{"StatusCode": "200", "ResponseParameters": corsParams},
							map[string]any{"StatusCode": "400", "SelectionPattern": ".*Bad Request.*", "ResponseParameters": corsParams},
							map[string]any{"StatusCode": "504", "SelectionPattern": ".*TimeoutException.*", "ResponseParameters": corsParams},
							map[string]any{"StatusCode": "500", "SelectionPattern": `(\n|.)+`, "ResponseParameters": corsParams},
						},
					},
					"MethodResponses": []any{
						map[string]any{"StatusCode": "200", "ResponseParameters": corsDeclared},
						map[string]any{"StatusCode": "400", "ResponseParameters": corsDeclared},
						map[string]any{"StatusCode": "500", "ResponseParameters": corsDeclared},
						map[string]any{"StatusCode": "504", "ResponseParameters": corsDeclared},
					},
				},
			},
			"ApiAccount": {
				Type:       "AWS::ApiGateway::Account",
				Properties: map[string]any{},
			},
			"ApiStage": {
				Type: "AWS::ApiGateway::Stage",
				Properties: map[string]any{
					"StageName": "prod",
					"AccessLogSetting": map[string]any{
						"DestinationArn": map[string]any{"Fn::GetAtt": []any{"AccessLogGroup", "Arn"}},
					},
				},
				DependsOn: []string{"ApiAccount"},
			},
		},
	}
}

func TestCheckConformingTemplate(t *testing.T) {
	result := Check(conformingTemplate(), Options{})

	assert.True(t, result.Success)
	assert.Empty(t, result.Findings)
}

func TestCorsMissingOnIntegrationResponse(t *testing.T) {
	tmpl := conformingTemplate()
	method := tmpl.Resources["EvaluateMethod"]
	integration := method.Properties["Integration"].(map[string]any)
	responses := integration["IntegrationResponses"].([]any)
	responses[2] = map[string]any{"StatusCode": "504", "SelectionPattern": ".*TimeoutException.*"}

	result := Check(tmpl, Options{EnabledRules: []string{"MPI001"}})

	require.Len(t, result.Findings, 1)
	assert.False(t, result.Success)
	assert.Equal(t, "MPI001", result.Findings[0].Rule)
	assert.Equal(t, "EvaluateMethod", result.Findings[0].Resource)
	assert.Contains(t, result.Findings[0].Message, "504")
}

func TestCorsMissingOnMethodResponse(t *testing.T) {
	tmpl := conformingTemplate()
	method := tmpl.Resources["EvaluateMethod"]
	responses := method.Properties["MethodResponses"].([]any)
	responses[1] = map[string]any{"StatusCode": "400"}

	result := Check(tmpl, Options{EnabledRules: []string{"MPI001"}})

	require.Len(t, result.Findings, 1)
	assert.Contains(t, result.Findings[0].Message, "method response 400")
}

func TestTimeoutBranchMissing(t *testing.T) {
	tmpl := conformingTemplate()
	integration := tmpl.Resources["EvaluateMethod"].Properties["Integration"].(map[string]any)
	responses := integration["IntegrationResponses"].([]any)
	integration["IntegrationResponses"] = append(responses[:2], responses[3])

	result := Check(tmpl, Options{EnabledRules: []string{"MPI002"}})

	require.Len(t, result.Findings, 1)
	assert.Contains(t, result.Findings[0].Message, "no 504 timeout branch")
}

func TestTimeoutBranchWrongPattern(t *testing.T) {
	tmpl := conformingTemplate()
	integration := tmpl.Resources["EvaluateMethod"].Properties["Integration"].(map[string]any)
	responses := integration["IntegrationResponses"].([]any)
	responses[2] = map[string]any{
		"StatusCode":         "504",
		"SelectionPattern":   ".*SlowException.*",
		"ResponseParameters": map[string]any{corsHeaderKey: "'*'"},
	}

	result := Check(tmpl, Options{EnabledRules: []string{"MPI002"}})

	require.Len(t, result.Findings, 1)
	assert.Contains(t, result.Findings[0].Message, "TimeoutException")
}

func TestIntegrationTargetUndeclaredFunction(t *testing.T) {
	tmpl := conformingTemplate()
	integration := tmpl.Resources["EvaluateMethod"].Properties["Integration"].(map[string]any)
	integration["Uri"] = map[string]any{
		"Fn::Sub": "arn:aws:apigateway:us-east-1:lambda:path/2015-03-31/functions/${GhostFunction.Arn}/invocations",
	}

	result := Check(tmpl, Options{EnabledRules: []string{"MPI003"}})

	require.Len(t, result.Findings, 1)
	assert.Contains(t, result.Findings[0].Message, "does not reference a declared Lambda function")
}

func TestIntegrationTargetMissingPermission(t *testing.T) {
	tmpl := conformingTemplate()
	delete(tmpl.Resources, "EvaluateApiInvokePermission")

	result := Check(tmpl, Options{EnabledRules: []string{"MPI003"}})

	require.Len(t, result.Findings, 1)
	assert.Contains(t, result.Findings[0].Message, "EvaluateFunction")
}

func TestStageWithoutAccountEdge(t *testing.T) {
	tmpl := conformingTemplate()
	stage := tmpl.Resources["ApiStage"]
	stage.DependsOn = nil
	tmpl.Resources["ApiStage"] = stage

	result := Check(tmpl, Options{EnabledRules: []string{"MPI004"}})

	require.Len(t, result.Findings, 1)
	assert.Equal(t, "ApiStage", result.Findings[0].Resource)
}

func TestStageWithoutLoggingIsExempt(t *testing.T) {
	tmpl := conformingTemplate()
	stage := tmpl.Resources["ApiStage"]
	stage.DependsOn = nil
	stage.Properties = map[string]any{"StageName": "prod"}
	tmpl.Resources["ApiStage"] = stage

	result := Check(tmpl, Options{EnabledRules: []string{"MPI004"}})

	assert.Empty(t, result.Findings)
}

func TestRoleMissingBedrockGrant(t *testing.T) {
	tmpl := conformingTemplate()
	role := tmpl.Resources["EvaluateFunctionRole"]
	policies := role.Properties["Policies"].([]any)
	role.Properties["Policies"] = policies[:1] // drop the bedrock policy

	result := Check(tmpl, Options{EnabledRules: []string{"MPI005"}})

	require.Len(t, result.Findings, 1)
	assert.Contains(t, result.Findings[0].Message, "bedrock:InvokeModel")
	assert.Contains(t, result.Findings[0].Message, "bedrock:Retrieve")
}

func TestRoleNotAssumedByLambdaIsExempt(t *testing.T) {
	tmpl := conformingTemplate()
	tmpl.Resources["ApiGatewayLogRole"] = infra.ResourceDef{
		Type: "AWS::IAM::Role",
		Properties: map[string]any{
			"AssumeRolePolicyDocument": map[string]any{
				"Statement": []any{
					map[string]any{
						"Effect":    "Allow",
						"Principal": map[string]any{"Service": []any{"apigateway.amazonaws.com"}},
						"Action":    "sts:AssumeRole",
					},
				},
			},
		},
	}

	result := Check(tmpl, Options{EnabledRules: []string{"MPI005"}})

	assert.Empty(t, result.Findings, "only Lambda execution roles are checked")
}

func TestBinaryMediaTypeMissing(t *testing.T) {
	tmpl := conformingTemplate()
	api := tmpl.Resources["EvaluateApi"]
	api.Properties["BinaryMediaTypes"] = []any{"multipart/form-data"}

	result := Check(tmpl, Options{EnabledRules: []string{"MPI006"}})

	require.Len(t, result.Findings, 1)
	assert.Contains(t, result.Findings[0].Message, "application/pdf")
}

func TestHandlerEnvironmentMissingKey(t *testing.T) {
	tmpl := conformingTemplate()
	fn := tmpl.Resources["EvaluateFunction"]
	fn.Properties["Environment"] = map[string]any{
		"Variables": map[string]any{"LOG_LEVEL": "INFO"},
	}

	result := Check(tmpl, Options{EnabledRules: []string{"MPI007"}})

	require.Len(t, result.Findings, 1)
	assert.Contains(t, result.Findings[0].Message, "KNOWLEDGE_BASE_ID")
}

func TestEnabledRulesFilter(t *testing.T) {
	tmpl := conformingTemplate()
	delete(tmpl.Resources, "EvaluateApiInvokePermission")
	fn := tmpl.Resources["EvaluateFunction"]
	fn.Properties["Environment"] = map[string]any{"Variables": map[string]any{}}

	all := Check(tmpl, Options{})
	assert.GreaterOrEqual(t, len(all.Findings), 3)

	only := Check(tmpl, Options{EnabledRules: []string{"MPI007"}})
	for _, f := range only.Findings {
		assert.Equal(t, "MPI007", f.Rule)
	}
}

func TestAllRulesHaveUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for _, r := range AllRules() {
		assert.False(t, seen[r.ID()], "duplicate rule ID %s", r.ID())
		assert.NotEmpty(t, r.Description())
		seen[r.ID()] = true
	}
}
