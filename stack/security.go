// This file contains the handler's execution role. The policy set is the
// contract between the infrastructure and the handler: CloudWatch log
// writes, Bedrock model invocation (inference profiles resolve to
// region-scoped model ARNs, hence the wildcard resource), and knowledge
// base retrieval scoped to the one knowledge base the handler queries.
package stack

import (
	. "github.com/meritpath/infra/intrinsics"
	"github.com/meritpath/infra/resources/iam"
)

// ----------------------------------------------------------------------------
// Trust policy
// ----------------------------------------------------------------------------

// LambdaAssumeStatement allows the Lambda service to assume the role.
var LambdaAssumeStatement = PolicyStatement{
	Effect:    "Allow",
	Principal: ServicePrincipal{"lambda.amazonaws.com"},
	Action:    "sts:AssumeRole",
}

// ----------------------------------------------------------------------------
// Inline policies
// ----------------------------------------------------------------------------

// FunctionLogsStatement allows the handler to write its own logs.
var FunctionLogsStatement = PolicyStatement{
	Effect: "Allow",
	Action: []any{
		"logs:CreateLogGroup",
		"logs:CreateLogStream",
		"logs:PutLogEvents",
	},
	Resource: Sub{String: "arn:${AWS::Partition}:logs:${AWS::Region}:${AWS::AccountId}:*"},
}

// FunctionLogsPolicy is the CloudWatch logging policy.
var FunctionLogsPolicy = iam.Role_Policy{
	PolicyName: "function-logs",
	PolicyDocument: PolicyDocument{
		Version:   PolicyVersion,
		Statement: []any{FunctionLogsStatement},
	},
}

// BedrockInvokeStatement allows model invocation. Inference profiles
// fan out to foundation-model ARNs in multiple regions, so the resource
// cannot be narrowed to a single ARN.
var BedrockInvokeStatement = PolicyStatement{
	Effect: "Allow",
	Action: []any{
		"bedrock:InvokeModel",
		"bedrock:InvokeModelWithResponseStream",
		"bedrock:GetInferenceProfile",
		"bedrock:ListInferenceProfiles",
	},
	Resource: "*",
}

// BedrockRetrieveStatement allows retrieval from the one knowledge base
// the handler queries.
var BedrockRetrieveStatement = PolicyStatement{
	Effect: "Allow",
	Action: []any{"bedrock:Retrieve"},
	Resource: Sub{String: "arn:${AWS::Partition}:bedrock:${AWS::Region}:${AWS::AccountId}:knowledge-base/" +
		cfg.KnowledgeBaseID},
}

// BedrockPolicy is the Bedrock access policy.
var BedrockPolicy = iam.Role_Policy{
	PolicyName: "bedrock-access",
	PolicyDocument: PolicyDocument{
		Version:   PolicyVersion,
		Statement: []any{BedrockInvokeStatement, BedrockRetrieveStatement},
	},
}

// ----------------------------------------------------------------------------
// Execution role
// ----------------------------------------------------------------------------

// EvaluateFunctionRole is the handler's execution role.
var EvaluateFunctionRole = iam.Role{
	RoleName: Sub{String: "${AWS::StackName}-evaluate-fn"},
	AssumeRolePolicyDocument: PolicyDocument{
		Version:   PolicyVersion,
		Statement: []any{LambdaAssumeStatement},
	},
	Policies: []any{FunctionLogsPolicy, BedrockPolicy},
}
