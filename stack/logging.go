// This file contains the CloudWatch logging resources: the access log
// group and the account-level role API Gateway assumes to push logs.
package stack

import (
	. "github.com/meritpath/infra/intrinsics"
	"github.com/meritpath/infra/resources/apigateway"
	"github.com/meritpath/infra/resources/iam"
	"github.com/meritpath/infra/resources/logs"
)

// ----------------------------------------------------------------------------
// Access log group
// ----------------------------------------------------------------------------

// AccessLogGroup receives the stage's access logs. Retention is bounded
// so the group does not accumulate forever; the group itself is deleted
// with the stack.
var AccessLogGroup = logs.LogGroup{
	LogGroupName:    "/aws/apigateway/evaluate-api",
	RetentionInDays: cfg.LogRetentionDays,
}

// ----------------------------------------------------------------------------
// API Gateway account logging role
// ----------------------------------------------------------------------------

// ApiGatewayAssumeStatement allows the API Gateway service to assume the
// logging role.
var ApiGatewayAssumeStatement = PolicyStatement{
	Effect:    "Allow",
	Principal: ServicePrincipal{"apigateway.amazonaws.com"},
	Action:    "sts:AssumeRole",
}

// ApiGatewayLogRole is the role the API Gateway account uses to write
// execution and access logs to CloudWatch.
var ApiGatewayLogRole = iam.Role{
	RoleName: Sub{String: "${AWS::StackName}-apigw-logs"},
	AssumeRolePolicyDocument: PolicyDocument{
		Version:   PolicyVersion,
		Statement: []any{ApiGatewayAssumeStatement},
	},
	ManagedPolicyArns: []any{
		"arn:aws:iam::aws:policy/service-role/AmazonAPIGatewayPushToCloudWatchLogs",
	},
}

// ----------------------------------------------------------------------------
// Account-level logging configuration
// ----------------------------------------------------------------------------

// ApiAccount points the regional API Gateway account at the logging
// role. Stages with logging enabled cannot be created before this is in
// place, which is why ApiStage carries an explicit DependsOn edge here.
var ApiAccount = apigateway.Account{
	CloudWatchRoleArn: ApiGatewayLogRole.Arn,
}
