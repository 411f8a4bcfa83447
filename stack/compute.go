// This file contains the Lambda function that analyzes uploaded
// documents, and the permission that lets API Gateway invoke it.
package stack

import (
	. "github.com/meritpath/infra/intrinsics"
	"github.com/meritpath/infra/resources/lambda"
)

// ----------------------------------------------------------------------------
// Code bundle parameters
// ----------------------------------------------------------------------------

// CodeBucket is the S3 bucket holding the handler bundle. Packaging and
// upload happen outside this stack; the template only references the
// artifact.
var CodeBucket = Parameter{
	Type:        "String",
	Description: "S3 bucket holding the evaluate handler bundle",
}

// CodeKey is the S3 key of the handler bundle.
var CodeKey = Parameter{
	Type:        "String",
	Description: "S3 key of the evaluate handler bundle",
}

// ----------------------------------------------------------------------------
// Evaluate function
// ----------------------------------------------------------------------------

// EvaluateFunction runs the document analysis. It parses the uploaded
// resume or petition, calls Bedrock for inference and knowledge-base
// retrieval, and raises a timeout error whose text the API's 504 branch
// matches on.
var EvaluateFunction = lambda.Function{
	FunctionName: Sub{String: "${AWS::StackName}-evaluate"},
	Description:  "Analyzes uploaded documents against EB1A criteria",
	Runtime:      "python3.12",
	Handler:      "lambda_function.lambda_handler",
	Code: lambda.Function_Code{
		S3Bucket: CodeBucket,
		S3Key:    CodeKey,
	},
	Role:       EvaluateFunctionRole.Arn,
	Timeout:    cfg.HandlerTimeout,
	MemorySize: cfg.HandlerMemoryMB,
	Environment: lambda.Function_Environment{
		Variables: map[string]any{
			"LOG_LEVEL":         cfg.LogLevel,
			"KNOWLEDGE_BASE_ID": cfg.KnowledgeBaseID,
		},
	},
}

// ----------------------------------------------------------------------------
// Invoke permission
// ----------------------------------------------------------------------------

// EvaluateApiInvokePermission lets API Gateway call the function. The
// source ARN is scoped to the one route that fronts it.
var EvaluateApiInvokePermission = lambda.Permission{
	FunctionName: EvaluateFunction.Arn,
	Action:       "lambda:InvokeFunction",
	Principal:    "apigateway.amazonaws.com",
	SourceArn:    Sub{String: "arn:${AWS::Partition}:execute-api:${AWS::Region}:${AWS::AccountId}:${EvaluateApi}/*/POST/evaluate"},
}
