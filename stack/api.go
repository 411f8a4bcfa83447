// This file contains the REST API: the /evaluate route, its POST method
// with the four status branches, the CORS preflight method, and the
// deployment and stage.
//
// The integration is a Lambda custom integration, not a proxy: the
// status branches below are the API's behavioral contract, and only a
// custom integration lets the gateway classify handler errors into
// status codes by selection pattern.
package stack

import (
	. "github.com/meritpath/infra/intrinsics"
	"github.com/meritpath/infra/resources/apigateway"
)

// ----------------------------------------------------------------------------
// REST API
// ----------------------------------------------------------------------------

// EvaluateApi fronts the evaluate function. Uploads arrive as multipart
// form data or raw PDFs, so both are declared binary.
var EvaluateApi = apigateway.RestApi{
	Name:             Sub{String: "${AWS::StackName}-api"},
	Description:      "Document evaluation API",
	BinaryMediaTypes: []any{"multipart/form-data", "application/pdf"},
}

// EvaluateResource is the /evaluate path.
var EvaluateResource = apigateway.Resource{
	RestApiId: EvaluateApi,
	ParentId:  EvaluateApi.RootResourceId,
	PathPart:  "evaluate",
}

// ----------------------------------------------------------------------------
// POST /evaluate — status branches
// ----------------------------------------------------------------------------

// CorsOriginHeader is attached to every status branch so browser
// clients can read error responses, not just successes.
var CorsOriginHeader = Json{
	"method.response.header.Access-Control-Allow-Origin": "'*'",
}

// OkResponse passes the handler's result through. No selection pattern:
// this is the default branch for successful invocations.
var OkResponse = apigateway.Method_IntegrationResponse{
	StatusCode:         "200",
	ResponseParameters: CorsOriginHeader,
}

// BadRequestResponse catches handler validation errors.
var BadRequestResponse = apigateway.Method_IntegrationResponse{
	StatusCode:         "400",
	SelectionPattern:   ".*Bad Request.*",
	ResponseParameters: CorsOriginHeader,
	ResponseTemplates: Json{
		"application/json": `{"error": $input.json('$.errorMessage')}`,
	},
}

// TimeoutResponse catches the handler's self-raised timeout. The match
// is on the literal exception name in the error text; errors without it
// fall through to the 500 branch.
var TimeoutResponse = apigateway.Method_IntegrationResponse{
	StatusCode:         "504",
	SelectionPattern:   ".*TimeoutException.*",
	ResponseParameters: CorsOriginHeader,
	ResponseTemplates: Json{
		"application/json": `{"error": "Analysis timed out. Please try again with a smaller document."}`,
	},
}

// ServerErrorResponse is the catch-all for any other handler error.
var ServerErrorResponse = apigateway.Method_IntegrationResponse{
	StatusCode:         "500",
	SelectionPattern:   `(\n|.)+`,
	ResponseParameters: CorsOriginHeader,
	ResponseTemplates: Json{
		"application/json": `{"error": $input.json('$.errorMessage')}`,
	},
}

// EvaluateIntegration wires the method to the function.
var EvaluateIntegration = apigateway.Method_Integration{
	Type_:                 "AWS",
	IntegrationHttpMethod: "POST",
	Uri:                   Sub{String: "arn:${AWS::Partition}:apigateway:${AWS::Region}:lambda:path/2015-03-31/functions/${EvaluateFunction.Arn}/invocations"},
	PassthroughBehavior:   "WHEN_NO_TEMPLATES",
	ContentHandling:       "CONVERT_TO_TEXT",
	RequestTemplates: Json{
		"multipart/form-data": `{"body": "$input.body", "contentType": "$input.params('Content-Type')"}`,
		"application/pdf":     `{"body": "$input.body", "contentType": "application/pdf"}`,
	},
	IntegrationResponses: Any(OkResponse, BadRequestResponse, ServerErrorResponse, TimeoutResponse),
}

// CorsMethodResponseHeader declares the CORS header on a method response.
var CorsMethodResponseHeader = Json{
	"method.response.header.Access-Control-Allow-Origin": true,
}

// EvaluateMethod is POST /evaluate.
var EvaluateMethod = apigateway.Method{
	RestApiId:         EvaluateApi,
	ResourceId:        EvaluateResource,
	HttpMethod:        "POST",
	AuthorizationType: "NONE",
	Integration:       EvaluateIntegration,
	MethodResponses: Any(
		apigateway.Method_MethodResponse{StatusCode: "200", ResponseParameters: CorsMethodResponseHeader},
		apigateway.Method_MethodResponse{StatusCode: "400", ResponseParameters: CorsMethodResponseHeader},
		apigateway.Method_MethodResponse{StatusCode: "500", ResponseParameters: CorsMethodResponseHeader},
		apigateway.Method_MethodResponse{StatusCode: "504", ResponseParameters: CorsMethodResponseHeader},
	),
}

// ----------------------------------------------------------------------------
// OPTIONS /evaluate — CORS preflight
// ----------------------------------------------------------------------------

// CorsPreflightResponse answers the preflight with the allowed origins,
// methods, and headers. MOCK integration: no backend call.
var CorsPreflightResponse = apigateway.Method_IntegrationResponse{
	StatusCode: "200",
	ResponseParameters: Json{
		"method.response.header.Access-Control-Allow-Origin":  "'*'",
		"method.response.header.Access-Control-Allow-Methods": "'POST,OPTIONS'",
		"method.response.header.Access-Control-Allow-Headers": "'Content-Type,Authorization'",
	},
}

// CorsIntegration is the MOCK integration backing the preflight.
var CorsIntegration = apigateway.Method_Integration{
	Type_: "MOCK",
	RequestTemplates: Json{
		"application/json": `{"statusCode": 200}`,
	},
	IntegrationResponses: Any(CorsPreflightResponse),
}

// EvaluateCorsMethod is OPTIONS /evaluate.
var EvaluateCorsMethod = apigateway.Method{
	RestApiId:         EvaluateApi,
	ResourceId:        EvaluateResource,
	HttpMethod:        "OPTIONS",
	AuthorizationType: "NONE",
	Integration:       CorsIntegration,
	MethodResponses: Any(
		apigateway.Method_MethodResponse{
			StatusCode: "200",
			ResponseParameters: Json{
				"method.response.header.Access-Control-Allow-Origin":  true,
				"method.response.header.Access-Control-Allow-Methods": true,
				"method.response.header.Access-Control-Allow-Headers": true,
			},
		},
	),
}

// ----------------------------------------------------------------------------
// Deployment and stage
// ----------------------------------------------------------------------------

// ApiDeployment snapshots the API. DependsOn both methods (declared in
// Overrides): the snapshot is taken at creation time and must include
// them.
var ApiDeployment = apigateway.Deployment{
	RestApiId:   EvaluateApi,
	Description: "Evaluation API deployment",
}

// ApiStage serves the deployment, with access logs to AccessLogGroup
// and execution logging at INFO. DependsOn ApiAccount (declared in
// Overrides): stage creation fails if account-level logging is not
// configured yet.
var ApiStage = apigateway.Stage{
	RestApiId:    EvaluateApi,
	DeploymentId: ApiDeployment,
	StageName:    cfg.StageName,
	AccessLogSetting: apigateway.Stage_AccessLogSetting{
		DestinationArn: AccessLogGroup.Arn,
		Format: `{"requestId":"$context.requestId","ip":"$context.identity.sourceIp",` +
			`"requestTime":"$context.requestTime","httpMethod":"$context.httpMethod",` +
			`"resourcePath":"$context.resourcePath","status":"$context.status",` +
			`"responseLength":"$context.responseLength"}`,
	},
	MethodSettings: Any(
		apigateway.Stage_MethodSetting{
			ResourcePath: "/*",
			HttpMethod:   "*",
			LoggingLevel: "INFO",
		},
	),
}
