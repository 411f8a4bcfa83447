package apigateway

// Method represents AWS::ApiGateway::Method.
type Method struct {
	RestApiId         any            `json:"RestApiId,omitempty"`
	ResourceId        any            `json:"ResourceId,omitempty"`
	HttpMethod        string         `json:"HttpMethod,omitempty"`
	AuthorizationType string         `json:"AuthorizationType,omitempty"`
	Integration       any            `json:"Integration,omitempty"`
	MethodResponses   []any          `json:"MethodResponses,omitempty"`
	RequestParameters map[string]any `json:"RequestParameters,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Method) ResourceType() string {
	return "AWS::ApiGateway::Method"
}

// Method_Integration configures the backend integration for a Method.
type Method_Integration struct {
	Type_                 string         `json:"Type,omitempty"`
	IntegrationHttpMethod string         `json:"IntegrationHttpMethod,omitempty"`
	Uri                   any            `json:"Uri,omitempty"`
	PassthroughBehavior   string         `json:"PassthroughBehavior,omitempty"`
	ContentHandling       string         `json:"ContentHandling,omitempty"`
	RequestTemplates      map[string]any `json:"RequestTemplates,omitempty"`
	IntegrationResponses  []any          `json:"IntegrationResponses,omitempty"`
}

// Method_IntegrationResponse maps a backend response to a status code.
// SelectionPattern is matched against the handler's error text; the first
// matching response wins, and the patternless response is the default.
type Method_IntegrationResponse struct {
	StatusCode         string         `json:"StatusCode,omitempty"`
	SelectionPattern   string         `json:"SelectionPattern,omitempty"`
	ResponseParameters map[string]any `json:"ResponseParameters,omitempty"`
	ResponseTemplates  map[string]any `json:"ResponseTemplates,omitempty"`
}

// Method_MethodResponse declares a status code the method can return.
type Method_MethodResponse struct {
	StatusCode         string         `json:"StatusCode,omitempty"`
	ResponseParameters map[string]any `json:"ResponseParameters,omitempty"`
	ResponseModels     map[string]any `json:"ResponseModels,omitempty"`
}
