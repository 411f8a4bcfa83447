package apigateway

// Deployment represents AWS::ApiGateway::Deployment.
type Deployment struct {
	RestApiId   any    `json:"RestApiId,omitempty"`
	Description string `json:"Description,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Deployment) ResourceType() string {
	return "AWS::ApiGateway::Deployment"
}

// Stage represents AWS::ApiGateway::Stage.
type Stage struct {
	RestApiId           any            `json:"RestApiId,omitempty"`
	DeploymentId        any            `json:"DeploymentId,omitempty"`
	StageName           string         `json:"StageName,omitempty"`
	Description         string         `json:"Description,omitempty"`
	AccessLogSetting    any            `json:"AccessLogSetting,omitempty"`
	MethodSettings      []any          `json:"MethodSettings,omitempty"`
	TracingEnabled      bool           `json:"TracingEnabled,omitempty"`
	CacheClusterEnabled bool           `json:"CacheClusterEnabled,omitempty"`
	Variables           map[string]any `json:"Variables,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Stage) ResourceType() string {
	return "AWS::ApiGateway::Stage"
}

// Stage_AccessLogSetting routes access logs to a CloudWatch destination.
type Stage_AccessLogSetting struct {
	DestinationArn any    `json:"DestinationArn,omitempty"`
	Format         string `json:"Format,omitempty"`
}

// Stage_MethodSetting enables execution logging per method path.
type Stage_MethodSetting struct {
	ResourcePath         string  `json:"ResourcePath,omitempty"`
	HttpMethod           string  `json:"HttpMethod,omitempty"`
	LoggingLevel         string  `json:"LoggingLevel,omitempty"`
	DataTraceEnabled     bool    `json:"DataTraceEnabled,omitempty"`
	MetricsEnabled       bool    `json:"MetricsEnabled,omitempty"`
	ThrottlingRateLimit  float64 `json:"ThrottlingRateLimit,omitempty"`
	ThrottlingBurstLimit int     `json:"ThrottlingBurstLimit,omitempty"`
}
