package apigateway

// Account represents AWS::ApiGateway::Account. There is one per AWS
// account and region; it tells API Gateway which role to assume when
// pushing execution logs to CloudWatch.
type Account struct {
	CloudWatchRoleArn any `json:"CloudWatchRoleArn,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Account) ResourceType() string {
	return "AWS::ApiGateway::Account"
}
