package lambda

// Permission represents AWS::Lambda::Permission.
type Permission struct {
	FunctionName  any    `json:"FunctionName,omitempty"`
	Action        string `json:"Action,omitempty"`
	Principal     string `json:"Principal,omitempty"`
	SourceArn     any    `json:"SourceArn,omitempty"`
	SourceAccount any    `json:"SourceAccount,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Permission) ResourceType() string {
	return "AWS::Lambda::Permission"
}
