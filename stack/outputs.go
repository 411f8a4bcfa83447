// This file contains the stack outputs.
package stack

import (
	. "github.com/meritpath/infra/intrinsics"
)

// EndpointURL is the deployed evaluate endpoint, ready to paste into a
// client configuration.
var EndpointURL = Output{
	Description: "Invoke URL of the evaluate endpoint",
	Value: Sub{String: "https://${EvaluateApi}.execute-api.${AWS::Region}.${AWS::URLSuffix}/" +
		cfg.StageName + "/evaluate"},
}
