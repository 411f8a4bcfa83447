package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	infra "github.com/meritpath/infra"
)

const corsHeaderKey = "method.response.header.Access-Control-Allow-Origin"

// CorsOnAllResponses verifies that every integration response and
// method response declares the CORS origin header. A status branch
// without it returns to the browser as an opaque network error, so a
// single missing mapping breaks client-side error handling.
type CorsOnAllResponses struct{}

func (r CorsOnAllResponses) ID() string { return "MPI001" }
func (r CorsOnAllResponses) Description() string {
	return "Every integration and method response declares the CORS origin header"
}

func (r CorsOnAllResponses) Check(t *infra.Template) []infra.CheckFinding {
	var findings []infra.CheckFinding

	for _, name := range methodNames(t) {
		props := t.Resources[name].Properties

		integration := asMap(props["Integration"])
		for _, resp := range asSlice(integration["IntegrationResponses"]) {
			respMap := asMap(resp)
			params := asMap(respMap["ResponseParameters"])
			if _, ok := params[corsHeaderKey]; !ok {
				findings = append(findings, infra.CheckFinding{
					Rule:     r.ID(),
					Resource: name,
					Severity: "error",
					Message: fmt.Sprintf("integration response %s does not map %s",
						asString(respMap["StatusCode"]), corsHeaderKey),
				})
			}
		}

		for _, resp := range asSlice(props["MethodResponses"]) {
			respMap := asMap(resp)
			params := asMap(respMap["ResponseParameters"])
			if _, ok := params[corsHeaderKey]; !ok {
				findings = append(findings, infra.CheckFinding{
					Rule:     r.ID(),
					Resource: name,
					Severity: "error",
					Message: fmt.Sprintf("method response %s does not declare %s",
						asString(respMap["StatusCode"]), corsHeaderKey),
				})
			}
		}
	}

	return findings
}

// TimeoutSelectionPattern verifies that every Lambda-backed method has
// a 504 branch selecting on TimeoutException. Without it, handler
// timeouts fall into the catch-all 500 branch and clients cannot tell
// a slow evaluation from a broken one.
type TimeoutSelectionPattern struct{}

func (r TimeoutSelectionPattern) ID() string { return "MPI002" }
func (r TimeoutSelectionPattern) Description() string {
	return "Lambda-backed methods carry a 504 branch selecting on TimeoutException"
}

func (r TimeoutSelectionPattern) Check(t *infra.Template) []infra.CheckFinding {
	var findings []infra.CheckFinding

	for _, name := range methodNames(t) {
		props := t.Resources[name].Properties
		integration := asMap(props["Integration"])
		if asString(integration["Type"]) != "AWS" {
			continue
		}

		found := false
		for _, resp := range asSlice(integration["IntegrationResponses"]) {
			respMap := asMap(resp)
			if asString(respMap["StatusCode"]) != "504" {
				continue
			}
			found = true
			if !strings.Contains(asString(respMap["SelectionPattern"]), "TimeoutException") {
				findings = append(findings, infra.CheckFinding{
					Rule:     r.ID(),
					Resource: name,
					Severity: "error",
					Message:  "504 integration response does not select on TimeoutException",
				})
			}
		}

		if !found {
			findings = append(findings, infra.CheckFinding{
				Rule:     r.ID(),
				Resource: name,
				Severity: "error",
				Message:  "Lambda integration has no 504 timeout branch",
			})
		}
	}

	return findings
}

// subRefPattern matches ${Name} and ${Name.Attr} substitutions.
var subRefPattern = regexp.MustCompile(`\$\{([A-Za-z0-9]+)(?:\.[A-Za-z0-9]+)?\}`)

// IntegrationTarget verifies that Lambda integration URIs point at a
// function declared in the template and that the function grants
// API Gateway permission to invoke it.
type IntegrationTarget struct{}

func (r IntegrationTarget) ID() string { return "MPI003" }
func (r IntegrationTarget) Description() string {
	return "Lambda integrations target a declared function with an invoke permission"
}

func (r IntegrationTarget) Check(t *infra.Template) []infra.CheckFinding {
	var findings []infra.CheckFinding

	for _, name := range methodNames(t) {
		props := t.Resources[name].Properties
		integration := asMap(props["Integration"])
		if asString(integration["Type"]) != "AWS" {
			continue
		}

		target := ""
		for _, ref := range subRefs(integration["Uri"]) {
			if def, ok := t.Resources[ref]; ok && def.Type == "AWS::Lambda::Function" {
				target = ref
				break
			}
		}
		if target == "" {
			findings = append(findings, infra.CheckFinding{
				Rule:     r.ID(),
				Resource: name,
				Severity: "error",
				Message:  "integration URI does not reference a declared Lambda function",
			})
			continue
		}

		if !hasInvokePermission(t, target) {
			findings = append(findings, infra.CheckFinding{
				Rule:     r.ID(),
				Resource: name,
				Severity: "error",
				Message:  fmt.Sprintf("no lambda:InvokeFunction permission declared for %s", target),
			})
		}
	}

	return findings
}

// hasInvokePermission reports whether any Permission resource grants
// lambda:InvokeFunction on the named function.
func hasInvokePermission(t *infra.Template, functionName string) bool {
	for _, def := range t.Resources {
		if def.Type != "AWS::Lambda::Permission" {
			continue
		}
		if asString(def.Properties["Action"]) != "lambda:InvokeFunction" {
			continue
		}
		if referencesResource(def.Properties["FunctionName"], functionName) {
			return true
		}
	}
	return false
}

// StageAfterAccount verifies that stages with access logging declare a
// DependsOn edge to the API Gateway account. The account installs the
// CloudWatch role; a stage created first fails with a missing-role
// error.
type StageAfterAccount struct{}

func (r StageAfterAccount) ID() string { return "MPI004" }
func (r StageAfterAccount) Description() string {
	return "Stages with access logging depend on the API Gateway account"
}

func (r StageAfterAccount) Check(t *infra.Template) []infra.CheckFinding {
	var accounts []string
	for name, def := range t.Resources {
		if def.Type == "AWS::ApiGateway::Account" {
			accounts = append(accounts, name)
		}
	}

	var findings []infra.CheckFinding
	for _, name := range resourcesOfType(t, "AWS::ApiGateway::Stage") {
		def := t.Resources[name]
		if _, ok := def.Properties["AccessLogSetting"]; !ok {
			continue
		}

		depends := false
		for _, dep := range def.DependsOn {
			for _, account := range accounts {
				if dep == account {
					depends = true
				}
			}
		}
		if !depends {
			findings = append(findings, infra.CheckFinding{
				Rule:     r.ID(),
				Resource: name,
				Severity: "error",
				Message:  "stage has access logging but no DependsOn edge to an ApiGateway::Account",
			})
		}
	}

	return findings
}

// requiredHandlerActions are the IAM actions the evaluation handler
// needs at runtime: its own log delivery plus the Bedrock model and
// knowledge base calls.
var requiredHandlerActions = []string{
	"logs:CreateLogGroup",
	"logs:CreateLogStream",
	"logs:PutLogEvents",
	"bedrock:InvokeModel",
	"bedrock:Retrieve",
}

// RolePolicyGrants verifies that every Lambda execution role grants the
// actions the handler calls. A missing grant surfaces only at runtime
// as an AccessDeniedException.
type RolePolicyGrants struct{}

func (r RolePolicyGrants) ID() string { return "MPI005" }
func (r RolePolicyGrants) Description() string {
	return "Lambda execution roles grant the log and Bedrock actions the handler needs"
}

func (r RolePolicyGrants) Check(t *infra.Template) []infra.CheckFinding {
	var findings []infra.CheckFinding

	for _, name := range resourcesOfType(t, "AWS::IAM::Role") {
		def := t.Resources[name]
		if !assumedByLambda(def.Properties["AssumeRolePolicyDocument"]) {
			continue
		}

		granted := make(map[string]bool)
		for _, policy := range asSlice(def.Properties["Policies"]) {
			doc := asMap(asMap(policy)["PolicyDocument"])
			for _, stmt := range asSlice(doc["Statement"]) {
				for _, action := range actionList(asMap(stmt)["Action"]) {
					granted[action] = true
				}
			}
		}

		var missing []string
		for _, action := range requiredHandlerActions {
			if !granted[action] {
				missing = append(missing, action)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			findings = append(findings, infra.CheckFinding{
				Rule:     r.ID(),
				Resource: name,
				Severity: "error",
				Message:  "execution role missing actions: " + strings.Join(missing, ", "),
			})
		}
	}

	return findings
}

// requiredBinaryMediaTypes are the upload formats the evaluate endpoint
// accepts. Without them API Gateway mangles binary bodies before the
// handler sees them.
var requiredBinaryMediaTypes = []string{"multipart/form-data", "application/pdf"}

// BinaryMediaDeclared verifies that every REST API declares the binary
// media types for document uploads.
type BinaryMediaDeclared struct{}

func (r BinaryMediaDeclared) ID() string { return "MPI006" }
func (r BinaryMediaDeclared) Description() string {
	return "APIs accepting uploads declare their binary media types"
}

func (r BinaryMediaDeclared) Check(t *infra.Template) []infra.CheckFinding {
	var findings []infra.CheckFinding

	for _, name := range resourcesOfType(t, "AWS::ApiGateway::RestApi") {
		declared := make(map[string]bool)
		for _, mt := range asSlice(t.Resources[name].Properties["BinaryMediaTypes"]) {
			declared[asString(mt)] = true
		}

		for _, required := range requiredBinaryMediaTypes {
			if !declared[required] {
				findings = append(findings, infra.CheckFinding{
					Rule:     r.ID(),
					Resource: name,
					Severity: "error",
					Message:  fmt.Sprintf("binary media type %s is not declared", required),
				})
			}
		}
	}

	return findings
}

// requiredEnvironmentKeys are the variables the Python handler reads on
// cold start.
var requiredEnvironmentKeys = []string{"LOG_LEVEL", "KNOWLEDGE_BASE_ID"}

// HandlerEnvironment verifies that every function declares the
// environment variables the handler reads.
type HandlerEnvironment struct{}

func (r HandlerEnvironment) ID() string { return "MPI007" }
func (r HandlerEnvironment) Description() string {
	return "Handler environment carries LOG_LEVEL and KNOWLEDGE_BASE_ID"
}

func (r HandlerEnvironment) Check(t *infra.Template) []infra.CheckFinding {
	var findings []infra.CheckFinding

	for _, name := range resourcesOfType(t, "AWS::Lambda::Function") {
		env := asMap(t.Resources[name].Properties["Environment"])
		vars := asMap(env["Variables"])

		for _, key := range requiredEnvironmentKeys {
			if _, ok := vars[key]; !ok {
				findings = append(findings, infra.CheckFinding{
					Rule:     r.ID(),
					Resource: name,
					Severity: "error",
					Message:  fmt.Sprintf("environment variable %s is not set", key),
				})
			}
		}
	}

	return findings
}

// methodNames returns AWS::ApiGateway::Method resources in name order.
func methodNames(t *infra.Template) []string {
	return resourcesOfType(t, "AWS::ApiGateway::Method")
}

func resourcesOfType(t *infra.Template, cfType string) []string {
	var names []string
	for name, def := range t.Resources {
		if def.Type == cfType {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// subRefs extracts the ${Name} references from a value that is either a
// plain string or an Fn::Sub map.
func subRefs(v any) []string {
	s := asString(v)
	if s == "" {
		if m := asMap(v); m != nil {
			s = asString(m["Fn::Sub"])
		}
	}

	var refs []string
	for _, match := range subRefPattern.FindAllStringSubmatch(s, -1) {
		refs = append(refs, match[1])
	}
	return refs
}

// referencesResource reports whether a property value points at the
// named resource through Ref, Fn::GetAtt, or an Fn::Sub substitution.
func referencesResource(v any, name string) bool {
	switch val := v.(type) {
	case string:
		return val == name
	case map[string]any:
		if asString(val["Ref"]) == name {
			return true
		}
		if att := asSlice(val["Fn::GetAtt"]); len(att) > 0 && asString(att[0]) == name {
			return true
		}
		for _, ref := range subRefs(val) {
			if ref == name {
				return true
			}
		}
	}
	return false
}

// assumedByLambda reports whether an assume-role document trusts the
// Lambda service principal.
func assumedByLambda(doc any) bool {
	for _, stmt := range asSlice(asMap(doc)["Statement"]) {
		principal := asMap(asMap(stmt)["Principal"])
		for _, service := range serviceList(principal["Service"]) {
			if service == "lambda.amazonaws.com" {
				return true
			}
		}
	}
	return false
}

func serviceList(v any) []string {
	if s := asString(v); s != "" {
		return []string{s}
	}
	var services []string
	for _, elem := range asSlice(v) {
		services = append(services, asString(elem))
	}
	return services
}

func actionList(v any) []string {
	if s := asString(v); s != "" {
		return []string{s}
	}
	var actions []string
	for _, elem := range asSlice(v) {
		actions = append(actions, asString(elem))
	}
	return actions
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
