// Package edge models how the gateway turns a handler invocation into
// the client-visible response: the declared selection patterns classify
// handler error text into a status branch, and every branch carries the
// CORS origin header.
//
// The stack declares this behavior as CloudFormation integration
// responses; this package is the same contract as executable Go, so
// tests can prove the end-to-end property without deploying.
package edge

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// Branch is one status branch of the integration: a status code and
// the selection pattern that routes handler errors to it. An empty
// pattern marks the default branch for successful invocations.
type Branch struct {
	StatusCode       int
	SelectionPattern string

	pattern *regexp.Regexp
}

// Classifier applies the declared branches to handler outcomes.
type Classifier struct {
	// AllowOrigin is the CORS origin injected on every branch.
	AllowOrigin string

	defaultBranch *Branch
	specific      []Branch
	catchAll      []Branch
}

// NewClassifier compiles the branch patterns. Catch-all patterns (those
// matching arbitrary text, like the 500 branch) are tried after the
// specific ones, so a timeout error reaches the 504 branch even though
// the catch-all matches it too.
func NewClassifier(branches []Branch) (*Classifier, error) {
	c := &Classifier{AllowOrigin: "*"}

	for _, b := range branches {
		if b.SelectionPattern == "" {
			if c.defaultBranch != nil {
				return nil, fmt.Errorf("two default branches: %d and %d", c.defaultBranch.StatusCode, b.StatusCode)
			}
			def := b
			c.defaultBranch = &def
			continue
		}

		pattern, err := regexp.Compile(b.SelectionPattern)
		if err != nil {
			return nil, fmt.Errorf("branch %d: compiling selection pattern: %w", b.StatusCode, err)
		}
		b.pattern = pattern

		if isCatchAll(pattern) {
			c.catchAll = append(c.catchAll, b)
		} else {
			c.specific = append(c.specific, b)
		}
	}

	if c.defaultBranch == nil {
		return nil, fmt.Errorf("no default branch declared")
	}

	return c, nil
}

// FromIntegration builds a classifier from a serialized integration
// property map, as found in a built template under
// Resources.<Method>.Properties.Integration.
func FromIntegration(integration map[string]any) (*Classifier, error) {
	responses, _ := integration["IntegrationResponses"].([]any)
	if len(responses) == 0 {
		return nil, fmt.Errorf("integration declares no responses")
	}

	var branches []Branch
	for _, resp := range responses {
		respMap, _ := resp.(map[string]any)
		code, _ := respMap["StatusCode"].(string)
		status, err := strconv.Atoi(code)
		if err != nil {
			return nil, fmt.Errorf("integration response status %q: %w", code, err)
		}
		pattern, _ := respMap["SelectionPattern"].(string)
		branches = append(branches, Branch{StatusCode: status, SelectionPattern: pattern})
	}

	return NewClassifier(branches)
}

// isCatchAll reports whether a pattern matches arbitrary error text.
// Probes cover single-line and multi-line messages, which is what
// separates the 500 branch's (\n|.)+ from the targeted patterns.
func isCatchAll(pattern *regexp.Regexp) bool {
	return pattern.MatchString("probe") && pattern.MatchString("probe\nprobe")
}

// StatusFor classifies a handler error into a status code. A nil error
// takes the default branch.
func (c *Classifier) StatusFor(err error) int {
	if err == nil {
		return c.defaultBranch.StatusCode
	}

	text := err.Error()
	for _, b := range c.specific {
		if b.pattern.MatchString(text) {
			return b.StatusCode
		}
	}
	for _, b := range c.catchAll {
		if b.pattern.MatchString(text) {
			return b.StatusCode
		}
	}
	return c.defaultBranch.StatusCode
}

// Respond builds the client-visible response for a handler outcome. On
// success the handler body passes through unchanged; on error the body
// carries the error message. Every response carries the CORS header.
func (c *Classifier) Respond(body string, err error) events.APIGatewayProxyResponse {
	resp := events.APIGatewayProxyResponse{
		StatusCode: c.StatusFor(err),
		Headers: map[string]string{
			"Access-Control-Allow-Origin": c.AllowOrigin,
			"Content-Type":                "application/json",
		},
	}

	if err == nil {
		resp.Body = body
		return resp
	}

	encoded, marshalErr := json.Marshal(map[string]string{"error": err.Error()})
	if marshalErr != nil {
		encoded = []byte(`{"error": "internal error"}`)
	}
	resp.Body = string(encoded)
	return resp
}

// Branches lists the declared branches for inspection, default branch
// first, then specific patterns, then catch-alls.
func (c *Classifier) Branches() []Branch {
	out := []Branch{*c.defaultBranch}
	out = append(out, c.specific...)
	out = append(out, c.catchAll...)
	return out
}

// ParseHandlerError extracts the errorMessage a Python Lambda handler
// reports when it raises. Falls back to the raw payload when it is not
// the standard error shape.
func ParseHandlerError(payload []byte) error {
	var body struct {
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.ErrorMessage != "" {
		return fmt.Errorf("%s", body.ErrorMessage)
	}

	text := strings.TrimSpace(string(payload))
	if text == "" {
		return fmt.Errorf("handler failed without an error message")
	}
	return fmt.Errorf("%s", text)
}
