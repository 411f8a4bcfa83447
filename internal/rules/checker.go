// Package rules checks a synthesized template against the stack
// contracts that cfn-lint cannot see: CORS coverage on every status
// branch, the timeout selection pattern, integration targets, logging
// order, role policy grants, binary media types, and the handler
// environment.
//
// Rules:
//
//	MPI001: Every integration and method response declares the CORS origin header
//	MPI002: A 504 branch selects on TimeoutException
//	MPI003: Lambda integrations target a declared function with an invoke permission
//	MPI004: Stages with access logging depend on the API Gateway account
//	MPI005: Lambda execution roles grant the log and Bedrock actions the handler needs
//	MPI006: APIs accepting uploads declare their binary media types
//	MPI007: Handler environment carries LOG_LEVEL and KNOWLEDGE_BASE_ID
package rules

import (
	infra "github.com/meritpath/infra"
)

// Rule inspects a template and reports findings.
type Rule interface {
	// ID returns the rule identifier (e.g., "MPI001").
	ID() string
	// Description returns a one-line summary of what the rule checks.
	Description() string
	// Check inspects the template and returns findings.
	Check(t *infra.Template) []infra.CheckFinding
}

// Options configures a check run.
type Options struct {
	// EnabledRules limits the run to the given rule IDs. Empty means
	// all rules.
	EnabledRules []string
}

// AllRules returns every rule in ID order.
func AllRules() []Rule {
	return []Rule{
		CorsOnAllResponses{},
		TimeoutSelectionPattern{},
		IntegrationTarget{},
		StageAfterAccount{},
		RolePolicyGrants{},
		BinaryMediaDeclared{},
		HandlerEnvironment{},
	}
}

// Check runs the rules against a template.
func Check(t *infra.Template, opts Options) *infra.CheckResult {
	rules := AllRules()

	if len(opts.EnabledRules) > 0 {
		enabled := make(map[string]bool, len(opts.EnabledRules))
		for _, id := range opts.EnabledRules {
			enabled[id] = true
		}
		var filtered []Rule
		for _, r := range rules {
			if enabled[r.ID()] {
				filtered = append(filtered, r)
			}
		}
		rules = filtered
	}

	result := &infra.CheckResult{Success: true}
	for _, r := range rules {
		findings := r.Check(t)
		result.Findings = append(result.Findings, findings...)
		for _, f := range findings {
			if f.Severity == "error" {
				result.Success = false
			}
		}
	}

	return result
}
