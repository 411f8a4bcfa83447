package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lex00/cfn-lint-go/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infra "github.com/meritpath/infra"
)

func TestResultTotalIssues(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		expected int
	}{
		{"empty", Result{}, 0},
		{"errors only", Result{Errors: []string{"a", "b"}}, 2},
		{"warnings only", Result{Warnings: []string{"a"}}, 1},
		{
			"mixed",
			Result{
				Errors:        []string{"a"},
				Warnings:      []string{"b", "c"},
				Informational: []string{"d"},
			},
			4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.TotalIssues())
		})
	}
}

func TestFormatMatch(t *testing.T) {
	tests := []struct {
		name     string
		match    lint.Match
		expected string
	}{
		{
			name: "no path",
			match: lint.Match{
				Rule:    lint.MatchRule{ID: "E1234"},
				Message: "something is wrong",
			},
			expected: "E1234: something is wrong",
		},
		{
			name: "with path",
			match: lint.Match{
				Rule:    lint.MatchRule{ID: "W5678"},
				Message: "suspicious property",
				Location: lint.MatchLocation{
					Path: []any{"Resources", "EvaluateFunction", "Properties"},
				},
			},
			expected: "W5678: suspicious property (at Resources/EvaluateFunction/Properties)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatMatch(tt.match))
		})
	}
}

func TestCategorize(t *testing.T) {
	matches := []lint.Match{
		{Rule: lint.MatchRule{ID: "E1"}, Level: "Error", Message: "broken"},
		{Rule: lint.MatchRule{ID: "W1"}, Level: "Warning", Message: "odd"},
		{Rule: lint.MatchRule{ID: "I1"}, Level: "Informational", Message: "fyi"},
	}

	result := categorize(matches)

	assert.False(t, result.Passed)
	assert.Len(t, result.Errors, 1)
	assert.Len(t, result.Warnings, 1)
	assert.Len(t, result.Informational, 1)
}

func TestCategorizeWarningsPass(t *testing.T) {
	matches := []lint.Match{
		{Rule: lint.MatchRule{ID: "W1"}, Level: "Warning", Message: "odd"},
	}

	result := categorize(matches)
	assert.True(t, result.Passed, "warnings alone do not fail validation")
}

func TestLintFileNotFound(t *testing.T) {
	result, err := LintFile("/nonexistent/template.yaml")
	require.NoError(t, err)

	assert.False(t, result.Passed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "template file not found")
}

func TestLintFileValidTemplate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.yaml")

	content := `AWSTemplateFormatVersion: '2010-09-09'
Description: evaluate API stack
Resources:
  AccessLogGroup:
    Type: AWS::Logs::LogGroup
    Properties:
      LogGroupName: /aws/apigateway/evaluate-api
      RetentionInDays: 30
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	result, err := LintFile(path)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestLintTemplate(t *testing.T) {
	tmpl := &infra.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]infra.ResourceDef{
			"AccessLogGroup": {
				Type: "AWS::Logs::LogGroup",
				Properties: map[string]any{
					"LogGroupName":    "/aws/apigateway/evaluate-api",
					"RetentionInDays": 30,
				},
			},
		},
	}

	result, err := LintTemplate(tmpl)
	require.NoError(t, err)
	assert.NotNil(t, result)
}
