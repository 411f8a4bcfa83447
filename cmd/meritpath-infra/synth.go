package main

import (
	"errors"
	"fmt"

	infra "github.com/meritpath/infra"
	"github.com/meritpath/infra/internal/discover"
	"github.com/meritpath/infra/internal/template"
	"github.com/meritpath/infra/stack"
)

// defaultStackPackage is where the declarations live relative to the
// repository root.
const defaultStackPackage = "./stack"

// stackPackage resolves the package argument, defaulting to the
// in-repo stack package.
func stackPackage(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultStackPackage
}

// synthesize discovers the declarations and builds the template using
// the compiled-in stack registries.
func synthesize(pkg string) (*infra.Template, *discover.Result, error) {
	result, err := discover.Discover(discover.Options{
		Packages: []string{pkg},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("discovery failed: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, result, errors.Join(result.Errors...)
	}

	builder := template.NewBuilder(result)
	builder.SetValues(stack.Values())
	builder.SetParameters(stack.Parameters())
	builder.SetOutputs(stack.Outputs())
	builder.SetOverrides(stack.Overrides())

	tmpl, err := builder.Build()
	if err != nil {
		return nil, result, err
	}

	return tmpl, result, nil
}

// encodeTemplate renders a template in the requested format.
func encodeTemplate(tmpl *infra.Template, format string) ([]byte, error) {
	switch format {
	case "json":
		return template.ToJSON(tmpl)
	case "yaml":
		return template.ToYAML(tmpl)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}
