// Package template assembles the CloudFormation template from the
// discovered declarations and their runtime values.
//
// The builder walks resources in dependency order, serializes each
// value to its Properties map, then splices in the references discovery
// found: attribute selectors become Fn::GetAtt and plain var references
// become Ref, each at the field path where the reference appeared in
// source. Explicit overrides (DependsOn edges, deletion policies) are
// applied last.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	infra "github.com/meritpath/infra"
	"github.com/meritpath/infra/internal/discover"
	"github.com/meritpath/infra/internal/serialize"
)

// cfServices maps resource package names to CloudFormation service
// names. Mirrors discover.knownResourcePackages.
var cfServices = map[string]string{
	"apigateway": "ApiGateway",
	"iam":        "IAM",
	"lambda":     "Lambda",
	"logs":       "Logs",
}

// Builder constructs a CloudFormation template.
type Builder struct {
	discovery *discover.Result
	values    map[string]any
	params    map[string]any
	outputs   map[string]any
	overrides map[string]infra.ResourceOverride
}

// NewBuilder creates a builder over a discovery result.
func NewBuilder(d *discover.Result) *Builder {
	return &Builder{
		discovery: d,
		values:    make(map[string]any),
		params:    make(map[string]any),
		outputs:   make(map[string]any),
		overrides: make(map[string]infra.ResourceOverride),
	}
}

// SetValues registers the resource values by logical name.
func (b *Builder) SetValues(values map[string]any) {
	for name, v := range values {
		b.values[name] = v
	}
}

// SetParameters registers the parameter declarations by name.
func (b *Builder) SetParameters(params map[string]any) {
	for name, v := range params {
		b.params[name] = v
	}
}

// SetOutputs registers the output declarations by name.
func (b *Builder) SetOutputs(outputs map[string]any) {
	for name, v := range outputs {
		b.outputs[name] = v
	}
}

// SetOverrides registers explicit DependsOn edges and deletion policies.
func (b *Builder) SetOverrides(overrides map[string]infra.ResourceOverride) {
	for name, o := range overrides {
		b.overrides[name] = o
	}
}

// Build assembles the template.
//
// Every discovered resource must have a registered value and vice
// versa: a missing value means the registry in the stack package fell
// out of sync with the declarations.
func (b *Builder) Build() (*infra.Template, error) {
	for name := range b.discovery.Resources {
		if _, ok := b.values[name]; !ok {
			return nil, fmt.Errorf("resource %s is declared but has no registered value", name)
		}
	}
	for name := range b.values {
		if _, ok := b.discovery.Resources[name]; !ok {
			return nil, fmt.Errorf("value %s is registered but not declared", name)
		}
	}

	order, err := b.topologicalSort()
	if err != nil {
		return nil, err
	}

	tmpl := &infra.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources:                make(map[string]infra.ResourceDef),
	}

	if len(b.params) > 0 {
		tmpl.Parameters = make(map[string]infra.Parameter)
		for name, val := range b.params {
			tmpl.Parameters[name] = buildParameter(val)
		}
	}

	for _, name := range order {
		res := b.discovery.Resources[name]

		cfType := cfResourceType(res.Type)
		if cfType == "" {
			return nil, fmt.Errorf("unknown resource type: %s", res.Type)
		}

		props, err := serialize.Properties(b.values[name])
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", name, err)
		}

		// Attribute references -> Fn::GetAtt at the recorded paths.
		for _, ref := range b.discovery.ResolveAttrRefs(name) {
			setAtPath(props, ref.FieldPath, map[string]any{
				"Fn::GetAtt": []any{ref.ResourceName, ref.Attribute},
			})
		}

		// Plain references to resources and parameters -> Ref.
		for path, target := range b.resolveVarRefs(name) {
			setAtPath(props, path, map[string]any{"Ref": target})
		}

		def := infra.ResourceDef{
			Type:       cfType,
			Properties: props,
		}

		if o, ok := b.overrides[name]; ok {
			if len(o.DependsOn) > 0 {
				def.DependsOn = append([]string(nil), o.DependsOn...)
				sort.Strings(def.DependsOn)
			}
			def.DeletionPolicy = o.DeletionPolicy
		}

		tmpl.Resources[name] = def
	}

	if len(b.outputs) > 0 {
		tmpl.Outputs = make(map[string]infra.Output)
		for name, val := range b.outputs {
			out, err := buildOutput(val)
			if err != nil {
				return nil, fmt.Errorf("serializing output %s: %w", name, err)
			}
			tmpl.Outputs[name] = out
		}
	}

	return tmpl, nil
}

// resolveVarRefs collects the plain var references under a resource
// that point at template entities (resources or parameters), following
// references through property vars and prefixing field paths. A
// reference to a property var itself is not a Ref; its value is already
// serialized in place.
func (b *Builder) resolveVarRefs(name string) map[string]string {
	out := make(map[string]string)
	visited := make(map[string]bool)
	b.collectVarRefs(name, "", out, visited)
	return out
}

func (b *Builder) collectVarRefs(varName, pathPrefix string, out map[string]string, visited map[string]bool) {
	if visited[varName] {
		return
	}
	visited[varName] = true

	info, ok := b.discovery.VarAttrRefs[varName]
	if !ok {
		return
	}

	for path, target := range info.VarRefs {
		fullPath := path
		if pathPrefix != "" {
			fullPath = pathPrefix + "." + path
		}

		_, isResource := b.discovery.Resources[target]
		_, isParameter := b.discovery.Parameters[target]
		if isResource || isParameter {
			out[fullPath] = target
			continue
		}

		b.collectVarRefs(target, fullPath, out, visited)
	}
}

// setAtPath writes a value into a nested property map at a dotted field
// path, creating intermediate maps as needed. Paths into slice elements
// cannot be addressed this way; declarations reference resources inside
// arrays through Fn::Sub strings instead.
func setAtPath(props map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := props

	for i, part := range parts {
		if i == len(parts)-1 {
			current[part] = value
			return
		}

		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
}

// buildParameter converts a declared parameter value to the template
// Parameters entry.
func buildParameter(value any) infra.Parameter {
	type definer interface {
		ToDefinition() map[string]any
	}

	d, ok := value.(definer)
	if !ok {
		return infra.Parameter{Type: "String"}
	}

	def := d.ToDefinition()
	param := infra.Parameter{Type: "String"}

	if t, ok := def["Type"].(string); ok && t != "" {
		param.Type = t
	}
	if desc, ok := def["Description"].(string); ok {
		param.Description = desc
	}
	if v, ok := def["Default"]; ok {
		param.Default = v
	}
	if vals, ok := def["AllowedValues"].([]any); ok {
		param.AllowedValues = vals
	}
	if pattern, ok := def["AllowedPattern"].(string); ok {
		param.AllowedPattern = pattern
	}
	if noEcho, ok := def["NoEcho"].(bool); ok {
		param.NoEcho = noEcho
	}

	return param
}

// buildOutput converts a declared output value to the template Outputs
// entry via its JSON form.
func buildOutput(value any) (infra.Output, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return infra.Output{}, err
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return infra.Output{}, err
	}

	out := infra.Output{}
	if desc, ok := m["Description"].(string); ok {
		out.Description = desc
	}
	if v, ok := m["Value"]; ok {
		out.Value = v
	}
	if exp, ok := m["Export"].(map[string]any); ok {
		if name, ok := exp["Name"].(string); ok {
			out.Export = &struct {
				Name string `json:"Name" yaml:"Name"`
			}{Name: name}
		}
	}
	return out, nil
}

// topologicalSort returns resources in dependency order. Ties break
// alphabetically so the template is deterministic.
func (b *Builder) topologicalSort() ([]string, error) {
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range b.discovery.Resources {
		graph[name] = nil
		inDegree[name] = 0
	}

	addEdge := func(from, to string) {
		graph[from] = append(graph[from], to)
		inDegree[to]++
	}

	for name, res := range b.discovery.Resources {
		for _, dep := range res.Dependencies {
			if _, exists := b.discovery.Resources[dep]; exists {
				addEdge(dep, name)
			}
		}
		// Explicit DependsOn edges participate in ordering too.
		if o, ok := b.overrides[name]; ok {
			for _, dep := range o.DependsOn {
				if _, exists := b.discovery.Resources[dep]; exists {
					addEdge(dep, name)
				}
			}
		}
	}

	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range graph[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(b.discovery.Resources) {
		return nil, b.detectCycle()
	}

	return result, nil
}

// detectCycle reports the dependency cycle that blocked the sort.
func (b *Builder) detectCycle() error {
	visited := make(map[string]bool)
	path := make(map[string]bool)

	var cycle []string
	var findCycle func(node string) bool
	findCycle = func(node string) bool {
		visited[node] = true
		path[node] = true

		for _, dep := range b.discovery.Resources[node].Dependencies {
			if _, exists := b.discovery.Resources[dep]; !exists {
				continue
			}
			if !visited[dep] {
				if findCycle(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	for name := range b.discovery.Resources {
		if !visited[name] {
			if findCycle(name) {
				break
			}
		}
	}

	if len(cycle) > 0 {
		msg := "circular dependency detected:\n"
		for i, name := range cycle {
			res := b.discovery.Resources[name]
			msg += fmt.Sprintf("  %s (%s:%d)", name, res.File, res.Line)
			if i < len(cycle)-1 {
				msg += "\n    -> "
			}
		}
		return errors.New(msg)
	}

	return errors.New("circular dependency detected")
}

// cfResourceType converts a Go type like "lambda.Function" to the
// CloudFormation type "AWS::Lambda::Function".
func cfResourceType(goType string) string {
	pkgName, typeName, ok := strings.Cut(goType, ".")
	if !ok {
		return ""
	}

	service, ok := cfServices[pkgName]
	if !ok {
		return ""
	}

	return "AWS::" + service + "::" + typeName
}

// ToJSON serializes the template to indented JSON.
func ToJSON(t *infra.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML.
func ToYAML(t *infra.Template) ([]byte, error) {
	return yaml.Marshal(t)
}
