// Package differ compares two synthesized CloudFormation templates at
// the resource level. It reports resources that were added, removed, or
// modified between template versions, which is how stack changes are
// reviewed before a deploy.
package differ

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"

	infra "github.com/meritpath/infra"
)

// Options configures the comparison.
type Options struct {
	// IgnoreOrder treats array elements as unordered. Useful for
	// DependsOn lists and policy statements where order carries no
	// meaning.
	IgnoreOrder bool
}

// Result holds the resource-level diff and its summary counts.
type Result struct {
	Diff    infra.TemplateDiff
	Summary infra.DiffSummary
}

// Compare diffs two templates. The first argument is treated as the
// old version, the second as the new one.
func Compare(oldTmpl, newTmpl *infra.Template, opts Options) (*Result, error) {
	result := &Result{}

	oldRes := oldTmpl.Resources
	newRes := newTmpl.Resources

	for name, def := range newRes {
		if _, exists := oldRes[name]; !exists {
			result.Diff.Added = append(result.Diff.Added, infra.DiffEntry{
				Resource: name,
				Type:     def.Type,
			})
		}
	}

	for name, def := range oldRes {
		if _, exists := newRes[name]; !exists {
			result.Diff.Removed = append(result.Diff.Removed, infra.DiffEntry{
				Resource: name,
				Type:     def.Type,
			})
		}
	}

	for name, oldDef := range oldRes {
		newDef, exists := newRes[name]
		if !exists {
			continue
		}
		changes := compareResources(oldDef, newDef, opts)
		if len(changes) > 0 {
			result.Diff.Modified = append(result.Diff.Modified, infra.DiffEntry{
				Resource: name,
				Type:     oldDef.Type,
				Changes:  changes,
			})
		}
	}

	sortEntries(result.Diff.Added)
	sortEntries(result.Diff.Removed)
	sortEntries(result.Diff.Modified)

	result.Summary = infra.DiffSummary{
		Added:    len(result.Diff.Added),
		Removed:  len(result.Diff.Removed),
		Modified: len(result.Diff.Modified),
	}
	result.Summary.Total = result.Summary.Added + result.Summary.Removed + result.Summary.Modified

	return result, nil
}

// CompareFiles loads two template files and diffs them.
func CompareFiles(oldPath, newPath string, opts Options) (*Result, error) {
	oldTmpl, err := LoadTemplate(oldPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", oldPath, err)
	}

	newTmpl, err := LoadTemplate(newPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", newPath, err)
	}

	return Compare(oldTmpl, newTmpl, opts)
}

// LoadTemplate reads a CloudFormation template from disk, accepting
// either JSON or YAML.
func LoadTemplate(path string) (*infra.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tmpl infra.Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			return nil, fmt.Errorf("parsing %s as JSON or YAML: %w", path, err)
		}
	}

	return &tmpl, nil
}

func compareResources(oldDef, newDef infra.ResourceDef, opts Options) []string {
	var changes []string

	if oldDef.Type != newDef.Type {
		changes = append(changes, fmt.Sprintf("Type changed: %s -> %s", oldDef.Type, newDef.Type))
	}

	changes = append(changes, compareProperties("", oldDef.Properties, newDef.Properties, opts)...)

	if !equalDependsOn(oldDef.DependsOn, newDef.DependsOn, opts) {
		changes = append(changes, "DependsOn changed")
	}

	if oldDef.DeletionPolicy != newDef.DeletionPolicy {
		changes = append(changes, fmt.Sprintf("DeletionPolicy changed: %q -> %q", oldDef.DeletionPolicy, newDef.DeletionPolicy))
	}

	return changes
}

func compareProperties(prefix string, oldProps, newProps map[string]any, opts Options) []string {
	var changes []string

	join := func(key string) string {
		if prefix == "" {
			return key
		}
		return prefix + "." + key
	}

	for key, newVal := range newProps {
		oldVal, exists := oldProps[key]
		if !exists {
			changes = append(changes, join(key)+" added")
			continue
		}

		// Descend into nested maps so the report names the deepest
		// changed property instead of the top-level one.
		oldMap, oldIsMap := oldVal.(map[string]any)
		newMap, newIsMap := newVal.(map[string]any)
		if oldIsMap && newIsMap {
			changes = append(changes, compareProperties(join(key), oldMap, newMap, opts)...)
			continue
		}

		if !deepEqual(oldVal, newVal, opts) {
			changes = append(changes, join(key)+" modified")
		}
	}

	for key := range oldProps {
		if _, exists := newProps[key]; !exists {
			changes = append(changes, join(key)+" removed")
		}
	}

	sort.Strings(changes)
	return changes
}

func deepEqual(a, b any, opts Options) bool {
	if opts.IgnoreOrder {
		a = normalize(a)
		b = normalize(b)
	}
	return reflect.DeepEqual(a, b)
}

// normalize rewrites slices into an order-independent form for
// comparison. Elements are keyed by their JSON encoding and sorted.
func normalize(v any) any {
	switch val := v.(type) {
	case []any:
		keys := make([]string, 0, len(val))
		byKey := make(map[string]any, len(val))
		for _, elem := range val {
			elem = normalize(elem)
			data, err := json.Marshal(elem)
			if err != nil {
				return v
			}
			keys = append(keys, string(data))
			byKey[string(data)] = elem
		}
		sort.Strings(keys)
		result := make([]any, 0, len(val))
		for _, k := range keys {
			result = append(result, byKey[k])
		}
		return result
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, elem := range val {
			result[k] = normalize(elem)
		}
		return result
	default:
		return v
	}
}

func equalDependsOn(a, b []string, opts Options) bool {
	if len(a) != len(b) {
		return false
	}
	if opts.IgnoreOrder {
		a = append([]string(nil), a...)
		b = append([]string(nil), b...)
		sort.Strings(a)
		sort.Strings(b)
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortEntries(entries []infra.DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Resource < entries[j].Resource
	})
}
