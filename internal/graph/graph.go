// Package graph renders the stack's dependency graph in DOT or Mermaid
// format. Useful for eyeballing the creation order, in particular the
// explicit stage-to-account and deployment-to-method edges.
package graph

import (
	"io"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	infra "github.com/meritpath/infra"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator renders dependency graphs from discovered resources.
type Generator struct {
	// IncludeParameters includes parameter references in the graph.
	IncludeParameters bool

	// Format specifies the output format. Defaults to dot.
	Format Format

	// Overrides adds the explicit DependsOn edges, drawn dashed to
	// distinguish them from property references.
	Overrides map[string]infra.ResourceOverride
}

// Generate renders the dependency graph to w.
func (g *Generator) Generate(resources map[string]infra.DiscoveredResource, parameters map[string]infra.DiscoveredParameter, w io.Writer) error {
	graph := g.buildGraph(resources, parameters)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString renders the graph as a string.
func (g *Generator) GenerateString(resources map[string]infra.DiscoveredResource, parameters map[string]infra.DiscoveredParameter) (string, error) {
	var sb strings.Builder
	if err := g.Generate(resources, parameters, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (g *Generator) buildGraph(resources map[string]infra.DiscoveredResource, parameters map[string]infra.DiscoveredParameter) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})

	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	getAttRefs := buildGetAttSet(resources)

	// Sorted node order keeps the rendered output stable across runs.
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		n := graph.Node(name)
		n.Label(name + "\\n[" + cfTypeLabel(resources[name].Type) + "]")
	}

	if g.IncludeParameters && parameters != nil {
		paramNames := make([]string, 0, len(parameters))
		for name := range parameters {
			paramNames = append(paramNames, name)
		}
		sort.Strings(paramNames)
		for _, name := range paramNames {
			n := graph.Node(name)
			n.Attr("shape", "ellipse")
			n.Attr("style", "dashed")
			n.Label(name)
		}
	}

	for _, name := range names {
		res := resources[name]
		for _, dep := range res.Dependencies {
			if _, isParam := parameters[dep]; isParam && !g.IncludeParameters {
				continue
			}
			_, isResource := resources[dep]
			_, isParam := parameters[dep]
			if !isResource && !isParam {
				continue
			}

			e := graph.Edge(graph.Node(name), graph.Node(dep))
			if getAttRefs[name+"->"+dep] {
				e.Attr("color", "blue")
			}
		}

		if o, ok := g.Overrides[name]; ok {
			for _, dep := range o.DependsOn {
				if _, isResource := resources[dep]; !isResource {
					continue
				}
				e := graph.Edge(graph.Node(name), graph.Node(dep))
				e.Attr("style", "dashed")
				e.Label("DependsOn")
			}
		}
	}

	return graph
}

// buildGetAttSet collects the edges that come from attribute references.
func buildGetAttSet(resources map[string]infra.DiscoveredResource) map[string]bool {
	getAttRefs := make(map[string]bool)
	for name, res := range resources {
		for _, usage := range res.AttrRefUsages {
			getAttRefs[name+"->"+usage.ResourceName] = true
		}
	}
	return getAttRefs
}

// cfTypeLabel converts a Go type to a CloudFormation-style node label.
func cfTypeLabel(goType string) string {
	labels := map[string]string{
		"apigateway": "ApiGateway",
		"iam":        "IAM",
		"lambda":     "Lambda",
		"logs":       "Logs",
	}

	pkgName, typeName, ok := strings.Cut(goType, ".")
	if !ok {
		return goType
	}
	service, ok := labels[pkgName]
	if !ok {
		return goType
	}
	return "AWS::" + service + "::" + typeName
}
