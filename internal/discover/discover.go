// Package discover finds the stack's resource declarations by parsing
// Go source.
//
// A declaration is a package-level var holding a composite literal of a
// resource type:
//
//	var AccessLogGroup = logs.LogGroup{...}
//
// Discovery records each resource's dependencies (plain references to
// other declared vars), its attribute references (EvaluateFunctionRole.Arn
// style selectors, which become Fn::GetAtt), and the field paths both
// appear at, so the template builder can splice the right intrinsic into
// the serialized properties.
package discover

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	infra "github.com/meritpath/infra"
)

// knownResourcePackages maps resource package names to CloudFormation
// service prefixes. Only the services the evaluation stack declares are
// shipped; adding a service means adding its resource package and one
// entry here.
var knownResourcePackages = map[string]string{
	"apigateway": "AWS::ApiGateway",
	"iam":        "AWS::IAM",
	"lambda":     "AWS::Lambda",
	"logs":       "AWS::Logs",
}

// Options configures the discovery process.
type Options struct {
	// Packages to scan (e.g., "./stack/...")
	Packages []string
	// Verbose enables debug output
	Verbose bool
}

// Result contains all discovered declarations and any errors.
type Result struct {
	// Resources maps logical name to discovered resource
	Resources map[string]infra.DiscoveredResource
	// Parameters maps logical name to discovered parameter
	Parameters map[string]infra.DiscoveredParameter
	// Outputs maps logical name to discovered output
	Outputs map[string]infra.DiscoveredOutput
	// AllVars tracks every package-level var, resource or not, so a
	// reference to a property var is not flagged as undefined
	AllVars map[string]bool
	// VarAttrRefs tracks attribute and variable references per var,
	// property vars included, for recursive field-path resolution
	VarAttrRefs map[string]VarRefInfo
	// Errors encountered during parsing
	Errors []error
}

// VarRefInfo tracks the references found inside a single var declaration.
type VarRefInfo struct {
	AttrRefs []infra.AttrRefUsage
	// VarRefs maps field path to referenced variable name
	VarRefs map[string]string
}

// Discover scans Go packages for resource declarations.
func Discover(opts Options) (*Result, error) {
	result := &Result{
		Resources:   make(map[string]infra.DiscoveredResource),
		Parameters:  make(map[string]infra.DiscoveredParameter),
		Outputs:     make(map[string]infra.DiscoveredOutput),
		AllVars:     make(map[string]bool),
		VarAttrRefs: make(map[string]VarRefInfo),
	}

	for _, pkg := range opts.Packages {
		if err := discoverPackage(pkg, result, opts); err != nil {
			return nil, fmt.Errorf("discovering %s: %w", pkg, err)
		}
	}

	// Every dependency must resolve to a declared var. A typo in a
	// reference surfaces here instead of as a broken template.
	for name, res := range result.Resources {
		for _, dep := range res.Dependencies {
			if _, ok := result.Resources[dep]; ok {
				continue
			}
			if result.AllVars[dep] {
				continue
			}
			result.Errors = append(result.Errors, fmt.Errorf(
				"%s:%d: %s references undefined resource %q",
				res.File, res.Line, name, dep,
			))
		}
	}

	return result, nil
}

func discoverPackage(pattern string, result *Result, opts Options) error {
	pattern = strings.TrimSuffix(pattern, "/...")
	recursive := strings.HasSuffix(pattern, "...")
	if recursive {
		pattern = strings.TrimSuffix(pattern, "...")
	}

	absPath, err := filepath.Abs(pattern)
	if err != nil {
		return err
	}

	if recursive {
		return filepath.Walk(absPath, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return discoverDir(path, result, opts)
			}
			return nil
		})
	}

	return discoverDir(absPath, result, opts)
}

func discoverDir(dir string, result *Result, opts Options) error {
	fset := token.NewFileSet()

	pkgs, err := parser.ParseDir(fset, dir, func(fi os.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}, parser.ParseComments)
	if err != nil {
		// Directory might not contain Go files
		if os.IsNotExist(err) || strings.Contains(err.Error(), "no Go files") {
			return nil
		}
		return err
	}

	for _, pkg := range pkgs {
		for filename, file := range pkg.Files {
			discoverFile(fset, filename, file, result)
		}
	}

	return nil
}

func discoverFile(fset *token.FileSet, filename string, file *ast.File, result *Result) {
	// Build import map: alias -> package path
	imports := make(map[string]string)
	for _, imp := range file.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		var name string
		if imp.Name != nil {
			name = imp.Name.Name
		} else {
			parts := strings.Split(path, "/")
			name = parts[len(parts)-1]
		}
		imports[name] = path
	}

	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.VAR {
			continue
		}

		for _, spec := range genDecl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok || len(valueSpec.Names) != 1 || len(valueSpec.Values) != 1 {
				continue
			}

			name := valueSpec.Names[0].Name
			value := valueSpec.Values[0]

			if name == "_" {
				continue
			}

			result.AllVars[name] = true

			compLit, ok := value.(*ast.CompositeLit)
			if !ok {
				continue
			}

			typeName, pkgName := extractTypeName(compLit.Type)
			if typeName == "" {
				continue
			}

			pos := fset.Position(valueSpec.Pos())

			if isIntrinsicPackage(pkgName, imports) || pkgName == "" {
				switch typeName {
				case "Parameter":
					result.Parameters[name] = infra.DiscoveredParameter{
						Name: name,
						File: filename,
						Line: pos.Line,
					}
					continue
				case "Output":
					_, attrRefs := extractReferences(compLit, imports)
					result.Outputs[name] = infra.DiscoveredOutput{
						Name:          name,
						File:          filename,
						Line:          pos.Line,
						AttrRefUsages: attrRefs,
					}
					continue
				}
			}

			// Record references for every composite literal so the
			// builder can resolve through property vars.
			deps, attrRefs, varRefs := extractReferencesWithVarRefs(compLit, imports)
			result.VarAttrRefs[name] = VarRefInfo{
				AttrRefs: attrRefs,
				VarRefs:  varRefs,
			}

			if _, known := knownResourcePackages[pkgName]; !known {
				continue
			}

			// Property types (Method_Integration, Role_Policy, ...) are
			// nested values, not resources.
			if strings.Contains(typeName, "_") {
				continue
			}

			result.Resources[name] = infra.DiscoveredResource{
				Name:          name,
				Type:          fmt.Sprintf("%s.%s", pkgName, typeName),
				Package:       file.Name.Name,
				File:          filename,
				Line:          pos.Line,
				Dependencies:  deps,
				AttrRefUsages: attrRefs,
			}
		}
	}
}

// isIntrinsicPackage checks if the package is the intrinsics package.
func isIntrinsicPackage(pkgName string, imports map[string]string) bool {
	if pkgName == "" {
		for alias, path := range imports {
			if alias == "." && strings.HasSuffix(path, "/intrinsics") {
				return true
			}
		}
		return false
	}
	if pkgName == "intrinsics" {
		return true
	}
	if path, ok := imports[pkgName]; ok {
		return strings.HasSuffix(path, "/intrinsics")
	}
	return false
}

// extractTypeName extracts the type name and package from a type
// expression. For lambda.Function, returns ("Function", "lambda").
func extractTypeName(expr ast.Expr) (typeName, pkgName string) {
	switch t := expr.(type) {
	case *ast.SelectorExpr:
		if ident, ok := t.X.(*ast.Ident); ok {
			return t.Sel.Name, ident.Name
		}
	case *ast.Ident:
		return t.Name, ""
	}
	return "", ""
}

// extractReferences finds references to other declarations in composite
// literal fields:
//   - EvaluateApi (identifier, becomes Ref)
//   - EvaluateFunctionRole.Arn (selector, becomes Fn::GetAtt)
func extractReferences(lit *ast.CompositeLit, imports map[string]string) ([]string, []infra.AttrRefUsage) {
	deps, attrRefs, _ := extractReferencesWithVarRefs(lit, imports)
	return deps, attrRefs
}

// extractReferencesWithVarRefs also returns plain variable references
// keyed by field path, for recursive resolution through property vars.
func extractReferencesWithVarRefs(lit *ast.CompositeLit, imports map[string]string) ([]string, []infra.AttrRefUsage, map[string]string) {
	var deps []string
	var attrRefs []infra.AttrRefUsage
	varRefs := make(map[string]string) // field path -> var name
	seen := make(map[string]bool)

	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}

		fieldName := ""
		if ident, ok := kv.Key.(*ast.Ident); ok {
			fieldName = ident.Name
		}

		findRefs(kv.Value, &deps, &attrRefs, varRefs, seen, imports, fieldName)
	}

	return deps, attrRefs, varRefs
}

func findRefs(expr ast.Expr, deps *[]string, attrRefs *[]infra.AttrRefUsage, varRefs map[string]string, seen map[string]bool, imports map[string]string, fieldPath string) {
	switch v := expr.(type) {
	case *ast.Ident:
		name := v.Name
		if _, isImport := imports[name]; isImport {
			return
		}
		if isCommonIdent(name) {
			return
		}
		// Exported identifier = reference to another declaration.
		// Lowercase vars (the config struct) are synthesis inputs, not
		// template entities.
		if len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z' {
			if !seen[name] {
				*deps = append(*deps, name)
				seen[name] = true
			}
			if varRefs != nil && fieldPath != "" {
				varRefs[fieldPath] = name
			}
		}

	case *ast.SelectorExpr:
		if ident, ok := v.X.(*ast.Ident); ok {
			name := ident.Name
			if _, isImport := imports[name]; isImport {
				return
			}
			// Declaration.Attribute (e.g., EvaluateFunctionRole.Arn)
			if len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z' {
				if !seen[name] {
					*deps = append(*deps, name)
					seen[name] = true
				}
				*attrRefs = append(*attrRefs, infra.AttrRefUsage{
					ResourceName: name,
					Attribute:    v.Sel.Name,
					FieldPath:    fieldPath,
				})
			}
		}

	case *ast.CompositeLit:
		for _, elt := range v.Elts {
			if kv, ok := elt.(*ast.KeyValueExpr); ok {
				nestedPath := fieldPath
				if ident, ok := kv.Key.(*ast.Ident); ok {
					if fieldPath != "" {
						nestedPath = fieldPath + "." + ident.Name
					} else {
						nestedPath = ident.Name
					}
				}
				findRefs(kv.Value, deps, attrRefs, varRefs, seen, imports, nestedPath)
			} else {
				findRefs(elt, deps, attrRefs, varRefs, seen, imports, fieldPath)
			}
		}

	case *ast.UnaryExpr:
		findRefs(v.X, deps, attrRefs, varRefs, seen, imports, fieldPath)

	case *ast.CallExpr:
		for _, arg := range v.Args {
			findRefs(arg, deps, attrRefs, varRefs, seen, imports, fieldPath)
		}

	case *ast.BinaryExpr:
		findRefs(v.X, deps, attrRefs, varRefs, seen, imports, fieldPath)
		findRefs(v.Y, deps, attrRefs, varRefs, seen, imports, fieldPath)

	case *ast.SliceExpr:
		findRefs(v.X, deps, attrRefs, varRefs, seen, imports, fieldPath)

	case *ast.IndexExpr:
		findRefs(v.X, deps, attrRefs, varRefs, seen, imports, fieldPath)
		findRefs(v.Index, deps, attrRefs, varRefs, seen, imports, fieldPath)
	}
}

// ResolveAttrRefs collects all attribute references for a variable,
// following its references through property vars and prefixing field
// paths along the way.
func (r *Result) ResolveAttrRefs(varName string) []infra.AttrRefUsage {
	visited := make(map[string]bool)
	return r.resolveAttrRefs(varName, "", visited)
}

func (r *Result) resolveAttrRefs(varName, pathPrefix string, visited map[string]bool) []infra.AttrRefUsage {
	if visited[varName] {
		return nil
	}
	visited[varName] = true

	info, ok := r.VarAttrRefs[varName]
	if !ok {
		return nil
	}

	var result []infra.AttrRefUsage

	for _, ref := range info.AttrRefs {
		fullPath := ref.FieldPath
		if pathPrefix != "" {
			fullPath = pathPrefix + "." + ref.FieldPath
		}
		result = append(result, infra.AttrRefUsage{
			ResourceName: ref.ResourceName,
			Attribute:    ref.Attribute,
			FieldPath:    fullPath,
		})
	}

	for fieldPath, refVarName := range info.VarRefs {
		fullPath := fieldPath
		if pathPrefix != "" {
			fullPath = pathPrefix + "." + fieldPath
		}
		nested := r.resolveAttrRefs(refVarName, fullPath, visited)
		result = append(result, nested...)
	}

	return result
}

// isCommonIdent returns true for identifiers that are never declaration
// references: built-ins, intrinsic type names, pseudo-parameter
// constants, and the policy helpers.
func isCommonIdent(name string) bool {
	common := map[string]bool{
		// Go built-ins
		"true": true, "false": true, "nil": true,
		"string": true, "int": true, "bool": true, "float64": true,
		"any": true, "error": true,

		// Intrinsic types and helpers
		"Ref": true, "Sub": true, "SubWithMap": true, "Join": true,
		"GetAtt": true, "Json": true, "Parameter": true, "Output": true,
		"PolicyDocument": true, "PolicyStatement": true,
		"PolicyVersion": true, "ServicePrincipal": true,
		"AWSPrincipal": true,

		// Pseudo-parameter constants
		"AWS_ACCOUNT_ID": true, "AWS_PARTITION": true,
		"AWS_REGION": true, "AWS_STACK_NAME": true,
		"AWS_URL_SUFFIX": true,
	}
	return common[name]
}
