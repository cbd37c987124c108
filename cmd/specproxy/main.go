// cmd/specproxy/main.go
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"go/types"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// This binary generates forwarding proxies for specification interfaces.
//
// Key behaviors:
// - Reads a proxy spec (JSON or YAML): package, interface, optional proxy name and source file
// - Locates the source file declaring the interface (explicit, else the owner file with the
//   go:generate directive invoking cmd/specproxy, else any file in the package declaring it)
// - Collects the interface's method set, expanding embedded interfaces of the same package
//   and the well-known fixture.Specification
// - Keeps only the imports the method signatures reference, plus the inject runtime
// - Writes gofmt'ed output atomically (temp file + rename)

const (
	defaultRuntimeImport = "github.com/sghaida/magenta/inject"
	runtimeAlias         = "inject"
	receiverName         = "p"
)

// knownInterfaces lists methods of interfaces declared outside the generated package.
// The key is the qualified name as it appears in source (package identifier + type).
var knownInterfaces = map[string][]Method{
	"fixture.Specification": {
		{Name: "DefaultNumberOfItems", Results: []string{"int"}},
	},
}

// Spec is the full input schema consumed by the generator.
type Spec struct {
	// Package is the package clause of the generated file.
	Package string `json:"package" yaml:"package"`

	// Interface is the capability interface to proxy.
	Interface string `json:"interface" yaml:"interface"`

	// ProxyName defaults to <Interface>Proxy.
	ProxyName string `json:"proxyName" yaml:"proxyName"`

	// Source is the Go file declaring Interface, relative to the output directory.
	Source string `json:"source" yaml:"source"`

	// RuntimeImport overrides the import path of the inject package.
	RuntimeImport string `json:"runtimeImport" yaml:"runtimeImport"`
}

// Method is one forwarded interface method.
type Method struct {
	Name    string
	Params  []Param
	Results []string
}

// Param is one method parameter.
type Param struct {
	Name     string
	Type     string
	Variadic bool
}

// ImportSpec models one Go import: optional alias and full import path.
type ImportSpec struct {
	Alias string
	Path  string
}

// templateData is the input passed to the Go template.
type templateData struct {
	Spec         Spec
	ImportsList  []ImportSpec
	Methods      []Method
	RuntimeIdent string
}

// run executes the generator logic and returns an exit code.
// It exists separately from main to allow unit testing without os.Exit.
func run(args []string, stderr io.Writer) (code int) {
	flags := flag.NewFlagSet("specproxy", flag.ContinueOnError)
	flags.SetOutput(stderr)

	specPath := flags.String("spec", "", "path to <name>.proxy.json or .proxy.yaml")
	outPath := flags.String("out", "", "output .gen.go file path")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if strings.TrimSpace(*specPath) == "" || strings.TrimSpace(*outPath) == "" {
		_, _ = fmt.Fprintln(stderr, "usage: specproxy -spec <file.proxy.json|yaml> -out <file.gen.go>")
		return 2
	}

	defer func() {
		if rec := recover(); rec != nil {
			_, _ = fmt.Fprintln(stderr, "specproxy:", rec)
			code = 1
		}
	}()

	spec := readSpec(*specPath)
	validateSpec(&spec)

	if strings.TrimSpace(spec.ProxyName) == "" {
		spec.ProxyName = spec.Interface + "Proxy"
	}
	if strings.TrimSpace(spec.RuntimeImport) == "" {
		spec.RuntimeImport = defaultRuntimeImport
	}

	generatedFilePath := filepath.Clean(*outPath)
	packageDir := filepath.Dir(generatedFilePath)

	sourcePath, err := locateSource(&spec, packageDir)
	must(err)

	methods, usedImports, err := collectInterface(sourcePath, spec.Interface)
	must(err)

	data := templateData{
		Spec:         spec,
		Methods:      methods,
		ImportsList:  resolveImports(usedImports, spec.RuntimeImport),
		RuntimeIdent: runtimeAlias,
	}

	var out bytes.Buffer
	must(genTemplate.Execute(&out, data))

	src, err := format.Source(out.Bytes())
	if err != nil {
		panic(fmt.Errorf("generated code does not parse: %w", err))
	}

	must(writeFileAtomic(generatedFilePath, src, 0o644))
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// readSpec decodes the spec as YAML for .yaml/.yml files and JSON otherwise.
func readSpec(specPath string) Spec {
	specBytes, err := os.ReadFile(specPath)
	must(err)

	var spec Spec
	switch strings.ToLower(filepath.Ext(specPath)) {
	case ".yaml", ".yml":
		must(yaml.Unmarshal(specBytes, &spec))
	default:
		must(json.Unmarshal(specBytes, &spec))
	}
	return spec
}

// validateSpec validates semantic correctness of the input specification.
func validateSpec(spec *Spec) {
	var missingFields []string

	requireNonEmpty := func(fieldName, value string) {
		if strings.TrimSpace(value) == "" {
			missingFields = append(missingFields, fieldName)
		}
	}

	requireNonEmpty("package", spec.Package)
	requireNonEmpty("interface", spec.Interface)

	if len(missingFields) > 0 {
		panic(fmt.Errorf("spec missing required fields: %v", missingFields))
	}

	for _, name := range []string{spec.Interface, spec.ProxyName} {
		if name != "" && !token.IsIdentifier(name) {
			panic(fmt.Errorf("not a Go identifier: %q", name))
		}
	}
	if spec.ProxyName != "" && spec.ProxyName == spec.Interface {
		panic(fmt.Errorf("proxyName must differ from interface: %q", spec.ProxyName))
	}
}

// locateSource returns the file declaring the interface.
func locateSource(spec *Spec, packageDir string) (string, error) {
	if strings.TrimSpace(spec.Source) != "" {
		p := spec.Source
		if !filepath.IsAbs(p) {
			p = filepath.Join(packageDir, p)
		}
		return p, nil
	}

	if owner, err := findOwnerGoGenerateFile(packageDir); err == nil && declaresType(owner, spec.Interface) {
		return owner, nil
	}

	for _, p := range packageGoFiles(packageDir) {
		if declaresType(p, spec.Interface) {
			return p, nil
		}
	}
	return "", fmt.Errorf("interface %s not declared in %s", spec.Interface, packageDir)
}

// packageGoFiles lists non-test, non-generated Go files in dir, sorted.
func packageGoFiles(dir string) []string {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var files []string
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		fileName := entry.Name()
		if !strings.HasSuffix(fileName, ".go") ||
			strings.HasSuffix(fileName, "_test.go") ||
			strings.HasSuffix(fileName, ".gen.go") {
			continue
		}
		files = append(files, filepath.Join(dir, fileName))
	}
	sort.Strings(files)
	return files
}

// findOwnerGoGenerateFile finds the Go source file in packageDir that contains a go:generate
// directive invoking cmd/specproxy.
func findOwnerGoGenerateFile(packageDir string) (string, error) {
	for _, filePath := range packageGoFiles(packageDir) {
		fileBytes, err := os.ReadFile(filePath)
		if err != nil {
			// Best-effort: unreadable file shouldn’t break generation.
			continue
		}
		if bytes.Contains(fileBytes, []byte("go:generate")) && bytes.Contains(fileBytes, []byte("cmd/specproxy")) {
			return filePath, nil
		}
	}
	return "", fmt.Errorf("could not find owner file with go:generate invoking cmd/specproxy in %s", packageDir)
}

// declaresType reports whether the file at p declares a type named name.
func declaresType(p, name string) bool {
	parsedFile, err := parser.ParseFile(token.NewFileSet(), p, nil, parser.SkipObjectResolution)
	if err != nil {
		return false
	}
	_, ok := findInterface(parsedFile, name)
	return ok
}

// findInterface returns the interface type declared as name in file.
func findInterface(file *ast.File, name string) (*ast.InterfaceType, bool) {
	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, s := range genDecl.Specs {
			typeSpec, ok := s.(*ast.TypeSpec)
			if !ok || typeSpec.Name.Name != name {
				continue
			}
			iface, ok := typeSpec.Type.(*ast.InterfaceType)
			return iface, ok
		}
	}
	return nil, false
}

// fileImports maps the identifier each import binds in file to its spec.
func fileImports(file *ast.File) map[string]ImportSpec {
	out := make(map[string]ImportSpec, len(file.Imports))
	for _, importDecl := range file.Imports {
		importPath, err := strconv.Unquote(importDecl.Path.Value)
		if err != nil {
			continue
		}
		spec := ImportSpec{Path: importPath}
		ident := importDefaultIdent(importPath)
		if importDecl.Name != nil {
			spec.Alias = importDecl.Name.Name
			ident = importDecl.Name.Name
		}
		if ident == "_" || ident == "." {
			continue
		}
		out[ident] = spec
	}
	return out
}

func importDefaultIdent(importPath string) string {
	// Import paths always use forward slashes, even on Windows.
	return path.Base(strings.TrimSpace(importPath))
}

// collector gathers methods and referenced imports across embedded interfaces.
type collector struct {
	fset     *token.FileSet
	dir      string
	methods  []Method
	seen     map[string]bool
	visiting map[string]bool
	imports  map[string]ImportSpec
}

// collectInterface returns the flattened method set of name declared in sourcePath,
// plus the imports its signatures reference.
func collectInterface(sourcePath, name string) ([]Method, []ImportSpec, error) {
	c := &collector{
		fset:     token.NewFileSet(),
		dir:      filepath.Dir(sourcePath),
		seen:     map[string]bool{},
		visiting: map[string]bool{},
		imports:  map[string]ImportSpec{},
	}

	parsedFile, err := parser.ParseFile(c.fset, sourcePath, nil, parser.SkipObjectResolution)
	if err != nil {
		return nil, nil, err
	}
	if err := c.addInterface(parsedFile, name); err != nil {
		return nil, nil, err
	}
	if len(c.methods) == 0 {
		return nil, nil, fmt.Errorf("interface %s has no methods", name)
	}

	imports := make([]ImportSpec, 0, len(c.imports))
	for _, imp := range c.imports {
		imports = append(imports, imp)
	}
	sort.Slice(imports, func(i, j int) bool { return imports[i].Path < imports[j].Path })
	return c.methods, imports, nil
}

func (c *collector) addInterface(file *ast.File, name string) error {
	if c.visiting[name] {
		return fmt.Errorf("interface %s embeds itself", name)
	}
	c.visiting[name] = true
	defer delete(c.visiting, name)

	iface, ok := findInterface(file, name)
	if !ok {
		return fmt.Errorf("interface %s not found in %s", name, c.fset.Position(file.Pos()).Filename)
	}
	imports := fileImports(file)

	for _, field := range iface.Methods.List {
		switch t := field.Type.(type) {
		case *ast.FuncType:
			if t.TypeParams != nil {
				return fmt.Errorf("method %s: type parameters are not supported", field.Names[0].Name)
			}
			for _, n := range field.Names {
				if err := c.addMethod(n.Name, t, imports); err != nil {
					return err
				}
			}
		case *ast.Ident:
			if err := c.addLocalEmbedded(t.Name); err != nil {
				return err
			}
		case *ast.SelectorExpr:
			qualified := types.ExprString(t)
			known, ok := knownInterfaces[qualified]
			if !ok {
				return fmt.Errorf("embedded interface %s is declared in another package; list its methods explicitly", qualified)
			}
			for _, m := range known {
				c.addKnown(m)
			}
		default:
			return fmt.Errorf("interface %s: unsupported element %s", name, types.ExprString(field.Type))
		}
	}
	return nil
}

// addLocalEmbedded expands an embedded interface declared in the same package.
func (c *collector) addLocalEmbedded(name string) error {
	for _, p := range packageGoFiles(c.dir) {
		parsedFile, err := parser.ParseFile(c.fset, p, nil, parser.SkipObjectResolution)
		if err != nil {
			continue
		}
		if _, ok := findInterface(parsedFile, name); ok {
			return c.addInterface(parsedFile, name)
		}
	}
	return fmt.Errorf("embedded interface %s not found in %s", name, c.dir)
}

func (c *collector) addKnown(m Method) {
	if c.seen[m.Name] {
		return
	}
	c.seen[m.Name] = true
	c.methods = append(c.methods, m)
}

func (c *collector) addMethod(name string, fn *ast.FuncType, imports map[string]ImportSpec) error {
	if c.seen[name] {
		return nil
	}
	c.seen[name] = true

	if err := c.useImports(fn, imports); err != nil {
		return fmt.Errorf("method %s: %w", name, err)
	}

	m := Method{Name: name}
	idx := 0
	if fn.Params != nil {
		for _, field := range fn.Params.List {
			typ := field.Type
			variadic := false
			if ellipsis, ok := typ.(*ast.Ellipsis); ok {
				variadic = true
				typ = ellipsis.Elt
			}
			typeStr := types.ExprString(typ)

			names := field.Names
			if len(names) == 0 {
				names = []*ast.Ident{nil}
			}
			for _, n := range names {
				paramName := ""
				if n != nil {
					paramName = n.Name
				}
				if paramName == "" || paramName == "_" || paramName == receiverName {
					paramName = "a" + strconv.Itoa(idx)
				}
				m.Params = append(m.Params, Param{Name: paramName, Type: typeStr, Variadic: variadic})
				idx++
			}
		}
	}
	if fn.Results != nil {
		for _, field := range fn.Results.List {
			typeStr := types.ExprString(field.Type)
			count := len(field.Names)
			if count == 0 {
				count = 1
			}
			for i := 0; i < count; i++ {
				m.Results = append(m.Results, typeStr)
			}
		}
	}

	c.methods = append(c.methods, m)
	return nil
}

// useImports records the imports referenced by package qualifiers in fn.
func (c *collector) useImports(fn *ast.FuncType, imports map[string]ImportSpec) error {
	var missing string
	ast.Inspect(fn, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		pkg, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		imp, ok := imports[pkg.Name]
		if !ok {
			missing = pkg.Name
			return false
		}
		c.imports[imp.Path] = imp
		return false
	})
	if missing != "" {
		return fmt.Errorf("no import for qualifier %q", missing)
	}
	return nil
}

// resolveImports builds the final imports list for the generated file.
//
// Rules:
// - Keep every import the method signatures reference, with its original alias
// - Always add the inject runtime; alias it when another import already binds `inject`
func resolveImports(used []ImportSpec, runtimeImport string) []ImportSpec {
	finalImports := make([]ImportSpec, 0, len(used)+1)
	bound := map[string]bool{}
	for _, imp := range used {
		if imp.Path == runtimeImport {
			continue
		}
		ident := imp.Alias
		if ident == "" {
			ident = importDefaultIdent(imp.Path)
		}
		bound[ident] = true
		finalImports = append(finalImports, imp)
	}

	runtime := ImportSpec{Path: runtimeImport}
	if importDefaultIdent(runtimeImport) != runtimeAlias || bound[runtimeAlias] {
		runtime.Alias = runtimeAlias
	}
	if bound[runtimeAlias] {
		runtime.Alias = "magentainject"
	}
	finalImports = append(finalImports, runtime)
	return finalImports
}

// ParamList renders the parameter declarations.
func (m Method) ParamList() string {
	parts := make([]string, len(m.Params))
	for i, p := range m.Params {
		if p.Variadic {
			parts[i] = p.Name + " ..." + p.Type
			continue
		}
		parts[i] = p.Name + " " + p.Type
	}
	return strings.Join(parts, ", ")
}

// ArgList renders the forwarded call arguments.
func (m Method) ArgList() string {
	parts := make([]string, len(m.Params))
	for i, p := range m.Params {
		if p.Variadic {
			parts[i] = p.Name + "..."
			continue
		}
		parts[i] = p.Name
	}
	return strings.Join(parts, ", ")
}

// ResultList renders the result types.
func (m Method) ResultList() string {
	switch len(m.Results) {
	case 0:
		return ""
	case 1:
		return m.Results[0]
	default:
		return "(" + strings.Join(m.Results, ", ") + ")"
	}
}

// Runtime returns the identifier generated code uses for the inject package.
func (d templateData) Runtime() string {
	for _, imp := range d.ImportsList {
		if imp.Path == d.Spec.RuntimeImport {
			if imp.Alias != "" {
				return imp.Alias
			}
			return importDefaultIdent(imp.Path)
		}
	}
	return d.RuntimeIdent
}

// genTemplate is the Go source template used to generate the proxy code.
var genTemplate = template.Must(
	template.New("specproxy").Parse(`// Code generated by specproxy; DO NOT EDIT.

package {{.Spec.Package}}

import (
{{- range .ImportsList}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)

// {{.Spec.ProxyName}} forwards every {{.Spec.Interface}} call to the specification
// resolved at call time.
type {{.Spec.ProxyName}} struct {
	resolve func() {{.Spec.Interface}}
}

// New{{.Spec.ProxyName}} returns a proxy that calls resolve on every method call.
func New{{.Spec.ProxyName}}(resolve func() {{.Spec.Interface}}) *{{.Spec.ProxyName}} {
	return &{{.Spec.ProxyName}}{resolve: resolve}
}
{{range .Methods}}
func (p *{{$.Spec.ProxyName}}) {{.Name}}({{.ParamList}}) {{.ResultList}} {
	{{if .Results}}return {{end}}p.resolve().{{.Name}}({{.ArgList}})
}
{{end}}
// Register{{.Spec.ProxyName}} registers the proxy for {{.Spec.Interface}} in r.
func Register{{.Spec.ProxyName}}(r *{{.Runtime}}.Registry) error {
	return {{.Runtime}}.Provide(r, func(resolve func() {{.Spec.Interface}}) {{.Spec.Interface}} {
		return New{{.Spec.ProxyName}}(resolve)
	})
}
`),
)

// tempFile abstracts an os.File for testability.
type tempFile interface {
	Name() string
	Write([]byte) (int, error)
	Close() error
}

// File operation hooks, overridden in tests.
var (
	createTempFile = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	chmodFile      = os.Chmod
	renameFile     = os.Rename
	removeFile     = os.Remove
)

// writeFileAtomic writes a file atomically.
//
// It writes to a temporary file in the same directory and then renames it
// over the target path, ensuring readers never observe partial writes.
func writeFileAtomic(targetPath string, data []byte, perm os.FileMode) (err error) {
	targetDir := filepath.Dir(targetPath)

	tmpFile, err := createTempFile(targetDir, filepath.Base(targetPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if err != nil {
			_ = removeFile(tmpPath)
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}
	if err = chmodFile(tmpPath, perm); err != nil {
		return err
	}
	if err = renameFile(tmpPath, targetPath); err != nil {
		return err
	}
	return nil
}

// must panics if err is non-nil.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
