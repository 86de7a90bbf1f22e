package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"log/slog"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/danielgtaylor/casing"
	"github.com/samber/lo"
	"golang.org/x/tools/go/ast/astutil"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bakito/tf-provider-gen/internal/diag"
	"github.com/bakito/tf-provider-gen/internal/model"
)

const (
	myName = "tf-provider-gen"

	frameworkPkg = "github.com/hashicorp/terraform-plugin-framework"
	tflogPkg     = "github.com/hashicorp/terraform-plugin-log/tflog"
)

var (
	//go:embed templates/GNUmakefile.tpl
	makefileTpl string
	//go:embed templates/go.mod.tpl
	goModTpl string
	//go:embed templates/main.go.tpl
	mainTpl string
	//go:embed templates/provider.go.tpl
	providerTpl string
	//go:embed templates/client.go.tpl
	clientTpl string
	//go:embed templates/resource.go.tpl
	resourceTpl string
	//go:embed templates/data_source.go.tpl
	dataSourceTpl string
)

// ProviderInfo describes the generated provider module.
type ProviderInfo struct {
	// Name is the provider name, e.g. petstore.
	Name   string
	Author string
	// Module is the go module path. It defaults to github.com/<author>/terraform-provider-<name>.
	Module string
	// BaseURL and Headers are the defaults of the generated client.
	BaseURL string
	Headers map[string]string
}

// Header is a default request header.
type Header struct {
	Name  string
	Value string
}

// ModulePath returns the go module path of the generated provider.
func (p ProviderInfo) ModulePath() string {
	if p.Module != "" {
		return p.Module
	}
	return fmt.Sprintf("github.com/%s/terraform-provider-%s", p.Author, p.Name)
}

// RegistryAddress is the address the provider is served under. Without an author the
// namespace is taken from the module path.
func (p ProviderInfo) RegistryAddress() string {
	namespace := p.Author
	if namespace == "" {
		namespace = path.Base(path.Dir(p.ModulePath()))
	}
	return fmt.Sprintf("registry.terraform.io/%s/%s", namespace, p.Name)
}

// TypeName is the provider type name used as resource prefix.
func (p ProviderInfo) TypeName() string {
	return casing.Snake(p.Name)
}

// EnvPrefix is the prefix of the environment variables read by the generated provider.
func (p ProviderInfo) EnvPrefix() string {
	return strings.ToUpper(casing.Snake(p.Name))
}

// SortedHeaders returns the default headers ordered by name.
func (p ProviderInfo) SortedHeaders() []Header {
	return lo.Map(slices.Sorted(maps.Keys(p.Headers)), func(name string, _ int) Header {
		return Header{Name: name, Value: p.Headers[name]}
	})
}

// scaffoldView is the template data of the main and client files.
type scaffoldView struct {
	ProviderInfo
	Imports []string
}

// Artifact is one generated file. Path is relative to the target directory.
type Artifact struct {
	Path    string
	Content []byte
}

// Artifacts renders the scaffold of the provider and the files of every resource.
func Artifacts(info ProviderInfo, resources []*model.Resource) ([]Artifact, error) {
	scaffold := []struct {
		path string
		tpl  string
		data any
	}{
		{path: "GNUmakefile", tpl: makefileTpl, data: info},
		{path: "go.mod", tpl: goModTpl, data: info},
		{path: "main.go", tpl: mainTpl, data: scaffoldView{ProviderInfo: info, Imports: scaffoldImports(info, "main.go")}},
		{path: "internal/provider/provider.go", tpl: providerTpl, data: map[string]any{
			"Provider":    info,
			"Imports":     scaffoldImports(info, "provider.go"),
			"Resources":   lo.Filter(resources, func(r *model.Resource, _ int) bool { return r.GenerateResource }),
			"DataSources": lo.Filter(resources, func(r *model.Resource, _ int) bool { return r.GenerateDataSource }),
		}},
		{path: "internal/provider/client.go", tpl: clientTpl, data: scaffoldView{ProviderInfo: info, Imports: scaffoldImports(info, "client.go")}},
	}

	var artifacts []Artifact
	for _, s := range scaffold {
		a, err := render(s.path, s.tpl, s.data)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}

	for _, res := range resources {
		if res.GenerateResource {
			a, err := render(ResourceFile(res), resourceTpl, newResourceView(res, false))
			if err != nil {
				return nil, err
			}
			artifacts = append(artifacts, a)
		}
		if res.GenerateDataSource {
			a, err := render(DataSourceFile(res), dataSourceTpl, newResourceView(res, true))
			if err != nil {
				return nil, err
			}
			artifacts = append(artifacts, a)
		}
	}
	return artifacts, nil
}

// ResourceFile is the relative path of the resource file of a resource.
func ResourceFile(res *model.Resource) string {
	return fmt.Sprintf("internal/provider/resource_%s.go", res.SnakeName)
}

// DataSourceFile is the relative path of the data source file of a resource.
func DataSourceFile(res *model.Resource) string {
	return fmt.Sprintf("internal/provider/data_source_%s.go", res.SnakeName)
}

var funcs = template.FuncMap{
	"quote":   strconv.Quote,
	"keys":    keys,
	"imports": importBlock,
}

func render(name, tpl string, data any) (Artifact, error) {
	var sb strings.Builder
	if filepath.Ext(name) == ".go" {
		sb.WriteString("// Code generated by " + myName + ". DO NOT EDIT.\n\n")
	}
	t := template.Must(template.New(filepath.Base(name)).Funcs(funcs).Parse(tpl))
	if err := t.Execute(&sb, data); err != nil {
		return Artifact{}, fmt.Errorf("error generating %s: %w", name, err)
	}

	content := []byte(sb.String())
	if filepath.Ext(name) == ".go" {
		formatted, err := pruneImports(name, content)
		if err != nil {
			slog.Warn("Generated code could not be formatted", "file", name, "error", err)
		} else {
			content = formatted
		}
	}
	return Artifact{Path: name, Content: content}, nil
}

var stdImports = map[string][]string{
	"main.go":     {"context", "flag", "log"},
	"provider.go": {"context", "maps", "net/http", "os", "time"},
	"client.go":   {"bytes", "context", "encoding/json", "errors", "fmt", "io", "net/http", "net/url", "strings"},
}

// scaffoldImports returns the imports declared for a scaffold file.
func scaffoldImports(info ProviderInfo, file string) []string {
	var ext []string
	switch file {
	case "main.go":
		ext = []string{frameworkPkg + "/providerserver", info.ModulePath() + "/internal/provider"}
	case "provider.go":
		ext = frameworkPackages("datasource", "path", "provider", "provider/schema", "resource", "types")
	case "client.go":
		ext = append(frameworkPackages("attr", "diag", "types", "types/basetypes"), tflogPkg)
	}
	return append(slices.Clone(stdImports[file]), ext...)
}

func frameworkPackages(names ...string) []string {
	return lo.Map(names, func(n string, _ int) string { return frameworkPkg + "/" + n })
}

// importBlock renders the import declaration of a file. Standard library packages come first.
func importBlock(pkgs []string) string {
	var std, ext []string
	for _, pkg := range sets.List(sets.New(pkgs...)) {
		if strings.Contains(strings.SplitN(pkg, "/", 2)[0], ".") {
			ext = append(ext, pkg)
		} else {
			std = append(std, pkg)
		}
	}
	var sb strings.Builder
	sb.WriteString("import (\n")
	for i, g := range [][]string{std, ext} {
		if i > 0 && len(std) > 0 && len(ext) > 0 {
			sb.WriteString("\n")
		}
		for _, pkg := range g {
			sb.WriteString("\t" + strconv.Quote(pkg) + "\n")
		}
	}
	sb.WriteString(")")
	return sb.String()
}

// pruneImports removes the declared imports a generated file does not reference and
// formats the result. Templates declare every package any of their branches may need.
func pruneImports(name string, src []byte) ([]byte, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, name, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}
	for _, spec := range slices.Clone(file.Imports) {
		pkg, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			return nil, err
		}
		if !astutil.UsesImport(file, pkg) {
			astutil.DeleteImport(fset, file, pkg)
		}
	}
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, file); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteArtifacts writes the artifacts below targetDir. A failing artifact is reported
// and skipped, the others are still written. It returns the written paths.
func WriteArtifacts(targetDir string, artifacts []Artifact, report *diag.Report) []string {
	var written []string
	for _, a := range artifacts {
		outputFile := filepath.Join(targetDir, filepath.FromSlash(a.Path))
		if err := writeFile(outputFile, a.Content); err != nil {
			report.Add(diag.Warning{Kind: diag.KindWriteError, Path: a.Path, Message: err.Error()})
			continue
		}
		written = append(written, a.Path)
		slog.With("file", outputFile).Info("Successfully generated " + describe(a.Path))
	}
	return written
}

func writeFile(name string, content []byte) error {
	dir := filepath.Dir(name)

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+".*")
	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("error writing output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), name); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}
	return nil
}

func describe(path string) string {
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, "resource_"):
		return "resource"
	case strings.HasPrefix(base, "data_source_"):
		return "data source"
	}
	return base
}
