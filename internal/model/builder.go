package model

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strings"

	"github.com/danielgtaylor/casing"
	"golang.org/x/sync/errgroup"

	"github.com/bakito/tf-provider-gen/internal/attribute"
	"github.com/bakito/tf-provider-gen/internal/diag"
	"github.com/bakito/tf-provider-gen/internal/providerconfig"
	"github.com/bakito/tf-provider-gen/internal/schema"
)

const (
	opCreate  = "create"
	opRead    = "read"
	opUpdate  = "update"
	opDestroy = "destroy"

	defaultIDAttribute = "id"
)

// Builder resolves resource models from a normalized spec and a provider configuration.
type Builder struct {
	arena   *schema.Arena
	mapper  *attribute.Mapper
	config  *providerconfig.Config
	workers int
}

// NewBuilder returns a builder. A worker count below one uses one worker per CPU.
func NewBuilder(arena *schema.Arena, config *providerconfig.Config, workers int) *Builder {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Builder{
		arena:   arena,
		mapper:  attribute.NewMapper(arena),
		config:  config,
		workers: workers,
	}
}

// Build returns the models of all resolvable resources in configuration order.
// Resources that can not be resolved are skipped and reported.
func (b *Builder) Build(ctx context.Context, report *diag.Report) ([]*Resource, error) {
	names := b.config.Resources.Names()
	results := make([]*Resource, len(names))
	warnings := make([][]diag.Warning, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, name := range names {
		override, _ := b.config.Resources.Items.Get(name)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i], warnings[i] = b.buildResource(name, override)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var resources []*Resource
	for i := range names {
		report.Add(warnings[i]...)
		if results[i] != nil {
			resources = append(resources, results[i])
		}
	}
	return resources, nil
}

type resourceBuild struct {
	*Builder
	name     string
	override *providerconfig.Resource
	warnings []diag.Warning
}

func (rb *resourceBuild) warn(kind diag.Kind, path, format string, args ...any) {
	rb.warnings = append(rb.warnings, diag.Warning{
		Kind:     kind,
		Resource: rb.name,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (b *Builder) buildResource(name string, override *providerconfig.Resource) (*Resource, []diag.Warning) {
	rb := &resourceBuild{Builder: b, name: name, override: override}
	if !rb.pathExists(override.Path) {
		rb.warn(diag.KindResourceResolution, override.Path, "path does not match any path of the spec")
		return nil, rb.warnings
	}

	res := &Resource{
		Name:                   name,
		SnakeName:              casing.Snake(name),
		CamelName:              casing.Camel(name),
		Path:                   override.Path,
		IDAttribute:            rb.idAttribute(),
		ForceRecreate:          override.ForceRecreate,
		IgnoreAllServerChanges: override.IgnoreAllServerChanges,
		ObjectID:               override.ObjectID,
		QueryString:            override.QueryString,
		Debug:                  override.Debug || b.config.Global.Debug,
		GenerateResource:       boolOr(override.GenerateResource, b.config.Resources.GenerateResource),
		GenerateDataSource:     boolOr(override.GenerateDataSource, b.config.Resources.GenerateDataSource),
	}

	res.Create = rb.operation(opCreate)
	res.Read = rb.operation(opRead)
	res.Destroy = rb.operation(opDestroy)
	if !override.ForceRecreate {
		update := rb.operation(opUpdate)
		res.Update = &update
	}
	res.Description = firstNonEmpty(res.Create.Summary, res.Read.Summary)

	res.Attributes = rb.attributes(res)

	slog.Debug("Resolved resource", "resource", name, "attributes", len(res.Attributes))
	return res, rb.warnings
}

func (rb *resourceBuild) idAttribute() IDPath {
	return ParseIDPath(firstNonEmpty(rb.override.IDAttribute, rb.config.Global.IDAttribute, defaultIDAttribute))
}

// operation resolves method and path of a CRUD operation and looks it up in the spec.
func (rb *resourceBuild) operation(kind string) Operation {
	var override *providerconfig.Operation
	var global, fallback string
	switch kind {
	case opCreate:
		override, global, fallback = rb.override.Create, rb.config.Global.CreateMethod, http.MethodPost
	case opRead:
		if rb.override.Read != nil {
			override = &rb.override.Read.Operation
		}
		global, fallback = rb.config.Global.ReadMethod, http.MethodGet
	case opUpdate:
		override, global, fallback = rb.override.Update, rb.config.Global.UpdateMethod, http.MethodPut
	case opDestroy:
		override, global, fallback = rb.override.Destroy, rb.config.Global.DestroyMethod, http.MethodDelete
	}

	op := Operation{Method: fallback}
	if global != "" {
		op.Method = strings.ToUpper(global)
	}
	if override != nil && override.Method != "" {
		op.Method = strings.ToUpper(override.Method)
	}

	switch {
	case override != nil && override.Path != "":
		op.Path = override.Path
	case kind == opCreate:
		op.Path = rb.override.Path
	default:
		op.Path = strings.TrimSuffix(rb.override.Path, "/") + "/{id}"
	}

	lookupPath := op.Path
	if kind == opRead && rb.override.Read != nil && rb.override.Read.Search != nil {
		s := rb.override.Read.Search
		op.Search = &Search{
			SearchPath:  firstNonEmpty(s.SearchPath, rb.override.Path),
			QueryString: s.QueryString,
			ResultsKey:  ParseIDPath(s.ResultsKey),
			SearchKey:   ParseIDPath(s.SearchKey),
			SearchValue: s.SearchValue,
		}
		lookupPath = op.Search.SearchPath
	}

	if specOp, ok := rb.findOperation(op.Method, lookupPath); ok {
		op.Found = true
		op.OperationID = specOp.OperationID
		op.Summary = specOp.Summary
	} else {
		rb.warn(diag.KindResourceResolution, kind, "operation %s %s not found in the spec", op.Method, lookupPath)
	}
	return op
}

func (rb *resourceBuild) pathExists(path string) bool {
	for _, op := range rb.arena.Operations() {
		if pathsMatch(op.Path, path) {
			return true
		}
	}
	return false
}

func (rb *resourceBuild) findOperation(method, path string) (schema.Operation, bool) {
	for _, op := range rb.arena.Operations() {
		if op.Method == method && pathsMatch(op.Path, path) {
			return op, true
		}
	}
	return schema.Operation{}, false
}

// pathsMatch compares two path templates. Template segments like {id} match any segment.
func pathsMatch(a, b string) bool {
	as := strings.Split(strings.Trim(a, "/"), "/")
	bs := strings.Split(strings.Trim(b, "/"), "/")
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] == bs[i] || (isTemplate(as[i]) && isTemplate(bs[i])) {
			continue
		}
		return false
	}
	return true
}

func isTemplate(seg string) bool {
	return strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
