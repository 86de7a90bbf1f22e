package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/danielgtaylor/casing"
	"github.com/samber/lo"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bakito/tf-provider-gen/internal/attribute"
	"github.com/bakito/tf-provider-gen/internal/diag"
	"github.com/bakito/tf-provider-gen/internal/schema"
	"github.com/bakito/tf-provider-gen/internal/suggest"
)

type property struct {
	name     string
	request  schema.NodeID
	response schema.NodeID
	required bool
}

// attributes merges the create request and the read response in first-seen order.
func (rb *resourceBuild) attributes(res *Resource) []Attribute {
	props := rb.mergeProperties(rb.requestBody(res), rb.responseBody(res))

	attrs := make([]Attribute, 0, len(props))
	for _, p := range props {
		attrs = append(attrs, rb.attribute(p))
	}

	rb.uniqueNames(attrs)

	rb.applyFlags(attrs, "force_new", rb.override.ForceNew, func(a *Attribute) { a.ForceNew = true })
	rb.applyFlags(attrs, "ignore_changes_to", rb.override.IgnoreChangesTo, func(a *Attribute) { a.IgnoreChanges = true })
	rb.applyFlags(attrs, "sensitive", rb.override.Sensitive, func(a *Attribute) { a.Sensitive = true })

	for i := range attrs {
		if IsSensitiveName(attrs[i].Name) {
			attrs[i].Sensitive = true
		}
		if rb.override.ForceRecreate && !(attrs[i].Computed && !attrs[i].Optional) {
			attrs[i].ForceNew = true
		}
	}
	return attrs
}

func (rb *resourceBuild) mergeProperties(request, response schema.NodeID) []*property {
	var (
		props  []*property
		byName = map[string]*property{}
	)
	if reqProps, required, ok := rb.arena.ObjectProperties(request); ok {
		for _, p := range reqProps {
			prop := &property{name: p.Name, request: p.Node, response: schema.NoNode, required: required.Has(p.Name)}
			byName[p.Name] = prop
			props = append(props, prop)
		}
	}
	if respProps, _, ok := rb.arena.ObjectProperties(response); ok {
		for _, p := range respProps {
			if prop, ok := byName[p.Name]; ok {
				prop.response = p.Node
				continue
			}
			prop := &property{name: p.Name, request: schema.NoNode, response: p.Node}
			byName[p.Name] = prop
			props = append(props, prop)
		}
	}
	return props
}

func (rb *resourceBuild) attribute(p *property) Attribute {
	node := p.request
	if node == schema.NoNode {
		node = p.response
	}
	mapped := rb.mapper.Map(node)

	facts := Facts{
		InRequest:         p.request != schema.NoNode,
		InResponse:        p.response != schema.NoNode,
		RequiredInRequest: p.required,
		Nullable:          mapped.Nullable,
		ReadOnly:          mapped.ReadOnly,
		WriteOnly:         mapped.WriteOnly,
	}
	if facts.WriteOnly {
		facts.InResponse = false
	}

	attr := Attribute{
		Name:        casing.Snake(p.name),
		JSONName:    p.name,
		Type:        mapped.Type,
		Description: mapped.Description,
		WriteOnly:   mapped.WriteOnly,
		Nullable:    mapped.Nullable,
	}
	if attr.Description == "" && p.response != schema.NoNode {
		attr.Description = rb.mapper.Map(p.response).Description
	}

	if facts.InRequest && !facts.ReadOnly {
		def, err := rb.mapper.Default(p.request)
		var ude *attribute.UnmappableDefaultError
		switch {
		case errors.As(err, &ude):
			facts.HasDefault = true
			rb.warn(diag.KindUnmappableDefault, p.name, "%s, the default is dropped", ude.Error())
		case def != nil:
			facts.HasDefault = true
			attr.Default = def
		}
	}

	Classify(&attr, facts)
	return attr
}

// requestBody is the body of the create operation.
func (rb *resourceBuild) requestBody(res *Resource) schema.NodeID {
	op, ok := rb.findOperation(res.Create.Method, res.Create.Path)
	if !ok {
		return schema.NoNode
	}
	return op.Request
}

// responseBody is the object returned by the read operation. For searches the
// results key is followed and the element of the results array is used. Without
// a read response the create response is used.
func (rb *resourceBuild) responseBody(res *Resource) schema.NodeID {
	path := res.Read.Path
	if res.Read.Search != nil {
		path = res.Read.Search.SearchPath
	}
	body := schema.NoNode
	if op, ok := rb.findOperation(res.Read.Method, path); ok {
		body = op.Response
	}

	if res.Read.Search != nil && body != schema.NoNode {
		for _, seg := range res.Read.Search.ResultsKey {
			next, ok := rb.arena.Property(body, seg)
			if !ok {
				rb.warn(diag.KindResourceResolution, "read.search.results_key",
					"results key %q not found in the search response", res.Read.Search.ResultsKey)
				return schema.NoNode
			}
			body = next
		}
		if elem, _ := rb.arena.Unwrap(body); elem != schema.NoNode && rb.arena.Node(elem).Kind == schema.KindArray {
			body = rb.arena.Node(elem).Elem
		}
	}

	if body == schema.NoNode {
		if op, ok := rb.findOperation(res.Create.Method, res.Create.Path); ok {
			body = op.Response
		}
	}
	return body
}

// reservedNames are the root attribute names terraform uses for meta-arguments.
var reservedNames = sets.New("connection", "count", "depends_on", "for_each", "lifecycle", "provider", "provisioner")

// uniqueNames renames reserved attributes to <resource>_<name> and numbers attributes whose
// name or go field name is already taken, e.g. fooBar and foo_bar.
func (rb *resourceBuild) uniqueNames(attrs []Attribute) {
	taken := sets.New[string]()
	for i := range attrs {
		a := &attrs[i]
		name := a.Name
		if reservedNames.Has(name) {
			name = casing.Snake(rb.name) + "_" + name
		}
		base := name
		for n := 2; taken.Has(casing.Camel(name)); n++ {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		taken.Insert(casing.Camel(name))

		switch {
		case name == a.Name:
			continue
		case reservedNames.Has(a.Name):
			rb.warn(diag.KindResourceResolution, a.JSONName, "attribute name %q is reserved, renamed to %q", a.Name, name)
		default:
			rb.warn(diag.KindResourceResolution, a.JSONName, "attribute name %q is already used, renamed to %q", a.Name, name)
		}
		a.Name = name
	}
}

// applyFlags sets a flag on the attributes named in a configuration list.
// Dotted names address the top level attribute.
func (rb *resourceBuild) applyFlags(attrs []Attribute, key string, names []string, set func(*Attribute)) {
	if len(names) == 0 {
		return
	}
	candidates := lo.FlatMap(attrs, func(a Attribute, _ int) []string {
		return lo.Uniq([]string{a.Name, a.JSONName})
	})
	for _, name := range names {
		top, _, _ := strings.Cut(name, ".")
		i := slices.IndexFunc(attrs, func(a Attribute) bool { return a.Name == top || a.JSONName == top })
		if i < 0 {
			msg := "attribute " + name + " not found"
			if hint := suggest.Hint(top, candidates); hint != "" {
				msg += ", " + hint
			}
			rb.warn(diag.KindUnmatchedField, key, "%s", msg)
			continue
		}
		set(&attrs[i])
	}
}
