package render

import (
	"slices"
	"strconv"
	"strings"

	"github.com/danielgtaylor/casing"

	"github.com/bakito/tf-provider-gen/internal/attribute"
	"github.com/bakito/tf-provider-gen/internal/model"
)

const (
	syntheticID         = "id"
	syntheticIDFallback = "resource_id"
)

// attrView is an attribute as the resource and data source templates need it.
type attrView struct {
	model.Attribute
	GoName     string
	SchemaKind string
	// TypeArg is the element or attribute type argument of collection and object attributes.
	TypeArg         string
	PlanModifiers   []string
	InBody          bool
	ReadBack        bool
	IgnoreOnRefresh bool
}

// resourceView is the template data of one resource or data source file.
type resourceView struct {
	*model.Resource
	ID          attrView
	SyntheticID bool
	Attrs       []attrView
	ImportState bool
	Imports     []string
}

// IDKeys renders the identifier path as trailing call arguments.
func (v resourceView) IDKeys() string {
	return keys(v.IDAttribute)
}

func keys(p model.IDPath) string {
	var sb strings.Builder
	for _, k := range p {
		sb.WriteString(", ")
		sb.WriteString(strconv.Quote(k))
	}
	return sb.String()
}

func newResourceView(res *model.Resource, dataSource bool) resourceView {
	v := resourceView{Resource: res}

	idName := res.IDField()
	if idName == "" {
		v.SyntheticID = true
		idName = syntheticID
		if _, taken := res.Attribute(syntheticID); taken {
			idName = syntheticIDFallback
		}
		v.Attrs = append(v.Attrs, newAttrView(model.Attribute{
			Name:     idName,
			JSONName: res.IDAttribute.String(),
			Type:     attribute.String,
			Computed: true,
		}, res, dataSource))
	}

	for _, a := range res.Attributes {
		if dataSource && a.WriteOnly {
			continue
		}
		v.Attrs = append(v.Attrs, newAttrView(a, res, dataSource))
	}

	i := slices.IndexFunc(v.Attrs, func(a attrView) bool { return a.Name == idName })
	if dataSource {
		v.Attrs[i].Required = true
		v.Attrs[i].Computed = false
	} else if v.Attrs[i].Computed && !v.Attrs[i].Optional && !v.Attrs[i].Required {
		v.Attrs[i].PlanModifiers = append(v.Attrs[i].PlanModifiers, modifier(v.Attrs[i].Type, "UseStateForUnknown"))
	}
	if v.SyntheticID {
		v.Attrs[i].ReadBack = false
	}
	v.ID = v.Attrs[i]
	v.ImportState = !dataSource && v.ID.Type.Kind == attribute.KindString
	v.Imports = v.imports(dataSource)
	return v
}

// imports lists the packages the resource or data source file may reference. The typed plan
// modifier and default packages follow the attributes.
func (v resourceView) imports(dataSource bool) []string {
	owner := "resource"
	if dataSource {
		owner = "datasource"
	}
	pkgs := append([]string{"context", "errors", "fmt", "strings"},
		frameworkPackages("attr", "diag", "path", "types", owner, owner+"/schema")...)
	for _, a := range v.Attrs {
		if len(a.PlanModifiers) > 0 {
			pkgs = append(pkgs,
				frameworkPkg+"/resource/schema/planmodifier",
				frameworkPkg+"/resource/schema/"+strings.ToLower(a.Type.Kind.String())+"planmodifier")
		}
		if a.Default != nil {
			pkgs = append(pkgs, a.Default.Import)
		}
	}
	return pkgs
}

func newAttrView(a model.Attribute, res *model.Resource, dataSource bool) attrView {
	v := attrView{
		Attribute:  a,
		GoName:     casing.Camel(a.Name),
		SchemaKind: a.Type.Kind.String(),
		InBody:     a.Required || a.Optional,
		ReadBack:   !a.WriteOnly,
	}
	switch a.Type.Kind {
	case attribute.KindList, attribute.KindMap:
		v.TypeArg = "ElementType: " + a.Type.Elem.AttrType()
	case attribute.KindObject:
		v.TypeArg = "AttributeTypes: " + a.Type.AttrTypes()
	}

	if dataSource {
		// everything but the identifier is read from the API
		v.Required = false
		v.Optional = false
		v.Computed = true
		v.Default = nil
		v.ForceNew = false
		return v
	}

	v.IgnoreOnRefresh = a.IgnoreChanges || res.IgnoreAllServerChanges
	if a.ForceNew {
		v.PlanModifiers = append(v.PlanModifiers, modifier(a.Type, "RequiresReplace"))
	}
	return v
}

// modifier renders a plan modifier constructor of the type specific package.
func modifier(t attribute.Type, name string) string {
	return strings.ToLower(t.Kind.String()) + "planmodifier." + name + "()"
}
