package attribute

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// Kind is the attribute type class of the generated provider schema.
type Kind int

const (
	KindDynamic Kind = iota
	KindString
	KindInt64
	KindFloat64
	KindBool
	KindList
	KindMap
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindInt64:
		return "Int64"
	case KindFloat64:
		return "Float64"
	case KindBool:
		return "Bool"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindObject:
		return "Object"
	default:
		return "Dynamic"
	}
}

// Field is a member of an object type.
type Field struct {
	Name string
	Type Type
}

// Type is the attribute type of a schema node.
type Type struct {
	Kind Kind
	// Elem is the element type of lists and maps.
	Elem *Type
	// Fields are the members of object types in declaration order.
	Fields []Field
	// Enum holds the allowed values of string attributes.
	Enum []string
}

var (
	String  = Type{Kind: KindString}
	Int64   = Type{Kind: KindInt64}
	Float64 = Type{Kind: KindFloat64}
	Bool    = Type{Kind: KindBool}
	Dynamic = Type{Kind: KindDynamic}
)

// ListOf returns a list type of elem.
func ListOf(elem Type) Type {
	return Type{Kind: KindList, Elem: &elem}
}

// MapOf returns a map type of elem.
func MapOf(elem Type) Type {
	return Type{Kind: KindMap, Elem: &elem}
}

// CtyType projects the attribute type onto the cty type system.
func (t Type) CtyType() cty.Type {
	switch t.Kind {
	case KindString:
		return cty.String
	case KindInt64, KindFloat64:
		return cty.Number
	case KindBool:
		return cty.Bool
	case KindList:
		return cty.List(t.Elem.CtyType())
	case KindMap:
		return cty.Map(t.Elem.CtyType())
	case KindObject:
		attrs := make(map[string]cty.Type, len(t.Fields))
		for _, f := range t.Fields {
			attrs[f.Name] = f.Type.CtyType()
		}
		return cty.Object(attrs)
	default:
		return cty.DynamicPseudoType
	}
}

// Equal reports whether both types describe the same values.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	return t.CtyType().Equals(o.CtyType())
}

// ContainsDynamic reports whether the type or any nested element or field is dynamic.
// Collections can not hold such types, they are mapped to dynamic as a whole.
func (t Type) ContainsDynamic() bool {
	switch t.Kind {
	case KindDynamic:
		return true
	case KindList, KindMap:
		return t.Elem.ContainsDynamic()
	case KindObject:
		for _, f := range t.Fields {
			if f.Type.ContainsDynamic() {
				return true
			}
		}
	}
	return false
}

// IsPrimitive reports whether the type is a single scalar value.
func (t Type) IsPrimitive() bool {
	switch t.Kind {
	case KindString, KindInt64, KindFloat64, KindBool:
		return true
	}
	return false
}

// AttrType renders the framework attr.Type expression of the type.
func (t Type) AttrType() string {
	switch t.Kind {
	case KindString, KindInt64, KindFloat64, KindBool:
		return "types." + t.Kind.String() + "Type"
	case KindList:
		return fmt.Sprintf("types.ListType{ElemType: %s}", t.Elem.AttrType())
	case KindMap:
		return fmt.Sprintf("types.MapType{ElemType: %s}", t.Elem.AttrType())
	case KindObject:
		return fmt.Sprintf("types.ObjectType{AttrTypes: %s}", t.AttrTypes())
	default:
		return "types.DynamicType"
	}
}

// AttrTypes renders the attribute type map of an object type.
func (t Type) AttrTypes() string {
	fields := make([]Field, len(t.Fields))
	copy(fields, t.Fields)
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	var sb strings.Builder
	sb.WriteString("map[string]attr.Type{")
	for _, f := range fields {
		sb.WriteString(strconv.Quote(f.Name))
		sb.WriteString(": ")
		sb.WriteString(f.Type.AttrType())
		sb.WriteString(", ")
	}
	sb.WriteString("}")
	return sb.String()
}

// ValueType renders the framework value type used in resource models.
func (t Type) ValueType() string {
	return "types." + t.Kind.String()
}

// NullValue renders the framework expression of a null value of the type.
func (t Type) NullValue() string {
	switch t.Kind {
	case KindString, KindInt64, KindFloat64, KindBool:
		return "types." + t.Kind.String() + "Null()"
	case KindList, KindMap:
		return fmt.Sprintf("types.%sNull(%s)", t.Kind, t.Elem.AttrType())
	case KindObject:
		return fmt.Sprintf("types.ObjectNull(%s)", t.AttrTypes())
	default:
		return "types.DynamicNull()"
	}
}
