package attribute

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bakito/tf-provider-gen/internal/schema"
)

// Mapped is the attribute type of a node with the annotations collected on the way to it.
type Mapped struct {
	Type        Type
	Nullable    bool
	Description string
	ReadOnly    bool
	WriteOnly   bool
}

// Mapper maps arena nodes to attribute types. It only reads the arena and is safe for concurrent use.
type Mapper struct {
	arena *schema.Arena
}

func NewMapper(arena *schema.Arena) *Mapper {
	return &Mapper{arena: arena}
}

// Map returns the attribute type of a node.
func (m *Mapper) Map(id schema.NodeID) Mapped {
	var res Mapped
	m.walk(id, func(n schema.Node) {
		if n.Kind == schema.KindNullable {
			res.Nullable = true
		}
		if res.Description == "" {
			res.Description = n.Description
		}
		res.ReadOnly = res.ReadOnly || n.ReadOnly
		res.WriteOnly = res.WriteOnly || n.WriteOnly
	})
	res.Type = m.typeOf(id, sets.New[schema.NodeID]())
	return res
}

// walk visits the wrappers of a node and the node they wrap, outermost first.
func (m *Mapper) walk(id schema.NodeID, visit func(schema.Node)) {
	seen := sets.New[schema.NodeID]()
	for id != schema.NoNode && !seen.Has(id) {
		seen.Insert(id)
		n := m.arena.Node(id)
		visit(n)
		if n.Kind != schema.KindReference && n.Kind != schema.KindNullable {
			return
		}
		id = n.Elem
	}
}

func (m *Mapper) typeOf(id schema.NodeID, stack sets.Set[schema.NodeID]) Type {
	id, _ = m.arena.Unwrap(id)
	if id == schema.NoNode || stack.Has(id) {
		return Dynamic
	}
	stack.Insert(id)
	defer stack.Delete(id)

	n := m.arena.Node(id)
	switch n.Kind {
	case schema.KindPrimitive:
		return primitiveType(n.Primitive, n.Format)
	case schema.KindEnum:
		t := primitiveType(n.Primitive, n.Format)
		if n.Primitive == "" {
			t = String
		}
		if t.Kind == KindString {
			for _, v := range n.Values {
				t.Enum = append(t.Enum, fmt.Sprint(v))
			}
		}
		return t
	case schema.KindArray:
		elem := m.typeOf(n.Elem, stack)
		if elem.ContainsDynamic() {
			return Dynamic
		}
		return ListOf(elem)
	case schema.KindObject:
		if len(n.Properties) > 0 {
			t := Type{Kind: KindObject}
			for _, p := range n.Properties {
				t.Fields = append(t.Fields, Field{Name: p.Name, Type: m.typeOf(p.Node, stack)})
			}
			return t
		}
		if n.Additional != schema.NoNode {
			elem := m.typeOf(n.Additional, stack)
			if elem.ContainsDynamic() {
				return Dynamic
			}
			return MapOf(elem)
		}
		return Dynamic
	case schema.KindUnion:
		var common *Type
		for _, c := range n.Candidates {
			t := m.typeOf(c, stack)
			if common == nil {
				common = &t
				continue
			}
			if !common.Equal(t) {
				return Dynamic
			}
		}
		if common == nil {
			return Dynamic
		}
		return *common
	}
	return Dynamic
}

func primitiveType(primitive, format string) Type {
	switch primitive {
	case "string":
		return String
	case "integer":
		return Int64
	case "number":
		if format == "int32" || format == "int64" {
			return Int64
		}
		return Float64
	case "boolean":
		return Bool
	}
	return Dynamic
}
