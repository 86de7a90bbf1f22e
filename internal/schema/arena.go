package schema

import (
	"fmt"

	"k8s.io/apimachinery/pkg/util/sets"
)

// NodeID addresses a node in an Arena.
type NodeID int

// NoNode marks an absent node, e.g. an operation without a request body.
const NoNode NodeID = -1

// Kind is the discriminant of a Node.
type Kind int

const (
	KindPrimitive Kind = iota + 1
	KindArray
	KindObject
	KindReference
	KindNullable
	KindEnum
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindArray:
		return "Array"
	case KindObject:
		return "Object"
	case KindReference:
		return "Reference"
	case KindNullable:
		return "Nullable"
	case KindEnum:
		return "Enum"
	case KindUnion:
		return "Union"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Property is a named member of an object node.
type Property struct {
	Name string
	Node NodeID
}

// Node is a normalized schema. Relations to other nodes are always by NodeID.
type Node struct {
	Kind Kind
	// Primitive is the JSON type of primitive and enum nodes. Empty means untyped.
	Primitive string
	Format    string
	// Elem is the array element, the reference target or the nullable inner node.
	Elem       NodeID
	Properties []Property
	Required   sets.Set[string]
	// Additional is the value node of additional properties.
	Additional NodeID
	Values     []any
	Candidates []NodeID

	Description string
	Default     any
	ReadOnly    bool
	WriteOnly   bool

	// Pointer is the canonical pointer for nodes created from a reference.
	Pointer string
}

// HasDefault reports whether the node carries a default value.
func (n Node) HasDefault() bool {
	return n.Default != nil
}

// Operation is a normalized operation with its body nodes.
type Operation struct {
	Path        string
	Method      string
	OperationID string
	Summary     string
	Request     NodeID
	Response    NodeID
}

// Arena owns all nodes of a normalized spec. It is immutable once Normalize returns.
type Arena struct {
	Title      string
	nodes      []Node
	byPointer  map[string]NodeID
	named      map[string]NodeID
	operations []Operation
}

func newArena() *Arena {
	return &Arena{
		byPointer: make(map[string]NodeID),
		named:     make(map[string]NodeID),
	}
}

func (a *Arena) add(n Node) NodeID {
	a.nodes = append(a.nodes, n)
	return NodeID(len(a.nodes) - 1)
}

// Node returns the node with the given id.
func (a *Arena) Node(id NodeID) Node {
	return a.nodes[id]
}

// Len returns the number of nodes.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Lookup returns the node interned for a canonical pointer.
func (a *Arena) Lookup(pointer string) (NodeID, bool) {
	id, ok := a.byPointer[pointer]
	return id, ok
}

// Named returns the node of a named schema component.
func (a *Arena) Named(name string) (NodeID, bool) {
	id, ok := a.named[name]
	return id, ok
}

// Operations returns all operations in document order.
func (a *Arena) Operations() []Operation {
	return a.operations
}

// Resolve follows reference chains and returns the first node that is not a
// reference. NoNode is returned for a reference cycle.
func (a *Arena) Resolve(id NodeID) NodeID {
	seen := sets.New[NodeID]()
	for id != NoNode && a.nodes[id].Kind == KindReference {
		if seen.Has(id) {
			return NoNode
		}
		seen.Insert(id)
		id = a.nodes[id].Elem
	}
	return id
}

// Unwrap resolves references and nullable wrappers. The second result
// reports whether a nullable wrapper was passed.
func (a *Arena) Unwrap(id NodeID) (NodeID, bool) {
	nullable := false
	seen := sets.New[NodeID]()
	for id != NoNode {
		n := a.nodes[id]
		if n.Kind != KindReference && n.Kind != KindNullable {
			return id, nullable
		}
		if seen.Has(id) {
			return NoNode, nullable
		}
		seen.Insert(id)
		if n.Kind == KindNullable {
			nullable = true
		}
		id = n.Elem
	}
	return NoNode, nullable
}

// ObjectProperties returns the properties and required names of the object
// behind id. References and nullable wrappers are followed.
func (a *Arena) ObjectProperties(id NodeID) ([]Property, sets.Set[string], bool) {
	id, _ = a.Unwrap(id)
	if id == NoNode || a.nodes[id].Kind != KindObject {
		return nil, nil, false
	}
	n := a.nodes[id]
	return n.Properties, n.Required, true
}

// Property returns the node of a named property of the object behind id.
func (a *Arena) Property(id NodeID, name string) (NodeID, bool) {
	props, _, ok := a.ObjectProperties(id)
	if !ok {
		return NoNode, false
	}
	for _, p := range props {
		if p.Name == name {
			return p.Node, true
		}
	}
	return NoNode, false
}
