package schema

import (
	"log/slog"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/bakito/tf-provider-gen/internal/openapi"
)

type pending struct {
	id     NodeID
	schema *openapi.Schema
}

type normalizer struct {
	spec  openapi.VersionedSpec
	arena *Arena
	queue []pending
}

// Normalize builds the node arena of a spec. Every named component and every
// request and response body is reachable from the returned arena.
func Normalize(spec openapi.VersionedSpec) (*Arena, error) {
	n := &normalizer{
		spec:  spec,
		arena: newArena(),
	}
	n.arena.Title = spec.Title()

	for _, comp := range spec.Components() {
		id := n.placeholder(comp.Pointer, comp.Schema)
		n.arena.named[comp.Name] = id
	}

	for _, item := range spec.PathItems() {
		for _, op := range item.Operations {
			req, err := n.lower(op.RequestBody)
			if err != nil {
				return nil, err
			}
			resp, err := n.lower(op.Response)
			if err != nil {
				return nil, err
			}
			n.arena.operations = append(n.arena.operations, Operation{
				Path:        item.Path,
				Method:      op.Method,
				OperationID: op.OperationID,
				Summary:     op.Summary,
				Request:     req,
				Response:    resp,
			})
		}
	}

	if err := n.drain(); err != nil {
		return nil, err
	}
	slog.Debug("Normalized spec", "nodes", n.arena.Len(), "operations", len(n.arena.operations))
	return n.arena, nil
}

// drain builds queued definitions. Building may queue further definitions.
func (n *normalizer) drain() error {
	for len(n.queue) > 0 {
		p := n.queue[0]
		n.queue = n.queue[1:]

		node, err := n.shape(p.schema)
		if err != nil {
			return err
		}
		node.Pointer = n.arena.nodes[p.id].Pointer
		n.arena.nodes[p.id] = node
	}
	return nil
}

// placeholder allocates the node of a pointer and queues its definition.
func (n *normalizer) placeholder(pointer string, s *openapi.Schema) NodeID {
	if id, ok := n.arena.byPointer[pointer]; ok {
		return id
	}
	id := n.arena.add(Node{Kind: KindReference, Elem: NoNode, Additional: NoNode, Pointer: pointer})
	n.arena.byPointer[pointer] = id
	n.queue = append(n.queue, pending{id: id, schema: s})
	return id
}

// intern returns the node of a reference without following it.
func (n *normalizer) intern(ref string) (NodeID, error) {
	if id, ok := n.arena.byPointer[ref]; ok {
		return id, nil
	}
	s, err := n.spec.Resolve(ref)
	if err != nil {
		return NoNode, &DanglingReferenceError{Ref: ref, Err: err}
	}
	return n.placeholder(ref, s), nil
}

// lower registers an inline schema and returns its node.
func (n *normalizer) lower(s *openapi.Schema) (NodeID, error) {
	if s == nil {
		return NoNode, nil
	}
	node, err := n.shape(s)
	if err != nil {
		return NoNode, err
	}
	if node.Kind == KindReference && !annotated(node) {
		return node.Elem, nil
	}
	return n.arena.add(node), nil
}

// shape computes the node of a schema including nullability and annotations.
func (n *normalizer) shape(s *openapi.Schema) (Node, error) {
	var (
		node     Node
		nullable bool
		err      error
	)
	if s.Ref != "" {
		var target NodeID
		target, err = n.intern(s.Ref)
		node = alias(target)
	} else {
		node, nullable, err = n.shapeCore(s)
	}
	if err != nil {
		return Node{}, err
	}

	if n.spec.Nullable(s) || nullable {
		inner := node.Elem
		if node.Kind != KindReference {
			inner = n.arena.add(node)
		}
		node = Node{Kind: KindNullable, Elem: inner, Additional: NoNode}
	}

	node.Description = s.Description
	node.Default = s.Default
	node.ReadOnly = s.ReadOnly
	node.WriteOnly = s.WriteOnly
	return node, nil
}

// shapeCore lowers the structure of a schema without its nullability marker.
// The second result reports a null member of a composition.
func (n *normalizer) shapeCore(s *openapi.Schema) (Node, bool, error) {
	switch {
	case len(s.AllOf) > 0:
		node, err := n.mergeAllOf(s)
		return node, false, err
	case len(s.OneOf) > 0 || len(s.AnyOf) > 0:
		return n.union(s)
	}

	types := s.Type.WithoutNull()
	switch {
	case len(s.Enum) > 0:
		return n.enum(s, types), false, nil
	case len(types) > 1:
		node := Node{Kind: KindUnion, Elem: NoNode, Additional: NoNode}
		for _, t := range types {
			node.Candidates = append(node.Candidates, n.arena.add(primitive(t, s.Format)))
		}
		return node, false, nil
	case types.Includes(openapi.TypeArray) || (len(types) == 0 && s.Items != nil):
		elem, err := n.lower(s.Items)
		if err != nil {
			return Node{}, false, err
		}
		return Node{Kind: KindArray, Elem: elem, Additional: NoNode}, false, nil
	case types.Includes(openapi.TypeObject) || (len(types) == 0 && (s.Properties != nil || s.AdditionalProperties != nil)):
		node, err := n.object(s)
		return node, false, err
	case len(types) == 1:
		return primitive(types[0], s.Format), false, nil
	}
	return primitive("", s.Format), false, nil
}

func (n *normalizer) object(s *openapi.Schema) (Node, error) {
	node := Node{
		Kind:       KindObject,
		Elem:       NoNode,
		Required:   sets.New(s.Required...),
		Additional: NoNode,
	}
	if s.Properties != nil {
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			id, err := n.lower(pair.Value)
			if err != nil {
				return Node{}, err
			}
			node.Properties = append(node.Properties, Property{Name: pair.Key, Node: id})
		}
	}
	if ap := s.AdditionalProperties; ap != nil && ap.Allowed {
		if ap.Schema != nil {
			id, err := n.lower(ap.Schema)
			if err != nil {
				return Node{}, err
			}
			node.Additional = id
		} else {
			node.Additional = n.arena.add(primitive("", ""))
		}
	}
	return node, nil
}

func (n *normalizer) enum(s *openapi.Schema, types openapi.SchemaTypes) Node {
	node := Node{Kind: KindEnum, Elem: NoNode, Additional: NoNode, Format: s.Format}
	if len(types) > 0 {
		node.Primitive = types[0]
	}
	for _, v := range s.Enum {
		if v != nil {
			node.Values = append(node.Values, v)
		}
	}
	return node
}

// union lowers oneOf and anyOf. Null members are dropped and make the result nullable.
func (n *normalizer) union(s *openapi.Schema) (Node, bool, error) {
	var (
		candidates []NodeID
		nullable   bool
	)
	for _, m := range append(append([]*openapi.Schema{}, s.OneOf...), s.AnyOf...) {
		if m == nil {
			continue
		}
		if m.IsNullType() {
			nullable = true
			continue
		}
		id, err := n.lower(m)
		if err != nil {
			return Node{}, false, err
		}
		candidates = append(candidates, id)
	}
	switch len(candidates) {
	case 0:
		return primitive("", ""), nullable, nil
	case 1:
		return alias(candidates[0]), nullable, nil
	}
	return Node{Kind: KindUnion, Elem: NoNode, Additional: NoNode, Candidates: candidates}, nullable, nil
}

// mergeAllOf flattens allOf members into one object node.
func (n *normalizer) mergeAllOf(s *openapi.Schema) (Node, error) {
	if len(s.AllOf) == 1 && s.PropertyCount() == 0 && s.AllOf[0] != nil {
		id, err := n.lower(s.AllOf[0])
		if err != nil {
			return Node{}, err
		}
		return alias(id), nil
	}

	members, err := n.flatten(s.AllOf, sets.New[string]())
	if err != nil {
		return Node{}, err
	}
	members = append(members, s)

	m := &merged{index: map[string]int{}, required: sets.New[string](), additional: NoNode}
	objectLike := false
	for _, member := range members {
		if member.Properties == nil && member.AdditionalProperties == nil && !member.Type.Includes(openapi.TypeObject) {
			continue
		}
		objectLike = true
		if err := n.mergeMember(m, member); err != nil {
			return Node{}, err
		}
	}

	if !objectLike {
		// allOf of non-object members, e.g. a type plus constraints
		for i := len(members) - 2; i >= 0; i-- {
			if len(members[i].Type.WithoutNull()) > 0 {
				core, _, err := n.shapeCore(stripComposition(members[i]))
				return core, err
			}
		}
		return primitive("", ""), nil
	}

	return Node{
		Kind:       KindObject,
		Elem:       NoNode,
		Properties: m.props,
		Required:   m.required,
		Additional: m.additional,
	}, nil
}

type merged struct {
	props      []Property
	index      map[string]int
	required   sets.Set[string]
	additional NodeID
}

func (n *normalizer) mergeMember(m *merged, member *openapi.Schema) error {
	m.required.Insert(member.Required...)
	if member.Properties != nil {
		for pair := member.Properties.Oldest(); pair != nil; pair = pair.Next() {
			id, err := n.lower(pair.Value)
			if err != nil {
				return err
			}
			i, seen := m.index[pair.Key]
			switch {
			case !seen:
				m.index[pair.Key] = len(m.props)
				m.props = append(m.props, Property{Name: pair.Key, Node: id})
			case !pair.Value.IsNullType():
				m.props[i].Node = id
			}
		}
	}
	if ap := member.AdditionalProperties; ap != nil && ap.Schema != nil {
		id, err := n.lower(ap.Schema)
		if err != nil {
			return err
		}
		m.additional = id
	}
	return nil
}

// flatten resolves references of allOf members and expands nested allOf lists.
// A member reached twice through references is skipped.
func (n *normalizer) flatten(members []*openapi.Schema, visited sets.Set[string]) ([]*openapi.Schema, error) {
	var res []*openapi.Schema
	for _, member := range members {
		for member != nil && member.Ref != "" {
			if visited.Has(member.Ref) {
				member = nil
				break
			}
			visited.Insert(member.Ref)
			if _, err := n.intern(member.Ref); err != nil {
				return nil, err
			}
			resolved, err := n.spec.Resolve(member.Ref)
			if err != nil {
				return nil, &DanglingReferenceError{Ref: member.Ref, Err: err}
			}
			member = resolved
		}
		if member == nil || member.IsNullType() {
			continue
		}
		if len(member.AllOf) > 0 {
			nested, err := n.flatten(member.AllOf, visited)
			if err != nil {
				return nil, err
			}
			res = append(res, nested...)
		}
		res = append(res, member)
	}
	return res, nil
}

func stripComposition(s *openapi.Schema) *openapi.Schema {
	c := *s
	c.AllOf = nil
	return &c
}

func alias(target NodeID) Node {
	return Node{Kind: KindReference, Elem: target, Additional: NoNode}
}

func primitive(t, format string) Node {
	return Node{Kind: KindPrimitive, Primitive: t, Format: format, Elem: NoNode, Additional: NoNode}
}

func annotated(n Node) bool {
	return n.Description != "" || n.Default != nil || n.ReadOnly || n.WriteOnly
}
