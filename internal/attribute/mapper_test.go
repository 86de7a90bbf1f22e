package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/bakito/tf-provider-gen/internal/openapi"
	"github.com/bakito/tf-provider-gen/internal/schema"
)

const petSpec = `openapi: 3.0.3
paths: {}
components:
  schemas:
    Node:
      type: object
      properties:
        children:
          type: array
          items:
            $ref: '#/components/schemas/Node'
    Breeder:
      type: object
      properties:
        name:
          type: string
        puppies:
          type: array
          items:
            $ref: '#/components/schemas/Puppy'
    Puppy:
      type: object
      properties:
        name:
          type: string
        breeder:
          $ref: '#/components/schemas/Breeder'
    Kennel:
      type: object
      additionalProperties:
        $ref: '#/components/schemas/Puppy'
    Pet:
      type: object
      properties:
        name:
          type: string
          description: The name
          default: rex
        age:
          type: integer
          default: 3
        weight:
          type: number
          default: 2.5
        count:
          type: number
          format: int64
        vaccinated:
          type: boolean
          default: true
        kind:
          type: string
          enum: [cat, dog]
          default: bird
        size:
          type: integer
          enum: [1, 2]
        tags:
          type: array
          items:
            type: string
          default: [a]
        labels:
          type: object
          additionalProperties:
            type: integer
        owner:
          type: object
          properties:
            first:
              type: string
            age:
              type: integer
        note:
          nullable: true
          type: string
          readOnly: true
        either:
          oneOf:
            - type: string
            - type: integer
          default: x
        same:
          anyOf:
            - type: string
              maxLength: 2
            - type: string
        anything: {}
        badAge:
          type: integer
          default: old
        fraction:
          type: integer
          default: 1.5
        huge:
          type: integer
          default: 100000000000000000000
`

func setup(t *testing.T) (*Mapper, *schema.Arena, schema.NodeID) {
	t.Helper()
	spec, err := openapi.Parse([]byte(petSpec), openapi.FormatYAML, openapi.DialectV30)
	require.NoError(t, err)
	arena, err := schema.Normalize(spec)
	require.NoError(t, err)
	pet, ok := arena.Named("Pet")
	require.True(t, ok)
	return NewMapper(arena), arena, pet
}

func prop(t *testing.T, arena *schema.Arena, obj schema.NodeID, name string) schema.NodeID {
	t.Helper()
	id, ok := arena.Property(obj, name)
	require.True(t, ok, "property %s", name)
	return id
}

func TestMapper_Map(t *testing.T) {
	m, arena, pet := setup(t)

	tests := []struct {
		property string
		want     Type
	}{
		{property: "name", want: String},
		{property: "age", want: Int64},
		{property: "weight", want: Float64},
		{property: "count", want: Int64},
		{property: "vaccinated", want: Bool},
		{property: "kind", want: Type{Kind: KindString, Enum: []string{"cat", "dog"}}},
		{property: "size", want: Int64},
		{property: "tags", want: ListOf(String)},
		{property: "labels", want: MapOf(Int64)},
		{property: "owner", want: Type{Kind: KindObject, Fields: []Field{{Name: "first", Type: String}, {Name: "age", Type: Int64}}}},
		{property: "note", want: String},
		{property: "either", want: Dynamic},
		{property: "same", want: String},
		{property: "anything", want: Dynamic},
	}
	for _, tt := range tests {
		t.Run(tt.property, func(t *testing.T) {
			got := m.Map(prop(t, arena, pet, tt.property))
			assert.Equal(t, tt.want, got.Type)
		})
	}
}

func TestMapper_Annotations(t *testing.T) {
	m, arena, pet := setup(t)

	note := m.Map(prop(t, arena, pet, "note"))
	assert.True(t, note.Nullable)
	assert.True(t, note.ReadOnly)

	name := m.Map(prop(t, arena, pet, "name"))
	assert.False(t, name.Nullable)
	assert.Equal(t, "The name", name.Description)
}

func TestMapper_RecursiveObject(t *testing.T) {
	m, arena, _ := setup(t)
	node, ok := arena.Named("Node")
	require.True(t, ok)

	got := m.Map(node).Type
	require.Equal(t, KindObject, got.Kind)
	require.Len(t, got.Fields, 1)
	assert.Equal(t, Dynamic, got.Fields[0].Type, "a cycle degrades to dynamic")
}

func TestMapper_CyclicCollections(t *testing.T) {
	m, arena, _ := setup(t)
	named := func(name string) schema.NodeID {
		id, ok := arena.Named(name)
		require.True(t, ok, name)
		return id
	}

	breeder := m.Map(named("Breeder")).Type
	require.Equal(t, KindObject, breeder.Kind)
	assert.Equal(t, []Field{{Name: "name", Type: String}, {Name: "puppies", Type: Dynamic}}, breeder.Fields,
		"a list whose element object contains a cycle is dynamic")

	puppy := m.Map(named("Puppy")).Type
	require.Equal(t, KindObject, puppy.Kind)
	require.Len(t, puppy.Fields, 2)
	owner := puppy.Fields[1].Type
	require.Equal(t, KindObject, owner.Kind)
	assert.Equal(t, Dynamic, owner.Fields[1].Type)

	assert.Equal(t, Dynamic, m.Map(named("Kennel")).Type, "a map of objects containing a cycle is dynamic")

	for _, name := range []string{"Breeder", "Puppy", "Kennel"} {
		assertNoDynamicInCollection(t, m.Map(named(name)).Type, name)
	}
}

// assertNoDynamicInCollection fails for list or map types holding a dynamic type at any depth.
func assertNoDynamicInCollection(t *testing.T, typ Type, path string) {
	t.Helper()
	switch typ.Kind {
	case KindList, KindMap:
		assert.False(t, typ.Elem.ContainsDynamic(), "%s holds a dynamic type", path)
	case KindObject:
		for _, f := range typ.Fields {
			assertNoDynamicInCollection(t, f.Type, path+"."+f.Name)
		}
	}
}

func TestType_ContainsDynamic(t *testing.T) {
	nested := Type{Kind: KindObject, Fields: []Field{{Name: "a", Type: String}, {Name: "b", Type: Dynamic}}}
	assert.True(t, Dynamic.ContainsDynamic())
	assert.True(t, nested.ContainsDynamic())
	assert.True(t, ListOf(nested).ContainsDynamic())
	assert.True(t, MapOf(ListOf(Dynamic)).ContainsDynamic())
	assert.False(t, ListOf(MapOf(String)).ContainsDynamic())
	assert.False(t, Type{Kind: KindObject, Fields: []Field{{Name: "a", Type: ListOf(Int64)}}}.ContainsDynamic())
}

func TestMapper_Default(t *testing.T) {
	m, arena, pet := setup(t)

	tests := []struct {
		property   string
		wantExpr   string
		wantImport string
		wantNone   bool
		unmappable bool
	}{
		{property: "name", wantExpr: `stringdefault.StaticString("rex")`, wantImport: defaultsPackage + "stringdefault"},
		{property: "age", wantExpr: "int64default.StaticInt64(3)", wantImport: defaultsPackage + "int64default"},
		{property: "weight", wantExpr: "float64default.StaticFloat64(2.5)", wantImport: defaultsPackage + "float64default"},
		{property: "vaccinated", wantExpr: "booldefault.StaticBool(true)", wantImport: defaultsPackage + "booldefault"},
		{property: "count", wantNone: true},
		{property: "kind", unmappable: true},
		{property: "tags", unmappable: true},
		{property: "either", unmappable: true},
		{property: "badAge", unmappable: true},
		{property: "fraction", unmappable: true},
		{property: "huge", unmappable: true},
	}
	for _, tt := range tests {
		t.Run(tt.property, func(t *testing.T) {
			d, err := m.Default(prop(t, arena, pet, tt.property))
			if tt.unmappable {
				var ude *UnmappableDefaultError
				require.ErrorAs(t, err, &ude)
				assert.Nil(t, d)
				return
			}
			require.NoError(t, err)
			if tt.wantNone {
				assert.Nil(t, d)
				return
			}
			require.NotNil(t, d)
			assert.Equal(t, tt.wantExpr, d.Expr)
			assert.Equal(t, tt.wantImport, d.Import)
		})
	}
}

func TestType_CtyType(t *testing.T) {
	obj := Type{Kind: KindObject, Fields: []Field{{Name: "a", Type: ListOf(Int64)}, {Name: "b", Type: Bool}}}
	assert.True(t, obj.CtyType().Equals(cty.Object(map[string]cty.Type{
		"a": cty.List(cty.Number),
		"b": cty.Bool,
	})))
	assert.Equal(t, cty.DynamicPseudoType, Dynamic.CtyType())
	assert.Equal(t, cty.Map(cty.String), MapOf(String).CtyType())
}

func TestType_AttrType(t *testing.T) {
	obj := Type{Kind: KindObject, Fields: []Field{{Name: "b", Type: String}, {Name: "a", Type: ListOf(Int64)}}}
	assert.Equal(t,
		`types.ObjectType{AttrTypes: map[string]attr.Type{"a": types.ListType{ElemType: types.Int64Type}, "b": types.StringType, }}`,
		obj.AttrType(),
	)
	assert.Equal(t, "types.DynamicType", Dynamic.AttrType())
	assert.Equal(t, "types.Map", MapOf(String).ValueType())
}

func TestType_NullValue(t *testing.T) {
	assert.Equal(t, "types.StringNull()", String.NullValue())
	assert.Equal(t, "types.ListNull(types.BoolType)", ListOf(Bool).NullValue())
	assert.Equal(t, "types.MapNull(types.Float64Type)", MapOf(Float64).NullValue())
	assert.Equal(t, `types.ObjectNull(map[string]attr.Type{"a": types.StringType, })`,
		Type{Kind: KindObject, Fields: []Field{{Name: "a", Type: String}}}.NullValue())
	assert.Equal(t, "types.DynamicNull()", Dynamic.NullValue())
}
