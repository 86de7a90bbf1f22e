package model

import (
	"context"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bakito/tf-provider-gen/internal/attribute"
	"github.com/bakito/tf-provider-gen/internal/diag"
	"github.com/bakito/tf-provider-gen/internal/openapi"
	"github.com/bakito/tf-provider-gen/internal/providerconfig"
	"github.com/bakito/tf-provider-gen/internal/schema"
)

const petStore = `openapi: 3.0.3
info:
  title: Pet Store
paths:
  /pets:
    post:
      summary: Create a pet
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Pet'
      responses:
        '201':
          description: created
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
    get:
      responses:
        '200':
          description: list
          content:
            application/json:
              schema:
                type: object
                properties:
                  data:
                    type: object
                    properties:
                      items:
                        type: array
                        items:
                          $ref: '#/components/schemas/Pet'
  /pets/{petId}:
    get:
      summary: Read a pet
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
  /orders:
    post:
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [b, a, owner, coOwner]
              properties:
                b:
                  type: string
                a:
                  type: integer
                owner:
                  $ref: '#/components/schemas/Owner'
                coOwner:
                  nullable: true
                  allOf:
                    - $ref: '#/components/schemas/Owner'
                apiKey:
                  type: string
                quantity:
                  type: integer
                  default: 1
                kind:
                  type: string
                  enum: [a, b]
                  default: c
                secretInput:
                  type: string
                  writeOnly: true
      responses:
        '201':
          description: created
    patch:
      responses:
        default:
          description: any
  /orders/{id}:
    get:
      responses:
        '200':
          description: ok
          content:
            application/json:
              schema:
                type: object
                properties:
                  b:
                    type: string
                  a:
                    type: integer
                  c:
                    type: boolean
                  secretInput:
                    type: string
                  attributes:
                    type: object
                    properties:
                      id:
                        type: string
    put:
      responses:
        '200':
          description: ok
    delete:
      responses:
        '204':
          description: gone
components:
  schemas:
    Pet:
      type: object
      required: [name]
      properties:
        name:
          type: string
        id:
          type: integer
          readOnly: true
    Owner:
      type: object
      properties:
        name:
          type: string
`

func build(t *testing.T, config string) ([]*Resource, *diag.Report) {
	t.Helper()
	return buildSpec(t, petStore, config)
}

func buildSpec(t *testing.T, doc, config string) ([]*Resource, *diag.Report) {
	t.Helper()
	spec, err := openapi.Parse([]byte(doc), openapi.FormatYAML, openapi.DialectV30)
	require.NoError(t, err)
	arena, err := schema.Normalize(spec)
	require.NoError(t, err)
	cfg, err := providerconfig.Parse([]byte(config))
	require.NoError(t, err)

	report := &diag.Report{}
	resources, err := NewBuilder(arena, cfg, 2).Build(context.Background(), report)
	require.NoError(t, err)
	return resources, report
}

func names(attrs []Attribute) []string {
	return lo.Map(attrs, func(a Attribute, _ int) string { return a.Name })
}

func TestBuild_PetScenario(t *testing.T) {
	resources, report := build(t, `resources: {pet: {path: /pets}}`)
	require.Len(t, resources, 1)
	pet := resources[0]

	assert.Equal(t, "pet", pet.SnakeName)
	assert.Equal(t, "Pet", pet.CamelName)
	assert.Equal(t, "Create a pet", pet.Description)
	assert.Equal(t, []string{"name", "id"}, names(pet.Attributes))

	name, _ := pet.Attribute("name")
	assert.True(t, name.Required)
	assert.False(t, name.Computed)
	assert.Equal(t, attribute.String, name.Type)

	id, _ := pet.Attribute("id")
	assert.True(t, id.Computed)
	assert.False(t, id.Required)
	assert.False(t, id.Optional)
	assert.Equal(t, attribute.Int64, id.Type)
	assert.Equal(t, "id", pet.IDField())

	assert.Equal(t, Operation{Method: "POST", Path: "/pets", Found: true, Summary: "Create a pet"}, pet.Create)
	assert.Equal(t, "/pets/{id}", pet.Read.Path)
	assert.True(t, pet.Read.Found)
	require.NotNil(t, pet.Update)
	assert.False(t, pet.Update.Found)
	assert.False(t, pet.Destroy.Found)
	assert.Equal(t, 2, report.Count(diag.KindResourceResolution), "update and destroy are missing")
}

func TestBuild_OrderAndClassification(t *testing.T) {
	resources, report := build(t, `resources: {order: {path: /orders}}`)
	require.Len(t, resources, 1)
	order := resources[0]

	assert.Equal(t, []string{"b", "a", "owner", "co_owner", "api_key", "quantity", "kind", "secret_input", "c", "attributes"}, names(order.Attributes))

	b, _ := order.Attribute("b")
	assert.True(t, b.Required)

	c, _ := order.Attribute("c")
	assert.True(t, c.Computed)
	assert.False(t, c.Optional)

	owner, _ := order.Attribute("owner")
	coOwner, _ := order.Attribute("co_owner")
	assert.True(t, owner.Required)
	assert.False(t, coOwner.Required)
	assert.True(t, coOwner.Optional)
	assert.Equal(t, owner.Type, coOwner.Type, "nullable and plain reference share the mapped type")
	assert.Equal(t, "coOwner", coOwner.JSONName)

	apiKey, _ := order.Attribute("api_key")
	assert.True(t, apiKey.Sensitive)
	assert.True(t, apiKey.Optional)
	assert.False(t, apiKey.Computed)

	quantity, _ := order.Attribute("quantity")
	assert.True(t, quantity.Optional)
	assert.True(t, quantity.Computed)
	require.NotNil(t, quantity.Default)
	assert.Equal(t, "int64default.StaticInt64(1)", quantity.Default.Expr)

	kind, _ := order.Attribute("kind")
	assert.Nil(t, kind.Default)
	assert.True(t, kind.Optional)
	assert.Equal(t, 1, report.Count(diag.KindUnmappableDefault))

	secret, _ := order.Attribute("secret_input")
	assert.True(t, secret.WriteOnly)
	assert.True(t, secret.Sensitive)
	assert.False(t, secret.Computed, "write only attributes are never read back")

	assert.Equal(t, 0, report.Count(diag.KindResourceResolution))
}

func TestBuild_CRUDResolution(t *testing.T) {
	resources, report := build(t, `
global:
  update_method: patch
  read_method: GET
resources:
  order:
    path: /orders
    id_attribute: attributes/id
    update:
      path: /orders
    destroy:
      method: delete
      path: /orders/{orderId}
`)
	require.Len(t, resources, 1)
	order := resources[0]

	assert.Equal(t, IDPath{"attributes", "id"}, order.IDAttribute)
	assert.Equal(t, "attributes/id", order.IDAttribute.String())
	assert.Empty(t, order.IDField(), "nested identifiers are not flattened")

	require.NotNil(t, order.Update)
	assert.Equal(t, "PATCH", order.Update.Method)
	assert.Equal(t, "/orders", order.Update.Path)
	assert.True(t, order.Update.Found)
	assert.Equal(t, "DELETE", order.Destroy.Method)
	assert.Equal(t, "/orders/{orderId}", order.Destroy.Path)
	assert.True(t, order.Destroy.Found)
	assert.Equal(t, 0, report.Count(diag.KindResourceResolution))
}

func TestBuild_Search(t *testing.T) {
	resources, report := build(t, `
resources:
  pet:
    path: /pets
    read:
      search:
        results_key: data/items
        search_key: name
        search_value: "{name}"
`)
	require.Len(t, resources, 1)
	pet := resources[0]

	require.NotNil(t, pet.Read.Search)
	assert.Equal(t, "/pets", pet.Read.Search.SearchPath)
	assert.Equal(t, IDPath{"data", "items"}, pet.Read.Search.ResultsKey)
	assert.Equal(t, IDPath{"name"}, pet.Read.Search.SearchKey)
	assert.True(t, pet.Read.Found)
	assert.Equal(t, []string{"name", "id"}, names(pet.Attributes))
	assert.Equal(t, 2, report.Count(diag.KindResourceResolution))
}

func TestBuild_IsolatedFailure(t *testing.T) {
	resources, report := build(t, `
resources:
  missing:
    path: /missing
  pet:
    path: /pets
    force_recreate: true
`)
	require.Len(t, resources, 1)
	assert.Equal(t, "pet", resources[0].Name)
	assert.Nil(t, resources[0].Update)

	name, _ := resources[0].Attribute("name")
	assert.True(t, name.ForceNew)
	id, _ := resources[0].Attribute("id")
	assert.False(t, id.ForceNew)

	missing := lo.Filter(report.Warnings(), func(w diag.Warning, _ int) bool { return w.Resource == "missing" })
	require.Len(t, missing, 1)
	assert.Equal(t, diag.KindResourceResolution, missing[0].Kind)
}

func TestBuild_Flags(t *testing.T) {
	resources, report := build(t, `
resources:
  generate_data_source: false
  pet:
    path: /pets
    force_new: [name, nmae]
    ignore_changes_to: [id.value]
    sensitive: [owner]
    generate_resource: false
`)
	require.Len(t, resources, 1)
	pet := resources[0]
	assert.False(t, pet.GenerateResource)
	assert.False(t, pet.GenerateDataSource)

	name, _ := pet.Attribute("name")
	assert.True(t, name.ForceNew)
	id, _ := pet.Attribute("id")
	assert.True(t, id.IgnoreChanges)

	unmatched := lo.Filter(report.Warnings(), func(w diag.Warning, _ int) bool { return w.Kind == diag.KindUnmatchedField })
	require.Len(t, unmatched, 2)
	assert.Equal(t, "force_new", unmatched[0].Path)
	assert.Contains(t, unmatched[0].Message, `did you mean "name"?`)
	assert.Equal(t, "sensitive", unmatched[1].Path)
}

const toyStore = `openapi: 3.0.3
paths:
  /toys:
    post:
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                fooBar:
                  type: string
                foo_bar:
                  type: string
                count:
                  type: integer
                toy_count:
                  type: integer
                depends_on:
                  type: string
      responses:
        '201':
          description: created
          content:
            application/json:
              schema:
                type: object
                properties:
                  id:
                    type: string
`

func TestBuild_AttributeNames(t *testing.T) {
	resources, report := buildSpec(t, toyStore, `
resources:
  toy:
    path: /toys
    force_new: [count]
`)
	require.Len(t, resources, 1)
	toy := resources[0]

	assert.Equal(t, []string{"foo_bar", "foo_bar_2", "toy_count", "toy_count_2", "toy_depends_on", "id"}, names(toy.Attributes))
	assert.Equal(t, []string{"fooBar", "foo_bar", "count", "toy_count", "depends_on", "id"},
		lo.Map(toy.Attributes, func(a Attribute, _ int) string { return a.JSONName }))

	count, ok := toy.Attribute("toy_count")
	require.True(t, ok)
	assert.Equal(t, "count", count.JSONName)
	assert.True(t, count.ForceNew, "flags still address the json name")

	renamed := lo.FilterMap(report.Warnings(), func(w diag.Warning, _ int) (string, bool) {
		return w.Path, w.Kind == diag.KindResourceResolution && strings.Contains(w.Message, "renamed")
	})
	assert.Equal(t, []string{"foo_bar", "count", "toy_count", "depends_on"}, renamed)
}

func TestBuild_Deterministic(t *testing.T) {
	config := `resources: {order: {path: /orders}, pet: {path: /pets}, zoo: {path: /zoo}}`
	first, _ := build(t, config)
	for range 5 {
		again, _ := build(t, config)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, []string{"order", "pet"}, lo.Map(first, func(r *Resource, _ int) string { return r.Name }))
}
