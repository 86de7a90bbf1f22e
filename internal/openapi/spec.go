package openapi

import (
	"net/http"
	"strings"

	"github.com/go-openapi/jsonpointer"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// VersionedSpec is a parsed document of one dialect. All consumers outside this
// package work through it and never look at the dialect specific documents.
type VersionedSpec interface {
	// Dialect returns the dialect the document was parsed as.
	Dialect() Dialect
	// Title returns the title of the API.
	Title() string
	// PathItems returns all path items in document order.
	PathItems() []PathItem
	// Components returns the named schema components in document order.
	Components() []NamedSchema
	// Resolve returns the schema a same-document reference points to.
	Resolve(ref string) (*Schema, error)
	// Nullable reports whether the schema is marked nullable in this dialect.
	Nullable(s *Schema) bool
}

// PathItem is the dialect independent view of a path.
type PathItem struct {
	Path       string
	Operations []Operation
}

// Operation is the dialect independent view of an operation.
type Operation struct {
	Method      string
	OperationID string
	Summary     string
	RequestBody *Schema
	Response    *Schema
}

// NamedSchema is a schema component with its canonical pointer.
type NamedSchema struct {
	Name    string
	Pointer string
	Schema  *Schema
}

// methodOrder is the order operations of a path item are reported in.
var methodOrder = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

type swagger2Spec struct {
	doc *SwaggerDocument
}

func (s *swagger2Spec) Dialect() Dialect { return DialectV2 }

func (s *swagger2Spec) Title() string {
	if s.doc.Info == nil {
		return ""
	}
	return s.doc.Info.Title
}

func (s *swagger2Spec) PathItems() []PathItem {
	if s.doc.Paths == nil {
		return nil
	}
	var items []PathItem
	for pair := s.doc.Paths.Oldest(); pair != nil; pair = pair.Next() {
		pi := pair.Value
		if pi == nil {
			continue
		}
		ops := map[string]*SwaggerOperation{
			http.MethodGet:    pi.Get,
			http.MethodPost:   pi.Post,
			http.MethodPut:    pi.Put,
			http.MethodPatch:  pi.Patch,
			http.MethodDelete: pi.Delete,
		}
		item := PathItem{Path: pair.Key}
		for _, method := range methodOrder {
			op := ops[method]
			if op == nil {
				continue
			}
			item.Operations = append(item.Operations, Operation{
				Method:      method,
				OperationID: op.OperationID,
				Summary:     summary(op.Summary, op.Description),
				RequestBody: s.bodyParameter(op.Parameters, pi.Parameters),
				Response:    s.successResponse(op.Responses),
			})
		}
		items = append(items, item)
	}
	return items
}

func (s *swagger2Spec) bodyParameter(lists ...[]*SwaggerParameter) *Schema {
	for _, params := range lists {
		for _, p := range params {
			p = s.parameter(p)
			if p != nil && p.In == "body" {
				return p.Schema
			}
		}
	}
	return nil
}

func (s *swagger2Spec) parameter(p *SwaggerParameter) *SwaggerParameter {
	if p == nil || p.Ref == "" || s.doc.Parameters == nil {
		return p
	}
	resolved, _ := s.doc.Parameters.Get(lastSegment(p.Ref))
	return resolved
}

func (s *swagger2Spec) successResponse(responses *orderedmap.OrderedMap[string, *SwaggerResponse]) *Schema {
	if responses == nil {
		return nil
	}
	var fallback *Schema
	for pair := responses.Oldest(); pair != nil; pair = pair.Next() {
		resp := pair.Value
		if resp != nil && resp.Ref != "" && s.doc.Responses != nil {
			resp, _ = s.doc.Responses.Get(lastSegment(resp.Ref))
		}
		if resp == nil || resp.Schema == nil {
			continue
		}
		if strings.HasPrefix(pair.Key, "2") {
			return resp.Schema
		}
		if pair.Key == "default" {
			fallback = resp.Schema
		}
	}
	return fallback
}

func (s *swagger2Spec) Components() []NamedSchema {
	return namedSchemas(s.doc.Definitions, "#/definitions/")
}

func (s *swagger2Spec) Resolve(ref string) (*Schema, error) {
	return resolvePointer(s.doc, ref)
}

func (s *swagger2Spec) Nullable(schema *Schema) bool {
	return schema != nil && schema.XNullable
}

// openapi3Spec holds what 3.0 and 3.1 have in common.
type openapi3Spec struct {
	doc *Document
}

func (s *openapi3Spec) Title() string {
	if s.doc.Info == nil {
		return ""
	}
	return s.doc.Info.Title
}

func (s *openapi3Spec) PathItems() []PathItem {
	if s.doc.Paths == nil {
		return nil
	}
	var items []PathItem
	for pair := s.doc.Paths.Oldest(); pair != nil; pair = pair.Next() {
		pi := pair.Value
		if pi == nil {
			continue
		}
		ops := map[string]*OperationObject{
			http.MethodGet:    pi.Get,
			http.MethodPost:   pi.Post,
			http.MethodPut:    pi.Put,
			http.MethodPatch:  pi.Patch,
			http.MethodDelete: pi.Delete,
		}
		item := PathItem{Path: pair.Key}
		for _, method := range methodOrder {
			op := ops[method]
			if op == nil {
				continue
			}
			item.Operations = append(item.Operations, Operation{
				Method:      method,
				OperationID: op.OperationID,
				Summary:     summary(op.Summary, op.Description),
				RequestBody: s.requestBody(op.RequestBody),
				Response:    s.successResponse(op.Responses),
			})
		}
		items = append(items, item)
	}
	return items
}

func (s *openapi3Spec) requestBody(rb *RequestBody) *Schema {
	if rb != nil && rb.Ref != "" && s.doc.Components != nil && s.doc.Components.RequestBodies != nil {
		rb, _ = s.doc.Components.RequestBodies.Get(lastSegment(rb.Ref))
	}
	if rb == nil {
		return nil
	}
	return jsonContent(rb.Content)
}

func (s *openapi3Spec) successResponse(responses *orderedmap.OrderedMap[string, *Response]) *Schema {
	if responses == nil {
		return nil
	}
	var fallback *Schema
	for pair := responses.Oldest(); pair != nil; pair = pair.Next() {
		resp := pair.Value
		if resp != nil && resp.Ref != "" && s.doc.Components != nil && s.doc.Components.Responses != nil {
			resp, _ = s.doc.Components.Responses.Get(lastSegment(resp.Ref))
		}
		if resp == nil {
			continue
		}
		schema := jsonContent(resp.Content)
		if schema == nil {
			continue
		}
		if strings.HasPrefix(pair.Key, "2") {
			return schema
		}
		if pair.Key == "default" {
			fallback = schema
		}
	}
	return fallback
}

func (s *openapi3Spec) Components() []NamedSchema {
	if s.doc.Components == nil {
		return nil
	}
	return namedSchemas(s.doc.Components.Schemas, "#/components/schemas/")
}

func (s *openapi3Spec) Resolve(ref string) (*Schema, error) {
	return resolvePointer(s.doc, ref)
}

type openapi30Spec struct {
	openapi3Spec
}

func (s *openapi30Spec) Dialect() Dialect { return DialectV30 }

func (s *openapi30Spec) Nullable(schema *Schema) bool {
	return schema != nil && schema.Nullable
}

type openapi31Spec struct {
	openapi3Spec
}

func (s *openapi31Spec) Dialect() Dialect { return DialectV31 }

func (s *openapi31Spec) Nullable(schema *Schema) bool {
	return schema != nil && len(schema.Type) > 1 && schema.Type.Includes(TypeNull)
}

// jsonContent picks application/json, then any +json media type, then the first one.
func jsonContent(content *orderedmap.OrderedMap[string, *MediaType]) *Schema {
	if content == nil {
		return nil
	}
	if mt, ok := content.Get("application/json"); ok && mt != nil && mt.Schema != nil {
		return mt.Schema
	}
	var first *Schema
	for pair := content.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil || pair.Value.Schema == nil {
			continue
		}
		if strings.HasSuffix(pair.Key, "+json") {
			return pair.Value.Schema
		}
		if first == nil {
			first = pair.Value.Schema
		}
	}
	return first
}

func namedSchemas(schemas *SchemaMap, prefix string) []NamedSchema {
	if schemas == nil {
		return nil
	}
	res := make([]NamedSchema, 0, schemas.Len())
	for pair := schemas.Oldest(); pair != nil; pair = pair.Next() {
		res = append(res, NamedSchema{
			Name:    pair.Key,
			Pointer: prefix + jsonpointer.Escape(pair.Key),
			Schema:  pair.Value,
		})
	}
	return res
}

func summary(summary, description string) string {
	if summary != "" {
		return summary
	}
	return description
}

func lastSegment(ref string) string {
	return jsonpointer.Unescape(ref[strings.LastIndex(ref, "/")+1:])
}
