package openapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
)

// resolvePointer follows a same-document reference like "#/components/schemas/Pet".
func resolvePointer(doc jsonpointer.JSONPointable, ref string) (*Schema, error) {
	if !strings.HasPrefix(ref, "#") {
		return nil, &ReferenceError{Ref: ref, Reason: "only same-document references are supported"}
	}
	fragment, err := url.PathUnescape(strings.TrimPrefix(ref, "#"))
	if err != nil {
		return nil, &ReferenceError{Ref: ref, Reason: err.Error()}
	}
	ptr, err := jsonpointer.New(fragment)
	if err != nil {
		return nil, &ReferenceError{Ref: ref, Reason: err.Error()}
	}
	v, _, err := ptr.Get(doc)
	if err != nil {
		return nil, &ReferenceError{Ref: ref, Reason: err.Error()}
	}
	s, ok := v.(*Schema)
	if !ok || s == nil {
		return nil, &ReferenceError{Ref: ref, Reason: "target is not a schema"}
	}
	return s, nil
}

var (
	_ jsonpointer.JSONPointable = (*SwaggerDocument)(nil)
	_ jsonpointer.JSONPointable = (*Document)(nil)
	_ jsonpointer.JSONPointable = (*Components)(nil)
	_ jsonpointer.JSONPointable = (*Schema)(nil)
	_ jsonpointer.JSONPointable = schemaMapLookup{}
	_ jsonpointer.JSONPointable = schemaListLookup{}
)

func (d *SwaggerDocument) JSONLookup(token string) (any, error) {
	if d == nil {
		return nil, errNotFound(token)
	}
	switch token {
	case "definitions":
		return nonNilMap(d.Definitions, token)
	}
	return nil, errNotFound(token)
}

func (d *Document) JSONLookup(token string) (any, error) {
	if d == nil || d.Components == nil {
		return nil, errNotFound(token)
	}
	if token == "components" {
		return d.Components, nil
	}
	return nil, errNotFound(token)
}

func (c *Components) JSONLookup(token string) (any, error) {
	if c == nil {
		return nil, errNotFound(token)
	}
	if token == "schemas" {
		return nonNilMap(c.Schemas, token)
	}
	return nil, errNotFound(token)
}

func (s *Schema) JSONLookup(token string) (any, error) {
	if s == nil {
		return nil, errNotFound(token)
	}
	switch token {
	case "properties":
		return nonNilMap(s.Properties, token)
	case "$defs":
		return nonNilMap(s.Defs, token)
	case "items":
		if s.Items != nil {
			return s.Items, nil
		}
	case "additionalProperties":
		if s.AdditionalProperties != nil && s.AdditionalProperties.Schema != nil {
			return s.AdditionalProperties.Schema, nil
		}
	case "allOf":
		return schemaListLookup(s.AllOf), nil
	case "oneOf":
		return schemaListLookup(s.OneOf), nil
	case "anyOf":
		return schemaListLookup(s.AnyOf), nil
	}
	return nil, errNotFound(token)
}

type schemaMapLookup struct {
	m *SchemaMap
}

func (l schemaMapLookup) JSONLookup(token string) (any, error) {
	if s, ok := l.m.Get(token); ok && s != nil {
		return s, nil
	}
	return nil, errNotFound(token)
}

type schemaListLookup []*Schema

func (l schemaListLookup) JSONLookup(token string) (any, error) {
	i, err := strconv.Atoi(token)
	if err != nil || i < 0 || i >= len(l) || l[i] == nil {
		return nil, errNotFound(token)
	}
	return l[i], nil
}

func nonNilMap(m *SchemaMap, token string) (any, error) {
	if m == nil {
		return nil, errNotFound(token)
	}
	return schemaMapLookup{m: m}, nil
}

func errNotFound(token string) error {
	return fmt.Errorf("token %q not found", token)
}
