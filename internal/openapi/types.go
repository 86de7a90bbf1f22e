package openapi

import (
	"fmt"
	"slices"

	json "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// SchemaMap is a schema map that keeps the order of the document.
// Schema declares its own map fields with the full type, the alias can not refer to itself.
type SchemaMap = orderedmap.OrderedMap[string, *Schema]

// Schema represents a JSON schema as used by all supported dialects.
type Schema struct {
	Ref                  string                                  `json:"$ref,omitempty"                 yaml:"$ref,omitempty"`
	Type                 SchemaTypes                             `json:"type,omitempty"                 yaml:"type,omitempty"`
	Format               string                                  `json:"format,omitempty"               yaml:"format,omitempty"`
	Title                string                                  `json:"title,omitempty"                yaml:"title,omitempty"`
	Description          string                                  `json:"description,omitempty"          yaml:"description,omitempty"`
	Properties           *orderedmap.OrderedMap[string, *Schema] `json:"properties,omitempty"           yaml:"properties,omitempty"`
	AdditionalProperties *AdditionalProperties                   `json:"additionalProperties,omitempty" yaml:"additionalProperties,omitempty"`
	Items                *Schema                                 `json:"items,omitempty"                yaml:"items,omitempty"`
	Required             []string                                `json:"required,omitempty"             yaml:"required,omitempty"`
	Enum                 []any                                   `json:"enum,omitempty"                 yaml:"enum,omitempty"`
	Default              any                                     `json:"default,omitempty"              yaml:"default,omitempty"`
	Nullable             bool                                    `json:"nullable,omitempty"             yaml:"nullable,omitempty"`
	XNullable            bool                                    `json:"x-nullable,omitempty"           yaml:"x-nullable,omitempty"`
	ReadOnly             bool                                    `json:"readOnly,omitempty"             yaml:"readOnly,omitempty"`
	WriteOnly            bool                                    `json:"writeOnly,omitempty"            yaml:"writeOnly,omitempty"`
	AllOf                []*Schema                               `json:"allOf,omitempty"                yaml:"allOf,omitempty"`
	OneOf                []*Schema                               `json:"oneOf,omitempty"                yaml:"oneOf,omitempty"`
	AnyOf                []*Schema                               `json:"anyOf,omitempty"                yaml:"anyOf,omitempty"`
	Defs                 *orderedmap.OrderedMap[string, *Schema] `json:"$defs,omitempty"                yaml:"$defs,omitempty"`
}

// HasDefault reports whether the schema declares a default value.
func (s *Schema) HasDefault() bool {
	return s != nil && s.Default != nil
}

// IsNullType reports whether the schema only admits null.
func (s *Schema) IsNullType() bool {
	return s != nil && s.Ref == "" && len(s.Type) == 1 && s.Type[0] == TypeNull
}

// PropertyCount returns the number of declared properties.
func (s *Schema) PropertyCount() int {
	if s == nil || s.Properties == nil {
		return 0
	}
	return s.Properties.Len()
}

const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeNull    = "null"
)

// SchemaTypes holds the value of the type keyword which is a single string
// in 2.0 and 3.0 and may be a list in 3.1.
type SchemaTypes []string

// Includes reports whether t is one of the types.
func (st SchemaTypes) Includes(t string) bool {
	return slices.Contains(st, t)
}

// WithoutNull returns the types without "null".
func (st SchemaTypes) WithoutNull() SchemaTypes {
	var res SchemaTypes
	for _, t := range st {
		if t != TypeNull {
			res = append(res, t)
		}
	}
	return res
}

func (st *SchemaTypes) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*st = SchemaTypes{single}
		return nil
	}
	var multi []string
	if err := json.Unmarshal(data, &multi); err != nil {
		return fmt.Errorf("type must be a string or a list of strings: %w", err)
	}
	*st = multi
	return nil
}

func (st *SchemaTypes) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*st = SchemaTypes{value.Value}
		return nil
	case yaml.SequenceNode:
		var multi []string
		if err := value.Decode(&multi); err != nil {
			return err
		}
		*st = multi
		return nil
	default:
		return fmt.Errorf("line %d: type must be a string or a list of strings", value.Line)
	}
}

// AdditionalProperties is either a boolean or a schema.
type AdditionalProperties struct {
	Allowed bool
	Schema  *Schema
}

func (ap *AdditionalProperties) UnmarshalJSON(data []byte) error {
	var allowed bool
	if err := json.Unmarshal(data, &allowed); err == nil {
		ap.Allowed = allowed
		return nil
	}
	s := &Schema{}
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("additionalProperties must be a boolean or a schema: %w", err)
	}
	ap.Allowed = true
	ap.Schema = s
	return nil
}

func (ap *AdditionalProperties) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&ap.Allowed)
	}
	s := &Schema{}
	if err := value.Decode(s); err != nil {
		return err
	}
	ap.Allowed = true
	ap.Schema = s
	return nil
}

// SwaggerDocument represents a Swagger 2.0 document.
type SwaggerDocument struct {
	Swagger     string                                            `json:"swagger"               yaml:"swagger"`
	Info        *Info                                             `json:"info,omitempty"        yaml:"info,omitempty"`
	Host        string                                            `json:"host,omitempty"        yaml:"host,omitempty"`
	BasePath    string                                            `json:"basePath,omitempty"    yaml:"basePath,omitempty"`
	Paths       *orderedmap.OrderedMap[string, *SwaggerPathItem]  `json:"paths,omitempty"       yaml:"paths,omitempty"`
	Definitions *SchemaMap                                        `json:"definitions,omitempty" yaml:"definitions,omitempty"`
	Parameters  *orderedmap.OrderedMap[string, *SwaggerParameter] `json:"parameters,omitempty"  yaml:"parameters,omitempty"`
	Responses   *orderedmap.OrderedMap[string, *SwaggerResponse]  `json:"responses,omitempty"   yaml:"responses,omitempty"`
}

type SwaggerPathItem struct {
	Get        *SwaggerOperation   `json:"get,omitempty"        yaml:"get,omitempty"`
	Put        *SwaggerOperation   `json:"put,omitempty"        yaml:"put,omitempty"`
	Post       *SwaggerOperation   `json:"post,omitempty"       yaml:"post,omitempty"`
	Delete     *SwaggerOperation   `json:"delete,omitempty"     yaml:"delete,omitempty"`
	Patch      *SwaggerOperation   `json:"patch,omitempty"      yaml:"patch,omitempty"`
	Parameters []*SwaggerParameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

type SwaggerOperation struct {
	OperationID string                                           `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Summary     string                                           `json:"summary,omitempty"     yaml:"summary,omitempty"`
	Description string                                           `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  []*SwaggerParameter                              `json:"parameters,omitempty"  yaml:"parameters,omitempty"`
	Responses   *orderedmap.OrderedMap[string, *SwaggerResponse] `json:"responses,omitempty"   yaml:"responses,omitempty"`
}

type SwaggerParameter struct {
	Ref      string  `json:"$ref,omitempty"     yaml:"$ref,omitempty"`
	Name     string  `json:"name,omitempty"     yaml:"name,omitempty"`
	In       string  `json:"in,omitempty"       yaml:"in,omitempty"`
	Required bool    `json:"required,omitempty" yaml:"required,omitempty"`
	Schema   *Schema `json:"schema,omitempty"   yaml:"schema,omitempty"`
}

type SwaggerResponse struct {
	Ref         string  `json:"$ref,omitempty"        yaml:"$ref,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      *Schema `json:"schema,omitempty"      yaml:"schema,omitempty"`
}

// Document represents an OpenAPI 3.0 or 3.1 document.
type Document struct {
	OpenAPI    string                                          `json:"openapi"              yaml:"openapi"`
	Info       *Info                                           `json:"info,omitempty"       yaml:"info,omitempty"`
	Servers    []*Server                                       `json:"servers,omitempty"    yaml:"servers,omitempty"`
	Paths      *orderedmap.OrderedMap[string, *PathItemObject] `json:"paths,omitempty"      yaml:"paths,omitempty"`
	Components *Components                                     `json:"components,omitempty" yaml:"components,omitempty"`
}

type Info struct {
	Title       string `json:"title,omitempty"       yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version,omitempty"     yaml:"version,omitempty"`
}

type Server struct {
	URL string `json:"url" yaml:"url"`
}

type Components struct {
	Schemas       *SchemaMap                                   `json:"schemas,omitempty"       yaml:"schemas,omitempty"`
	RequestBodies *orderedmap.OrderedMap[string, *RequestBody] `json:"requestBodies,omitempty" yaml:"requestBodies,omitempty"`
	Responses     *orderedmap.OrderedMap[string, *Response]    `json:"responses,omitempty"     yaml:"responses,omitempty"`
}

// PathItemObject is a path item of a 3.x document.
type PathItemObject struct {
	Get    *OperationObject `json:"get,omitempty"    yaml:"get,omitempty"`
	Put    *OperationObject `json:"put,omitempty"    yaml:"put,omitempty"`
	Post   *OperationObject `json:"post,omitempty"   yaml:"post,omitempty"`
	Delete *OperationObject `json:"delete,omitempty" yaml:"delete,omitempty"`
	Patch  *OperationObject `json:"patch,omitempty"  yaml:"patch,omitempty"`
}

type OperationObject struct {
	OperationID string                                    `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Summary     string                                    `json:"summary,omitempty"     yaml:"summary,omitempty"`
	Description string                                    `json:"description,omitempty" yaml:"description,omitempty"`
	RequestBody *RequestBody                              `json:"requestBody,omitempty" yaml:"requestBody,omitempty"`
	Responses   *orderedmap.OrderedMap[string, *Response] `json:"responses,omitempty"   yaml:"responses,omitempty"`
}

type RequestBody struct {
	Ref         string                                     `json:"$ref,omitempty"        yaml:"$ref,omitempty"`
	Description string                                     `json:"description,omitempty" yaml:"description,omitempty"`
	Required    bool                                       `json:"required,omitempty"    yaml:"required,omitempty"`
	Content     *orderedmap.OrderedMap[string, *MediaType] `json:"content,omitempty"     yaml:"content,omitempty"`
}

type Response struct {
	Ref         string                                     `json:"$ref,omitempty"        yaml:"$ref,omitempty"`
	Description string                                     `json:"description,omitempty" yaml:"description,omitempty"`
	Content     *orderedmap.OrderedMap[string, *MediaType] `json:"content,omitempty"     yaml:"content,omitempty"`
}

type MediaType struct {
	Schema *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}
