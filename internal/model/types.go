package model

import (
	"strings"

	"github.com/bakito/tf-provider-gen/internal/attribute"
)

// IDPath is a '/' delimited path into a response object, e.g. attributes/id.
type IDPath []string

// ParseIDPath splits a '/' delimited path. Empty segments are dropped.
func ParseIDPath(s string) IDPath {
	var p IDPath
	for _, seg := range strings.Split(s, "/") {
		if seg != "" {
			p = append(p, seg)
		}
	}
	return p
}

func (p IDPath) String() string {
	return strings.Join(p, "/")
}

// Leaf returns the last segment.
func (p IDPath) Leaf() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// IsNested reports whether the path has more than one segment.
func (p IDPath) IsNested() bool {
	return len(p) > 1
}

// Search describes a list-then-filter read.
type Search struct {
	SearchPath  string
	QueryString string
	ResultsKey  IDPath
	SearchKey   IDPath
	SearchValue string
}

// Operation is a resolved CRUD operation. Path is a template, {id} is replaced by the generated client.
type Operation struct {
	Method string
	Path   string
	Search *Search
	// OperationID and Summary come from the matching spec operation, if any.
	OperationID string
	Summary     string
	Found       bool
}

// Attribute is one attribute of a generated resource.
type Attribute struct {
	// Name is the terraform attribute name, JSONName the property name in the API.
	Name        string
	JSONName    string
	Type        attribute.Type
	Description string

	Required      bool
	Optional      bool
	Computed      bool
	Sensitive     bool
	ForceNew      bool
	IgnoreChanges bool
	WriteOnly     bool
	Nullable      bool
	Default       *attribute.Default
}

// Resource is the model of one configured resource.
type Resource struct {
	Name        string
	SnakeName   string
	CamelName   string
	Path        string
	Description string

	Create  Operation
	Read    Operation
	Update  *Operation
	Destroy Operation

	IDAttribute IDPath
	Attributes  []Attribute

	ForceRecreate          bool
	IgnoreAllServerChanges bool
	ObjectID               string
	QueryString            string
	Debug                  bool

	GenerateResource   bool
	GenerateDataSource bool
}

// Attribute returns the attribute with the given terraform name.
func (r *Resource) Attribute(name string) (Attribute, bool) {
	for _, a := range r.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// IDField returns the attribute holding the identifier. An empty result means
// the identifier is not a top level attribute and needs an own id attribute.
func (r *Resource) IDField() string {
	if r.IDAttribute.IsNested() {
		return ""
	}
	for _, a := range r.Attributes {
		if a.JSONName == r.IDAttribute.Leaf() {
			return a.Name
		}
	}
	return ""
}
