package providerconfig

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Config is the provider configuration.
type Config struct {
	Global    Global    `yaml:"global"`
	Resources Resources `yaml:"resources"`
}

// Global holds the defaults applied to all resources.
type Global struct {
	CreateMethod  string            `yaml:"create_method,omitempty"  validate:"omitempty,http_method"`
	ReadMethod    string            `yaml:"read_method,omitempty"    validate:"omitempty,http_method"`
	UpdateMethod  string            `yaml:"update_method,omitempty"  validate:"omitempty,http_method"`
	DestroyMethod string            `yaml:"destroy_method,omitempty" validate:"omitempty,http_method"`
	IDAttribute   string            `yaml:"id_attribute,omitempty"`
	URI           string            `yaml:"uri,omitempty"            validate:"omitempty,url"`
	Headers       map[string]string `yaml:"headers,omitempty"`
	Debug         bool              `yaml:"debug,omitempty"`
}

// Resources holds the configured resources in document order and the two
// reserved generation switches.
type Resources struct {
	GenerateDataSource bool
	GenerateResource   bool
	Items              *orderedmap.OrderedMap[string, *Resource]
}

const (
	keyGenerateDataSource = "generate_data_source"
	keyGenerateResource   = "generate_resource"
)

func (r *Resources) UnmarshalYAML(value *yaml.Node) error {
	raw := orderedmap.New[string, yaml.Node]()
	if err := value.Decode(raw); err != nil {
		return err
	}

	r.GenerateDataSource = true
	r.GenerateResource = true
	r.Items = orderedmap.New[string, *Resource]()
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		switch pair.Key {
		case keyGenerateDataSource:
			if err := pair.Value.Decode(&r.GenerateDataSource); err != nil {
				return fmt.Errorf("%s: %w", pair.Key, err)
			}
		case keyGenerateResource:
			if err := pair.Value.Decode(&r.GenerateResource); err != nil {
				return fmt.Errorf("%s: %w", pair.Key, err)
			}
		default:
			res := &Resource{}
			if err := pair.Value.Decode(res); err != nil {
				return fmt.Errorf("resource %q: %w", pair.Key, err)
			}
			r.Items.Set(pair.Key, res)
		}
	}
	return nil
}

// Names returns the resource names in document order.
func (r *Resources) Names() []string {
	if r.Items == nil {
		return nil
	}
	names := make([]string, 0, r.Items.Len())
	for pair := r.Items.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Resource is the configuration of one resource.
type Resource struct {
	Path                   string         `yaml:"path"                                validate:"required,startswith=/"`
	Create                 *Operation     `yaml:"create,omitempty"`
	Read                   *ReadOperation `yaml:"read,omitempty"`
	Update                 *Operation     `yaml:"update,omitempty"`
	Destroy                *Operation     `yaml:"destroy,omitempty"`
	ForceNew               []string       `yaml:"force_new,omitempty"`
	ForceRecreate          bool           `yaml:"force_recreate,omitempty"`
	IDAttribute            string         `yaml:"id_attribute,omitempty"`
	IgnoreAllServerChanges bool           `yaml:"ignore_all_server_changes,omitempty"`
	IgnoreChangesTo        []string       `yaml:"ignore_changes_to,omitempty"`
	ObjectID               string         `yaml:"object_id,omitempty"`
	QueryString            string         `yaml:"query_string,omitempty"`
	Debug                  bool           `yaml:"debug,omitempty"`
	Sensitive              []string       `yaml:"sensitive,omitempty"`
	GenerateResource       *bool          `yaml:"generate_resource,omitempty"`
	GenerateDataSource     *bool          `yaml:"generate_data_source,omitempty"`
}

// Operation overrides the method or path of a single CRUD operation.
type Operation struct {
	Method string `yaml:"method,omitempty" validate:"omitempty,http_method"`
	Path   string `yaml:"path,omitempty"   validate:"omitempty,startswith=/"`
}

// ReadOperation is the read override with an optional search.
type ReadOperation struct {
	Operation `yaml:",inline"`
	Search    *Search `yaml:"search,omitempty"`
}

// Search turns the read into a list-then-filter lookup.
type Search struct {
	SearchPath  string `yaml:"search_path,omitempty"  validate:"omitempty,startswith=/"`
	QueryString string `yaml:"query_string,omitempty"`
	ResultsKey  string `yaml:"results_key,omitempty"`
	SearchKey   string `yaml:"search_key"             validate:"required"`
	SearchValue string `yaml:"search_value"           validate:"required"`
}
