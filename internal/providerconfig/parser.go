package providerconfig

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	yamlv3 "gopkg.in/yaml.v3"
	"k8s.io/apiextensions-apiserver/pkg/apis/apiextensions"
	apiv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apiextensions-apiserver/pkg/apiserver/validation"
	kjson "k8s.io/apimachinery/pkg/util/json"
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"k8s.io/apimachinery/pkg/util/yaml"
)

//go:embed schema.yaml
var schemaYAML []byte

var (
	httpMethods = sets.New(http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete)

	schemaValidator = sync.OnceValues(func() (validation.SchemaValidator, error) {
		var props apiv1.JSONSchemaProps
		if err := yaml.Unmarshal(schemaYAML, &props); err != nil {
			return nil, fmt.Errorf("error parsing provider configuration schema: %w", err)
		}
		var internal apiextensions.JSONSchemaProps
		if err := apiv1.Convert_v1_JSONSchemaProps_To_apiextensions_JSONSchemaProps(&props, &internal, nil); err != nil {
			return nil, fmt.Errorf("error converting provider configuration schema: %w", err)
		}
		v, _, err := validation.NewSchemaValidator(&internal)
		return v, err
	})

	structValidator = sync.OnceValue(func() *validator.Validate {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("http_method", func(fl validator.FieldLevel) bool {
			return httpMethods.Has(strings.ToUpper(fl.Field().String()))
		})
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		return v
	})
)

// ParseFile reads a provider configuration in YAML or JSON.
func ParseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading provider configuration: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("Parsed provider configuration", "file", path, "resources", cfg.Resources.Items.Len())
	return cfg, nil
}

// Parse decodes and validates a provider configuration.
func Parse(data []byte) (*Config, error) {
	jsonData, err := yaml.ToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("error converting provider configuration to json: %w", err)
	}

	var obj any
	if err := kjson.Unmarshal(jsonData, &obj); err != nil {
		return nil, fmt.Errorf("error decoding provider configuration: %w", err)
	}
	sv, err := schemaValidator()
	if err != nil {
		return nil, err
	}
	if errs := validation.ValidateCustomResource(nil, obj, sv); len(errs) > 0 {
		return nil, fmt.Errorf("invalid provider configuration: %w", errs.ToAggregate())
	}

	// decoded from the source, the json conversion does not keep the key order
	cfg := &Config{}
	if err := yamlv3.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error decoding provider configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid provider configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the semantic rules the shape schema can not express.
func (c *Config) Validate() error {
	var errs field.ErrorList
	v := structValidator()

	errs = append(errs, structErrors(field.NewPath("global"), v.Struct(&c.Global))...)
	if c.Resources.Items != nil {
		for pair := c.Resources.Items.Oldest(); pair != nil; pair = pair.Next() {
			errs = append(errs, structErrors(field.NewPath("resources").Key(pair.Key), v.Struct(pair.Value))...)
		}
	}
	return errs.ToAggregate()
}

func structErrors(path *field.Path, err error) field.ErrorList {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return field.ErrorList{field.InternalError(path, err)}
	}
	var errs field.ErrorList
	for _, fe := range verrs {
		// the namespace starts with the struct name
		_, ns, _ := strings.Cut(fe.Namespace(), ".")
		p := path.Child(ns)
		switch fe.Tag() {
		case "required":
			errs = append(errs, field.Required(p, ""))
		case "http_method":
			errs = append(errs, field.NotSupported(p, fe.Value(), sets.List(httpMethods)))
		default:
			errs = append(errs, field.Invalid(p, fe.Value(), fmt.Sprintf("failed on the %q rule", fe.Tag())))
		}
	}
	return errs
}
