package openapi

import (
	"fmt"
	"log/slog"
	"os"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ParseFile reads a spec file. The format is taken from the file extension.
func ParseFile(path string, dialect Dialect) (VersionedSpec, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading spec file: %w", err)
	}
	spec, err := Parse(data, format, dialect)
	if err != nil {
		return nil, err
	}
	slog.Debug("Parsed spec", "file", path, "format", format, "dialect", dialect)
	return spec, nil
}

// Parse decodes a document in the given format and wraps it for the declared dialect.
func Parse(data []byte, format Format, dialect Dialect) (VersionedSpec, error) {
	var marker versionMarker
	if err := decode(data, format, &marker); err != nil {
		return nil, &MalformedError{Dialect: dialect, Format: format, Err: err}
	}

	switch dialect {
	case DialectV2:
		if !dialect.matches(marker.Swagger) {
			return nil, &DialectError{Declared: dialect, Found: marker.found()}
		}
		doc := &SwaggerDocument{}
		if err := decode(data, format, doc); err != nil {
			return nil, &MalformedError{Dialect: dialect, Format: format, Err: err}
		}
		return &swagger2Spec{doc: doc}, nil
	case DialectV30, DialectV31:
		if !dialect.matches(marker.OpenAPI) {
			return nil, &DialectError{Declared: dialect, Found: marker.found()}
		}
		doc := &Document{}
		if err := decode(data, format, doc); err != nil {
			return nil, &MalformedError{Dialect: dialect, Format: format, Err: err}
		}
		if dialect == DialectV30 {
			return &openapi30Spec{openapi3Spec{doc: doc}}, nil
		}
		return &openapi31Spec{openapi3Spec{doc: doc}}, nil
	}
	return nil, fmt.Errorf("unsupported dialect %s", dialect)
}

type versionMarker struct {
	Swagger string `json:"swagger" yaml:"swagger"`
	OpenAPI string `json:"openapi" yaml:"openapi"`
}

func (m versionMarker) found() string {
	switch {
	case m.Swagger != "":
		return "swagger " + m.Swagger
	case m.OpenAPI != "":
		return "openapi " + m.OpenAPI
	}
	return ""
}

func decode(data []byte, format Format, into any) error {
	switch format {
	case FormatJSON:
		return json.Unmarshal(data, into)
	case FormatYAML:
		return yaml.Unmarshal(data, into)
	}
	return fmt.Errorf("unsupported format %s", format)
}
