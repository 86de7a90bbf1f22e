package openapi

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Dialect is the schema version a document is declared to follow.
type Dialect int

const (
	DialectV2 Dialect = iota + 1
	DialectV30
	DialectV31
)

// Dialects lists all supported dialects.
var Dialects = []Dialect{DialectV2, DialectV30, DialectV31}

func (d Dialect) String() string {
	switch d {
	case DialectV2:
		return "2.0"
	case DialectV30:
		return "3.0"
	case DialectV31:
		return "3.1"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// ParseDialect parses a dialect name like "3.0". A leading "v" is accepted.
func ParseDialect(s string) (Dialect, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "v") {
	case "2", "2.0":
		return DialectV2, nil
	case "3.0":
		return DialectV30, nil
	case "3.1":
		return DialectV31, nil
	}
	return 0, fmt.Errorf("unsupported dialect %q (one of 2.0, 3.0, 3.1)", s)
}

// matches reports whether the version marker of a document belongs to the dialect.
func (d Dialect) matches(version string) bool {
	switch d {
	case DialectV2:
		return version == "2.0"
	case DialectV30:
		return version == "3.0" || strings.HasPrefix(version, "3.0.")
	case DialectV31:
		return version == "3.1" || strings.HasPrefix(version, "3.1.")
	}
	return false
}

// Format is the serialization format of a document.
type Format int

const (
	FormatYAML Format = iota + 1
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return 0, fmt.Errorf("unsupported format %q (one of yaml, json)", s)
}

// FormatFromPath infers the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return 0, &UnsupportedExtensionError{Path: path}
	}
	f, err := ParseFormat(strings.TrimPrefix(ext, "."))
	if err != nil {
		return 0, &UnsupportedExtensionError{Path: path, Extension: ext}
	}
	return f, nil
}
