package openapi

import "fmt"

// UnsupportedExtensionError is returned for spec files that are neither .yaml nor .json.
type UnsupportedExtensionError struct {
	Path      string
	Extension string
}

func (e *UnsupportedExtensionError) Error() string {
	if e.Extension == "" {
		return fmt.Sprintf("path %q does not have a file extension", e.Path)
	}
	return fmt.Sprintf("file extension %q of %q is not supported (.yaml or .json)", e.Extension, e.Path)
}

// MalformedError is returned when a document can not be decoded for the declared dialect.
type MalformedError struct {
	Dialect Dialect
	Format  Format
	Err     error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s document for dialect %s: %v", e.Format, e.Dialect, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// DialectError is returned when the content does not match the declared dialect.
type DialectError struct {
	Declared Dialect
	Found    string
}

func (e *DialectError) Error() string {
	if e.Found == "" {
		return fmt.Sprintf("document does not declare a version for dialect %s", e.Declared)
	}
	return fmt.Sprintf("document version %q does not match dialect %s", e.Found, e.Declared)
}

// ReferenceError is returned when a reference can not be followed.
type ReferenceError struct {
	Ref    string
	Reason string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("can not resolve reference %q: %s", e.Ref, e.Reason)
}
