package schema

import "fmt"

// DanglingReferenceError is returned for a reference that does not point to a schema of the document.
type DanglingReferenceError struct {
	Ref string
	Err error
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference %q: %v", e.Ref, e.Err)
}

func (e *DanglingReferenceError) Unwrap() error {
	return e.Err
}
