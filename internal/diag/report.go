package diag

import (
	"fmt"
	"log/slog"
	"sync"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

// Kind classifies a non-fatal problem of a run.
type Kind string

const (
	KindResourceResolution Kind = "ResourceResolution"
	KindUnmappableDefault  Kind = "UnmappableDefault"
	KindUnmatchedField     Kind = "UnmatchedField"
	KindWriteError         Kind = "WriteError"
)

// Warning is a non-fatal problem. Resource or Path tell where it happened.
type Warning struct {
	Kind     Kind
	Resource string
	Path     string
	Message  string
}

func (w Warning) Error() string {
	switch {
	case w.Resource != "" && w.Path != "":
		return fmt.Sprintf("%s: resource %q: %s: %s", w.Kind, w.Resource, w.Path, w.Message)
	case w.Resource != "":
		return fmt.Sprintf("%s: resource %q: %s", w.Kind, w.Resource, w.Message)
	case w.Path != "":
		return fmt.Sprintf("%s: %s: %s", w.Kind, w.Path, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// Report collects the warnings of a run. It is safe for concurrent use.
type Report struct {
	mu       sync.Mutex
	warnings []Warning
}

// Add records warnings.
func (r *Report) Add(w ...Warning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, w...)
}

// Warnings returns the recorded warnings in the order they were added.
func (r *Report) Warnings() []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Warning(nil), r.warnings...)
}

// Count returns the number of warnings of a kind.
func (r *Report) Count(kind Kind) int {
	n := 0
	for _, w := range r.Warnings() {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// Err returns all warnings as one aggregate error, or nil.
func (r *Report) Err() error {
	ws := r.Warnings()
	if len(ws) == 0 {
		return nil
	}
	errs := make([]error, len(ws))
	for i, w := range ws {
		errs[i] = w
	}
	return utilerrors.NewAggregate(errs)
}

// Log writes every warning at warn level.
func (r *Report) Log() {
	for _, w := range r.Warnings() {
		slog.Warn(w.Message, "kind", w.Kind, "resource", w.Resource, "path", w.Path)
	}
}
