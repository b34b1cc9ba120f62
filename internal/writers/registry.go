// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"
)

// WriteFunc serializes one payload.
type WriteFunc func(w io.Writer, payload any) error

// Writer registries (format -> handler). Formats are registered in init()
// blocks of the per-product files.
var (
	AlignmentWriters  = map[string]WriteFunc{}
	AnnotationWriters = map[string]WriteFunc{}
	ProfileWriters    = map[string]WriteFunc{}
)

// Register helpers (idempotent last-wins)
func RegisterAlignment(format string, fn WriteFunc)  { AlignmentWriters[format] = fn }
func RegisterAnnotation(format string, fn WriteFunc) { AnnotationWriters[format] = fn }
func RegisterProfile(format string, fn WriteFunc)    { ProfileWriters[format] = fn }

func WriteAlignment(format string, w io.Writer, payload any) error {
	return dispatch(AlignmentWriters, "alignment", format, w, payload)
}

func WriteAnnotation(format string, w io.Writer, payload any) error {
	return dispatch(AnnotationWriters, "annotation", format, w, payload)
}

func WriteProfile(format string, w io.Writer, payload any) error {
	return dispatch(ProfileWriters, "pssm", format, w, payload)
}

// Formats lists the registered formats of a registry, sorted.
func Formats(reg map[string]WriteFunc) []string {
	out := make([]string, 0, len(reg))
	for f := range reg {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func dispatch(reg map[string]WriteFunc, kind, format string, w io.Writer, payload any) error {
	fn, ok := reg[format]
	if !ok {
		return fmt.Errorf("unknown %s format %q (no writer registered)", kind, format)
	}
	return fn(w, payload)
}
