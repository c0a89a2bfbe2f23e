// Package normalization maps loosely written enum strings from configuration
// files and flags onto their canonical values.
package normalization

import (
	"fmt"
	"sort"
	"strings"

	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"
)

// Key folds s for lookup: surrounding space is trimmed, letters are lowered and
// '-', '_' and inner spaces are dropped, so "current-file", "Current File" and
// "currentFile" share a key.
func Key(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch r {
		case '-', '_', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Enum normalizes strings onto a fixed set of canonical values.
type Enum[T ~string] struct {
	name   string
	values map[string]T
	names  []string
}

// NewEnum returns an Enum for values. name appears in error messages.
func NewEnum[T ~string](name string, values ...T) *Enum[T] {
	e := &Enum[T]{name: name, values: make(map[string]T, len(values))}
	for _, v := range values {
		e.values[Key(string(v))] = v
		e.names = append(e.names, string(v))
	}
	sort.Strings(e.names)
	return e
}

// Lookup returns the canonical value for raw.
func (e *Enum[T]) Lookup(raw string) (T, bool) {
	v, ok := e.values[Key(raw)]
	return v, ok
}

// Normalize returns the canonical value for raw, or raw unchanged when it is
// not recognized so that validation can report it verbatim.
func (e *Enum[T]) Normalize(raw T) T {
	if v, ok := e.Lookup(string(raw)); ok {
		return v
	}
	return raw
}

// Parse is Lookup with a validation error for unknown input.
func (e *Enum[T]) Parse(raw string) (T, error) {
	if v, ok := e.Lookup(raw); ok {
		return v, nil
	}
	var zero T
	return zero, ferrors.ValidationError(fmt.Sprintf("invalid %s %q, valid options: %s", e.name, raw, strings.Join(e.names, ", "))).
		WithContext("value", raw).
		Build()
}

// Values returns the canonical values in ascending order.
func (e *Enum[T]) Values() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}
