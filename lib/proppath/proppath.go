// Package proppath reads and writes values in a plain data graph addressed
// by property paths.
//
// A data graph is built from map[string]any objects, []any arrays and
// scalar leaves, which is what encoding/json, yaml.v3, go-toml and msgpack
// produce when decoding into an empty interface. Paths use dots and
// brackets:
//
//	foo.bar[0].baz["wtf"]   // data["foo"]["bar"][0]["baz"]["wtf"]
//	list[2]                 // data["list"][2]
//	m['key with.dot']       // only reachable through the literal-key fast path
//
// Reads and writes tokenize paths differently. Reads discard every bracket,
// dot and quote. Writes split on dots and opening brackets only, so each
// raw token keeps its closing bracket and quotes; that suffix tells the
// writer whether a missing container should be an object or an array.
package proppath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath matches every *InvalidPathError via errors.Is.
var ErrInvalidPath = errors.New("proppath: invalid path")

// MaxGrow is the most elements a single write may append to an array.
const MaxGrow = 1 << 16

// InvalidPathError reports a path that cannot be written because it runs
// through a non-container value or uses a non-index segment on an array.
type InvalidPathError struct {
	Path    string
	Segment string
	Reason  string
}

func (e *InvalidPathError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("proppath: invalid path %q: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("proppath: invalid path %q at %q: %s", e.Path, e.Segment, e.Reason)
}

func (e *InvalidPathError) Unwrap() error {
	return ErrInvalidPath
}

const (
	readDelimiters = "[].'\""
	decoration     = "]'\""
)

// ReadTokens splits path on '[', ']', '.', '\'' and '"' and drops empty
// tokens.
func ReadTokens(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return strings.ContainsRune(readDelimiters, r)
	})
}

// WriteTokens splits path on '.' and '[' only and drops empty tokens. The
// returned tokens keep their trailing "]", "']" or "\"]".
func WriteTokens(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool {
		return r == '.' || r == '['
	})
}

// Get resolves path against data. The second result is false when any
// segment along the way is absent or not a container; Get never fails.
//
// A path that is itself a key of data is returned directly, which lets flat
// keys contain dots or brackets.
func Get(data map[string]any, path string) (any, bool) {
	if v, ok := data[path]; ok {
		return v, true
	}
	tokens := ReadTokens(path)
	if len(tokens) == 0 {
		return nil, false
	}
	var cur any = data
	for _, tok := range tokens {
		next, ok := child(cur, tok)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Set writes value at path, creating intermediate objects and arrays as
// needed. It reports false without touching data when the value already
// there is the same as value (see Same).
//
// A missing intermediate becomes an array when the next raw token ends in
// an unquoted bracket ("0]") and an object otherwise, including the quoted
// bracket forms ("'k']", "\"k\"]") and plain dotted names.
func Set(data map[string]any, path string, value any) (bool, error) {
	if data == nil {
		return false, &InvalidPathError{Path: path, Reason: "nil data"}
	}
	if old, ok := data[path]; ok {
		if Same(old, value) {
			return false, nil
		}
		data[path] = value
		return true, nil
	}
	tokens := WriteTokens(path)
	if len(tokens) == 0 {
		return false, &InvalidPathError{Path: path, Reason: "empty path"}
	}
	_, changed, err := setIn(data, path, tokens, value)
	return changed, err
}

// setIn writes value below container and returns the container to store
// back into its parent; it differs from the input only when an array grew.
func setIn(container any, path string, tokens []string, value any) (any, bool, error) {
	key := strip(tokens[0])
	if len(tokens) == 1 {
		if old, ok := child(container, key); ok && Same(old, value) {
			return container, false, nil
		}
		return put(container, path, key, value)
	}

	next, ok := child(container, key)
	switch {
	case !ok || next == nil:
		next = newContainer(tokens[1])
	case !isContainer(next):
		return container, false, &InvalidPathError{
			Path:    path,
			Segment: key,
			Reason:  fmt.Sprintf("%T is not an object or array", next),
		}
	}

	updated, changed, err := setIn(next, path, tokens[1:], value)
	if err != nil || !changed {
		return container, false, err
	}
	return put(container, path, key, updated)
}

// newContainer picks the container type for a missing segment from the raw
// token that follows it.
func newContainer(nextRaw string) any {
	switch {
	case strings.HasSuffix(nextRaw, `']`), strings.HasSuffix(nextRaw, `"]`):
		return map[string]any{}
	case strings.HasSuffix(nextRaw, "]"):
		return []any{}
	default:
		return map[string]any{}
	}
}

func put(container any, path, key string, value any) (any, bool, error) {
	switch c := container.(type) {
	case map[string]any:
		c[key] = value
		return c, true, nil
	case []any:
		i, ok := index(key)
		if !ok {
			return container, false, &InvalidPathError{Path: path, Segment: key, Reason: "array segment is not an index"}
		}
		if i-len(c) >= MaxGrow {
			return container, false, &InvalidPathError{Path: path, Segment: key, Reason: "array index out of range"}
		}
		if i >= len(c) {
			c = append(c, make([]any, i+1-len(c))...)
		}
		c[i] = value
		return c, true, nil
	default:
		return container, false, &InvalidPathError{
			Path:    path,
			Segment: key,
			Reason:  fmt.Sprintf("%T is not an object or array", container),
		}
	}
}

func child(container any, key string) (any, bool) {
	switch c := container.(type) {
	case map[string]any:
		v, ok := c[key]
		return v, ok
	case []any:
		i, ok := index(key)
		if !ok || i >= len(c) {
			return nil, false
		}
		return c[i], true
	}
	return nil, false
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

func strip(tok string) string {
	return strings.Trim(tok, decoration)
}

// index parses an unsigned decimal array index.
func index(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	for _, r := range key {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return i, true
}
