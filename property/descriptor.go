// Package property declares the typed, keyed slots a model is built from.
//
// A slot binds a key path into a JSON document ("a.b.c" walks nested objects)
// to a transformer for its element type. Three shapes exist: Property holds an
// optional single value, List an ordered sequence and Map a string-keyed
// mapping. The model engine drives every slot through the Descriptor interface.
package property

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/mcncl/jsonmodel/archive"
	"github.com/mcncl/jsonmodel/internal/errors"
	"github.com/mcncl/jsonmodel/jsonvalue"
)

// ErrInvalidKey is wrapped by ValidateKey failures.
var ErrInvalidKey = errors.ErrInvalidKey

// Descriptor is the type-erased view of a slot.
type Descriptor interface {
	// Key is the dotted JSON key path.
	Key() string
	// Type is the display name of the element type.
	Type() string
	// Required reports whether strict construction needs this slot filled.
	Required() bool
	// FromJSON extracts the slot from a document and reports whether the slot
	// holds a value afterwards.
	FromJSON(doc jsonvalue.Value) bool
	// ToJSON serializes the slot. ok is false when there is nothing to write.
	ToJSON() (value any, ok bool)
	// PostProcess runs the slot's hook, if any.
	PostProcess()
	Encode(a archive.Archive)
	Decode(a archive.Archive)
}

// SplitKey breaks a key path into its segments.
func SplitKey(key string) []string {
	return strings.Split(key, ".")
}

// lookup walks doc along key.
func lookup(doc jsonvalue.Value, key string) jsonvalue.Value {
	return doc.Path(SplitKey(key)...)
}

// ValidateKey rejects empty keys and key paths with empty segments.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	for _, segment := range SplitKey(key) {
		if segment == "" {
			return fmt.Errorf("%w: %q has an empty segment", ErrInvalidKey, key)
		}
	}
	return nil
}

// SameKey reports whether two descriptors identify the same slot. Identity is
// the key alone.
func SameKey(a, b Descriptor) bool {
	return a.Key() == b.Key()
}

// Hash returns a hash of d's key, consistent with SameKey.
func Hash(d Descriptor) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(d.Key()))
	return h.Sum64()
}

// archivable converts transformer output into values an archive can hold
// without a JSON-specific number type.
func archivable(x any) any {
	switch t := x.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = archivable(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = archivable(e)
		}
		return out
	}
	return x
}

// sameJSON compares two serialized values structurally.
func sameJSON(a, b any) bool {
	return jsonvalue.New(a).Equal(jsonvalue.New(b))
}

var (
	_ Descriptor = (*Property[string])(nil)
	_ Descriptor = (*List[string])(nil)
	_ Descriptor = (*Map[string])(nil)
)
