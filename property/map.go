package property

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/mcncl/jsonmodel/archive"
	"github.com/mcncl/jsonmodel/jsonvalue"
	"github.com/mcncl/jsonmodel/transform"
)

// Map is a string-keyed mapping to T. It defaults to empty.
type Map[T any] struct {
	key      string
	tr       transform.Transformer[T]
	values   map[string]T
	required bool
	hook     func(values map[string]T)
}

// NewMap declares a mapping slot at key.
func NewMap[T any](key string, tr transform.Transformer[T]) *Map[T] {
	return &Map[T]{key: key, tr: tr, values: map[string]T{}}
}

func (m *Map[T]) Require() *Map[T] {
	m.required = true
	return m
}

func (m *Map[T]) Default(values map[string]T) *Map[T] {
	m.values = cloneMap(values)
	return m
}

func (m *Map[T]) OnPostProcess(fn func(values map[string]T)) *Map[T] {
	m.hook = fn
	return m
}

func (m *Map[T]) Key() string    { return m.key }
func (m *Map[T]) Type() string   { return transform.TypeName[T]() }
func (m *Map[T]) Required() bool { return m.required }

// Values returns a copy of the mapping.
func (m *Map[T]) Values() map[string]T {
	return cloneMap(m.values)
}

func (m *Map[T]) Get(name string) (T, bool) {
	v, ok := m.values[name]
	return v, ok
}

func (m *Map[T]) Put(name string, value T) {
	if m.values == nil {
		m.values = map[string]T{}
	}
	m.values[name] = value
}

func (m *Map[T]) Delete(name string) {
	delete(m.values, name)
}

func (m *Map[T]) Len() int {
	return len(m.values)
}

// Keys returns the mapping's keys in sorted order.
func (m *Map[T]) Keys() []string {
	return slices.Sorted(maps.Keys(m.values))
}

// All iterates in sorted key order.
func (m *Map[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for _, k := range m.Keys() {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// FromJSON replaces the content with every field of the object at key that
// transforms. Fields that fail are dropped.
func (m *Map[T]) FromJSON(doc jsonvalue.Value) bool {
	values := map[string]T{}
	for name, e := range lookup(doc, m.key).Fields() {
		if v, ok := m.tr.FromJSON(e); ok {
			values[name] = v
		}
	}
	m.values = values
	return len(m.values) > 0
}

func (m *Map[T]) ToJSON() (any, bool) {
	out := make(map[string]any, len(m.values))
	for name, v := range m.values {
		out[name] = m.tr.ToJSON(v)
	}
	return out, true
}

func (m *Map[T]) PostProcess() {
	if m.hook != nil {
		m.hook(m.Values())
	}
}

func (m *Map[T]) Encode(a archive.Archive) {
	out := make(map[string]any, len(m.values))
	for name, v := range m.values {
		out[name] = encodeValue(m.tr, v)
	}
	a.Put(m.key, out)
}

func (m *Map[T]) Decode(a archive.Archive) {
	stored, ok := a.Get(m.key)
	if !ok {
		return
	}
	values := map[string]T{}
	switch t := stored.(type) {
	case map[string]T:
		values = cloneMap(t)
	case map[string]any:
		for name, e := range t {
			if v, ok := decodeValue(m.tr, e); ok {
				values[name] = v
			}
		}
	}
	m.values = values
}

func (m *Map[T]) Equal(other *Map[T]) bool {
	if other == nil || m.key != other.key {
		return false
	}
	a, _ := m.ToJSON()
	b, _ := other.ToJSON()
	return sameJSON(a, b)
}

// Hash is the descriptor hash of the slot.
func (m *Map[T]) Hash() uint64 {
	return Hash(m)
}

func (m *Map[T]) String() string {
	return fmt.Sprintf("Map<%s> (key: %s, count: %d, required: %t)", m.Type(), m.key, len(m.values), m.required)
}

func cloneMap[T any](values map[string]T) map[string]T {
	out := make(map[string]T, len(values))
	maps.Copy(out, values)
	return out
}
