package property

import (
	"fmt"
	"iter"
	"slices"

	"github.com/mcncl/jsonmodel/archive"
	"github.com/mcncl/jsonmodel/jsonvalue"
	"github.com/mcncl/jsonmodel/transform"
)

// List is an ordered sequence of T. It defaults to empty.
type List[T any] struct {
	key      string
	tr       transform.Transformer[T]
	values   []T
	required bool
	hook     func(values []T)
}

// NewList declares a sequence slot at key.
func NewList[T any](key string, tr transform.Transformer[T]) *List[T] {
	return &List[T]{key: key, tr: tr}
}

func (l *List[T]) Require() *List[T] {
	l.required = true
	return l
}

func (l *List[T]) Default(values ...T) *List[T] {
	l.values = slices.Clone(values)
	return l
}

func (l *List[T]) OnPostProcess(fn func(values []T)) *List[T] {
	l.hook = fn
	return l
}

func (l *List[T]) Key() string    { return l.key }
func (l *List[T]) Type() string   { return transform.TypeName[T]() }
func (l *List[T]) Required() bool { return l.required }

// Values returns a copy of the elements.
func (l *List[T]) Values() []T {
	return slices.Clone(l.values)
}

func (l *List[T]) Set(values ...T) {
	l.values = slices.Clone(values)
}

func (l *List[T]) Append(values ...T) {
	l.values = append(l.values, values...)
}

func (l *List[T]) Len() int {
	return len(l.values)
}

// At returns the i'th element. It panics when i is out of range.
func (l *List[T]) At(i int) T {
	return l.values[i]
}

func (l *List[T]) Last() (T, bool) {
	if len(l.values) == 0 {
		var zero T
		return zero, false
	}
	return l.values[len(l.values)-1], true
}

func (l *List[T]) All() iter.Seq2[int, T] {
	return slices.All(l.values)
}

// FromJSON replaces the content with every element of the array at key that
// transforms. Elements that fail are dropped.
func (l *List[T]) FromJSON(doc jsonvalue.Value) bool {
	var values []T
	for _, e := range lookup(doc, l.key).All() {
		if v, ok := l.tr.FromJSON(e); ok {
			values = append(values, v)
		}
	}
	l.values = values
	return len(l.values) > 0
}

func (l *List[T]) ToJSON() (any, bool) {
	out := make([]any, len(l.values))
	for i, v := range l.values {
		out[i] = l.tr.ToJSON(v)
	}
	return out, true
}

func (l *List[T]) PostProcess() {
	if l.hook != nil {
		l.hook(l.Values())
	}
}

func (l *List[T]) Encode(a archive.Archive) {
	out := make([]any, len(l.values))
	for i, v := range l.values {
		out[i] = encodeValue(l.tr, v)
	}
	a.Put(l.key, out)
}

func (l *List[T]) Decode(a archive.Archive) {
	stored, ok := a.Get(l.key)
	if !ok {
		return
	}
	var values []T
	switch t := stored.(type) {
	case []T:
		values = slices.Clone(t)
	case []any:
		for _, e := range t {
			if v, ok := decodeValue(l.tr, e); ok {
				values = append(values, v)
			}
		}
	}
	l.values = values
}

func (l *List[T]) Equal(other *List[T]) bool {
	if other == nil || l.key != other.key {
		return false
	}
	a, _ := l.ToJSON()
	b, _ := other.ToJSON()
	return sameJSON(a, b)
}

// Hash is the descriptor hash of the slot.
func (l *List[T]) Hash() uint64 {
	return Hash(l)
}

func (l *List[T]) String() string {
	return fmt.Sprintf("List<%s> (key: %s, count: %d, required: %t)", l.Type(), l.key, len(l.values), l.required)
}
