package property

import (
	"fmt"

	"github.com/mcncl/jsonmodel/archive"
	"github.com/mcncl/jsonmodel/jsonvalue"
	"github.com/mcncl/jsonmodel/transform"
)

// Property is an optional single value of type T.
type Property[T any] struct {
	key      string
	tr       transform.Transformer[T]
	value    T
	set      bool
	required bool
	hook     func(value T, ok bool)
}

// New declares a single-value slot at key.
func New[T any](key string, tr transform.Transformer[T]) *Property[T] {
	return &Property[T]{key: key, tr: tr}
}

// Require marks the slot as needed by strict construction.
func (p *Property[T]) Require() *Property[T] {
	p.required = true
	return p
}

// Default sets the initial value. Extraction that finds nothing usable keeps it.
func (p *Property[T]) Default(value T) *Property[T] {
	p.value = value
	p.set = true
	return p
}

// OnPostProcess registers a hook that receives the final value after
// construction.
func (p *Property[T]) OnPostProcess(fn func(value T, ok bool)) *Property[T] {
	p.hook = fn
	return p
}

func (p *Property[T]) Key() string    { return p.key }
func (p *Property[T]) Type() string   { return transform.TypeName[T]() }
func (p *Property[T]) Required() bool { return p.required }

// Value returns the held value and whether one is set.
func (p *Property[T]) Value() (T, bool) {
	return p.value, p.set
}

// Get returns the held value, or the zero T.
func (p *Property[T]) Get() T {
	return p.value
}

func (p *Property[T]) Set(value T) {
	p.value = value
	p.set = true
}

func (p *Property[T]) Clear() {
	var zero T
	p.value = zero
	p.set = false
}

func (p *Property[T]) IsSet() bool {
	return p.set
}

func (p *Property[T]) FromJSON(doc jsonvalue.Value) bool {
	if v, ok := p.tr.FromJSON(lookup(doc, p.key)); ok {
		p.value = v
		p.set = true
	}
	return p.set
}

func (p *Property[T]) ToJSON() (any, bool) {
	if !p.set {
		return nil, false
	}
	return p.tr.ToJSON(p.value), true
}

func (p *Property[T]) PostProcess() {
	if p.hook != nil {
		p.hook(p.value, p.set)
	}
}

func (p *Property[T]) Encode(a archive.Archive) {
	if !p.set {
		return
	}
	a.Put(p.key, encodeValue(p.tr, p.value))
}

func (p *Property[T]) Decode(a archive.Archive) {
	stored, ok := a.Get(p.key)
	if !ok {
		return
	}
	if v, ok := decodeValue(p.tr, stored); ok {
		p.value = v
		p.set = true
	}
}

// Equal compares key and value.
func (p *Property[T]) Equal(other *Property[T]) bool {
	if other == nil || p.key != other.key || p.set != other.set {
		return false
	}
	if !p.set {
		return true
	}
	a, _ := p.ToJSON()
	b, _ := other.ToJSON()
	return sameJSON(a, b)
}

// Hash is the descriptor hash of the slot.
func (p *Property[T]) Hash() uint64 {
	return Hash(p)
}

func (p *Property[T]) String() string {
	value := "nil"
	if p.set {
		value = fmt.Sprintf("%v", p.value)
	}
	return fmt.Sprintf("Property<%s> (key: %s, value: %s, required: %t)", p.Type(), p.key, value, p.required)
}

func encodeValue[T any](tr transform.Transformer[T], value T) any {
	if archive.Native(value) {
		return value
	}
	return archivable(tr.ToJSON(value))
}

func decodeValue[T any](tr transform.Transformer[T], stored any) (T, bool) {
	if v, ok := stored.(T); ok {
		return v, true
	}
	return tr.FromJSON(jsonvalue.New(stored))
}
