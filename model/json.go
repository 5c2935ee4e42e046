package model

import (
	"github.com/mcncl/jsonmodel/archive"
	"github.com/mcncl/jsonmodel/jsonvalue"
	"github.com/mcncl/jsonmodel/property"
	"github.com/mcncl/jsonmodel/transform"
)

// ToJSON serializes m to an object. Slots without a value are skipped. Dotted
// keys are nested and deep-merged with what earlier slots produced.
func ToJSON(m Model) jsonvalue.Value {
	result := jsonvalue.Object(nil)
	for _, p := range m.Properties() {
		raw, ok := p.ToJSON()
		if !ok {
			continue
		}
		value := jsonvalue.New(raw)
		if !value.HasKey() {
			continue
		}

		keys := property.SplitKey(p.Key())
		if len(keys) == 1 {
			result = result.Set(keys[0], value)
			continue
		}

		nested := value
		for i := len(keys) - 1; i > 0; i-- {
			nested = jsonvalue.Object(nil).Set(keys[i], nested)
		}
		head := keys[0]
		result = result.Set(head, result.Get(head).Merge(nested))
	}
	return result
}

// Marshal renders m as indented JSON.
func Marshal(m Model) ([]byte, error) {
	return ToJSON(m).MarshalIndent()
}

// Dictionary returns m as plain Go maps and slices.
func Dictionary(m Model) map[string]any {
	obj, _ := ToJSON(m).Interface().(map[string]any)
	return obj
}

// Copy builds a fresh model leniently from the serialized form of m.
func Copy[M Model](ctor func() M, m M) M {
	return FromJSON(ctor, ToJSON(m))
}

// Encode writes every slot of m into a.
func Encode(m Model, a archive.Archive) {
	for _, p := range m.Properties() {
		p.Encode(a)
	}
}

// Decode builds a model from an archive written by Encode.
func Decode[M Model](ctor func() M, a archive.Archive) M {
	m := ctor()
	for _, p := range m.Properties() {
		p.Decode(a)
	}
	return m
}

// Transformer lets a model type be the element type of a slot. Nested models
// are constructed strictly and only from objects.
func Transformer[M Model](ctor func() M) transform.Transformer[M] {
	return transform.Func(
		func(v jsonvalue.Value) (M, bool) {
			var zero M
			if v.Kind() != jsonvalue.KindObject {
				return zero, false
			}
			m, err := FromStrictJSON(ctor, v)
			if err != nil {
				return zero, false
			}
			return m, true
		},
		func(m M) any {
			return ToJSON(m).Interface()
		},
	)
}
