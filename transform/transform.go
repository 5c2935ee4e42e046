// Package transform converts semantic Go types to and from JSON values.
//
// A Transformer[T] is a pair of pure functions. Extraction reports false on a
// type mismatch or a missing value; serialization returns a JSON-compatible Go
// value (string, bool, number, []any, map[string]any or nil) that
// jsonvalue.New accepts. Dispatch is static: each property is declared with the
// transformer for its element type, there is no registry keyed by type name.
package transform

import (
	"fmt"
	"image/color"
	"net/url"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/mcncl/jsonmodel/jsonvalue"
)

// Transformer maps T to and from JSON.
type Transformer[T any] interface {
	FromJSON(v jsonvalue.Value) (T, bool)
	ToJSON(value T) any
}

type funcTransformer[T any] struct {
	from func(jsonvalue.Value) (T, bool)
	to   func(T) any
}

func (f funcTransformer[T]) FromJSON(v jsonvalue.Value) (T, bool) {
	return f.from(v)
}

func (f funcTransformer[T]) ToJSON(value T) any {
	return f.to(value)
}

// Func builds a Transformer from a pair of functions.
func Func[T any](from func(jsonvalue.Value) (T, bool), to func(T) any) Transformer[T] {
	return funcTransformer[T]{from: from, to: to}
}

func identity[T any](value T) any {
	return value
}

// Built-in transformers.
var (
	String  Transformer[string]  = Func(jsonvalue.Value.AsString, identity[string])
	Bool    Transformer[bool]    = Func(jsonvalue.Value.AsBool, identity[bool])
	Int     Transformer[int]     = Func(jsonvalue.Value.AsInt, identity[int])
	Int64   Transformer[int64]   = Func(jsonvalue.Value.AsInt64, identity[int64])
	Uint    Transformer[uint]    = Func(jsonvalue.Value.AsUint, identity[uint])
	Uint64  Transformer[uint64]  = Func(jsonvalue.Value.AsUint64, identity[uint64])
	Float32 Transformer[float32] = Func(jsonvalue.Value.AsFloat32, identity[float32])
	Float64 Transformer[float64] = Func(jsonvalue.Value.AsFloat64, identity[float64])

	URL   Transformer[*url.URL]        = Func(jsonvalue.Value.AsURL, urlToJSON)
	Date  Transformer[time.Time]       = Func(dateFromJSON, dateToJSON)
	Color Transformer[color.NRGBA]     = Func(colorFromJSON, colorToJSON)
	UUID  Transformer[uuid.UUID]       = Func(uuidFromJSON, uuidToJSON)
	Value Transformer[jsonvalue.Value] = Func(valueFromJSON, valueToJSON)
)

func urlToJSON(u *url.URL) any {
	if u == nil {
		return nil
	}
	return u.String()
}

func uuidFromJSON(v jsonvalue.Value) (uuid.UUID, bool) {
	s, ok := v.AsString()
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func uuidToJSON(id uuid.UUID) any {
	return id.String()
}

// valueFromJSON passes raw JSON through untouched. Null counts as no value.
func valueFromJSON(v jsonvalue.Value) (jsonvalue.Value, bool) {
	return v, v.HasValue()
}

func valueToJSON(v jsonvalue.Value) any {
	return v.Interface()
}

// TypeName returns the display name of T used in descriptors and diagnostics.
func TypeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

// Must extracts raw with tr and panics when it does not fit. It is meant for
// defaults in generated and package-level code.
func Must[T any](tr Transformer[T], raw any) T {
	v, ok := tr.FromJSON(jsonvalue.New(raw))
	if !ok {
		panic(fmt.Sprintf("transform: %v is not a valid %s", raw, TypeName[T]()))
	}
	return v
}
