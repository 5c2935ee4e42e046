package jsonvalue

import (
	"encoding/json"
	"iter"
	"maps"
	"math"
	"net/url"
	"slices"
	"strconv"
)

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// StringValue returns the string held by v, or "".
func (v Value) StringValue() string {
	s, _ := v.AsString()
	return s
}

// AsNumber returns the decimal text of a number.
func (v Value) AsNumber() (json.Number, bool) {
	if v.kind != KindNumber {
		return "", false
	}
	return json.Number(v.str), true
}

// NumberValue returns the number held by v, or "0".
func (v Value) NumberValue() json.Number {
	if n, ok := v.AsNumber(); ok {
		return n
	}
	return "0"
}

// AsInt64 converts a number to int64. Fractions truncate toward zero; numbers
// outside the int64 range fail.
func (v Value) AsInt64() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if i, err := strconv.ParseInt(v.str, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(v.str, 64)
	if err != nil || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// Int64Value returns the int64 held by v, or 0.
func (v Value) Int64Value() int64 {
	i, _ := v.AsInt64()
	return i
}

// AsInt converts a number to int.
func (v Value) AsInt() (int, bool) {
	i, ok := v.AsInt64()
	if !ok || i < math.MinInt || i > math.MaxInt {
		return 0, false
	}
	return int(i), true
}

// IntValue returns the int held by v, or 0.
func (v Value) IntValue() int {
	i, _ := v.AsInt()
	return i
}

// AsUint64 converts a non-negative number to uint64. Fractions truncate toward
// zero; negative numbers other than -0 fail.
func (v Value) AsUint64() (uint64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if u, err := strconv.ParseUint(v.str, 10, 64); err == nil {
		return u, true
	}
	f, err := strconv.ParseFloat(v.str, 64)
	if err != nil || f < 0 || f >= math.MaxUint64 {
		return 0, false
	}
	return uint64(f), true
}

// Uint64Value returns the uint64 held by v, or 0.
func (v Value) Uint64Value() uint64 {
	u, _ := v.AsUint64()
	return u
}

// AsUint converts a non-negative number to uint.
func (v Value) AsUint() (uint, bool) {
	u, ok := v.AsUint64()
	if !ok || u > math.MaxUint {
		return 0, false
	}
	return uint(u), true
}

// UintValue returns the uint held by v, or 0.
func (v Value) UintValue() uint {
	u, _ := v.AsUint()
	return u
}

// AsFloat64 converts a number to float64.
func (v Value) AsFloat64() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.str, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Float64Value returns the float64 held by v, or 0.
func (v Value) Float64Value() float64 {
	f, _ := v.AsFloat64()
	return f
}

// AsFloat32 converts a number to float32.
func (v Value) AsFloat32() (float32, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.str, 32)
	if err != nil {
		return 0, false
	}
	return float32(f), true
}

// Float32Value returns the float32 held by v, or 0.
func (v Value) Float32Value() float32 {
	f, _ := v.AsFloat32()
	return f
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// BoolValue returns the boolean held by v, or false.
func (v Value) BoolValue() bool {
	b, _ := v.AsBool()
	return b
}

// AsURL parses a non-empty string as a URL.
func (v Value) AsURL() (*url.URL, bool) {
	s, ok := v.AsString()
	if !ok || s == "" {
		return nil, false
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, false
	}
	return u, true
}

// AsArray returns a copy of the elements of an array.
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	out := make([]Value, len(v.arr))
	copy(out, v.arr)
	return out, true
}

// ArrayValue returns the elements of an array, or an empty slice.
func (v Value) ArrayValue() []Value {
	if arr, ok := v.AsArray(); ok {
		return arr
	}
	return []Value{}
}

// AsObject returns a copy of the fields of an object.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return maps.Clone(v.obj), true
}

// ObjectValue returns the fields of an object, or an empty map.
func (v Value) ObjectValue() map[string]Value {
	if obj, ok := v.AsObject(); ok && obj != nil {
		return obj
	}
	return map[string]Value{}
}

// Len returns the number of array elements. Every other kind has length 0.
func (v Value) Len() int {
	if v.kind != KindArray {
		return 0
	}
	return len(v.arr)
}

// Index returns the i'th array element, or the absent value when v is not an
// array or i is out of range.
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}
	}
	return v.arr[i]
}

// All iterates over array elements. Non-arrays yield nothing.
func (v Value) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		if v.kind != KindArray {
			return
		}
		for i, e := range v.arr {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Values returns the array elements, or nil for non-arrays.
func (v Value) Values() []Value {
	if v.kind != KindArray {
		return nil
	}
	return slices.Clone(v.arr)
}

// Fields iterates over object fields in sorted key order. Non-objects yield
// nothing.
func (v Value) Fields() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range v.Keys() {
			if !yield(k, v.obj[k]) {
				return
			}
		}
	}
}
