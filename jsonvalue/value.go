// Package jsonvalue provides an immutable, dynamically typed JSON tree.
//
// A Value holds exactly one of null, string, number, bool, array or object, or
// nothing at all (the absent value, which is also the zero Value). Lookups never
// fail: asking a non-object for a key, or an absent value for anything, yields
// the absent value. Assignment returns a new tree and leaves the receiver intact.
package jsonvalue

import (
	"encoding/json"
	"maps"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the dynamic type held by a Value.
type Kind int

const (
	KindAbsent Kind = iota
	KindNull
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindAbsent: "absent",
	KindNull:   "null",
	KindString: "string",
	KindNumber: "number",
	KindBool:   "bool",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// Value is a JSON tree node. The zero Value is absent.
type Value struct {
	kind Kind
	str  string // string content, or the decimal text of a number
	b    bool
	arr  []Value
	obj  map[string]Value
}

// Null returns an explicit JSON null.
func Null() Value {
	return Value{kind: KindNull}
}

// String wraps s.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number wraps a decimal number. Text that is not a valid JSON number
// yields the absent value.
func Number(n json.Number) Value {
	if !validNumber(string(n)) {
		return Value{}
	}
	return Value{kind: KindNumber, str: string(n)}
}

// Int wraps a signed integer.
func Int(i int64) Value {
	return Value{kind: KindNumber, str: strconv.FormatInt(i, 10)}
}

// Uint wraps an unsigned integer.
func Uint(u uint64) Value {
	return Value{kind: KindNumber, str: strconv.FormatUint(u, 10)}
}

// Float wraps a float. NaN and infinities have no JSON form and yield the
// absent value.
func Float(f float64) Value {
	return floatValue(f, 64)
}

func floatValue(f float64, bitSize int) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindNumber, str: strconv.FormatFloat(f, 'g', -1, bitSize)}
}

// Bool wraps b.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Array builds an array from elements. Absent elements are stored as null.
func Array(elements ...Value) Value {
	arr := make([]Value, len(elements))
	for i, e := range elements {
		if e.kind == KindAbsent {
			e = Null()
		}
		arr[i] = e
	}
	return Value{kind: KindArray, arr: arr}
}

// Object builds an object from fields. Absent fields are dropped. A nil
// map yields an empty object.
func Object(fields map[string]Value) Value {
	obj := make(map[string]Value, len(fields))
	for k, v := range fields {
		if v.kind != KindAbsent {
			obj[k] = v
		}
	}
	return Value{kind: KindObject, obj: obj}
}

// New wraps an arbitrary Go value. It accepts the shapes produced by
// encoding/json (map[string]any, []any, json.Number, float64, string, bool,
// nil), every integer and float kind, Values, and any other slice, array or
// string-keyed map through reflection. Anything else yields the absent value.
func New(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case json.Number:
		return Number(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Uint(uint64(t))
	case uint8:
		return Uint(uint64(t))
	case uint16:
		return Uint(uint64(t))
	case uint32:
		return Uint(uint64(t))
	case uint64:
		return Uint(t)
	case float32:
		return floatValue(float64(t), 32)
	case float64:
		return Float(t)
	case []Value:
		return Array(t...)
	case []any:
		arr := make([]Value, len(t))
		for i, e := range t {
			arr[i] = New(e)
		}
		return Array(arr...)
	case map[string]Value:
		return Object(t)
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, e := range t {
			obj[k] = New(e)
		}
		return Object(obj)
	}
	return reflectValue(reflect.ValueOf(v))
}

func reflectValue(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		return reflectValue(rv.Elem())
	case reflect.String:
		return String(rv.String())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Uint(rv.Uint())
	case reflect.Float32:
		return floatValue(rv.Float(), 32)
	case reflect.Float64:
		return Float(rv.Float())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null()
		}
		arr := make([]Value, rv.Len())
		for i := range arr {
			arr[i] = reflectValue(rv.Index(i))
		}
		return Array(arr...)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}
		}
		obj := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			obj[iter.Key().String()] = reflectValue(iter.Value())
		}
		return Object(obj)
	}
	return Value{}
}

// Kind reports the dynamic type of v.
func (v Value) Kind() Kind {
	return v.kind
}

// HasKey reports whether the slot holding v existed, including explicit nulls.
func (v Value) HasKey() bool {
	return v.kind != KindAbsent
}

// HasValue reports whether v holds something other than null.
func (v Value) HasValue() bool {
	return v.kind != KindAbsent && v.kind != KindNull
}

// Get returns the child at key, or the absent value when v is not an object
// or has no such key.
func (v Value) Get(key string) Value {
	if v.kind != KindObject {
		return Value{}
	}
	return v.obj[key]
}

// Path walks keys with repeated Get.
func (v Value) Path(keys ...string) Value {
	for _, k := range keys {
		v = v.Get(k)
	}
	return v
}

// GetPath walks a dotted key path such as "a.b.c".
func (v Value) GetPath(path string) Value {
	return v.Path(strings.Split(path, ".")...)
}

// Set returns a copy of v with key bound to value. When v is not an object the
// result is a new single-key object and the previous content is discarded.
// Binding an absent value removes key.
func (v Value) Set(key string, value Value) Value {
	var obj map[string]Value
	if v.kind == KindObject {
		obj = maps.Clone(v.obj)
	}
	if obj == nil {
		obj = make(map[string]Value, 1)
	}
	if value.kind == KindAbsent {
		delete(obj, key)
	} else {
		obj[key] = value
	}
	return Value{kind: KindObject, obj: obj}
}

// Merge deep-merges other over v. When both are objects their keys are united
// recursively with other winning on conflict; otherwise other replaces v.
func (v Value) Merge(other Value) Value {
	if v.kind != KindObject || other.kind != KindObject {
		return other
	}
	obj := maps.Clone(v.obj)
	for k, ov := range other.obj {
		if existing, ok := obj[k]; ok {
			obj[k] = existing.Merge(ov)
			continue
		}
		obj[k] = ov
	}
	return Value{kind: KindObject, obj: obj}
}

// Keys returns the keys of an object in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports structural, type-strict equality. Numbers compare by numeric
// value; a number never equals a string with the same text.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindAbsent, KindNull:
		return true
	case KindString:
		return v.str == other.str
	case KindBool:
		return v.b == other.b
	case KindNumber:
		return numbersEqual(v.str, other.str)
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, ev := range v.obj {
			ov, ok := other.obj[k]
			if !ok || !ev.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

func numbersEqual(a, b string) bool {
	if a == b {
		return true
	}
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		return ai == bi
	}
	// Exact for any literal, so large integers that share a float64 still differ
	ar, aok := new(big.Rat).SetString(a)
	br, bok := new(big.Rat).SetString(b)
	if aok && bok {
		return ar.Cmp(br) == 0
	}
	af, aerr := strconv.ParseFloat(a, 64)
	bf, berr := strconv.ParseFloat(b, 64)
	return aerr == nil && berr == nil && af == bf
}

// Interface converts v into plain Go values: map[string]any, []any,
// json.Number, string, bool and nil. The absent value converts to nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return json.Number(v.str)
	case KindBool:
		return v.b
	case KindArray:
		arr := make([]any, len(v.arr))
		for i, e := range v.arr {
			arr[i] = e.Interface()
		}
		return arr
	case KindObject:
		obj := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			obj[k] = e.Interface()
		}
		return obj
	}
	return nil
}

// validNumber reports whether s is a JSON number literal.
func validNumber(s string) bool {
	if s == "" || !json.Valid([]byte(s)) {
		return false
	}
	// Only number literals start with '-' or a digit and end with a digit
	first, last := s[0], s[len(s)-1]
	return (first == '-' || isDigit(first)) && isDigit(last)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
