package jsonvalue

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/mcncl/jsonmodel/internal/errors"
)

// Errors reported when a Value cannot be rendered as JSON text, and when a
// document holds more than one root value.
var (
	ErrMissingContent = errors.ErrMissingContent
	ErrInvalidContent = errors.ErrInvalidContent
	ErrMultipleJSON   = errors.ErrMultipleJSON
)

// Parse decodes data as a single JSON document. Malformed, empty or nil input
// yields the absent value; partial results are never returned.
func Parse(data []byte) Value {
	if len(data) == 0 {
		return Value{}
	}
	v, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Value{}
	}
	return v
}

// ParseString is Parse for string input.
func ParseString(s string) Value {
	return Parse([]byte(s))
}

// Decode reads exactly one JSON document from r. Empty input reports io.EOF,
// syntax problems report the *json.SyntaxError from encoding/json and a second
// value after the first reports ErrMultipleJSON.
func Decode(r io.Reader) (Value, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var raw any
	if err := decoder.Decode(&raw); err != nil {
		return Value{}, err
	}

	var trailing any
	switch err := decoder.Decode(&trailing); {
	case err == nil:
		return Value{}, ErrMultipleJSON
	case !stderrors.Is(err, io.EOF):
		return Value{}, err
	}

	return New(raw), nil
}

// Marshal renders v as compact JSON. An absent root fails with
// ErrMissingContent and a null root with ErrInvalidContent.
func (v Value) Marshal() ([]byte, error) {
	return v.render("")
}

// MarshalIndent renders v as JSON indented with two spaces.
func (v Value) MarshalIndent() ([]byte, error) {
	return v.render("  ")
}

func (v Value) render(indent string) ([]byte, error) {
	switch v.kind {
	case KindAbsent:
		return nil, errors.NewSerializeError("value has no content", ErrMissingContent)
	case KindNull:
		return nil, errors.NewSerializeError("null is not valid root content", ErrInvalidContent)
	}
	data, err := encode(v.Interface(), indent)
	if err != nil {
		return nil, errors.NewSerializeError("failed to encode JSON", err)
	}
	return data, nil
}

func encode(x any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if indent != "" {
		encoder.SetIndent("", indent)
	}
	if err := encoder.Encode(x); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalJSON implements json.Marshaler. The absent value encodes as null so a
// Value can sit inside larger encoding/json structures.
func (v Value) MarshalJSON() ([]byte, error) {
	return encode(v.Interface(), "")
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// String renders primitives as their plain text and containers as indented
// JSON. Null renders as "null" and the absent value as "".
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return v.str
	case KindNumber:
		return v.str
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindArray, KindObject:
		data, err := encode(v.Interface(), "  ")
		if err != nil {
			return ""
		}
		return string(data)
	}
	return ""
}

// GoString renders v as compact JSON for %#v.
func (v Value) GoString() string {
	if v.kind == KindAbsent {
		return "jsonvalue.Value{}"
	}
	data, err := encode(v.Interface(), "")
	if err != nil {
		return "jsonvalue.Value{}"
	}
	return "jsonvalue.Value(" + strings.TrimSpace(string(data)) + ")"
}
