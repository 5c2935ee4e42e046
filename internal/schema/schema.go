// Package schema declares models in YAML so they can be mapped, inferred and
// generated without writing Go.
package schema

import (
	"fmt"
	"os"
	"slices"

	"github.com/mcncl/jsonmodel/internal/errors"
	"github.com/mcncl/jsonmodel/property"
	"gopkg.in/yaml.v3"
)

// Scalar property types.
const (
	TypeString = "string"
	TypeBool   = "bool"
	TypeInt    = "int"
	TypeInt64  = "int64"
	TypeUint   = "uint"
	TypeUint64 = "uint64"
	TypeFloat  = "float"
	TypeDouble = "double"
	TypeURL    = "url"
	TypeDate   = "date"
	TypeColor  = "color"
	TypeUUID   = "uuid"
	TypeEnum   = "enum"
	TypeJSON   = "json"
)

var scalarTypes = []string{
	TypeString, TypeBool, TypeInt, TypeInt64, TypeUint, TypeUint64, TypeFloat,
	TypeDouble, TypeURL, TypeDate, TypeColor, TypeUUID, TypeEnum, TypeJSON,
}

// IsScalar reports whether t names a built-in type rather than a model.
func IsScalar(t string) bool {
	return slices.Contains(scalarTypes, t)
}

// Kind is the shape of a property.
type Kind string

const (
	KindSingle Kind = "single"
	KindList   Kind = "list"
	KindMap    Kind = "map"
)

// Valid reports whether k is a known shape. The empty kind means single.
func (k Kind) Valid() bool {
	switch k {
	case "", KindSingle, KindList, KindMap:
		return true
	}
	return false
}

// Property declares one slot of a model.
type Property struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name,omitempty"`
	Type        string `yaml:"type"`
	Kind        Kind   `yaml:"kind,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
	Values      []any  `yaml:"values,omitempty"`
	Default     any    `yaml:"default,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Shape returns the property kind with the default applied.
func (p Property) Shape() Kind {
	if p.Kind == "" {
		return KindSingle
	}
	return p.Kind
}

// IsModel reports whether the property holds nested models.
func (p Property) IsModel() bool {
	return !IsScalar(p.Type)
}

// StringEnum reports whether every enum value is a string.
func (p Property) StringEnum() bool {
	if len(p.Values) == 0 {
		return false
	}
	for _, v := range p.Values {
		if _, ok := v.(string); !ok {
			return false
		}
	}
	return true
}

// IntEnum reports whether every enum value is an integer.
func (p Property) IntEnum() bool {
	if len(p.Values) == 0 {
		return false
	}
	for _, v := range p.Values {
		if _, ok := v.(int); !ok {
			return false
		}
	}
	return true
}

// Model declares a named model.
type Model struct {
	Name        string     `yaml:"name"`
	Extends     string     `yaml:"extends,omitempty"`
	Description string     `yaml:"description,omitempty"`
	Properties  []Property `yaml:"properties"`
}

// Schema is a set of models.
type Schema struct {
	Root   string   `yaml:"root,omitempty"`
	Models []*Model `yaml:"models"`
}

// ParseFile reads and validates a schema file
func ParseFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewSchemaError(fmt.Sprintf("failed to read schema file %s", path), err)
	}

	return ParseBytes(data)
}

// ParseBytes parses and validates a schema
func ParseBytes(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.NewSchemaError("failed to parse schema", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseString parses and validates a schema from a string
func ParseString(s string) (*Schema, error) {
	return ParseBytes([]byte(s))
}

// Marshal renders the schema as YAML.
func (s *Schema) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, errors.NewSchemaError("failed to marshal schema", err)
	}
	return data, nil
}

// Model looks up a model by name.
func (s *Schema) Model(name string) (*Model, bool) {
	for _, m := range s.Models {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// RootModel returns the declared root, or the first model when no root is set.
func (s *Schema) RootModel() (*Model, bool) {
	if s.Root != "" {
		return s.Model(s.Root)
	}
	if len(s.Models) == 0 {
		return nil, false
	}
	return s.Models[0], true
}

// Lineage returns the chain of models ending at name, ancestors first.
func (s *Schema) Lineage(name string) ([]*Model, error) {
	var chain []*Model
	seen := make(map[string]bool)
	for current := name; current != ""; {
		if seen[current] {
			return nil, errors.NewSchemaError(fmt.Sprintf("model %s extends itself", name), nil)
		}
		seen[current] = true

		m, ok := s.Model(current)
		if !ok {
			return nil, errors.NewSchemaError(fmt.Sprintf("model %s", current), errors.ErrUnknownModel)
		}
		chain = append(chain, m)
		current = m.Extends
	}
	slices.Reverse(chain)
	return chain, nil
}

// Properties returns every property of name including inherited ones,
// ancestors first.
func (s *Schema) Properties(name string) ([]Property, error) {
	chain, err := s.Lineage(name)
	if err != nil {
		return nil, err
	}
	var props []Property
	for _, m := range chain {
		props = append(props, m.Properties...)
	}
	return props, nil
}

// Validate checks names, types, keys and inheritance.
func (s *Schema) Validate() error {
	if len(s.Models) == 0 {
		return errors.NewSchemaError("schema declares no models", nil)
	}

	names := make(map[string]bool, len(s.Models))
	for _, m := range s.Models {
		if m.Name == "" {
			return errors.NewSchemaError("model without a name", nil)
		}
		if IsScalar(m.Name) {
			return errors.NewSchemaError(fmt.Sprintf("model name %s is a built-in type", m.Name), nil)
		}
		if names[m.Name] {
			return errors.NewSchemaError(fmt.Sprintf("model %s declared twice", m.Name), nil)
		}
		names[m.Name] = true
	}

	if s.Root != "" && !names[s.Root] {
		return errors.NewSchemaError(fmt.Sprintf("root model %s", s.Root), errors.ErrUnknownModel)
	}

	for _, m := range s.Models {
		props, err := s.Properties(m.Name)
		if err != nil {
			return err
		}
		keys := make(map[string]bool, len(props))
		for _, p := range props {
			if err := s.validateProperty(m.Name, p); err != nil {
				return err
			}
			if keys[p.Key] {
				return errors.NewSchemaError(fmt.Sprintf("model %s declares key %s twice", m.Name, p.Key), nil)
			}
			keys[p.Key] = true
		}
	}
	return nil
}

func (s *Schema) validateProperty(model string, p Property) error {
	where := fmt.Sprintf("model %s property %q", model, p.Key)

	if err := property.ValidateKey(p.Key); err != nil {
		return errors.NewSchemaError(where, err)
	}
	if !p.Kind.Valid() {
		return errors.NewSchemaError(fmt.Sprintf("%s has unknown kind %s", where, p.Kind), nil)
	}
	if p.Type == "" {
		return errors.NewSchemaError(fmt.Sprintf("%s has no type", where), errors.ErrUnknownType)
	}
	if !IsScalar(p.Type) {
		if _, ok := s.Model(p.Type); !ok {
			return errors.NewSchemaError(fmt.Sprintf("%s type %s", where, p.Type), errors.ErrUnknownType)
		}
		if p.Default != nil {
			return errors.NewSchemaError(fmt.Sprintf("%s: model properties take no default", where), nil)
		}
	}
	if p.Type == TypeEnum && !p.StringEnum() && !p.IntEnum() {
		return errors.NewSchemaError(fmt.Sprintf("%s: enum values must be all strings or all integers", where), nil)
	}
	return nil
}
