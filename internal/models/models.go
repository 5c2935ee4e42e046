// Package models builds model instances from schema declarations at runtime.
package models

import (
	"fmt"

	"github.com/mcncl/jsonmodel/internal/errors"
	"github.com/mcncl/jsonmodel/internal/schema"
	"github.com/mcncl/jsonmodel/jsonvalue"
	"github.com/mcncl/jsonmodel/model"
	"github.com/mcncl/jsonmodel/property"
	"github.com/mcncl/jsonmodel/transform"
)

// Model is a schema-declared model. Its slots follow the declaration order of
// the schema, ancestors first.
type Model struct {
	name  string
	props []property.Descriptor
	byKey map[string]property.Descriptor
}

func (m *Model) ModelName() string {
	return m.name
}

func (m *Model) Properties() []property.Descriptor {
	return m.props
}

// Property looks up a slot by key.
func (m *Model) Property(key string) (property.Descriptor, bool) {
	d, ok := m.byKey[key]
	return d, ok
}

// Value returns the serialized value of the slot at key, or the absent value.
func (m *Model) Value(key string) jsonvalue.Value {
	d, ok := m.byKey[key]
	if !ok {
		return jsonvalue.Value{}
	}
	raw, ok := d.ToJSON()
	if !ok {
		return jsonvalue.Value{}
	}
	return jsonvalue.New(raw)
}

// typed reports the schema type name instead of the Go element type.
type typed struct {
	property.Descriptor
	typ string
}

func (t typed) Type() string {
	return t.typ
}

func (t typed) String() string {
	return fmt.Sprintf("%v", t.Descriptor)
}

func typeName(p schema.Property) string {
	switch p.Shape() {
	case schema.KindList:
		return "[]" + p.Type
	case schema.KindMap:
		return "map[string]" + p.Type
	}
	return p.Type
}

// Factory creates models declared by a schema.
type Factory struct {
	schema *schema.Schema
}

// NewFactory checks that every model in s can be built.
func NewFactory(s *schema.Schema) (*Factory, error) {
	f := &Factory{schema: s}
	for _, m := range s.Models {
		if _, err := f.New(m.Name); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Schema returns the schema the factory builds from.
func (f *Factory) Schema() *schema.Schema {
	return f.schema
}

// New creates an instance of the named model with every slot at its default.
func (f *Factory) New(name string) (*Model, error) {
	props, err := f.schema.Properties(name)
	if err != nil {
		return nil, err
	}

	m := &Model{
		name:  name,
		props: make([]property.Descriptor, 0, len(props)),
		byKey: make(map[string]property.Descriptor, len(props)),
	}
	for _, p := range props {
		d, err := f.descriptor(p)
		if err != nil {
			return nil, errors.NewSchemaError(fmt.Sprintf("model %s property %q", name, p.Key), err)
		}
		d = typed{Descriptor: d, typ: typeName(p)}
		m.props = append(m.props, d)
		m.byKey[p.Key] = d
	}
	return m, nil
}

// Constructor returns a constructor for the named model. The model must exist
// in a schema the factory has already checked.
func (f *Factory) Constructor(name string) func() *Model {
	return func() *Model {
		m, err := f.New(name)
		if err != nil {
			panic(err)
		}
		return m
	}
}

func (f *Factory) descriptor(p schema.Property) (property.Descriptor, error) {
	switch p.Type {
	case schema.TypeString:
		return build(p, transform.String)
	case schema.TypeBool:
		return build(p, transform.Bool)
	case schema.TypeInt:
		return build(p, transform.Int)
	case schema.TypeInt64:
		return build(p, transform.Int64)
	case schema.TypeUint:
		return build(p, transform.Uint)
	case schema.TypeUint64:
		return build(p, transform.Uint64)
	case schema.TypeFloat:
		return build(p, transform.Float32)
	case schema.TypeDouble:
		return build(p, transform.Float64)
	case schema.TypeURL:
		return build(p, transform.URL)
	case schema.TypeDate:
		return build(p, transform.Date)
	case schema.TypeColor:
		return build(p, transform.Color)
	case schema.TypeUUID:
		return build(p, transform.UUID)
	case schema.TypeJSON:
		return build(p, transform.Value)
	case schema.TypeEnum:
		return enumDescriptor(p)
	}
	if _, ok := f.schema.Model(p.Type); !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnknownType, p.Type)
	}
	return build(p, model.Transformer(f.Constructor(p.Type)))
}

func enumDescriptor(p schema.Property) (property.Descriptor, error) {
	switch {
	case p.StringEnum():
		values := make([]string, len(p.Values))
		for i, v := range p.Values {
			values[i] = v.(string)
		}
		return build(p, transform.StringEnum(values...))
	case p.IntEnum():
		values := make([]int, len(p.Values))
		for i, v := range p.Values {
			values[i] = v.(int)
		}
		return build(p, transform.IntEnum(values...))
	}
	return nil, fmt.Errorf("%w: enum without values", errors.ErrUnknownType)
}

func build[T any](p schema.Property, tr transform.Transformer[T]) (property.Descriptor, error) {
	switch p.Shape() {
	case schema.KindList:
		l := property.NewList(p.Key, tr)
		if p.Required {
			l.Require()
		}
		if p.Default != nil {
			values, err := defaultList(p.Default, tr)
			if err != nil {
				return nil, err
			}
			l.Default(values...)
		}
		return l, nil

	case schema.KindMap:
		m := property.NewMap(p.Key, tr)
		if p.Required {
			m.Require()
		}
		if p.Default != nil {
			values, err := defaultMap(p.Default, tr)
			if err != nil {
				return nil, err
			}
			m.Default(values)
		}
		return m, nil
	}

	prop := property.New(p.Key, tr)
	if p.Required {
		prop.Require()
	}
	if p.Default != nil {
		v, ok := tr.FromJSON(jsonvalue.New(p.Default))
		if !ok {
			return nil, fmt.Errorf("default %v is not a valid %s", p.Default, transform.TypeName[T]())
		}
		prop.Default(v)
	}
	return prop, nil
}

func defaultList[T any](raw any, tr transform.Transformer[T]) ([]T, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("list default must be a sequence, got %T", raw)
	}
	values := make([]T, 0, len(items))
	for _, item := range items {
		v, ok := tr.FromJSON(jsonvalue.New(item))
		if !ok {
			return nil, fmt.Errorf("default element %v is not a valid %s", item, transform.TypeName[T]())
		}
		values = append(values, v)
	}
	return values, nil
}

func defaultMap[T any](raw any, tr transform.Transformer[T]) (map[string]T, error) {
	items, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("map default must be a mapping, got %T", raw)
	}
	values := make(map[string]T, len(items))
	for name, item := range items {
		v, ok := tr.FromJSON(jsonvalue.New(item))
		if !ok {
			return nil, fmt.Errorf("default for %s: %v is not a valid %s", name, item, transform.TypeName[T]())
		}
		values[name] = v
	}
	return values, nil
}
