// Package archive is the keyed persistence boundary for models. Descriptors
// write their values under their key and read them back; the archive decides
// how values are stored.
package archive

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Archive stores values by key.
type Archive interface {
	Put(key string, value any)
	Get(key string) (any, bool)
}

// Map is an in-memory Archive.
type Map struct {
	values map[string]any
}

// NewMap returns an empty in-memory archive.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

func (m *Map) Put(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	m.values[key] = value
}

func (m *Map) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of stored keys.
func (m *Map) Len() int {
	return len(m.values)
}

// Keys returns the stored keys in sorted order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Native reports whether v can be archived as-is without going through a
// transformer. Only scalar kinds qualify.
func Native(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

// MarshalYAML renders the archive as a YAML mapping.
func MarshalYAML(m *Map) ([]byte, error) {
	data, err := yaml.Marshal(m.values)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal archive: %w", err)
	}
	return data, nil
}

// UnmarshalYAML reads an archive written by MarshalYAML.
func UnmarshalYAML(data []byte) (*Map, error) {
	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal archive: %w", err)
	}
	return &Map{values: values}, nil
}
