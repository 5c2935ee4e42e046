package schema

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mcncl/jsonmodel/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vehicleSchema = `
root: Car
models:
  - name: Vehicle
    properties:
      - key: make
        type: string
        required: true
      - key: year
        type: int
      - key: specs.engine.power
        name: Power
        type: int
      - key: fuel
        type: enum
        values: [petrol, diesel, electric]
        default: petrol
      - key: wheels
        type: Wheel
        kind: list
  - name: Car
    extends: Vehicle
    properties:
      - key: doors
        type: int
        required: true
  - name: Wheel
    properties:
      - key: position
        type: string
        required: true
`

func TestParseString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:  "valid schema",
			input: vehicleSchema,
		},
		{
			name:    "invalid YAML",
			input:   "models: [unclosed",
			wantErr: true,
		},
		{
			name:    "no models",
			input:   "root: X\n",
			wantErr: true,
		},
		{
			name:    "unknown type",
			input:   "models:\n  - name: A\n    properties:\n      - key: x\n        type: Missing\n",
			wantErr: true,
		},
		{
			name:    "missing type",
			input:   "models:\n  - name: A\n    properties:\n      - key: x\n",
			wantErr: true,
		},
		{
			name:    "empty key segment",
			input:   "models:\n  - name: A\n    properties:\n      - key: a..b\n        type: string\n",
			wantErr: true,
		},
		{
			name:    "unknown kind",
			input:   "models:\n  - name: A\n    properties:\n      - key: a\n        type: string\n        kind: set\n",
			wantErr: true,
		},
		{
			name:    "mixed enum",
			input:   "models:\n  - name: A\n    properties:\n      - key: a\n        type: enum\n        values: [1, two]\n",
			wantErr: true,
		},
		{
			name:    "duplicate model",
			input:   "models:\n  - name: A\n    properties: []\n  - name: A\n    properties: []\n",
			wantErr: true,
		},
		{
			name:    "model named like a type",
			input:   "models:\n  - name: string\n    properties: []\n",
			wantErr: true,
		},
		{
			name:    "unknown root",
			input:   "root: B\nmodels:\n  - name: A\n    properties: []\n",
			wantErr: true,
		},
		{
			name:    "key redeclared by child",
			input:   "models:\n  - name: A\n    properties:\n      - key: x\n        type: int\n  - name: B\n    extends: A\n    properties:\n      - key: x\n        type: int\n",
			wantErr: true,
		},
		{
			name:    "recursive model reference",
			input:   "models:\n  - name: Node\n    properties:\n      - key: children\n        type: Node\n        kind: list\n",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseString(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeSchema}))
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}

func TestParseString_UnknownTypeSentinel(t *testing.T) {
	_, err := ParseString("models:\n  - name: A\n    properties:\n      - key: x\n        type: Missing\n")
	assert.True(t, stderrors.Is(err, errors.ErrUnknownType))
}

func TestLineage(t *testing.T) {
	s, err := ParseString(vehicleSchema)
	require.NoError(t, err)

	chain, err := s.Lineage("Car")
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, "Vehicle", chain[0].Name, "ancestors first")
	assert.Equal(t, "Car", chain[1].Name)

	props, err := s.Properties("Car")
	require.NoError(t, err)
	keys := make([]string, len(props))
	for i, p := range props {
		keys[i] = p.Key
	}
	assert.Equal(t, []string{"make", "year", "specs.engine.power", "fuel", "wheels", "doors"}, keys)

	_, err = s.Lineage("Truck")
	assert.True(t, stderrors.Is(err, errors.ErrUnknownModel))
}

func TestLineage_Cycle(t *testing.T) {
	s := &Schema{Models: []*Model{
		{Name: "A", Extends: "B"},
		{Name: "B", Extends: "A"},
	}}
	_, err := s.Lineage("A")
	assert.Error(t, err)
	assert.Error(t, s.Validate())
}

func TestRootModel(t *testing.T) {
	s, err := ParseString(vehicleSchema)
	require.NoError(t, err)
	root, ok := s.RootModel()
	require.True(t, ok)
	assert.Equal(t, "Car", root.Name)

	s.Root = ""
	root, ok = s.RootModel()
	require.True(t, ok)
	assert.Equal(t, "Vehicle", root.Name, "first model when no root is set")
}

func TestProperty_Helpers(t *testing.T) {
	s, err := ParseString(vehicleSchema)
	require.NoError(t, err)
	vehicle, ok := s.Model("Vehicle")
	require.True(t, ok)

	fuel := vehicle.Properties[3]
	assert.True(t, fuel.StringEnum())
	assert.False(t, fuel.IntEnum())
	assert.Equal(t, KindSingle, fuel.Shape())
	assert.Equal(t, "petrol", fuel.Default)

	wheels := vehicle.Properties[4]
	assert.True(t, wheels.IsModel())
	assert.Equal(t, KindList, wheels.Shape())

	levels := Property{Type: TypeEnum, Values: []any{1, 2}}
	assert.True(t, levels.IntEnum())
	assert.False(t, Property{Type: TypeEnum}.StringEnum())
}

func TestMarshal_RoundTrip(t *testing.T) {
	s, err := ParseString(vehicleSchema)
	require.NoError(t, err)

	data, err := s.Marshal()
	require.NoError(t, err)

	again, err := ParseBytes(data)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestParseFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "schema_test")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	path := filepath.Join(tmpDir, "vehicle.yml")
	require.NoError(t, os.WriteFile(path, []byte(vehicleSchema), 0o644))

	s, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, s.Models, 3)

	_, err = ParseFile(filepath.Join(tmpDir, "missing.yml"))
	assert.Error(t, err)
	assert.Contains(t, errors.UserFriendlyError(err), "Schema error")
}

func TestIsScalar(t *testing.T) {
	for _, typ := range []string{"string", "date", "uuid", "json", "enum"} {
		assert.True(t, IsScalar(typ), typ)
	}
	assert.False(t, IsScalar("Vehicle"))
}
