package generator

import (
	stderrors "errors"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/mcncl/jsonmodel/internal/config"
	"github.com/mcncl/jsonmodel/internal/errors"
	"github.com/mcncl/jsonmodel/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fleetSchema = `
root: Car
models:
  - name: Vehicle
    description: Vehicle is anything with wheels.
    properties:
      - key: id
        type: uuid
      - key: make
        type: string
        required: true
      - key: specs.engine.power
        type: int
      - key: built
        type: date
        default: "2015-08-21T12:30:45.000Z"
      - key: website
        type: url
      - key: paint
        type: color
        default: "#FF0000"
      - key: fuel
        type: enum
        values: [petrol, diesel]
        default: petrol
      - key: gears
        type: enum
        values: [5, 6]
      - key: tags
        type: string
        kind: list
        default: [new, used]
      - key: prices
        type: double
        kind: map
        default: {base: 100, extra: 2.5}
      - key: extra
        type: json
        default: {a: [1, 2]}
      - key: wheels
        type: Wheel
        kind: list
  - name: Car
    extends: Vehicle
    properties:
      - key: doors
        type: int
        required: true
      - key: properties
        type: string
  - name: Wheel
    properties:
      - key: position
        type: string
`

func parseSchema(t *testing.T, src string) *schema.Schema {
	t.Helper()
	s, err := schema.ParseString(src)
	require.NoError(t, err)
	return s
}

func TestGenerateModels_SimpleModel(t *testing.T) {
	s := parseSchema(t, `
models:
  - name: Wheel
    properties:
      - key: position
        type: string
        required: true
      - key: pressure
        type: double
        default: 2.5
`)
	cfg := config.NewConfig()
	cfg.Generate.Constructors = false

	result, err := NewGeneratorWithConfig(cfg).GenerateModels(s, "main")
	require.NoError(t, err)

	expectedCode := `package main

import (
	"github.com/mcncl/jsonmodel/property"
	"github.com/mcncl/jsonmodel/transform"
)

type Wheel struct {
	Position *property.Property[string]
	Pressure *property.Property[float64]
}

// NewWheel returns a Wheel with every property at its default.
func NewWheel() *Wheel {
	return &Wheel{
		Position: property.New("position", transform.String).Require(),
		Pressure: property.New("pressure", transform.Float64).Default(2.5),
	}
}

// Properties lists the property slots of a Wheel in declaration order.
func (m *Wheel) Properties() []property.Descriptor {
	return []property.Descriptor{m.Position, m.Pressure}
}
`
	assert.Equal(t, expectedCode, result)
}

func TestGenerateModels_Fleet(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Generate.FileHeader = "Code generated by jsonmodel. DO NOT EDIT."

	result, err := NewGeneratorWithConfig(cfg).GenerateModels(parseSchema(t, fleetSchema), "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result, "// Code generated by jsonmodel. DO NOT EDIT.\n\npackage models\n"))

	// Imports are grouped, standard library first
	assert.Contains(t, result, `import (
	"image/color"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/mcncl/jsonmodel/jsonvalue"
	"github.com/mcncl/jsonmodel/model"
	"github.com/mcncl/jsonmodel/property"
	"github.com/mcncl/jsonmodel/transform"
)`)

	// Root model first, then by name
	carAt := strings.Index(result, "type Car struct")
	vehicleAt := strings.Index(result, "type Vehicle struct")
	wheelAt := strings.Index(result, "type Wheel struct")
	assert.True(t, carAt >= 0 && carAt < vehicleAt && vehicleAt < wheelAt)

	for _, want := range []string{
		"// Vehicle is anything with wheels.\ntype Vehicle struct {",
		"\t*Vehicle\n",
		"\tID *property.Property[uuid.UUID]\n",
		"\tSpecsEnginePower *property.Property[int]\n",
		"\tWheels *property.List[*Wheel]\n",
		"\tPrices *property.Map[float64]\n",
		"\tProperties1 *property.Property[string]\n",
		`Vehicle: NewVehicle(),`,
		`Make: property.New("make", transform.String).Require(),`,
		`Built: property.New("built", transform.Date).Default(transform.Must(transform.Date, "2015-08-21T12:30:45.000Z")),`,
		`Paint: property.New("paint", transform.Color).Default(transform.Must(transform.Color, "#FF0000")),`,
		`Fuel: property.New("fuel", transform.StringEnum("petrol", "diesel")).Default("petrol"),`,
		`Gears: property.New("gears", transform.IntEnum(5, 6)),`,
		`Tags: property.NewList("tags", transform.String).Default("new", "used"),`,
		`Prices: property.NewMap("prices", transform.Float64).Default(map[string]float64{"base": 100, "extra": 2.5}),`,
		`Extra: property.New("extra", transform.Value).Default(transform.Must(transform.Value, jsonvalue.ParseString("{\"a\":[1,2]}"))),`,
		`Wheels: property.NewList("wheels", model.Transformer(NewWheel)),`,
		"return append(m.Vehicle.Properties(), m.Doors, m.Properties1)",
		"func CarFromJSON(doc jsonvalue.Value) *Car {\n\treturn model.FromJSON(NewCar, doc)\n}",
		"func WheelFromStrictJSON(doc jsonvalue.Value) (*Wheel, error) {\n\treturn model.FromStrictJSON(NewWheel, doc)\n}",
	} {
		assert.Contains(t, result, want)
	}

	_, err = parser.ParseFile(token.NewFileSet(), "fleet.go", result, parser.AllErrors)
	assert.NoError(t, err, "generated code must parse")
}

func TestGenerateModels_FieldMappings(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Naming.FieldMappings = map[string]string{"website": "HomePage"}
	s := parseSchema(t, `
models:
  - name: Site
    properties:
      - key: website
        type: url
      - key: title
        name: Heading
        type: string
`)
	result, err := NewGeneratorWithConfig(cfg).GenerateModels(s, "sites")
	require.NoError(t, err)
	assert.Contains(t, result, "\tHomePage *property.Property[*url.URL]\n")
	assert.Contains(t, result, "\tHeading *property.Property[string]\n")
}

func TestGenerateModels_DuplicateFieldNames(t *testing.T) {
	s := parseSchema(t, `
models:
  - name: A
    properties:
      - key: a_b
        type: int
      - key: a.b
        type: int
`)
	result, err := NewGenerator().GenerateModels(s, "p")
	require.NoError(t, err)
	assert.Contains(t, result, "\tAB *property.Property[int]\n")
	assert.Contains(t, result, "\tAB1 *property.Property[int]\n")
}

func TestGenerateModels_Errors(t *testing.T) {
	_, err := NewGenerator().GenerateModels(nil, "p")
	assert.True(t, stderrors.Is(err, errors.ErrNoSchema))
	assert.True(t, stderrors.Is(err, &errors.AppError{Type: errors.ErrorTypeGenerate}))

	cfg := config.NewConfig()
	cfg.Generate.Package = ""
	_, err = NewGeneratorWithConfig(cfg).GenerateModels(parseSchema(t, fleetSchema), "")
	assert.Error(t, err)

	broken := &schema.Schema{Models: []*schema.Model{{Name: "A", Properties: []schema.Property{{Key: "x", Type: "Missing"}}}}}
	_, err = NewGenerator().GenerateModels(broken, "p")
	assert.True(t, stderrors.Is(err, errors.ErrUnknownType))
}

func TestLiteral(t *testing.T) {
	assert.Equal(t, `"a\"b"`, literal(`a"b`))
	assert.Equal(t, "2.5", literal(2.5))
	assert.Equal(t, "100", literal(100))
	assert.Equal(t, "true", literal(true))
}
