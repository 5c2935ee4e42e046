package models

import (
	stderrors "errors"
	"testing"

	"github.com/mcncl/jsonmodel/archive"
	"github.com/mcncl/jsonmodel/internal/errors"
	"github.com/mcncl/jsonmodel/internal/schema"
	"github.com/mcncl/jsonmodel/jsonvalue"
	"github.com/mcncl/jsonmodel/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fleetSchema = `
root: Car
models:
  - name: Vehicle
    properties:
      - key: id
        type: uuid
      - key: make
        type: string
        required: true
      - key: year
        type: int
      - key: color
        type: color
      - key: website
        type: url
      - key: built
        type: date
      - key: specs.engine.power
        type: int
      - key: specs.weight
        type: double
      - key: fuel
        type: enum
        values: [petrol, diesel, electric]
        default: petrol
      - key: gears
        type: enum
        values: [4, 5, 6]
      - key: tags
        type: string
        kind: list
        default: [new]
      - key: prices
        type: double
        kind: map
      - key: extra
        type: json
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
      - key: pressure
        type: float
`

func newFactory(t *testing.T, src string) *Factory {
	t.Helper()
	s, err := schema.ParseString(src)
	require.NoError(t, err)
	f, err := NewFactory(s)
	require.NoError(t, err)
	return f
}

func TestFactory_New(t *testing.T) {
	f := newFactory(t, fleetSchema)

	car, err := f.New("Car")
	require.NoError(t, err)
	assert.Equal(t, "Car", car.ModelName())
	assert.Equal(t, "Car", model.Name(car))

	props := car.Properties()
	require.Len(t, props, 15)
	assert.Equal(t, "id", props[0].Key(), "inherited slots come first")
	assert.Equal(t, "doors", props[14].Key())

	doors, ok := car.Property("doors")
	require.True(t, ok)
	assert.True(t, doors.Required())
	assert.Equal(t, "int", doors.Type())

	wheels, _ := car.Property("wheels")
	assert.Equal(t, "[]Wheel", wheels.Type())
	prices, _ := car.Property("prices")
	assert.Equal(t, "map[string]double", prices.Type())

	assert.Equal(t, "petrol", car.Value("fuel").StringValue(), "defaults apply")
	assert.True(t, jsonvalue.ParseString(`["new"]`).Equal(car.Value("tags")))
	assert.False(t, car.Value("year").HasKey())
	assert.False(t, car.Value("missing").HasKey())

	_, err = f.New("Truck")
	assert.True(t, stderrors.Is(err, errors.ErrUnknownModel))
}

func TestFactory_Mapping(t *testing.T) {
	f := newFactory(t, fleetSchema)
	doc := jsonvalue.ParseString(`{
		"id": "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"make": "Volvo",
		"year": 2019,
		"color": "#1E90FF",
		"website": "https://volvocars.com",
		"built": "2019-03-01T08:00:00.000+0100",
		"specs": {"engine": {"power": 250}, "weight": 1750.5},
		"fuel": "hybrid",
		"gears": 6,
		"tags": ["estate", 7],
		"prices": {"base": 45000, "bad": "x"},
		"extra": {"note": [1, true]},
		"wheels": [{"position": "fl", "pressure": 2.4}, {"pressure": 2.2}],
		"doors": 5
	}`)

	car, err := f.New("Car")
	require.NoError(t, err)
	require.NoError(t, model.LoadStrict(car, doc))

	assert.Equal(t, "Volvo", car.Value("make").StringValue())
	assert.Equal(t, "#1E90FF", car.Value("color").StringValue())
	assert.Equal(t, "2019-03-01T07:00:00.000+0000", car.Value("built").StringValue())
	assert.Equal(t, "petrol", car.Value("fuel").StringValue(), "unmapped enum keeps the default")
	assert.Equal(t, int64(6), car.Value("gears").Int64Value())
	assert.True(t, jsonvalue.ParseString(`["estate"]`).Equal(car.Value("tags")))
	assert.True(t, jsonvalue.ParseString(`{"base":45000}`).Equal(car.Value("prices")))
	assert.True(t, jsonvalue.ParseString(`[{"position":"fl","pressure":2.4}]`).Equal(car.Value("wheels")))

	out := model.ToJSON(car)
	assert.Equal(t, int64(250), out.Path("specs", "engine", "power").Int64Value())
	assert.Equal(t, 1750.5, out.Path("specs", "weight").Float64Value())
	assert.True(t, jsonvalue.ParseString(`{"note":[1,true]}`).Equal(out.Get("extra")))
}

func TestFactory_StrictFailure(t *testing.T) {
	f := newFactory(t, fleetSchema)
	car, err := f.New("Car")
	require.NoError(t, err)

	err = model.LoadStrict(car, jsonvalue.ParseString(`{"year": 2019}`))
	var verr *model.ValidationError
	require.True(t, stderrors.As(err, &verr))
	assert.Equal(t, "Car", verr.Model)
	assert.Equal(t, []model.Failure{{Key: "make", Type: "string"}, {Key: "doors", Type: "int"}}, verr.Failures)
}

func TestFactory_RecursiveModel(t *testing.T) {
	f := newFactory(t, `
models:
  - name: Node
    properties:
      - key: name
        type: string
        required: true
      - key: children
        type: Node
        kind: list
`)
	doc := jsonvalue.ParseString(`{"name":"root","children":[{"name":"a","children":[{"name":"a1"}]},{"name":"b"}]}`)
	node, err := f.New("Node")
	require.NoError(t, err)
	require.NoError(t, model.LoadStrict(node, doc))
	got := model.ToJSON(node)
	assert.Equal(t, 2, got.Get("children").Len())
	assert.Equal(t, "a1", got.Get("children").Index(0).Get("children").Index(0).Get("name").StringValue())
}

func TestFactory_InvalidDefault(t *testing.T) {
	s, err := schema.ParseString(`
models:
  - name: A
    properties:
      - key: n
        type: int
        default: many
`)
	require.NoError(t, err)
	_, err = NewFactory(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid int")
}

func TestFactory_ArchiveRoundTrip(t *testing.T) {
	f := newFactory(t, fleetSchema)
	doc := jsonvalue.ParseString(`{"make":"Saab","doors":3,"built":"1990-01-01T00:00:00.000Z","wheels":[{"position":"rl"}],"prices":{"base":9000.5}}`)

	car, err := f.New("Car")
	require.NoError(t, err)
	model.Load(car, doc)

	a := archive.NewMap()
	model.Encode(car, a)
	data, err := archive.MarshalYAML(a)
	require.NoError(t, err)
	back, err := archive.UnmarshalYAML(data)
	require.NoError(t, err)

	decoded := model.Decode(f.Constructor("Car"), back)
	assert.True(t, model.ToJSON(car).Equal(model.ToJSON(decoded)), "got %s", model.ToJSON(decoded))
}
