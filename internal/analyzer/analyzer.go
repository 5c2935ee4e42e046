package analyzer

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
	"github.com/mcncl/jsonmodel/internal/config"
	"github.com/mcncl/jsonmodel/internal/errors"
	"github.com/mcncl/jsonmodel/internal/schema"
	"github.com/mcncl/jsonmodel/jsonvalue"
	"github.com/mcncl/jsonmodel/transform"
)

// DefaultRootName is the default name for the root model if not specified.
const DefaultRootName = "Root"

// Regex patterns for special types
var (
	uuidRegex       = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	colorRegex      = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	urlRegex        = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://[^\s]+$`)
	identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Analyzer infers a schema from a sample JSON document
type Analyzer struct {
	// modelNames tracks generated model names to avoid collisions
	modelNames map[string]int
	// models holds discovered models, root first
	models []*schema.Model
	// config holds configuration settings for analysis
	config *config.Config
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(config.NewConfig())
}

// NewAnalyzerWithConfig creates a new Analyzer instance with custom configuration.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Analyzer{
		modelNames: make(map[string]int),
		config:     cfg,
	}
}

// Analyze walks root and returns a validated schema whose root model matches
// it. The root must be an object or a non-empty array of objects; array
// elements are merged into one model.
func (a *Analyzer) Analyze(root jsonvalue.Value, rootName string) (*schema.Schema, error) {
	if rootName == "" {
		rootName = a.config.Infer.RootName
	}
	if rootName == "" {
		rootName = DefaultRootName
	}
	a.modelNames = make(map[string]int)
	a.models = nil

	var obj jsonvalue.Value
	switch root.Kind() {
	case jsonvalue.KindObject:
		obj = root
	case jsonvalue.KindArray:
		merged, ok := mergeElements(root)
		if !ok {
			return nil, errors.NewAnalysisError("root array must hold objects", errors.ErrInvalidContent)
		}
		obj = merged
	default:
		return nil, errors.NewAnalysisError(
			fmt.Sprintf("root must be an object or an array of objects, got %s", root.Kind()),
			errors.ErrInvalidContent,
		)
	}

	rootModel := a.analyzeObject(obj, a.modelName(rootName))

	s := &schema.Schema{Root: rootModel.Name, Models: a.models}
	if err := s.Validate(); err != nil {
		return nil, errors.NewAnalysisError("inferred schema is invalid", err)
	}
	return s, nil
}

// analyzeObject registers a model named name and fills it from obj. The model
// is registered before its properties are analyzed so the root stays first.
func (a *Analyzer) analyzeObject(obj jsonvalue.Value, name string) *schema.Model {
	m := &schema.Model{Name: name}
	a.models = append(a.models, m)
	m.Properties = a.flatten(obj, "", name)
	return m
}

// flatten emits a property for every leaf of obj. Nested objects that are not
// map-like contribute dotted keys to the same model.
func (a *Analyzer) flatten(obj jsonvalue.Value, prefix, modelName string) []schema.Property {
	var props []schema.Property
	for _, key := range obj.Keys() {
		val := obj.Get(key)
		fullKey := prefix + key

		if key == "" || strings.Contains(key, ".") {
			// Not addressable as a key path
			continue
		}
		if val.Kind() == jsonvalue.KindObject && len(val.Keys()) > 0 && allIdentifiers(val) {
			props = append(props, a.flatten(val, fullKey+".", modelName)...)
			continue
		}

		prop := a.analyzeNode(val, fullKey, key)
		if mapped, ok := a.config.FindTypeMapping(fullKey); ok {
			prop.Type = mapped.Type
		}
		if name, ok := a.config.Naming.FieldMappings[fullKey]; ok {
			prop.Name = name
		}
		if a.config.Infer.Required && val.HasValue() {
			prop.Required = true
		}
		props = append(props, prop)
	}
	return props
}

// analyzeNode types a single value found at key. segment is the last key
// segment, used to name nested models.
func (a *Analyzer) analyzeNode(val jsonvalue.Value, key, segment string) schema.Property {
	prop := schema.Property{Key: key, Type: schema.TypeJSON}

	switch val.Kind() {
	case jsonvalue.KindBool, jsonvalue.KindString, jsonvalue.KindNumber:
		prop.Type = a.scalarType(val)
	case jsonvalue.KindObject:
		if elem, ok := a.mapElementType(val); ok {
			prop.Kind = schema.KindMap
			prop.Type = elem
		}
	case jsonvalue.KindArray:
		a.analyzeArray(val, segment, &prop)
	}
	return prop
}

// analyzeArray fills prop as a list. Arrays of objects become a list of a
// nested model; homogeneous scalars become a scalar list; anything else is a
// list of raw JSON.
func (a *Analyzer) analyzeArray(arr jsonvalue.Value, segment string, prop *schema.Property) {
	prop.Kind = schema.KindList
	prop.Type = schema.TypeJSON
	if arr.Len() == 0 {
		return
	}

	if merged, ok := mergeElements(arr); ok {
		name := singularize(a.config.GetFieldName(segment))
		m := a.analyzeObject(merged, a.modelName(name))
		if existing, found := a.findEquivalent(m); found {
			a.discard(m, name)
			prop.Type = existing.Name
			return
		}
		prop.Type = m.Name
		return
	}

	if elem, ok := a.commonScalarType(arr.ArrayValue()); ok {
		prop.Type = elem
	}
}

func (a *Analyzer) scalarType(val jsonvalue.Value) string {
	switch val.Kind() {
	case jsonvalue.KindBool:
		return schema.TypeBool
	case jsonvalue.KindNumber:
		return analyzeNumber(val)
	case jsonvalue.KindString:
		if a.config.Infer.DetectFormats {
			return analyzeString(val)
		}
		return schema.TypeString
	}
	return schema.TypeJSON
}

func analyzeString(val jsonvalue.Value) string {
	s := val.StringValue()

	if _, ok := transform.Date.FromJSON(val); ok {
		return schema.TypeDate
	}
	if uuidRegex.MatchString(s) {
		if _, err := uuid.Parse(s); err == nil {
			return schema.TypeUUID
		}
	}
	if colorRegex.MatchString(s) {
		return schema.TypeColor
	}
	if urlRegex.MatchString(s) {
		if u, ok := val.AsURL(); ok && u.Host != "" {
			return schema.TypeURL
		}
	}
	return schema.TypeString
}

// analyzeNumber types a number from its literal text. Only integer literals
// are integral, so 2.0 and 1e3 are doubles.
func analyzeNumber(val jsonvalue.Value) string {
	n := string(val.NumberValue())
	if _, err := strconv.ParseInt(n, 10, 64); err == nil {
		return schema.TypeInt
	}
	if _, err := strconv.ParseUint(n, 10, 64); err == nil {
		return schema.TypeUint64
	}
	return schema.TypeDouble
}

// commonScalarType returns the one scalar type shared by every value. Mixed
// numbers widen to double and mixed string formats to string.
func (a *Analyzer) commonScalarType(values []jsonvalue.Value) (string, bool) {
	common := ""
	for _, v := range values {
		switch v.Kind() {
		case jsonvalue.KindBool, jsonvalue.KindString, jsonvalue.KindNumber:
		default:
			return "", false
		}
		t := a.scalarType(v)
		switch {
		case common == "" || common == t:
			common = t
		case isNumeric(common) && isNumeric(t):
			common = schema.TypeDouble
		case isText(common) && isText(t):
			common = schema.TypeString
		default:
			return "", false
		}
	}
	return common, common != ""
}

// mapElementType reports the element type of a map-like object.
func (a *Analyzer) mapElementType(obj jsonvalue.Value) (string, bool) {
	if !isMapLike(obj) {
		return "", false
	}
	values := make([]jsonvalue.Value, 0, len(obj.Keys()))
	for _, v := range obj.Fields() {
		values = append(values, v)
	}
	return a.commonScalarType(values)
}

// isMapLike reports whether obj is keyed by data rather than by field names:
// some key is not an identifier and every value is a scalar.
func isMapLike(obj jsonvalue.Value) bool {
	if len(obj.Keys()) == 0 || allIdentifiers(obj) {
		return false
	}
	for _, v := range obj.Fields() {
		switch v.Kind() {
		case jsonvalue.KindBool, jsonvalue.KindString, jsonvalue.KindNumber:
		default:
			return false
		}
	}
	return true
}

func allIdentifiers(obj jsonvalue.Value) bool {
	for _, k := range obj.Keys() {
		if !identifierRegex.MatchString(k) {
			return false
		}
	}
	return true
}

func isNumeric(t string) bool {
	return t == schema.TypeInt || t == schema.TypeUint64 || t == schema.TypeDouble
}

func isText(t string) bool {
	switch t {
	case schema.TypeString, schema.TypeDate, schema.TypeUUID, schema.TypeColor, schema.TypeURL:
		return true
	}
	return false
}

// mergeElements unions the fields of every object in arr. The first value
// with content wins for scalars, except that a fractional number replaces an
// integer. Nested objects merge recursively.
func mergeElements(arr jsonvalue.Value) (jsonvalue.Value, bool) {
	if arr.Len() == 0 {
		return jsonvalue.Value{}, false
	}
	merged := jsonvalue.Object(nil)
	for _, elem := range arr.All() {
		if elem.Kind() != jsonvalue.KindObject {
			return jsonvalue.Value{}, false
		}
		merged = mergeObject(merged, elem)
	}
	return merged, true
}

func mergeObject(dst, src jsonvalue.Value) jsonvalue.Value {
	for key, val := range src.Fields() {
		current := dst.Get(key)
		switch {
		case !current.HasValue():
			dst = dst.Set(key, val)
		case current.Kind() == jsonvalue.KindObject && val.Kind() == jsonvalue.KindObject:
			dst = dst.Set(key, mergeObject(current, val))
		case current.Kind() == jsonvalue.KindNumber && val.Kind() == jsonvalue.KindNumber:
			if analyzeNumber(val) == schema.TypeDouble {
				dst = dst.Set(key, val)
			}
		case current.Kind() == jsonvalue.KindArray && val.Kind() == jsonvalue.KindArray:
			dst = dst.Set(key, jsonvalue.Array(append(current.ArrayValue(), val.ArrayValue()...)...))
		}
	}
	return dst
}

// findEquivalent returns another registered model with the same properties as m.
func (a *Analyzer) findEquivalent(m *schema.Model) (*schema.Model, bool) {
	if len(m.Properties) == 0 {
		return nil, false
	}
	for _, existing := range a.models {
		if existing == m {
			continue
		}
		if slices.EqualFunc(existing.Properties, m.Properties, sameProperty) {
			return existing, true
		}
	}
	return nil, false
}

// discard unregisters m, which was named from baseName.
func (a *Analyzer) discard(m *schema.Model, baseName string) {
	a.models = slices.DeleteFunc(a.models, func(x *schema.Model) bool { return x == m })
	a.modelNames[jsonKeyToPascalCase(baseName)]--
}

func sameProperty(p1, p2 schema.Property) bool {
	return p1.Key == p2.Key && p1.Type == p2.Type && p1.Shape() == p2.Shape() && p1.Required == p2.Required
}

// modelName ensures that the model name is unique by appending a number if needed.
func (a *Analyzer) modelName(baseName string) string {
	baseName = jsonKeyToPascalCase(baseName)
	name := baseName
	count := a.modelNames[baseName]
	if count > 0 {
		name = fmt.Sprintf("%s%d", baseName, count)
	}
	a.modelNames[baseName] = count + 1
	return name
}

// jsonKeyToPascalCase converts a JSON key to a Go-style PascalCase identifier.
func jsonKeyToPascalCase(jsonKey string) string {
	pascalCaseName := strcase.ToCamel(jsonKey)

	// Keys like "_" have no letters to convert
	if pascalCaseName == "" {
		return "Model"
	}
	return pascalCaseName
}

// singularize attempts to convert a plural name to a singular one.
var knownSingulars = map[string]string{
	"series":    "series",
	"status":    "status",
	"analysis":  "analysis",
	"species":   "species",
	"news":      "news",
	"goods":     "goods",
	"children":  "child",
	"people":    "person",
	"men":       "man",
	"women":     "woman",
	"teeth":     "tooth",
	"feet":      "foot",
	"mice":      "mouse",
	"geese":     "goose",
	"data":      "data",
	"media":     "media",
	"addresses": "address",
}

func singularize(plural string) string {
	if singular, ok := knownSingulars[strings.ToLower(plural)]; ok {
		// Preserve original casing if the first letter was capitalized
		if len(plural) > 0 && strings.ToUpper(string(plural[0])) == string(plural[0]) && len(singular) > 0 {
			return strings.ToUpper(string(singular[0])) + singular[1:]
		}
		return singular
	}

	lowerPlural := strings.ToLower(plural)

	if strings.HasSuffix(lowerPlural, "ies") && len(lowerPlural) > 3 {
		return plural[:len(plural)-3] + "y"
	}

	// Avoid removing 's' from words like 'bus', 'gas', 'class'
	if strings.HasSuffix(lowerPlural, "ss") ||
		strings.HasSuffix(lowerPlural, "us") ||
		strings.HasSuffix(lowerPlural, "is") {
		return plural
	}

	if strings.HasSuffix(lowerPlural, "s") && len(lowerPlural) > 1 {
		return plural[:len(plural)-1]
	}

	return plural
}
