package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/mcncl/jsonmodel/internal/config"
	"github.com/mcncl/jsonmodel/internal/errors"
	"github.com/mcncl/jsonmodel/internal/schema"
)

// Import paths referenced by generated code.
const (
	modelImport     = "github.com/mcncl/jsonmodel/model"
	propertyImport  = "github.com/mcncl/jsonmodel/property"
	transformImport = "github.com/mcncl/jsonmodel/transform"
	jsonvalueImport = "github.com/mcncl/jsonmodel/jsonvalue"
	uuidImport      = "github.com/google/uuid"
)

// goType describes how a schema scalar type appears in Go source.
type goType struct {
	name        string // Go type
	transformer string // transformer expression
	imports     []string
	literal     bool // defaults can be written as plain Go literals
}

var scalarTypes = map[string]goType{
	schema.TypeString: {name: "string", transformer: "transform.String", literal: true},
	schema.TypeBool:   {name: "bool", transformer: "transform.Bool", literal: true},
	schema.TypeInt:    {name: "int", transformer: "transform.Int", literal: true},
	schema.TypeInt64:  {name: "int64", transformer: "transform.Int64", literal: true},
	schema.TypeUint:   {name: "uint", transformer: "transform.Uint", literal: true},
	schema.TypeUint64: {name: "uint64", transformer: "transform.Uint64", literal: true},
	schema.TypeFloat:  {name: "float32", transformer: "transform.Float32", literal: true},
	schema.TypeDouble: {name: "float64", transformer: "transform.Float64", literal: true},
	schema.TypeURL:    {name: "*url.URL", transformer: "transform.URL", imports: []string{"net/url"}},
	schema.TypeDate:   {name: "time.Time", transformer: "transform.Date", imports: []string{"time"}},
	schema.TypeColor:  {name: "color.NRGBA", transformer: "transform.Color", imports: []string{"image/color"}},
	schema.TypeUUID:   {name: "uuid.UUID", transformer: "transform.UUID", imports: []string{uuidImport}},
	schema.TypeJSON:   {name: "jsonvalue.Value", transformer: "transform.Value", imports: []string{jsonvalueImport}},
}

// Method names every generated model declares.
var reservedNames = []string{"Properties"}

// Generator is responsible for generating Go model declarations from a schema
type Generator struct {
	config  *config.Config
	imports map[string]struct{}
}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return NewGeneratorWithConfig(config.NewConfig())
}

// NewGeneratorWithConfig creates a new Generator instance with custom configuration
func NewGeneratorWithConfig(cfg *config.Config) *Generator {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Generator{config: cfg}
}

// GenerateModels generates one struct per schema model with a constructor and
// a Properties method. A model that extends another embeds it.
func (g *Generator) GenerateModels(s *schema.Schema, packageName string) (string, error) {
	if s == nil {
		return "", errors.NewGenerateError("no schema to generate from", errors.ErrNoSchema)
	}
	if err := s.Validate(); err != nil {
		return "", errors.NewGenerateError("schema is invalid", err)
	}
	if packageName == "" {
		packageName = g.config.Generate.Package
	}
	if packageName == "" {
		return "", errors.NewGenerateError("package name is empty", nil)
	}

	g.imports = map[string]struct{}{propertyImport: {}}

	var body bytes.Buffer
	for i, m := range sortModels(s) {
		if i > 0 {
			body.WriteString("\n")
		}
		if err := g.writeModel(&body, s, m); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	if header := strings.TrimSpace(g.config.Generate.FileHeader); header != "" {
		for _, line := range strings.Split(header, "\n") {
			buf.WriteString("// " + strings.TrimSpace(strings.TrimPrefix(line, "//")) + "\n")
		}
		buf.WriteString("\n")
	}
	buf.WriteString(fmt.Sprintf("package %s\n", packageName))
	g.writeImports(&buf)
	buf.WriteString("\n")
	buf.Write(body.Bytes())

	return buf.String(), nil
}

// writeImports writes standard library imports first, then third-party ones.
func (g *Generator) writeImports(buf *bytes.Buffer) {
	imports := make([]string, 0, len(g.imports))
	for imp := range g.imports {
		imports = append(imports, imp)
	}
	sort.Strings(imports)

	stdLibImports := make([]string, 0)
	thirdPartyImports := make([]string, 0)
	for _, imp := range imports {
		if !strings.Contains(imp, ".") { // Standard library imports don't have dots
			stdLibImports = append(stdLibImports, imp)
		} else {
			thirdPartyImports = append(thirdPartyImports, imp)
		}
	}

	buf.WriteString("\nimport (\n")
	for _, imp := range stdLibImports {
		buf.WriteString(fmt.Sprintf("\t\"%s\"\n", imp))
	}
	if len(stdLibImports) > 0 && len(thirdPartyImports) > 0 {
		buf.WriteString("\n")
	}
	for _, imp := range thirdPartyImports {
		buf.WriteString(fmt.Sprintf("\t\"%s\"\n", imp))
	}
	buf.WriteString(")\n")
}

// field is one generated struct field.
type field struct {
	name string
	typ  string
	init string
}

func (g *Generator) writeModel(buf *bytes.Buffer, s *schema.Schema, m *schema.Model) error {
	fields, err := g.fields(s, m)
	if err != nil {
		return err
	}

	for _, line := range strings.Split(strings.TrimSpace(m.Description), "\n") {
		if line != "" {
			buf.WriteString("// " + line + "\n")
		}
	}
	buf.WriteString(fmt.Sprintf("type %s struct {\n", m.Name))
	if m.Extends != "" {
		buf.WriteString(fmt.Sprintf("\t*%s\n", m.Extends))
	}
	for _, f := range fields {
		buf.WriteString(fmt.Sprintf("\t%s %s\n", f.name, f.typ))
	}
	buf.WriteString("}\n\n")

	buf.WriteString(fmt.Sprintf("// New%s returns a %s with every property at its default.\n", m.Name, m.Name))
	buf.WriteString(fmt.Sprintf("func New%s() *%s {\n", m.Name, m.Name))
	buf.WriteString(fmt.Sprintf("\treturn &%s{\n", m.Name))
	if m.Extends != "" {
		buf.WriteString(fmt.Sprintf("\t\t%s: New%s(),\n", m.Extends, m.Extends))
	}
	for _, f := range fields {
		buf.WriteString(fmt.Sprintf("\t\t%s: %s,\n", f.name, f.init))
	}
	buf.WriteString("\t}\n}\n\n")

	refs := make([]string, len(fields))
	for i, f := range fields {
		refs[i] = "m." + f.name
	}
	buf.WriteString(fmt.Sprintf("// Properties lists the property slots of a %s in declaration order.\n", m.Name))
	buf.WriteString(fmt.Sprintf("func (m *%s) Properties() []property.Descriptor {\n", m.Name))
	switch {
	case m.Extends != "" && len(refs) > 0:
		buf.WriteString(fmt.Sprintf("\treturn append(m.%s.Properties(), %s)\n", m.Extends, strings.Join(refs, ", ")))
	case m.Extends != "":
		buf.WriteString(fmt.Sprintf("\treturn m.%s.Properties()\n", m.Extends))
	default:
		buf.WriteString(fmt.Sprintf("\treturn []property.Descriptor{%s}\n", strings.Join(refs, ", ")))
	}
	buf.WriteString("}\n")

	if g.config.Generate.Constructors {
		g.imports[modelImport] = struct{}{}
		g.imports[jsonvalueImport] = struct{}{}
		buf.WriteString(fmt.Sprintf("\n// %sFromJSON builds a %s leniently.\n", m.Name, m.Name))
		buf.WriteString(fmt.Sprintf("func %sFromJSON(doc jsonvalue.Value) *%s {\n", m.Name, m.Name))
		buf.WriteString(fmt.Sprintf("\treturn model.FromJSON(New%s, doc)\n}\n", m.Name))
		buf.WriteString(fmt.Sprintf("\n// %sFromStrictJSON builds a %s, failing when a required property is missing.\n", m.Name, m.Name))
		buf.WriteString(fmt.Sprintf("func %sFromStrictJSON(doc jsonvalue.Value) (*%s, error) {\n", m.Name, m.Name))
		buf.WriteString(fmt.Sprintf("\treturn model.FromStrictJSON(New%s, doc)\n}\n", m.Name))
	}
	return nil
}

// fields derives unique Go field names and initializers for the properties
// m declares itself.
func (g *Generator) fields(s *schema.Schema, m *schema.Model) ([]field, error) {
	used := make(map[string]int)
	for _, name := range reservedNames {
		used[name] = 1
	}
	if m.Extends != "" {
		used[m.Extends] = 1
	}

	fields := make([]field, 0, len(m.Properties))
	for _, p := range m.Properties {
		name := p.Name
		if name == "" {
			name = g.config.GetFieldName(p.Key)
		}
		if name == "" {
			name = "Field"
		}
		base := name
		for used[name] > 0 {
			name = fmt.Sprintf("%s%d", base, used[base])
			used[base]++
		}
		used[name] = 1

		typ, init, err := g.property(s, p)
		if err != nil {
			return nil, errors.NewGenerateError(fmt.Sprintf("model %s property %q", m.Name, p.Key), err)
		}
		fields = append(fields, field{name: name, typ: typ, init: init})
	}
	return fields, nil
}

// property returns the field type and initializer for p.
func (g *Generator) property(s *schema.Schema, p schema.Property) (string, string, error) {
	elem, tr, err := g.element(s, p)
	if err != nil {
		return "", "", err
	}

	var typ, init string
	switch p.Shape() {
	case schema.KindList:
		typ = fmt.Sprintf("*property.List[%s]", elem)
		init = fmt.Sprintf("property.NewList(%q, %s)", p.Key, tr)
	case schema.KindMap:
		typ = fmt.Sprintf("*property.Map[%s]", elem)
		init = fmt.Sprintf("property.NewMap(%q, %s)", p.Key, tr)
	default:
		typ = fmt.Sprintf("*property.Property[%s]", elem)
		init = fmt.Sprintf("property.New(%q, %s)", p.Key, tr)
	}

	if p.Required {
		init += ".Require()"
	}
	if p.Default != nil {
		def, err := g.defaultArgs(p, elem, tr)
		if err != nil {
			return "", "", err
		}
		init += ".Default(" + def + ")"
	}
	return typ, init, nil
}

// element returns the Go element type and transformer expression for p.
func (g *Generator) element(s *schema.Schema, p schema.Property) (string, string, error) {
	g.imports[transformImport] = struct{}{}

	if p.Type == schema.TypeEnum {
		values := make([]string, len(p.Values))
		for i, v := range p.Values {
			values[i] = literal(v)
		}
		switch {
		case p.StringEnum():
			return "string", fmt.Sprintf("transform.StringEnum(%s)", strings.Join(values, ", ")), nil
		case p.IntEnum():
			return "int", fmt.Sprintf("transform.IntEnum(%s)", strings.Join(values, ", ")), nil
		}
		return "", "", errors.ErrUnknownType
	}

	if t, ok := scalarTypes[p.Type]; ok {
		for _, imp := range t.imports {
			g.imports[imp] = struct{}{}
		}
		return t.name, t.transformer, nil
	}

	if _, ok := s.Model(p.Type); !ok {
		return "", "", fmt.Errorf("%w: %s", errors.ErrUnknownType, p.Type)
	}
	g.imports[modelImport] = struct{}{}
	return "*" + p.Type, fmt.Sprintf("model.Transformer(New%s)", p.Type), nil
}

// defaultArgs renders the arguments of a Default call.
func (g *Generator) defaultArgs(p schema.Property, elem, tr string) (string, error) {
	value := func(raw any) (string, error) {
		if t, ok := scalarTypes[p.Type]; ok && !t.literal {
			lit, err := g.rawLiteral(raw)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("transform.Must(%s, %s)", tr, lit), nil
		}
		return literal(raw), nil
	}

	switch p.Shape() {
	case schema.KindList:
		items, ok := p.Default.([]any)
		if !ok {
			return "", fmt.Errorf("list default must be a sequence, got %T", p.Default)
		}
		args := make([]string, len(items))
		for i, item := range items {
			arg, err := value(item)
			if err != nil {
				return "", err
			}
			args[i] = arg
		}
		return strings.Join(args, ", "), nil

	case schema.KindMap:
		items, ok := p.Default.(map[string]any)
		if !ok {
			return "", fmt.Errorf("map default must be a mapping, got %T", p.Default)
		}
		keys := make([]string, 0, len(items))
		for k := range items {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		entries := make([]string, len(keys))
		for i, k := range keys {
			arg, err := value(items[k])
			if err != nil {
				return "", err
			}
			entries[i] = fmt.Sprintf("%q: %s", k, arg)
		}
		return fmt.Sprintf("map[string]%s{%s}", elem, strings.Join(entries, ", ")), nil
	}
	return value(p.Default)
}

// rawLiteral renders raw for transform.Must. Containers go through JSON text.
func (g *Generator) rawLiteral(raw any) (string, error) {
	switch raw.(type) {
	case []any, map[string]any:
		data, err := json.Marshal(raw)
		if err != nil {
			return "", err
		}
		g.imports[jsonvalueImport] = struct{}{}
		return fmt.Sprintf("jsonvalue.ParseString(%s)", strconv.Quote(string(data))), nil
	}
	return literal(raw), nil
}

// literal renders a YAML scalar as a Go literal.
func literal(v any) string {
	switch t := v.(type) {
	case string:
		return strconv.Quote(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}

// sortModels puts the root model first, followed by the rest by name.
func sortModels(s *schema.Schema) []*schema.Model {
	root, _ := s.RootModel()
	sorted := slices.Clone(s.Models)
	sort.SliceStable(sorted, func(i, j int) bool {
		if (sorted[i] == root) != (sorted[j] == root) {
			return sorted[i] == root
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}
