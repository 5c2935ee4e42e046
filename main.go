package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"
	"github.com/mcncl/jsonmodel/archive"
	"github.com/mcncl/jsonmodel/internal/analyzer"
	"github.com/mcncl/jsonmodel/internal/config"
	"github.com/mcncl/jsonmodel/internal/errors"
	"github.com/mcncl/jsonmodel/internal/formatter"
	"github.com/mcncl/jsonmodel/internal/generator"
	"github.com/mcncl/jsonmodel/internal/logging"
	"github.com/mcncl/jsonmodel/internal/models"
	"github.com/mcncl/jsonmodel/internal/parser"
	"github.com/mcncl/jsonmodel/internal/schema"
	"github.com/mcncl/jsonmodel/model"
	log "github.com/sirupsen/logrus"
)

// Version information
const (
	Version = "0.1.0"
)

var versionVars = kong.Vars{"version": "jsonmodel version " + Version}

// Globals are flags shared by every command
type Globals struct {
	Config  string           `help:"Path to config file. Defaults to the nearest .jsonmodel.yml." short:"c" type:"path"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Map      MapCmd      `cmd:"" help:"Build a model from JSON and write its serialized form."`
	Infer    InferCmd    `cmd:"" help:"Infer a schema from a sample JSON document."`
	Generate GenerateCmd `cmd:"" help:"Generate Go model declarations from a schema."`
}

// Context holds the runtime context shared by commands
type Context struct {
	Debug      bool
	ConfigPath string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func newContext(g *Globals) *Context {
	path := g.Config
	if path == "" {
		path = config.FindConfigFile()
	}
	return &Context{
		Debug:      g.Debug,
		ConfigPath: path,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

// loadConfig merges the config file with command line overrides and applies
// the logging settings.
func (c *Context) loadConfig(o config.Overrides) (*config.Config, error) {
	if c.Debug {
		o.LogLevel = "debug"
	}
	cfg, err := config.LoadConfigWithCLI(c.ConfigPath, o)
	if err != nil {
		return nil, errors.NewInputError("failed to load config", err)
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format, c.Stderr); err != nil {
		return nil, errors.NewInputError("invalid log settings", err)
	}
	if c.ConfigPath != "" {
		log.WithField("path", c.ConfigPath).Debug("loaded config")
	}
	return cfg, nil
}

// stdin returns the reader to parse when no input file is given, or nil when
// stdin is an interactive terminal.
func (c *Context) stdin() io.Reader {
	if f, ok := c.Stdin.(*os.File); ok {
		info, err := f.Stat()
		if err != nil || info.Mode()&os.ModeCharDevice != 0 {
			return nil
		}
	}
	return c.Stdin
}

// writeOutput writes data to path, or to stdout when path is empty
func (c *Context) writeOutput(path string, data []byte, what string) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		fmt.Fprintf(c.Stderr, "%s written to %s\n", what, path)
		return nil
	}

	if _, err := fmt.Fprintln(c.Stdout, strings.TrimSpace(string(data))); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// MapCmd builds a schema model from JSON
type MapCmd struct {
	Schema        string `help:"Path to schema file." short:"s" type:"path"`
	Input         string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output        string `help:"Path to output JSON file. If not specified, writes to stdout." short:"o" type:"path"`
	Model         string `help:"Model to build. Defaults to the schema root." short:"m"`
	Strict        bool   `help:"Fail when a required property is missing."`
	Compact       bool   `help:"Write compact JSON."`
	NoDiagnostics bool   `help:"Report only the first missing required property."`
	Archive       string `help:"Also write the model's keyed archive as YAML to this path." type:"path"`
	Dump          bool   `help:"Dump the model's properties and values to stderr."`
}

// Run executes the map command
func (m *MapCmd) Run(ctx *Context) error {
	o := config.Overrides{Schema: m.Schema, Model: m.Model, Strict: m.Strict, Compact: m.Compact}
	if m.NoDiagnostics {
		off := false
		o.Diagnostics = &off
	}
	cfg, err := ctx.loadConfig(o)
	if err != nil {
		return err
	}

	factory, err := loadFactory(cfg.Schema)
	if err != nil {
		return err
	}

	name := cfg.Model
	if name == "" {
		root, ok := factory.Schema().RootModel()
		if !ok {
			return errors.NewSchemaError("schema has no root model", errors.ErrUnknownModel)
		}
		name = root.Name
	}
	instance, err := factory.New(name)
	if err != nil {
		return err
	}

	doc, err := parser.ParseInput(m.Input, ctx.stdin())
	if err != nil {
		return err
	}

	mapper := model.NewMapperWithConfig(model.Config{
		Diagnostics: cfg.Mapping.Diagnostics,
		Logger:      log.StandardLogger(),
	})
	if cfg.Mapping.Strict {
		if err := mapper.LoadStrict(instance, doc); err != nil {
			return errors.NewValidationError(err.Error(), err)
		}
	} else {
		mapper.Load(instance, doc)
	}
	log.WithFields(log.Fields{"model": name, "strict": cfg.Mapping.Strict}).Debug("model built")

	if m.Dump {
		fmt.Fprint(ctx.Stderr, model.Describe(instance), "\n")
		dumper := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true, DisableCapacities: true}
		dumper.Fdump(ctx.Stderr, model.Dictionary(instance))
	}

	if m.Archive != "" {
		a := archive.NewMap()
		model.Encode(instance, a)
		data, err := archive.MarshalYAML(a)
		if err != nil {
			return errors.NewSerializeError("failed to encode archive", err)
		}
		if err := ctx.writeOutput(m.Archive, data, "Archive"); err != nil {
			return err
		}
	}

	out := model.ToJSON(instance)
	var data []byte
	if cfg.Output.Pretty {
		data, err = out.MarshalIndent()
	} else {
		data, err = out.Marshal()
	}
	if err != nil {
		return err
	}
	return ctx.writeOutput(m.Output, data, "Serialized model")
}

func loadFactory(path string) (*models.Factory, error) {
	if path == "" {
		return nil, errors.NewInputError("no schema", errors.ErrNoSchema)
	}
	s, err := schema.ParseFile(path)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"path": path, "models": len(s.Models)}).Debug("loaded schema")
	return models.NewFactory(s)
}

// InferCmd infers a schema from a sample
type InferCmd struct {
	Input  string `help:"Path to sample JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output string `help:"Path to output schema file. If not specified, writes to stdout." short:"o" type:"path"`
	Name   string `help:"Name for the root model." short:"n"`
}

// Run executes the infer command
func (i *InferCmd) Run(ctx *Context) error {
	cfg, err := ctx.loadConfig(config.Overrides{RootName: i.Name})
	if err != nil {
		return err
	}

	root, err := parser.ParseInput(i.Input, ctx.stdin())
	if err != nil {
		return err
	}

	s, err := analyzer.NewAnalyzerWithConfig(cfg).Analyze(root, cfg.Infer.RootName)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"root": s.Root, "models": len(s.Models)}).Debug("schema inferred")

	data, err := s.Marshal()
	if err != nil {
		return err
	}
	return ctx.writeOutput(i.Output, data, "Schema")
}

// GenerateCmd generates Go source from a schema
type GenerateCmd struct {
	Schema   string `help:"Path to schema file." short:"s" type:"path"`
	Package  string `help:"Package name for generated code." short:"p"`
	Output   string `help:"Path to output Go file. If not specified, writes to stdout." short:"o" type:"path"`
	NoFormat bool   `help:"Skip gofmt formatting of the output."`
}

// Run executes the generate command
func (g *GenerateCmd) Run(ctx *Context) error {
	cfg, err := ctx.loadConfig(config.Overrides{Schema: g.Schema, Package: g.Package, NoFormat: g.NoFormat})
	if err != nil {
		return err
	}
	if cfg.Schema == "" {
		return errors.NewInputError("no schema", errors.ErrNoSchema)
	}

	s, err := schema.ParseFile(cfg.Schema)
	if err != nil {
		return err
	}

	code, err := generator.NewGeneratorWithConfig(cfg).GenerateModels(s, cfg.Generate.Package)
	if err != nil {
		return err
	}

	if cfg.Generate.Format {
		code, err = formatter.NewFormatter().Format(code)
		if err != nil {
			return err
		}
	}
	return ctx.writeOutput(g.Output, []byte(code), "Generated Go code")
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("jsonmodel"),
		kong.Description("Map JSON onto declared models, infer schemas and generate Go models"),
		kong.UsageOnError(),
		versionVars,
	)

	if err := kctx.Run(newContext(&cli.Globals)); err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsonmodel --help\n")
		os.Exit(1)
	}
}
