// Package model maps JSON documents onto models built from property slots.
//
// A model lists its slots through Properties, ancestors first. Construction
// runs every slot against a document and then the post-process hooks. Lenient
// construction always succeeds; strict construction fails when a required slot
// ends up empty.
package model

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mcncl/jsonmodel/internal/errors"
	"github.com/mcncl/jsonmodel/jsonvalue"
	"github.com/mcncl/jsonmodel/property"
	log "github.com/sirupsen/logrus"
)

// ErrInvalidModel is wrapped by every strict construction failure.
var ErrInvalidModel = errors.ErrInvalidModel

// Model is anything built from property slots. An embedding model returns
// append(embedded.Properties(), own...).
type Model interface {
	Properties() []property.Descriptor
}

// Named is implemented by models that report their own name in diagnostics.
type Named interface {
	ModelName() string
}

// Failure names a required slot that did not fill.
type Failure struct {
	Key  string
	Type string
}

// ValidationError reports a failed strict construction.
type ValidationError struct {
	Model    string
	Failures []Failure
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s (%s)", f.Key, f.Type)
	}
	return fmt.Sprintf("%s: %s: missing required %s", ErrInvalidModel, e.Model, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidModel
}

// Config controls a Mapper.
type Config struct {
	// Diagnostics collects every required failure. When off, strict
	// construction stops at the first one.
	Diagnostics bool
	Logger      log.FieldLogger
}

// Mapper runs construction.
type Mapper struct {
	config Config
}

// NewMapper returns a Mapper with diagnostics on, logging to the standard
// logrus logger.
func NewMapper() *Mapper {
	return NewMapperWithConfig(Config{Diagnostics: true})
}

func NewMapperWithConfig(config Config) *Mapper {
	if config.Logger == nil {
		config.Logger = log.StandardLogger()
	}
	return &Mapper{config: config}
}

// Load fills m from doc, ignoring failures, then runs post-process hooks.
func (mp *Mapper) Load(m Model, doc jsonvalue.Value) {
	props := m.Properties()
	for _, p := range props {
		p.FromJSON(doc)
	}
	postProcess(props)
}

// LoadStrict fills m from doc. When a required slot is left empty it returns a
// *ValidationError and skips the hooks.
func (mp *Mapper) LoadStrict(m Model, doc jsonvalue.Value) error {
	props := m.Properties()

	var failures []Failure
	for _, p := range props {
		if p.FromJSON(doc) || !p.Required() {
			continue
		}
		failures = append(failures, Failure{Key: p.Key(), Type: p.Type()})
		if !mp.config.Diagnostics {
			break
		}
	}

	if len(failures) > 0 {
		err := &ValidationError{Model: Name(m), Failures: failures}
		for _, f := range failures {
			mp.config.Logger.WithFields(log.Fields{
				"model": err.Model,
				"key":   f.Key,
				"type":  f.Type,
			}).Debug("required property failed")
		}
		return err
	}

	postProcess(props)
	return nil
}

func postProcess(props []property.Descriptor) {
	for _, p := range props {
		p.PostProcess()
	}
}

// Name returns the display name of m.
func Name(m Model) string {
	if n, ok := m.(Named); ok {
		return n.ModelName()
	}
	t := reflect.TypeOf(m)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

var defaultMapper = NewMapper()

// Load fills m leniently with the default mapper.
func Load(m Model, doc jsonvalue.Value) {
	defaultMapper.Load(m, doc)
}

// LoadStrict fills m strictly with the default mapper.
func LoadStrict(m Model, doc jsonvalue.Value) error {
	return defaultMapper.LoadStrict(m, doc)
}

// New returns a model with every slot at its default.
func New[M Model](ctor func() M) M {
	return ctor()
}

// FromJSON builds a model leniently.
func FromJSON[M Model](ctor func() M, doc jsonvalue.Value) M {
	m := ctor()
	defaultMapper.Load(m, doc)
	return m
}

// FromStrictJSON builds a model strictly. On failure it returns the zero M.
func FromStrictJSON[M Model](ctor func() M, doc jsonvalue.Value) (M, error) {
	m := ctor()
	if err := defaultMapper.LoadStrict(m, doc); err != nil {
		var zero M
		return zero, err
	}
	return m, nil
}
