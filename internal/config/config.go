package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for jsonmodel
type Config struct {
	Schema   string         `yaml:"schema"`
	Model    string         `yaml:"model"`
	Mapping  MappingConfig  `yaml:"mapping"`
	Output   OutputConfig   `yaml:"output"`
	Generate GenerateConfig `yaml:"generate"`
	Infer    InferConfig    `yaml:"infer"`
	Naming   NamingConfig   `yaml:"naming"`
	Log      LogConfig      `yaml:"log"`
}

// MappingConfig controls model construction
type MappingConfig struct {
	Strict      bool `yaml:"strict"`
	Diagnostics bool `yaml:"diagnostics"`
}

// OutputConfig controls how serialized models are written
type OutputConfig struct {
	Pretty bool `yaml:"pretty"`
}

// GenerateConfig controls Go source generation
type GenerateConfig struct {
	Package      string `yaml:"package"`
	FileHeader   string `yaml:"file_header"`
	Constructors bool   `yaml:"constructors"` // emit XFromJSON and XFromStrictJSON helpers
	Format       bool   `yaml:"format"`
}

// InferConfig controls schema inference from sample documents
type InferConfig struct {
	RootName      string        `yaml:"root_name"`
	DetectFormats bool          `yaml:"detect_formats"`
	Required      bool          `yaml:"required"`
	Mappings      []TypeMapping `yaml:"mappings"`
}

// TypeMapping forces the schema type of every property whose key matches
type TypeMapping struct {
	Pattern string `yaml:"pattern"`
	Type    string `yaml:"type"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// NamingConfig controls Go identifiers derived from JSON keys
type NamingConfig struct {
	FieldMappings map[string]string `yaml:"field_mappings"`
}

// LogConfig controls CLI logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Mapping: MappingConfig{
			Strict:      false,
			Diagnostics: true,
		},
		Output: OutputConfig{
			Pretty: true,
		},
		Generate: GenerateConfig{
			Package:      "models",
			Constructors: true,
			Format:       true,
		},
		Infer: InferConfig{
			RootName:      "Root",
			DetectFormats: true,
			Required:      false,
			Mappings:      []TypeMapping{},
		},
		Naming: NamingConfig{
			FieldMappings: make(map[string]string),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.compilePatterns(); err != nil {
		return nil, fmt.Errorf("failed to compile patterns: %w", err)
	}

	// Relative schema paths resolve against the config file
	if cfg.Schema != "" && !filepath.IsAbs(cfg.Schema) {
		cfg.Schema = filepath.Join(filepath.Dir(path), cfg.Schema)
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jsonmodel.yml", ".jsonmodel.yaml", "jsonmodel.yml", "jsonmodel.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

func (c *Config) compilePatterns() error {
	for i := range c.Infer.Mappings {
		mapping := &c.Infer.Mappings[i]
		regex, err := regexp.Compile(mapping.Pattern)
		if err != nil {
			return fmt.Errorf("invalid type mapping pattern '%s': %w", mapping.Pattern, err)
		}
		mapping.regex = regex
	}
	return nil
}

// MatchesField checks if this type mapping matches the given property key
func (tm *TypeMapping) MatchesField(key string) bool {
	if tm.regex == nil {
		regex, err := regexp.Compile(tm.Pattern)
		if err != nil {
			return false
		}
		tm.regex = regex
	}
	return tm.regex.MatchString(key)
}

// FindTypeMapping finds the first type mapping that matches the property key
func (c *Config) FindTypeMapping(key string) (TypeMapping, bool) {
	for _, mapping := range c.Infer.Mappings {
		if mapping.MatchesField(key) {
			return mapping, true
		}
	}
	return TypeMapping{}, false
}

// commonInitialisms are written in upper case when they form a whole word
// of a key, so "user_id" becomes UserID rather than UserId.
var commonInitialisms = map[string]bool{
	"API": true, "CPU": true, "CSS": true, "DNS": true, "GUID": true,
	"HTML": true, "HTTP": true, "HTTPS": true, "ID": true, "IP": true,
	"JSON": true, "SQL": true, "SSH": true, "TCP": true, "TLS": true,
	"TTL": true, "UDP": true, "UI": true, "UID": true, "URI": true,
	"URL": true, "UUID": true, "VIN": true, "XML": true,
}

// GetFieldName returns the Go field name for a property key. Dotted keys
// contribute every segment.
func (c *Config) GetFieldName(key string) string {
	if mapped, exists := c.Naming.FieldMappings[key]; exists {
		return mapped
	}

	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == ' '
	})
	var b strings.Builder
	for _, w := range words {
		if upper := strings.ToUpper(w); commonInitialisms[upper] {
			b.WriteString(upper)
			continue
		}
		b.WriteString(strcase.ToCamel(w))
	}
	return b.String()
}

// Overrides holds values given on the command line. Empty strings and false
// booleans leave the file or default value in place.
type Overrides struct {
	Schema      string
	Model       string
	Package     string
	RootName    string
	LogLevel    string
	Strict      bool
	Compact     bool
	NoFormat    bool
	Diagnostics *bool
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, o Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if o.Schema != "" {
		cfg.Schema = o.Schema
	}
	if o.Model != "" {
		cfg.Model = o.Model
	}
	if o.Package != "" {
		cfg.Generate.Package = o.Package
	}
	if o.RootName != "" {
		cfg.Infer.RootName = o.RootName
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.Strict {
		cfg.Mapping.Strict = true
	}
	if o.Compact {
		cfg.Output.Pretty = false
	}
	if o.NoFormat {
		cfg.Generate.Format = false
	}
	if o.Diagnostics != nil {
		cfg.Mapping.Diagnostics = *o.Diagnostics
	}

	return cfg, nil
}
