package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Empty(t, cfg.Schema)
	assert.False(t, cfg.Mapping.Strict)
	assert.True(t, cfg.Mapping.Diagnostics)
	assert.True(t, cfg.Output.Pretty)
	assert.Equal(t, "models", cfg.Generate.Package)
	assert.True(t, cfg.Generate.Format)
	assert.Equal(t, "Root", cfg.Infer.RootName)
	assert.True(t, cfg.Infer.DetectFormats)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestConfig_LoadFromYAML(t *testing.T) {
	yamlContent := `
schema: "schemas/vehicle.yml"
model: "Vehicle"
mapping:
  strict: true
  diagnostics: false
output:
  pretty: false
generate:
  package: "fleet"
  file_header: "Code generated by jsonmodel. DO NOT EDIT."
infer:
  root_name: "Vehicle"
  required: true
  mappings:
    - pattern: ".*_at$"
      type: "date"
naming:
  field_mappings:
    "vin": "VIN"
log:
  level: "debug"
  format: "json"
`

	tmpDir, err := os.MkdirTemp("", "config_test")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	configPath := filepath.Join(tmpDir, ".jsonmodel.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o644))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(tmpDir, "schemas", "vehicle.yml"), cfg.Schema, "relative to the config file")
	assert.Equal(t, "Vehicle", cfg.Model)
	assert.True(t, cfg.Mapping.Strict)
	assert.False(t, cfg.Mapping.Diagnostics)
	assert.False(t, cfg.Output.Pretty)
	assert.Equal(t, "fleet", cfg.Generate.Package)
	assert.Equal(t, "Code generated by jsonmodel. DO NOT EDIT.", cfg.Generate.FileHeader)
	assert.True(t, cfg.Generate.Format, "unset keys keep their defaults")
	assert.Equal(t, "Vehicle", cfg.Infer.RootName)
	assert.True(t, cfg.Infer.Required)
	assert.Equal(t, "VIN", cfg.Naming.FieldMappings["vin"])
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	require.Len(t, cfg.Infer.Mappings, 1)
	mapping := cfg.Infer.Mappings[0]
	assert.Equal(t, ".*_at$", mapping.Pattern)
	assert.Equal(t, "date", mapping.Type)
	assert.NotNil(t, mapping.regex)
}

func TestConfig_LoadNonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/config.yml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no such file or directory")
}

func TestConfig_LoadInvalidYAML(t *testing.T) {
	invalidYAML := `
model: "Vehicle"
invalid_yaml: [unclosed array
`

	tmpFile, err := os.CreateTemp("", "invalid_*.yml")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	_, err = tmpFile.WriteString(invalidYAML)
	require.NoError(t, err)
	_ = tmpFile.Close()

	_, err = LoadConfig(tmpFile.Name())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestConfig_LoadInvalidPattern(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "pattern_*.yml")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	_, err = tmpFile.WriteString("infer:\n  mappings:\n    - pattern: \"[bad\"\n      type: int\n")
	require.NoError(t, err)
	_ = tmpFile.Close()

	_, err = LoadConfig(tmpFile.Name())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid type mapping pattern")
}

func TestConfig_FindConfigFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_search_test")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	nestedDir := filepath.Join(tmpDir, "project", "subdir")
	err = os.MkdirAll(nestedDir, 0o755)
	require.NoError(t, err)

	configPath := filepath.Join(tmpDir, "project", ".jsonmodel.yml")
	err = os.WriteFile(configPath, []byte(`model: "found"`), 0o644)
	require.NoError(t, err)

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()

	err = os.Chdir(nestedDir)
	require.NoError(t, err)

	// Should find it in the parent directory
	foundPath := FindConfigFile()
	require.NotEmpty(t, foundPath, "Should find config file")

	foundContent, err := os.ReadFile(foundPath)
	require.NoError(t, err)
	assert.Contains(t, string(foundContent), `model: "found"`)
}

func TestConfig_FindConfigFileNotFound(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "no_config_test")
	require.NoError(t, err)
	defer func() { _ = os.RemoveAll(tmpDir) }()

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()

	err = os.Chdir(tmpDir)
	require.NoError(t, err)

	assert.Empty(t, FindConfigFile())
}

func TestTypeMapping_MatchesPattern(t *testing.T) {
	mapping := TypeMapping{
		Pattern: ".*_at$",
		Type:    "date",
	}

	assert.True(t, mapping.MatchesField("created_at"))
	assert.True(t, mapping.MatchesField("meta.updated_at"))
	assert.False(t, mapping.MatchesField("name"))
	assert.False(t, mapping.MatchesField("at_home"))
}

func TestTypeMapping_InvalidPattern(t *testing.T) {
	mapping := TypeMapping{
		Pattern: "[invalid regex",
		Type:    "int64",
	}

	// Should not panic and should return false for invalid regex
	assert.False(t, mapping.MatchesField("user_id"))
}

func TestConfig_FindTypeMapping(t *testing.T) {
	cfg := &Config{
		Infer: InferConfig{
			Mappings: []TypeMapping{
				{Pattern: ".*_id$", Type: "int64"},
				{Pattern: "^id$", Type: "uuid"},
			},
		},
	}

	mapping, found := cfg.FindTypeMapping("owner_id")
	assert.True(t, found)
	assert.Equal(t, "int64", mapping.Type)

	mapping, found = cfg.FindTypeMapping("id")
	assert.True(t, found)
	assert.Equal(t, "uuid", mapping.Type)

	_, found = cfg.FindTypeMapping("name")
	assert.False(t, found)
}

func TestConfig_GetFieldName(t *testing.T) {
	cfg := &Config{
		Naming: NamingConfig{
			FieldMappings: map[string]string{
				"vin":     "VIN",
				"api_key": "APIKey",
			},
		},
	}

	assert.Equal(t, "VIN", cfg.GetFieldName("vin"))
	assert.Equal(t, "APIKey", cfg.GetFieldName("api_key"))

	assert.Equal(t, "UserName", cfg.GetFieldName("user_name"))
	assert.Equal(t, "SpecsEnginePower", cfg.GetFieldName("specs.engine.power"))

	tests := map[string]string{
		"id":          "ID",
		"user_id":     "UserID",
		"url":         "URL",
		"website_url": "WebsiteURL",
		"uuid":        "UUID",
		"owner.id":    "OwnerID",
		"api-version": "APIVersion",
		"identity":    "Identity",
		"userId":      "UserId",
		"ids":         "Ids",
		"_hidden":     "Hidden",
	}
	for key, want := range tests {
		assert.Equal(t, want, cfg.GetFieldName(key), key)
	}
}

func TestLoadConfigWithPrecedence(t *testing.T) {
	configYAML := `
schema: "/etc/jsonmodel/vehicle.yml"
model: "Vehicle"
mapping:
  diagnostics: true
generate:
  package: "fleet"
`

	tmpFile, err := os.CreateTemp("", "precedence_test_*.yml")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	_, err = tmpFile.WriteString(configYAML)
	require.NoError(t, err)
	_ = tmpFile.Close()

	off := false
	cfg, err := LoadConfigWithCLI(tmpFile.Name(), Overrides{
		Model:       "Car",
		Package:     "cars",
		Strict:      true,
		Compact:     true,
		Diagnostics: &off,
	})
	require.NoError(t, err)

	// CLI > config file > defaults
	assert.Equal(t, "/etc/jsonmodel/vehicle.yml", cfg.Schema)
	assert.Equal(t, "Car", cfg.Model)
	assert.Equal(t, "cars", cfg.Generate.Package)
	assert.True(t, cfg.Mapping.Strict)
	assert.False(t, cfg.Mapping.Diagnostics)
	assert.False(t, cfg.Output.Pretty)
}

func TestLoadConfigWithPrecedence_NoOverrides(t *testing.T) {
	configYAML := `
model: "Vehicle"
output:
  pretty: false
`

	tmpFile, err := os.CreateTemp("", "precedence_no_override_*.yml")
	require.NoError(t, err)
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	_, err = tmpFile.WriteString(configYAML)
	require.NoError(t, err)
	_ = tmpFile.Close()

	cfg, err := LoadConfigWithCLI(tmpFile.Name(), Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "Vehicle", cfg.Model)
	assert.False(t, cfg.Output.Pretty)
	assert.Equal(t, "Root", cfg.Infer.RootName) // Default value
}

func TestLoadConfigWithCLI_NoFile(t *testing.T) {
	cfg, err := LoadConfigWithCLI("", Overrides{Schema: "s.yml", RootName: "Fleet", LogLevel: "warn", NoFormat: true})
	require.NoError(t, err)
	assert.Equal(t, "s.yml", cfg.Schema)
	assert.Equal(t, "Fleet", cfg.Infer.RootName)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Generate.Format)
}
