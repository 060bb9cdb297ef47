package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/file"
	"github.com/pelletier/go-toml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "orphan-config.schema.json"

// schemaJSON describes the accepted shape of an orphan config file.
// Unknown top-level sections are rejected so typos surface early.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "workers": {"type": "integer", "minimum": 0},
    "scan": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "manifest": {"type": "string", "minLength": 1},
        "extensions": {"type": "array", "items": {"type": "string", "pattern": "^\\."}},
        "exclude_dirs": {"type": "array", "items": {"type": "string", "minLength": 1}},
        "exclude_patterns": {"type": "array", "items": {"type": "string", "minLength": 1}},
        "ignore_file": {"type": "string", "minLength": 1},
        "gitignore": {"type": "boolean"}
      }
    },
    "resolve": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "alias_configs": {"type": "array", "items": {"type": "string", "minLength": 1}},
        "base_url": {"type": "boolean"},
        "extensions": {"type": "array", "items": {"type": "string", "pattern": "^\\."}},
        "index_name": {"type": "string", "minLength": 1}
      }
    },
    "entry_points": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "folders": {"type": "array", "items": {"type": "string", "minLength": 1}},
        "basenames": {"type": "array", "items": {"type": "string", "minLength": 1}}
      }
    },
    "quarantine": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "dir": {"type": "string", "minLength": 1}
      }
    },
    "cache": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "enabled": {"type": "boolean"},
        "dir": {"type": "string"},
        "ttl": {"type": "integer", "minimum": 0}
      }
    },
    "output": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "format": {"enum": ["text", "json", "markdown", "md", "toon", "yaml"]},
        "color": {"type": "boolean"},
        "verbose": {"type": "boolean"}
      }
    }
  }
}`

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
}

// Validate checks a config file against the config schema and decodes it.
func Validate(path string) (*Config, error) {
	k, err := loadKoanf(file.Provider(path), path)
	if err != nil {
		return nil, err
	}

	// Round-trip through JSON so TOML/YAML values take the schema's JSON types.
	raw, err := json.Marshal(k.Raw())
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", path, err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", path, err)
	}

	sch, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return Load(path)
}

// EncodeTOML renders the config as a TOML document.
func (c *Config) EncodeTOML() ([]byte, error) {
	return toml.Marshal(*c)
}
