// definitions.go: Argument definitions loaded from YAML, JSON, TOML or HCL files
//
// A definitions file describes the arguments a program accepts, so the
// argument set can live next to deployment configuration instead of code.
//
// YAML (JSON has the same shape):
//
//	arguments:
//	  - name: host
//	    type: string
//	    required: true
//	  - name: port
//	    type: int
//
// TOML:
//
//	[[arguments]]
//	name = "host"
//	required = true
//
// HCL:
//
//	argument "host" {
//	  type     = "string"
//	  required = true
//	}
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package kvargs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/agilira/go-errors"
	"go.yaml.in/yaml/v3"
)

// DefinitionFormat is the encoding of a definitions file
type DefinitionFormat int

const (
	FormatYAML DefinitionFormat = iota
	FormatJSON
	FormatHCL
	FormatTOML
	FormatUnknown
)

func (f DefinitionFormat) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatHCL:
		return "hcl"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// DetectFormat detects the definitions format from the file extension
func DetectFormat(path string) DefinitionFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	case ".hcl":
		return FormatHCL
	case ".toml":
		return FormatTOML
	default:
		return FormatUnknown
	}
}

// ParseFormat parses a format name; "auto" and "" yield FormatUnknown so the
// caller falls back to DetectFormat
func ParseFormat(name string) (DefinitionFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FormatUnknown, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "hcl":
		return FormatHCL, nil
	case "toml":
		return FormatTOML, nil
	default:
		return FormatUnknown, errors.New(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported definitions format %q", name))
	}
}

// Definition describes one argument
type Definition struct {
	Name        string `yaml:"name" json:"name" toml:"name"`
	Type        string `yaml:"type,omitempty" json:"type,omitempty" toml:"type,omitempty"`
	Required    bool   `yaml:"required,omitempty" json:"required,omitempty" toml:"required,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty" toml:"description,omitempty"`
}

// Definitions is an ordered list of argument definitions
type Definitions []Definition

// definitionsFile is the YAML/JSON/TOML document layout
type definitionsFile struct {
	Arguments Definitions `yaml:"arguments" json:"arguments" toml:"arguments"`
}

// LoadDefinitions reads and validates the definitions file at path.
// The format is taken from the file extension.
func LoadDefinitions(path string) (Definitions, error) {
	return LoadDefinitionsWithFormat(path, DetectFormat(path))
}

// LoadDefinitionsWithFormat is LoadDefinitions with an explicit format.
// FormatUnknown falls back to the file extension.
func LoadDefinitionsWithFormat(path string, format DefinitionFormat) (Definitions, error) {
	if format == FormatUnknown {
		format = DetectFormat(path)
	}
	if format == FormatUnknown {
		return nil, errors.New(ErrCodeUnsupportedFormat, "cannot detect definitions format of "+path)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided intentionally
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeIOError, "failed to read definitions file")
	}
	return parseDefinitionsNamed(data, format, path)
}

// ParseDefinitions decodes and validates definitions from data
func ParseDefinitions(data []byte, format DefinitionFormat) (Definitions, error) {
	return parseDefinitionsNamed(data, format, "definitions."+format.String())
}

func parseDefinitionsNamed(data []byte, format DefinitionFormat, filename string) (Definitions, error) {
	var (
		definitions Definitions
		err         error
	)

	switch format {
	case FormatYAML:
		var file definitionsFile
		if err = yaml.Unmarshal(data, &file); err == nil {
			definitions = file.Arguments
		}
	case FormatJSON:
		var file definitionsFile
		if err = json.Unmarshal(data, &file); err == nil {
			definitions = file.Arguments
		}
	case FormatTOML:
		var file definitionsFile
		if _, err = toml.Decode(string(data), &file); err == nil {
			definitions = file.Arguments
		}
	case FormatHCL:
		definitions, err = parseHCLDefinitions(data, filename)
	default:
		return nil, errors.New(ErrCodeUnsupportedFormat, "unsupported definitions format: "+format.String())
	}
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidDefinition, "failed to decode "+format.String()+" definitions")
	}

	if err := definitions.Validate(); err != nil {
		return nil, err
	}
	return definitions, nil
}

// Validate checks names are present and unique and types are known
func (d Definitions) Validate() error {
	seen := make(map[string]struct{}, len(d))
	for i, definition := range d {
		if err := validateIdentifier(definition.Name); err != nil {
			return errors.Wrap(err, ErrCodeInvalidDefinition, fmt.Sprintf("definition #%d", i+1))
		}
		if _, dup := seen[definition.Name]; dup {
			return errors.New(ErrCodeInvalidDefinition, "duplicate argument definition '"+definition.Name+"'")
		}
		seen[definition.Name] = struct{}{}
		if _, err := ParseKind(definition.Type); err != nil {
			return errors.Wrap(err, ErrCodeInvalidDefinition, "argument '"+definition.Name+"'")
		}
	}
	return nil
}

// Build creates one Argument per definition, in order
func (d Definitions) Build() ([]Argument, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	arguments := make([]Argument, 0, len(d))
	for _, definition := range d {
		kind, _ := ParseKind(definition.Type)
		opts := []Option{Description(definition.Description)}
		if definition.Required {
			opts = append(opts, Required())
		}
		argument, err := NewArgument(kind, definition.Name, opts...)
		if err != nil {
			return nil, err
		}
		arguments = append(arguments, argument)
	}
	return arguments, nil
}

// validateIdentifier rejects identifiers no token could ever match
func validateIdentifier(identifier string) error {
	if identifier == "" {
		return errors.New(ErrCodeInvalidDefinition, "argument identifier cannot be empty")
	}
	if strings.Contains(identifier, assignmentDelimiter) {
		return errors.New(ErrCodeInvalidDefinition, "argument identifier cannot contain '"+assignmentDelimiter+"': "+identifier)
	}
	return nil
}
