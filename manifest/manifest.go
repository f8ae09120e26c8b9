// Package manifest parses and represents the YAML file that describes one
// indexer: which GraphQL schema it indexes, which module executes its
// handlers, and the block range it covers.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Module is a closed sum type: either a WASM module loaded from a path, or
// the native variant that has no module bytes to load.
type Module struct {
	// Path holds the WASM file path when Kind is ModuleWasm; empty
	// otherwise.
	Path string
	Kind ModuleKind
}

type ModuleKind uint8

const (
	ModuleWasm ModuleKind = iota
	ModuleNative
)

// String returns the path for a WASM module, or "native".
func (m Module) String() string {
	if m.Kind == ModuleNative {
		return "native"
	}
	return m.Path
}

// UnmarshalYAML accepts either `wasm: <path>` or the bare scalar `native`,
// matching the original's `#[serde(rename_all = "snake_case")]` externally
// tagged enum encoding.
func (m *Module) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		if value.Value != "native" {
			return fmt.Errorf("manifest: unrecognized module scalar %q", value.Value)
		}
		*m = Module{Kind: ModuleNative}
		return nil
	}
	if value.Kind == yaml.MappingNode {
		var wrapper struct {
			Wasm string `yaml:"wasm"`
		}
		if err := value.Decode(&wrapper); err != nil {
			return err
		}
		if wrapper.Wasm == "" {
			return fmt.Errorf("manifest: module mapping missing wasm path")
		}
		*m = Module{Kind: ModuleWasm, Path: wrapper.Wasm}
		return nil
	}
	return fmt.Errorf("manifest: unsupported module encoding")
}

// MarshalYAML renders Module back to its wire shape.
func (m Module) MarshalYAML() (interface{}, error) {
	if m.Kind == ModuleNative {
		return "native", nil
	}
	return map[string]string{"wasm": m.Path}, nil
}

// ContractIDs holds the set of contract IDs an indexer subscribes to. The
// YAML value may be a single string, a list of strings, or null/absent —
// all three encodings round-trip through this type.
type ContractIDs struct {
	IDs []string
}

// UnmarshalYAML accepts a scalar, a sequence, or null.
func (c *ContractIDs) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || value.Value == "" {
			c.IDs = nil
			return nil
		}
		c.IDs = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		var ids []string
		if err := value.Decode(&ids); err != nil {
			return err
		}
		c.IDs = ids
		return nil
	}
	return fmt.Errorf("manifest: unsupported contract_id encoding")
}

// MarshalYAML renders ContractIDs back to its wire shape: a bare string
// when there is exactly one id, a sequence otherwise (including empty).
func (c ContractIDs) MarshalYAML() (interface{}, error) {
	if len(c.IDs) == 1 {
		return c.IDs[0], nil
	}
	return c.IDs, nil
}

// Single returns the lone contract id and true when exactly one is set.
func (c ContractIDs) Single() (string, bool) {
	if len(c.IDs) == 1 {
		return c.IDs[0], true
	}
	return "", false
}

// Manifest is one indexer's YAML configuration: which schema it indexes,
// which module runs its handlers, and the block range and resumability
// policy the scheduler should apply.
type Manifest struct {
	Namespace      string      `yaml:"namespace"`
	Identifier     string      `yaml:"identifier"`
	ABI            string      `yaml:"abi,omitempty"`
	FuelClient     string      `yaml:"fuel_client,omitempty"`
	GraphQLSchema  string      `yaml:"graphql_schema"`
	Module         Module      `yaml:"module"`
	Metrics        *bool       `yaml:"metrics,omitempty"`
	ContractID     ContractIDs `yaml:"contract_id,omitempty"`
	StartBlock     *uint32     `yaml:"start_block,omitempty"`
	EndBlock       *uint32     `yaml:"end_block,omitempty"`
	Resumable      *bool       `yaml:"resumable,omitempty"`
}

// UID returns the manifest's unique identifier, "{namespace}.{identifier}".
func (m Manifest) UID() string {
	return m.Namespace + "." + m.Identifier
}

// ExecutionSource reports which sandbox variant this manifest's module
// requires.
func (m Manifest) ExecutionSource() ExecutionSource {
	if m.Module.Kind == ModuleNative {
		return SourceNative
	}
	return SourceWasm
}

type ExecutionSource uint8

const (
	SourceWasm ExecutionSource = iota
	SourceNative
)

// ModuleBytes reads the compiled WASM module's bytes from Module.Path. It
// returns an error for a native manifest, which has no module file to read.
func (m Manifest) ModuleBytes() ([]byte, error) {
	if m.Module.Kind == ModuleNative {
		return nil, fmt.Errorf("manifest: native execution has no module bytes")
	}
	return os.ReadFile(m.Module.Path)
}

// Parse decodes a Manifest from its YAML source text.
func Parse(source []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(source, &m); err != nil {
		return Manifest{}, fmt.Errorf("manifest: %w", err)
	}
	if m.Namespace == "" || m.Identifier == "" {
		return Manifest{}, fmt.Errorf("manifest: namespace and identifier are required")
	}
	if m.GraphQLSchema == "" {
		return Manifest{}, fmt.Errorf("manifest: graphql_schema is required")
	}
	return m, nil
}

// FromFile reads and parses the manifest YAML file at path.
func FromFile(path string) (Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest: reading %s: %w", path, err)
	}
	return Parse(content)
}

// GraphQLSchemaContent reads the raw GraphQL source the manifest points at.
func (m Manifest) GraphQLSchemaContent() (string, error) {
	b, err := os.ReadFile(m.GraphQLSchema)
	if err != nil {
		return "", fmt.Errorf("manifest: reading %s: %w", m.GraphQLSchema, err)
	}
	return string(b), nil
}
