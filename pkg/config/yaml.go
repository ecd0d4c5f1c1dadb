package config

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// YAMLIndent returns the default YAML indentation.
func YAMLIndent() int {
	return 2
}

// ToYAML serializes the configuration to YAML format.
func (c *Config) ToYAML() ([]byte, error) {
	if c == nil {
		return nil, nil
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent())

	if err := encoder.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}

	return buf.Bytes(), nil
}

// ToYAMLWithHeader serializes the configuration with a header comment.
func (c *Config) ToYAMLWithHeader(header string) ([]byte, error) {
	yamlBytes, err := c.ToYAML()
	if err != nil {
		return nil, err
	}
	if header == "" {
		return yamlBytes, nil
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	if header[len(header)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	buf.Write(yamlBytes)

	return buf.Bytes(), nil
}

// FromYAML parses a configuration from YAML bytes. Unknown fields are errors.
func FromYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return cfg, nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c

	clone.Read = slices.Clone(c.Read)
	clone.Ignore = slices.Clone(c.Ignore)
	clone.Slots = maps.Clone(c.Slots)

	if c.Backups.Enabled != nil {
		enabled := *c.Backups.Enabled
		clone.Backups.Enabled = &enabled
	}

	if c.Parsers != nil {
		clone.Parsers = make([]ParserConfig, len(c.Parsers))
		for i, p := range c.Parsers {
			clone.Parsers[i] = p.clone()
		}
	}

	return &clone
}

func (p ParserConfig) clone() ParserConfig {
	out := p
	out.Comments = slices.Clone(p.Comments)
	out.CData = slices.Clone(p.CData)
	out.Extensions = slices.Clone(p.Extensions)
	out.Globs = slices.Clone(p.Globs)
	if p.Notation != nil {
		notation := *p.Notation
		out.Notation = &notation
	}
	return out
}
