package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// settableKeys are the top-level keys `dmontop config set` may change.
var settableKeys = map[string]bool{
	"interval":     true,
	"poll":         true,
	"history":      true,
	"catalog":      true,
	"entity_id":    true,
	"entity_tag":   true,
	"percentiles":  true,
	"active_only":  true,
	"dcgmi":        true,
	"log_file":     true,
	"metrics_addr": true,
	"color":        true,
}

// SettableKeys returns the keys accepted by SetValue, sorted.
func SettableKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetValue sets a top-level key in the config file at configPath.
// It preserves the existing YAML structure and comments, and refuses to
// write a file that would no longer validate. Percentiles take a
// comma-separated list, e.g. "50,95,99.9".
func SetValue(configPath, key, value string) error {
	if !settableKeys[key] {
		return fmt.Errorf("unknown key '%s' - settable keys are: %s", key, strings.Join(SettableKeys(), ", "))
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse as yaml.Node to preserve structure
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if root.Kind == 0 {
		// Empty file
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	docNode := root.Content[0]
	if docNode.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	newValue := valueNode(key, value)
	if existing := findMapValue(docNode, key); existing != nil {
		// Keep comments attached to the old value
		newValue.HeadComment = existing.HeadComment
		newValue.LineComment = existing.LineComment
		newValue.FootComment = existing.FootComment
		*existing = *newValue
	} else {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
		docNode.Content = append(docNode.Content, keyNode, newValue)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	// Validate through the normal load path before replacing the file.
	tmp, err := os.CreateTemp(filepath.Dir(configPath), ".dmontop-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	cfg, err := Load(tmpPath)
	if err != nil {
		return err
	}
	if err := Validate(cfg); err != nil {
		return err
	}

	if err := os.WriteFile(configPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// valueNode builds the YAML node for a key, letting YAML infer scalar types.
func valueNode(key, value string) *yaml.Node {
	if key == "percentiles" {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: part})
		}
		return seq
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}
