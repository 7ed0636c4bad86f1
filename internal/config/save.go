package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// SaveGeneration updates the generation section in the config file.
// Comments and formatting in other sections are preserved by editing
// the yaml.Node tree instead of re-marshaling the whole config.
func SaveGeneration(configPath string, gen GenerationConfig) error {
	return saveSection(configPath, "generation", buildGenerationNode(gen))
}

// SaveTracingEnabled flips the tracing.enabled flag in the config file,
// preserving the rest of the tracing section.
func SaveTracingEnabled(configPath string, enabled bool) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	tracingNode := findOrCreateSection(&doc, "tracing")
	setScalar(tracingNode, "enabled", strconv.FormatBool(enabled))

	return writeDoc(configPath, &doc)
}

// saveSection replaces (or appends) a top-level section in the config file.
func saveSection(configPath, key string, section *yaml.Node) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	if doc.Kind == 0 {
		// Empty or new file - create document structure
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{
				{
					Kind: yaml.MappingNode,
					Content: []*yaml.Node{
						{Kind: yaml.ScalarNode, Value: key},
						section,
					},
				},
			},
		}
	} else if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind == yaml.MappingNode {
			found := false
			for i := 0; i < len(root.Content)-1; i += 2 {
				if root.Content[i].Value == key {
					root.Content[i+1] = section
					found = true
					break
				}
			}
			if !found {
				root.Content = append(root.Content,
					&yaml.Node{Kind: yaml.ScalarNode, Value: key},
					section,
				)
			}
		}
	}

	return writeDoc(configPath, &doc)
}

// findOrCreateSection returns the mapping node for a top-level key,
// creating the document structure and the section as needed.
func findOrCreateSection(doc *yaml.Node, key string) *yaml.Node {
	if doc.Kind == 0 {
		*doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	root := doc.Content[0]
	for i := 0; i < len(root.Content)-1; i += 2 {
		if root.Content[i].Value == key {
			return root.Content[i+1]
		}
	}
	section := &yaml.Node{Kind: yaml.MappingNode}
	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		section,
	)
	return section
}

// setScalar sets key to value within a mapping node, replacing an
// existing entry or appending a new one.
func setScalar(mapping *yaml.Node, key, value string) {
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = &yaml.Node{Kind: yaml.ScalarNode, Value: value}
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		&yaml.Node{Kind: yaml.ScalarNode, Value: value},
	)
}

// buildGenerationNode creates a yaml.Node for the generation section.
func buildGenerationNode(gen GenerationConfig) *yaml.Node {
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "max_rows"},
			{Kind: yaml.ScalarNode, Value: strconv.Itoa(gen.MaxRows)},
			{Kind: yaml.ScalarNode, Value: "max_concurrent"},
			{Kind: yaml.ScalarNode, Value: strconv.Itoa(gen.MaxConcurrent)},
			{Kind: yaml.ScalarNode, Value: "default_row_count"},
			{Kind: yaml.ScalarNode, Value: strconv.Itoa(gen.DefaultRowCount)},
		},
	}
}

// writeDoc marshals the document and writes it atomically
// (write to temp, then rename).
func writeDoc(configPath string, doc *yaml.Node) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".datagenesis.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(buf.Bytes()); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
