// Package scripts validates the metadata header carried by analysis
// scripts and notebooks. Every script declares a YAML block describing
// what it does, who wrote it, and which data files it reads and writes;
// the format of the block depends on the file type.
package scripts

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FileDetails names one input or output file of a script.
type FileDetails struct {
	Name        string `yaml:"name"`
	Path        string `yaml:"path"`
	Description string `yaml:"description"`
}

// Metadata is the required header of an analysis script.
type Metadata struct {
	Title                  string        `yaml:"title"`
	Description            string        `yaml:"description"`
	Author                 []string      `yaml:"author"`
	VirtualEcosystemModule []string      `yaml:"virtual_ecosystem_module"`
	Status                 string        `yaml:"status"`
	PackageDependencies    []string      `yaml:"package_dependencies"`
	UsageNotes             string        `yaml:"usage_notes"`
	InputFiles             []FileDetails `yaml:"input_files"`
	OutputFiles            []FileDetails `yaml:"output_files"`
}

// MetadataError reports a metadata block that parsed as YAML but does not
// satisfy the schema.
type MetadataError struct {
	Field  string
	Reason string
}

func (e *MetadataError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid script metadata: %s", e.Reason)
	}
	return fmt.Sprintf("invalid script metadata: field %q %s", e.Field, e.Reason)
}

// ExtractError reports a file whose metadata block could not be located or
// isolated, before any YAML parsing takes place.
type ExtractError struct {
	Reason string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("cannot extract metadata block: %s", e.Reason)
}

// decodeMetadata strictly parses a YAML document into Metadata and checks
// the required fields.
func decodeMetadata(doc []byte) (*Metadata, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(doc))
	decoder.KnownFields(true)

	var meta Metadata
	if err := decoder.Decode(&meta); err != nil {
		return nil, fmt.Errorf("parse metadata yaml: %w", err)
	}

	if err := meta.validate(); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (m *Metadata) validate() error {
	required := []struct {
		field string
		empty bool
	}{
		{"title", m.Title == ""},
		{"description", m.Description == ""},
		{"author", len(m.Author) == 0},
		{"virtual_ecosystem_module", len(m.VirtualEcosystemModule) == 0},
		{"status", m.Status == ""},
		{"usage_notes", m.UsageNotes == ""},
	}
	for _, r := range required {
		if r.empty {
			return &MetadataError{Field: r.field, Reason: "is required"}
		}
	}

	for _, f := range append(m.InputFiles, m.OutputFiles...) {
		if f.Name == "" || f.Path == "" {
			return &MetadataError{
				Field:  "input_files/output_files",
				Reason: "entries need both name and path",
			}
		}
	}
	return nil
}
