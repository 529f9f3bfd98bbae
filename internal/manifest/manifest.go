// Package manifest implements the MANIFEST.yaml sidecar document that
// declares the expected contents and provenance of one data directory.
//
// Parsing is pure: it only interprets the document bytes and never touches
// the filesystem. The reconciliation side of the tool treats manifests as
// read-only and reports mismatches instead of editing them; only the
// `manifests` command rewrites them, via Update.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Filename is the sidecar document name inside each data directory.
const Filename = "MANIFEST.yaml"

// File is one declared data file.
type File struct {
	// Path relative to the manifest's directory, unique within the manifest.
	Path string `yaml:"path"`

	// Description of the file contents.
	Description string `yaml:"description,omitempty"`

	// Source records provenance: a download URL or the script that built it.
	Source string `yaml:"source,omitempty"`

	// Size is the expected byte size, when declared.
	Size *int64 `yaml:"size,omitempty"`

	// MD5 is the expected content checksum, when declared.
	MD5 string `yaml:"md5,omitempty"`
}

// Manifest is one directory's declaration.
type Manifest struct {
	// Directory is the repository-relative path of the directory described.
	Directory string `yaml:"directory"`

	Author      string `yaml:"author,omitempty"`
	Date        string `yaml:"date,omitempty"`
	Description string `yaml:"description,omitempty"`

	Files []*File `yaml:"files"`
}

// Parse decodes and validates a manifest document. Unknown fields are
// rejected so typos in hand-authored manifests surface as errors.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Field: "document", Reason: "empty manifest"}
		}
		return nil, &SchemaError{Field: "document", Reason: err.Error()}
	}

	if err := m.validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Marshal serializes the manifest back to YAML. A manifest produced by Parse
// round-trips to a document that parses to an equal manifest.
func (m *Manifest) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}

func (m *Manifest) validate() error {
	if m.Directory == "" {
		return &SchemaError{Field: "directory", Reason: "missing required field"}
	}

	seen := make(map[string]struct{}, len(m.Files))
	for _, f := range m.Files {
		if f == nil || f.Path == "" {
			return &SchemaError{Field: "files.path", Reason: "missing required field"}
		}
		if err := checkRelPath(f.Path); err != nil {
			return err
		}
		if _, dup := seen[f.Path]; dup {
			return &DuplicatePathError{Path: f.Path}
		}
		seen[f.Path] = struct{}{}
	}

	return nil
}

// checkRelPath rejects absolute paths and parent-directory traversal.
func checkRelPath(p string) error {
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") || strings.HasPrefix(p, "\\") {
		return &PathTraversalError{Path: p}
	}
	for _, seg := range strings.Split(strings.ReplaceAll(p, "\\", "/"), "/") {
		if seg == ".." {
			return &PathTraversalError{Path: p}
		}
	}
	return nil
}

// Paths returns the declared file paths in sorted order.
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.Files))
	for _, f := range m.Files {
		paths = append(paths, f.Path)
	}
	sort.Strings(paths)
	return paths
}

// Lookup returns the declared entry for path, or nil.
func (m *Manifest) Lookup(path string) *File {
	for _, f := range m.Files {
		if f.Path == path {
			return f
		}
	}
	return nil
}

// PathFor returns the manifest document path for a directory.
func PathFor(dir string) string {
	return filepath.Join(dir, Filename)
}

// Load reads and parses the manifest document inside dir.
func Load(dir string) (*Manifest, error) {
	data, err := os.ReadFile(PathFor(dir))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Save writes the manifest document into dir.
func (m *Manifest) Save(dir string) error {
	data, err := m.Marshal()
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(PathFor(dir), data, 0o644)
}
