package manifest

import "fmt"

// SchemaError indicates a manifest document with missing or malformed fields.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("manifest schema error: %s: %s", e.Field, e.Reason)
}

// DuplicatePathError indicates two file entries sharing the same path.
type DuplicatePathError struct {
	Path string
}

func (e *DuplicatePathError) Error() string {
	return fmt.Sprintf("manifest duplicate path: %s", e.Path)
}

// PathTraversalError indicates an absolute path or one that escapes the
// manifest's directory.
type PathTraversalError struct {
	Path string
}

func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("manifest path escapes directory: %s", e.Path)
}
