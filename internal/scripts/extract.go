package scripts

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// rMarker fences the metadata block in R scripts, which have no multiline
// comment syntax. Every line of the block is a `#| ` comment so the block
// survives sourcing the file.
const rMarker = "#| ---"

// markdownSection is the front matter key holding the metadata in markdown
// notebooks, keeping it apart from the notebook's own front matter.
const markdownSection = "ve_data_science"

var rCommentPrefix = regexp.MustCompile(`^#\| ?`)

// ReadMetadata extracts and validates the metadata block of a script file,
// dispatching on the file extension.
func ReadMetadata(path string) (*Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}

	var doc []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".r":
		doc, err = extractRBlock(raw)
	case ".py":
		doc, err = extractPyDocstring(raw)
	case ".md", ".rmd":
		doc, err = extractMarkdownSection(raw)
	default:
		return nil, &ExtractError{Reason: fmt.Sprintf("unsupported script type %q", filepath.Ext(path))}
	}
	if err != nil {
		return nil, err
	}

	return decodeMetadata(doc)
}

// extractRBlock isolates the YAML between the first two `#| ---` fences,
// which must start on the first line, and strips the comment prefixes.
func extractRBlock(raw []byte) ([]byte, error) {
	lines := splitLines(raw)

	var markers []int
	for i, line := range lines {
		if line == rMarker {
			markers = append(markers, i)
		}
	}

	if len(markers) < 2 {
		return nil, &ExtractError{Reason: "metadata block not fenced by two '#| ---' markers"}
	}
	if markers[0] != 0 {
		return nil, &ExtractError{Reason: "metadata block must start on the first line"}
	}

	block := lines[markers[0]:markers[1]]
	for _, line := range block {
		if !strings.HasPrefix(line, "#| ") && line != "#|" {
			return nil, &ExtractError{Reason: "every metadata line must carry the '#| ' comment prefix"}
		}
	}

	stripped := make([]string, len(block))
	for i, line := range block {
		stripped[i] = rCommentPrefix.ReplaceAllString(line, "")
	}
	return []byte(strings.Join(stripped, "\n") + "\n"), nil
}

// extractPyDocstring returns the body of the module docstring, which must
// be the first statement in the file after blank lines and comments.
func extractPyDocstring(raw []byte) ([]byte, error) {
	rest := string(raw)

	for {
		trimmed := strings.TrimLeft(rest, " \t\r\n")
		if strings.HasPrefix(trimmed, "#") {
			if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
				rest = trimmed[idx+1:]
				continue
			}
			rest = ""
		} else {
			rest = trimmed
		}
		break
	}

	var quote string
	switch {
	case strings.HasPrefix(rest, `"""`):
		quote = `"""`
	case strings.HasPrefix(rest, "'''"):
		quote = "'''"
	default:
		return nil, &ExtractError{Reason: "missing module docstring"}
	}

	body := rest[len(quote):]
	end := strings.Index(body, quote)
	if end < 0 {
		return nil, &ExtractError{Reason: "unterminated module docstring"}
	}
	body = body[:end]

	// drop a trailing `---` which would open a second, empty YAML document
	body = regexp.MustCompile(`[\n-]+$`).ReplaceAllString(body, "\n")
	return []byte(body), nil
}

// extractMarkdownSection reads the notebook's front matter and returns the
// metadata held under its dedicated section, re-serialized as a standalone
// document.
func extractMarkdownSection(raw []byte) ([]byte, error) {
	lines := splitLines(raw)

	var markers []int
	for i, line := range lines {
		if strings.HasPrefix(line, "---") {
			markers = append(markers, i)
		}
	}

	if len(markers) != 2 {
		return nil, &ExtractError{Reason: fmt.Sprintf("found %d front matter fences, want 2", len(markers))}
	}
	if markers[0] != 0 {
		return nil, &ExtractError{Reason: "front matter must start on the first line"}
	}

	block := strings.Join(lines[markers[0]:markers[1]], "\n")

	var front map[string]yaml.Node
	if err := yaml.Unmarshal([]byte(block), &front); err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}

	section, ok := front[markdownSection]
	if !ok {
		return nil, &ExtractError{Reason: fmt.Sprintf("front matter has no %q section", markdownSection)}
	}

	doc, err := yaml.Marshal(&section)
	if err != nil {
		return nil, fmt.Errorf("reserialize %s section: %w", markdownSection, err)
	}
	return doc, nil
}

func splitLines(raw []byte) []string {
	return strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
}
